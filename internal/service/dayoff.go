package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ivanoskov/staff_bot/internal/model"
	"github.com/ivanoskov/staff_bot/internal/state"
	"github.com/ivanoskov/staff_bot/internal/validation"
)

// DayOffFlow ведет пользователя по шагам запроса отгула:
// дата -> причина -> подтверждение.
type DayOffFlow struct {
	states *state.Store
	tables Tables
}

// NewDayOffFlow создает оркестратор запросов отгула.
func NewDayOffFlow(states *state.Store, tables Tables) *DayOffFlow {
	ensureTable(tables, dayoffsTable)
	return &DayOffFlow{
		states: states,
		tables: tables,
	}
}

// Start начинает запрос отгула с ввода даты.
func (f *DayOffFlow) Start(ctx context.Context, userID int64) StepResult {
	if err := advance(ctx, f.states, userID, model.StepDayOffDate, nil); err != nil {
		log.Printf("dayoff: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  "На какую дату нужен отгул? Формат: 2025-04-15 или 15.04.2025.",
		NextStep: model.StepDayOffDate,
	}
}

// ProcessStep обрабатывает ввод пользователя на шаге step.
func (f *DayOffFlow) ProcessStep(ctx context.Context, userID int64, step model.Step, input string) StepResult {
	switch step {
	case model.StepDayOffDate:
		return f.processDate(ctx, userID, input)
	case model.StepDayOffReason:
		return f.processReason(ctx, userID, input)
	case model.StepDayOffConfirm:
		return f.processConfirm(ctx, userID, input)
	}
	return wrongPhase()
}

// Cancel прерывает запрос отгула на любом шаге.
func (f *DayOffFlow) Cancel(ctx context.Context, userID int64) StepResult {
	f.states.ClearState(ctx, userID)
	return StepResult{Success: true, Message: "Запрос отгула отменен.", NextStep: model.StepIdle}
}

func (f *DayOffFlow) processDate(ctx context.Context, userID int64, input string) StepResult {
	date, verr := validation.DayOffDate(input, time.Now())
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepDayOffReason, model.TempData{"date": date}); err != nil {
		log.Printf("dayoff: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  "Укажите причину отгула.",
		NextStep: model.StepDayOffReason,
	}
}

func (f *DayOffFlow) processReason(ctx context.Context, userID int64, input string) StepResult {
	reason, verr := validation.Reason(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepDayOffConfirm, model.TempData{"reason": reason}); err != nil {
		log.Printf("dayoff: %v", err)
		return storageUnavailable()
	}

	_, data := f.states.GetState(ctx, userID)
	return StepResult{
		Success: true,
		Message: fmt.Sprintf("Отгул на %s, причина: %s.\nОтправить запрос? (да/нет)",
			data.String("date"), reason),
		NextStep: model.StepDayOffConfirm,
	}
}

func (f *DayOffFlow) processConfirm(ctx context.Context, userID int64, input string) StepResult {
	confirmed, verr := validation.YesNo(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if !confirmed {
		return f.Cancel(ctx, userID)
	}

	_, data := f.states.GetState(ctx, userID)
	record := &model.DayOffRecord{
		UserID:    userID,
		Date:      data.String("date"),
		Reason:    data.String("reason"),
		CreatedAt: time.Now(),
	}
	record.GenerateID()

	if err := f.tables.AppendRow(ctx, dayoffsTable, dayoffsRange, record.Row()); err != nil {
		log.Printf("dayoff: failed to save record for user %d: %v", userID, err)
		return storageUnavailable()
	}

	f.states.ClearState(ctx, userID)
	return StepResult{
		Success:  true,
		Message:  fmt.Sprintf("Запрос отгула на %s отправлен! ✅", record.Date),
		NextStep: model.StepIdle,
	}
}
