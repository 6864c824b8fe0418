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

// RegistrationFlow ведет пользователя по шагам регистрации:
// ФИО -> телефон -> роль.
type RegistrationFlow struct {
	states *state.Store
	tables Tables
}

// NewRegistrationFlow создает оркестратор регистрации.
func NewRegistrationFlow(states *state.Store, tables Tables) *RegistrationFlow {
	ensureTable(tables, registrationsTable)
	return &RegistrationFlow{
		states: states,
		tables: tables,
	}
}

// Start начинает регистрацию с шага ввода ФИО.
func (f *RegistrationFlow) Start(ctx context.Context, userID int64) StepResult {
	if err := advance(ctx, f.states, userID, model.StepRegisterName, nil); err != nil {
		log.Printf("registration: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  "Начнем регистрацию! Введите ваши имя и фамилию.",
		NextStep: model.StepRegisterName,
	}
}

// ProcessStep обрабатывает ввод пользователя на шаге step.
func (f *RegistrationFlow) ProcessStep(ctx context.Context, userID int64, step model.Step, input string) StepResult {
	switch step {
	case model.StepRegisterName:
		return f.processName(ctx, userID, input)
	case model.StepRegisterPhone:
		return f.processPhone(ctx, userID, input)
	case model.StepRegisterRole:
		return f.processRole(ctx, userID, input)
	}
	return wrongPhase()
}

// Cancel прерывает регистрацию на любом шаге.
func (f *RegistrationFlow) Cancel(ctx context.Context, userID int64) StepResult {
	f.states.ClearState(ctx, userID)
	return StepResult{Success: true, Message: "Регистрация отменена.", NextStep: model.StepIdle}
}

func (f *RegistrationFlow) processName(ctx context.Context, userID int64, input string) StepResult {
	name, verr := validation.FullName(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepRegisterPhone, model.TempData{"name": name}); err != nil {
		log.Printf("registration: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  fmt.Sprintf("Приятно познакомиться, %s! Теперь введите номер телефона.", name),
		NextStep: model.StepRegisterPhone,
	}
}

func (f *RegistrationFlow) processPhone(ctx context.Context, userID int64, input string) StepResult {
	phone, verr := validation.Phone(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepRegisterRole, model.TempData{"phone": phone}); err != nil {
		log.Printf("registration: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  "Отлично! Осталось выбрать вашу роль.",
		NextStep: model.StepRegisterRole,
	}
}

func (f *RegistrationFlow) processRole(ctx context.Context, userID int64, input string) StepResult {
	role, verr := validation.Role(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}

	_, data := f.states.GetState(ctx, userID)
	record := &model.RegistrationRecord{
		UserID:    userID,
		FullName:  data.String("name"),
		Phone:     data.String("phone"),
		Role:      role.ID,
		CreatedAt: time.Now(),
	}
	record.GenerateID()

	if err := f.tables.AppendRow(ctx, registrationsTable, registrationsRange, record.Row()); err != nil {
		log.Printf("registration: failed to save record for user %d: %v", userID, err)
		return storageUnavailable()
	}

	f.states.ClearState(ctx, userID)
	return StepResult{
		Success:  true,
		Message:  fmt.Sprintf("Регистрация завершена! ✅\n%s, %s", record.FullName, role.Title),
		NextStep: model.StepIdle,
	}
}
