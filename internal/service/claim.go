package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivanoskov/staff_bot/internal/model"
	"github.com/ivanoskov/staff_bot/internal/state"
	"github.com/ivanoskov/staff_bot/internal/validation"
)

// ClaimFlow ведет пользователя по шагам заявки на возмещение:
// категория -> сумма -> описание -> фото чека -> подтверждение.
type ClaimFlow struct {
	states *state.Store
	tables Tables
	blobs  Blobs
}

// NewClaimFlow создает оркестратор заявок на возмещение.
func NewClaimFlow(states *state.Store, tables Tables, blobs Blobs) *ClaimFlow {
	ensureTable(tables, claimsTable)
	return &ClaimFlow{
		states: states,
		tables: tables,
		blobs:  blobs,
	}
}

// Start начинает заявку с выбора категории расходов.
func (f *ClaimFlow) Start(ctx context.Context, userID int64) StepResult {
	if err := advance(ctx, f.states, userID, model.StepClaimCategory, nil); err != nil {
		log.Printf("claim: %v", err)
		return storageUnavailable()
	}

	titles := make([]string, 0, len(model.ClaimCategories))
	for _, c := range model.ClaimCategories {
		titles = append(titles, c.Title)
	}
	return StepResult{
		Success:  true,
		Message:  "Новая заявка на возмещение. Выберите категорию расходов:\n" + strings.Join(titles, "\n"),
		NextStep: model.StepClaimCategory,
	}
}

// ProcessStep обрабатывает текстовый ввод пользователя на шаге step.
func (f *ClaimFlow) ProcessStep(ctx context.Context, userID int64, step model.Step, input string) StepResult {
	switch step {
	case model.StepClaimCategory:
		return f.processCategory(ctx, userID, input)
	case model.StepClaimAmount:
		return f.processAmount(ctx, userID, input)
	case model.StepClaimDescription:
		return f.processDescription(ctx, userID, input)
	case model.StepClaimPhoto:
		// фото можно пропустить прочерком
		if strings.TrimSpace(input) == "-" {
			return f.advanceToConfirm(ctx, userID, "")
		}
		return StepResult{Message: "Пришлите фото чека или отправьте «-», чтобы пропустить."}
	case model.StepClaimConfirm:
		return f.processConfirm(ctx, userID, input)
	}
	return wrongPhase()
}

// ProcessPhoto обрабатывает присланное фото чека на шаге claiming-photo.
func (f *ClaimFlow) ProcessPhoto(ctx context.Context, userID int64, data []byte) StepResult {
	step, _ := f.states.GetState(ctx, userID)
	if step != model.StepClaimPhoto {
		return wrongPhase()
	}

	name := fmt.Sprintf("%d/%s.jpg", userID, uuid.New().String())
	url, err := f.blobs.UploadPhoto(ctx, name, data)
	if err != nil {
		log.Printf("claim: failed to upload photo for user %d: %v", userID, err)
		return StepResult{Message: "Не удалось загрузить фото, попробуйте еще раз."}
	}
	return f.advanceToConfirm(ctx, userID, url)
}

// Cancel прерывает заявку на любом шаге.
func (f *ClaimFlow) Cancel(ctx context.Context, userID int64) StepResult {
	f.states.ClearState(ctx, userID)
	return StepResult{Success: true, Message: "Заявка отменена.", NextStep: model.StepIdle}
}

func (f *ClaimFlow) processCategory(ctx context.Context, userID int64, input string) StepResult {
	cat, verr := validation.ClaimCategory(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepClaimAmount, model.TempData{"category": cat.ID}); err != nil {
		log.Printf("claim: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  fmt.Sprintf("Категория «%s». Введите сумму в рублях.", cat.Title),
		NextStep: model.StepClaimAmount,
	}
}

func (f *ClaimFlow) processAmount(ctx context.Context, userID int64, input string) StepResult {
	amount, verr := validation.Amount(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepClaimDescription, model.TempData{"amount": amount}); err != nil {
		log.Printf("claim: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  "Добавьте описание расходов или отправьте «-», чтобы пропустить.",
		NextStep: model.StepClaimDescription,
	}
}

func (f *ClaimFlow) processDescription(ctx context.Context, userID int64, input string) StepResult {
	desc, verr := validation.Description(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if err := advance(ctx, f.states, userID, model.StepClaimPhoto, model.TempData{"description": desc}); err != nil {
		log.Printf("claim: %v", err)
		return storageUnavailable()
	}
	return StepResult{
		Success:  true,
		Message:  "Теперь пришлите фото чека (или «-», чтобы пропустить).",
		NextStep: model.StepClaimPhoto,
	}
}

func (f *ClaimFlow) advanceToConfirm(ctx context.Context, userID int64, photoURL string) StepResult {
	if err := advance(ctx, f.states, userID, model.StepClaimConfirm, model.TempData{"photo_url": photoURL}); err != nil {
		log.Printf("claim: %v", err)
		return storageUnavailable()
	}

	_, data := f.states.GetState(ctx, userID)
	title := data.String("category")
	if cat, ok := model.ClaimCategoryByID(title); ok {
		title = cat.Title
	}
	summary := fmt.Sprintf(
		"Проверьте заявку:\nКатегория: %s\nСумма: %.2f₽\nОписание: %s\nФото: %s\n\nОтправить? (да/нет)",
		title, data.Float("amount"), orDash(data.String("description")), orDash(photoURL))
	return StepResult{Success: true, Message: summary, NextStep: model.StepClaimConfirm}
}

func (f *ClaimFlow) processConfirm(ctx context.Context, userID int64, input string) StepResult {
	confirmed, verr := validation.YesNo(input)
	if verr != nil {
		return failValidation(ctx, f.states, userID, verr)
	}
	if !confirmed {
		return f.Cancel(ctx, userID)
	}

	_, data := f.states.GetState(ctx, userID)
	record := &model.ClaimRecord{
		UserID:      userID,
		Category:    data.String("category"),
		Amount:      data.Float("amount"),
		Description: data.String("description"),
		PhotoURL:    data.String("photo_url"),
		CreatedAt:   time.Now(),
	}
	record.GenerateID()

	if err := f.tables.AppendRow(ctx, claimsTable, claimsRange, record.Row()); err != nil {
		log.Printf("claim: failed to save record for user %d: %v", userID, err)
		return storageUnavailable()
	}

	f.states.ClearState(ctx, userID)
	return StepResult{
		Success:  true,
		Message:  fmt.Sprintf("Заявка на %.2f₽ отправлена! ✅", record.Amount),
		NextStep: model.StepIdle,
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
