// Package service содержит оркестраторы многошаговых сценариев:
// регистрацию сотрудника, заявку на возмещение расходов и запрос
// отгула. Позицию пользователя в сценарии ведет хранилище состояний,
// итоговые записи уходят в табличный сервис.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ivanoskov/staff_bot/internal/model"
	"github.com/ivanoskov/staff_bot/internal/state"
	"github.com/ivanoskov/staff_bot/internal/validation"
)

const (
	registrationsTable = "registrations"
	claimsTable        = "claims"
	dayoffsTable       = "dayoffs"

	registrationsRange = "A:F"
	claimsRange        = "A:G"
	dayoffsRange       = "A:E"

	// attemptsKey — счетчик неудачных попыток текущего шага в temp_data.
	attemptsKey = "attempts"
	// maxAttempts — после стольких неудач подряд сценарий прерывается.
	maxAttempts = 5
)

// Tables — интерфейс табличного сервиса, нужный оркестраторам.
type Tables interface {
	EnsureTable(ctx context.Context, name string) (bool, error)
	GetRange(ctx context.Context, table, cellRange string) ([][]string, error)
	AppendRow(ctx context.Context, table, cellRange string, row []string) error
}

// Blobs — интерфейс файлового хранилища для фото чеков.
type Blobs interface {
	UploadPhoto(ctx context.Context, name string, data []byte) (string, error)
}

// StepResult — итог обработки одного шага сценария.
type StepResult struct {
	Success  bool
	Message  string
	NextStep model.Step
}

// ensureTable создает лист записей, журналируя неудачу: табличный
// сервис может быть недоступен на старте, это не повод падать.
func ensureTable(tables Tables, name string) {
	if _, err := tables.EnsureTable(context.Background(), name); err != nil {
		log.Printf("service: failed to ensure table %s: %v", name, err)
	}
}

// failValidation обрабатывает неудачную валидацию шага: наращивает
// счетчик попыток, а после maxAttempts прерывает сценарий целиком.
func failValidation(ctx context.Context, states *state.Store, userID int64, verr *validation.Error) StepResult {
	_, data := states.GetState(ctx, userID)
	attempts := data.Float(attemptsKey) + 1
	if attempts >= maxAttempts {
		states.ClearState(ctx, userID)
		return StepResult{
			Message: "Слишком много неудачных попыток, сценарий прерван. Начните заново.",
		}
	}
	if err := states.UpdateField(ctx, userID, attemptsKey, attempts); err != nil {
		log.Printf("service: failed to bump attempts for user %d: %v", userID, err)
	}

	msg := verr.Message
	if len(verr.Suggestions) > 0 {
		msg += "\n" + strings.Join(verr.Suggestions, ", ")
	}
	return StepResult{Message: msg}
}

// advance переводит пользователя на следующий шаг, сбрасывая счетчик
// попыток вместе с записью данных шага.
func advance(ctx context.Context, states *state.Store, userID int64, step model.Step, data model.TempData) error {
	if data == nil {
		data = model.TempData{}
	}
	data[attemptsKey] = float64(0)
	if err := states.SetState(ctx, userID, step, data); err != nil {
		return fmt.Errorf("failed to advance user %d to %s: %w", userID, step, err)
	}
	return nil
}

// wrongPhase — ответ на ввод, не соответствующий текущему шагу.
func wrongPhase() StepResult {
	return StepResult{Message: "Сейчас этот ввод не ожидается. Команда /start покажет, что я умею."}
}

// storageUnavailable — ответ при недоступном табличном сервисе на
// терминальном шаге; состояние не очищается, пользователь может
// повторить подтверждение.
func storageUnavailable() StepResult {
	return StepResult{Message: "Не удалось сохранить данные, попробуйте еще раз чуть позже."}
}
