package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Step — именованный шаг диалогового сценария.
// Набор шагов закрыт: неизвестное имя шага означает рассинхронизацию
// между оркестратором и хранилищем состояний.
type Step string

const (
	StepIdle Step = "idle"

	StepRegisterName  Step = "registering-name"
	StepRegisterPhone Step = "registering-phone"
	StepRegisterRole  Step = "registering-role"

	StepClaimCategory    Step = "claiming-category"
	StepClaimAmount      Step = "claiming-amount"
	StepClaimDescription Step = "claiming-description"
	StepClaimPhoto       Step = "claiming-photo"
	StepClaimConfirm     Step = "claiming-confirm"

	StepDayOffDate    Step = "dayoff-date"
	StepDayOffReason  Step = "dayoff-reason"
	StepDayOffConfirm Step = "dayoff-confirm"
)

// Phase — крупная группа шагов, по которой транспорт решает,
// какому сценарию передать входящее сообщение.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseRegistering Phase = "registering"
	PhaseClaiming    Phase = "claiming"
	PhaseDayOff      Phase = "dayoff"
)

var phaseSteps = map[Phase][]Step{
	PhaseIdle:        {StepIdle},
	PhaseRegistering: {StepRegisterName, StepRegisterPhone, StepRegisterRole},
	PhaseClaiming:    {StepClaimCategory, StepClaimAmount, StepClaimDescription, StepClaimPhoto, StepClaimConfirm},
	PhaseDayOff:      {StepDayOffDate, StepDayOffReason, StepDayOffConfirm},
}

// ValidStep сообщает, входит ли шаг в закрытый словарь шагов.
func ValidStep(s Step) bool {
	for _, steps := range phaseSteps {
		for _, st := range steps {
			if st == s {
				return true
			}
		}
	}
	return false
}

// ParseStep разбирает имя шага из строки хранилища.
func ParseStep(name string) (Step, error) {
	s := Step(name)
	if !ValidStep(s) {
		return "", fmt.Errorf("unknown step %q", name)
	}
	return s, nil
}

// Contains сообщает, принадлежит ли шаг этой фазе.
func (p Phase) Contains(s Step) bool {
	for _, st := range phaseSteps[p] {
		if st == s {
			return true
		}
	}
	return false
}

// StepPhase возвращает фазу, которой принадлежит шаг.
func StepPhase(s Step) Phase {
	for phase, steps := range phaseSteps {
		for _, st := range steps {
			if st == s {
				return phase
			}
		}
	}
	return PhaseIdle
}

// TempData — накопленные данные незавершенного сценария.
// Значения ограничены типами, которые переживают JSON-кодирование:
// string, float64, bool и вложенные map[string]any.
type TempData map[string]any

// Clone возвращает глубокую копию данных через JSON,
// чтобы вызывающий не мог изменить состояние внутри хранилища.
func (d TempData) Clone() TempData {
	if len(d) == 0 {
		return TempData{}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		// TempData по контракту JSON-совместим; на практике сюда не попадаем
		return TempData{}
	}
	var out TempData
	if err := json.Unmarshal(raw, &out); err != nil {
		return TempData{}
	}
	return out
}

// String возвращает строковое значение ключа (пустая строка, если его нет).
func (d TempData) String(key string) string {
	v, _ := d[key].(string)
	return v
}

// Float возвращает числовое значение ключа.
func (d TempData) Float(key string) float64 {
	v, _ := d[key].(float64)
	return v
}

// ConversationState — текущая позиция пользователя в диалоге.
// На одного пользователя существует не больше одного состояния.
type ConversationState struct {
	UserID      int64     `json:"user_id"`
	CurrentStep Step      `json:"current_step"`
	TempData    TempData  `json:"temp_data"`
	LastUpdated time.Time `json:"last_updated"`
}
