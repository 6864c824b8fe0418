// Package validation проверяет пользовательский ввод шагов сценариев.
// Каждый валидатор возвращает типизированное значение либо ошибку
// с подсказками, которые бот показывает пользователю.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ivanoskov/staff_bot/internal/model"
)

// Error — структурированная ошибка валидации.
type Error struct {
	Field       string
	Message     string
	Suggestions []string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

// maxAmount — верхняя граница суммы заявки в рублях.
const maxAmount = 1_000_000

var (
	phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	// целое или дробное с точкой, не больше двух знаков; экспоненты
	// и знаки в сумме не допускаются
	amountRe = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
)

// FullName проверяет ФИО: минимум два слова по два символа.
func FullName(input string) (string, *Error) {
	name := strings.Join(strings.Fields(input), " ")
	words := strings.Fields(name)
	if len(words) < 2 {
		return "", &Error{
			Field:       "name",
			Message:     "нужно указать имя и фамилию",
			Suggestions: []string{"Например: Иван Петров"},
		}
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 {
			return "", &Error{
				Field:   "name",
				Message: "каждая часть имени должна быть не короче двух символов",
			}
		}
	}
	return name, nil
}

// Phone проверяет и нормализует номер телефона.
func Phone(input string) (string, *Error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(input))
	if !phoneRe.MatchString(cleaned) {
		return "", &Error{
			Field:       "phone",
			Message:     "не похоже на номер телефона",
			Suggestions: []string{"Например: +79161234567"},
		}
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned, nil
}

// Role проверяет, что роль входит в допустимый набор.
func Role(input string) (model.Role, *Error) {
	id := strings.ToLower(strings.TrimSpace(input))
	if role, ok := model.RoleByID(id); ok {
		return role, nil
	}
	ids := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		ids = append(ids, r.ID)
	}
	return model.Role{}, &Error{
		Field:       "role",
		Message:     "неизвестная роль",
		Suggestions: ids,
	}
}

// ClaimCategory проверяет категорию расходов.
func ClaimCategory(input string) (model.ClaimCategory, *Error) {
	id := strings.ToLower(strings.TrimSpace(input))
	if cat, ok := model.ClaimCategoryByID(id); ok {
		return cat, nil
	}
	ids := make([]string, 0, len(model.ClaimCategories))
	for _, c := range model.ClaimCategories {
		ids = append(ids, c.ID)
	}
	return model.ClaimCategory{}, &Error{
		Field:       "category",
		Message:     "неизвестная категория",
		Suggestions: ids,
	}
}

// Amount проверяет сумму: положительное десятичное число до миллиона,
// не больше двух знаков после запятой. Запись вроде "1e3" не
// принимается: сумма вводится так, как пишут в чеке.
func Amount(input string) (float64, *Error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	if !amountRe.MatchString(normalized) {
		return 0, &Error{
			Field:       "amount",
			Message:     "сумма должна быть числом, не больше двух знаков после запятой",
			Suggestions: []string{"Например: 1250.50"},
		}
	}
	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, &Error{Field: "amount", Message: "сумма должна быть числом"}
	}
	if amount <= 0 {
		return 0, &Error{Field: "amount", Message: "сумма должна быть больше нуля"}
	}
	if amount > maxAmount {
		return 0, &Error{Field: "amount", Message: "сумма не может превышать 1 000 000"}
	}
	return amount, nil
}

// Description проверяет описание расходов. "-" означает пропуск шага.
func Description(input string) (string, *Error) {
	desc := strings.TrimSpace(input)
	if desc == "-" {
		return "", nil
	}
	if utf8.RuneCountInString(desc) > 200 {
		return "", &Error{Field: "description", Message: "описание не должно превышать 200 символов"}
	}
	return desc, nil
}

// DayOffDate проверяет дату отгула: не в прошлом и не дальше года.
// Принимает форматы YYYY-MM-DD и DD.MM.YYYY, возвращает YYYY-MM-DD.
func DayOffDate(input string, now time.Time) (string, *Error) {
	raw := strings.TrimSpace(input)
	var parsed time.Time
	var err error
	if strings.Contains(raw, ".") {
		parsed, err = time.Parse("02.01.2006", raw)
	} else {
		parsed, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return "", &Error{
			Field:       "date",
			Message:     "не удалось разобрать дату",
			Suggestions: []string{"Например: 2025-04-15 или 15.04.2025"},
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.Before(today) {
		return "", &Error{Field: "date", Message: "дата не может быть в прошлом"}
	}
	if parsed.After(today.AddDate(1, 0, 0)) {
		return "", &Error{Field: "date", Message: "дата не может быть дальше чем через год"}
	}
	return parsed.Format("2006-01-02"), nil
}

// Reason проверяет причину отгула.
func Reason(input string) (string, *Error) {
	reason := strings.TrimSpace(input)
	if reason == "" {
		return "", &Error{Field: "reason", Message: "причина не может быть пустой"}
	}
	if utf8.RuneCountInString(reason) > 200 {
		return "", &Error{Field: "reason", Message: "причина не должна превышать 200 символов"}
	}
	return reason, nil
}

// YesNo разбирает ответ подтверждающего шага.
func YesNo(input string) (bool, *Error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "да", "yes", "y", "д", "ок", "ok":
		return true, nil
	case "нет", "no", "n", "н":
		return false, nil
	}
	return false, &Error{
		Field:       "confirm",
		Message:     "ответьте да или нет",
		Suggestions: []string{"да", "нет"},
	}
}
