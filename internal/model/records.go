package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RegistrationRecord — итог завершенной регистрации сотрудника.
// После записи в таблицу не изменяется.
type RegistrationRecord struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateID генерирует новый UUID для записи, если он еще не установлен
func (r *RegistrationRecord) GenerateID() {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
}

// Row кодирует запись в строку листа registrations (колонки A:F).
func (r *RegistrationRecord) Row() []string {
	return []string{
		r.ID,
		fmt.Sprintf("%d", r.UserID),
		r.FullName,
		r.Phone,
		r.Role,
		r.CreatedAt.Format(time.RFC3339),
	}
}

// ClaimRecord — итог поданной заявки на возмещение расходов.
type ClaimRecord struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerateID генерирует новый UUID для заявки, если он еще не установлен
func (c *ClaimRecord) GenerateID() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
}

// Row кодирует заявку в строку листа claims (колонки A:G).
func (c *ClaimRecord) Row() []string {
	return []string{
		c.ID,
		fmt.Sprintf("%d", c.UserID),
		c.Category,
		fmt.Sprintf("%.2f", c.Amount),
		c.Description,
		c.PhotoURL,
		c.CreatedAt.Format(time.RFC3339),
	}
}

// DayOffRecord — итог запроса отгула.
type DayOffRecord struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateID генерирует новый UUID для записи, если он еще не установлен
func (d *DayOffRecord) GenerateID() {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
}

// Row кодирует запись в строку листа dayoffs (колонки A:E).
func (d *DayOffRecord) Row() []string {
	return []string{
		d.ID,
		fmt.Sprintf("%d", d.UserID),
		d.Date,
		d.Reason,
		d.CreatedAt.Format(time.RFC3339),
	}
}
