package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ivanoskov/staff_bot/internal/model"
)

// CategoryTotal — сумма заявок по одной категории.
type CategoryTotal struct {
	CategoryID string
	Title      string
	Total      float64
	Count      int
}

// DailyTotal — сумма заявок за один день.
type DailyTotal struct {
	Date  time.Time
	Total float64
}

// ClaimsReport — сводка заявок на возмещение за период.
type ClaimsReport struct {
	Period     string
	Total      float64
	Count      int
	ByCategory []CategoryTotal
	Daily      []DailyTotal
	Text       string
}

// ClaimReporter строит отчеты по поданным заявкам из табличного сервиса.
type ClaimReporter struct {
	tables Tables
}

// NewClaimReporter создает построитель отчетов.
func NewClaimReporter(tables Tables) *ClaimReporter {
	return &ClaimReporter{tables: tables}
}

var monthNames = []string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// MonthlyReport строит отчет по заявкам за текущий месяц.
// userID = 0 означает отчет по всем пользователям (для администратора).
func (r *ClaimReporter) MonthlyReport(ctx context.Context, userID int64) (*ClaimsReport, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := r.tables.GetRange(ctx, claimsTable, claimsRange)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}

	claims := make([]model.ClaimRecord, 0, len(rows))
	for _, row := range rows {
		claim, ok := parseClaimRow(row)
		if !ok {
			continue
		}
		if userID != 0 && claim.UserID != userID {
			continue
		}
		if claim.CreatedAt.Before(start) || !claim.CreatedAt.Before(end) {
			continue
		}
		claims = append(claims, claim)
	}

	report := &ClaimsReport{
		Period: fmt.Sprintf("%s %d", monthNames[now.Month()-1], now.Year()),
	}
	byCategory := make(map[string]*CategoryTotal)
	byDay := make(map[string]float64)
	for _, claim := range claims {
		report.Total += claim.Amount
		report.Count++

		ct, ok := byCategory[claim.Category]
		if !ok {
			title := claim.Category
			if cat, found := model.ClaimCategoryByID(claim.Category); found {
				title = cat.Title
			}
			ct = &CategoryTotal{CategoryID: claim.Category, Title: title}
			byCategory[claim.Category] = ct
		}
		ct.Total += claim.Amount
		ct.Count++

		day := claim.CreatedAt.UTC().Format("2006-01-02")
		byDay[day] += claim.Amount
	}

	for _, ct := range byCategory {
		report.ByCategory = append(report.ByCategory, *ct)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		return report.ByCategory[i].Total > report.ByCategory[j].Total
	})

	for day, total := range byDay {
		date, _ := time.Parse("2006-01-02", day)
		report.Daily = append(report.Daily, DailyTotal{Date: date, Total: total})
	}
	sort.Slice(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date.Before(report.Daily[j].Date)
	})

	report.Text = formatClaimsReport(report)
	return report, nil
}

// parseClaimRow разбирает строку листа claims; испорченные строки
// просто пропускаются.
func parseClaimRow(row []string) (model.ClaimRecord, bool) {
	if len(row) < 7 {
		return model.ClaimRecord{}, false
	}
	userID, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return model.ClaimRecord{}, false
	}
	amount, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return model.ClaimRecord{}, false
	}
	createdAt, err := time.Parse(time.RFC3339, row[6])
	if err != nil {
		return model.ClaimRecord{}, false
	}
	return model.ClaimRecord{
		ID:          row[0],
		UserID:      userID,
		Category:    row[2],
		Amount:      amount,
		Description: row[4],
		PhotoURL:    row[5],
		CreatedAt:   createdAt,
	}, true
}

func formatClaimsReport(report *ClaimsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Заявки за %s\n\n", report.Period)
	fmt.Fprintf(&b, "Всего: %.2f₽ (%d шт.)\n", report.Total, report.Count)
	if len(report.ByCategory) > 0 {
		b.WriteString("\nПо категориям:\n")
		for _, ct := range report.ByCategory {
			fmt.Fprintf(&b, "• %s: %.2f₽ (%d шт.)\n", ct.Title, ct.Total, ct.Count)
		}
	}
	return b.String()
}
