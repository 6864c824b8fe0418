package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/staff_bot/internal/service"
)

func sampleReport() *service.ClaimsReport {
	return &service.ClaimsReport{
		Period: "Март 2025",
		Total:  450,
		Count:  3,
		ByCategory: []service.CategoryTotal{
			{CategoryID: "meals", Title: "🍽 Питание", Total: 300, Count: 2},
			{CategoryID: "transport", Title: "🚕 Транспорт", Total: 150, Count: 1},
		},
		Daily: []service.DailyTotal{
			{Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Total: 150},
			{Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), Total: 300},
		},
	}
}

func TestGenerateCategoryChart(t *testing.T) {
	g := NewChartGenerator()

	png, err := g.GenerateCategoryChart(sampleReport())
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	// PNG-сигнатура
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestGenerateCategoryChartEmptyReport(t *testing.T) {
	g := NewChartGenerator()

	png, err := g.GenerateCategoryChart(&service.ClaimsReport{Period: "Март 2025"})
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestGenerateTrendChart(t *testing.T) {
	g := NewChartGenerator()

	png, err := g.GenerateTrendChart(sampleReport())
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestGenerateTrendChartNeedsTwoPoints(t *testing.T) {
	g := NewChartGenerator()

	report := sampleReport()
	report.Daily = report.Daily[:1]

	png, err := g.GenerateTrendChart(report)
	require.NoError(t, err)
	assert.Nil(t, png, "a single day cannot make a trend line")
}
