package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ivanoskov/staff_bot/internal/service"
)

// ChartGenerator генерирует графики для отчетов по заявкам
type ChartGenerator struct{}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateCategoryChart создает столбчатую диаграмму сумм по категориям
func (g *ChartGenerator) GenerateCategoryChart(report *service.ClaimsReport) ([]byte, error) {
	if len(report.ByCategory) == 0 {
		return nil, nil // Возвращаем nil, если нет данных для графика
	}

	bars := make([]chart.Value, 0, len(report.ByCategory))
	for _, ct := range report.ByCategory {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s: %.0f₽", ct.Title, ct.Total),
			Value: ct.Total,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorBlue.WithAlpha(160),
				FontSize:    12,
				FontColor:   chart.ColorBlack,
			},
		})
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Заявки по категориям — %s", report.Period),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    1200,
		Height:   600,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f₽", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category chart: %w", err)
	}

	return buffer.Bytes(), nil
}

// GenerateTrendChart создает график сумм заявок по дням месяца
func (g *ChartGenerator) GenerateTrendChart(report *service.ClaimsReport) ([]byte, error) {
	// Для линии нужно хотя бы две точки
	if len(report.Daily) < 2 {
		return nil, nil
	}

	xValues := make([]time.Time, len(report.Daily))
	yValues := make([]float64, len(report.Daily))
	for i, day := range report.Daily {
		xValues[i] = day.Date
		yValues[i] = day.Total
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("Заявки по дням — %s", report.Period),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02.01"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f₽", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Сумма заявок",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render trend chart: %w", err)
	}

	return buffer.Bytes(), nil
}
