package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullName(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Иван Петров", "Иван Петров", true},
		{"  Alice   Tan  ", "Alice Tan", true},
		{"Анна Мария Кузнецова", "Анна Мария Кузнецова", true},
		{"A", "", false},
		{"Иван", "", false},
		{"И П", "", false},
	}
	for _, tt := range tests {
		got, verr := FullName(tt.input)
		if tt.ok {
			require.Nil(t, verr, "input %q", tt.input)
			assert.Equal(t, tt.want, got)
		} else {
			require.NotNil(t, verr, "input %q", tt.input)
		}
	}
}

func TestPhone(t *testing.T) {
	got, verr := Phone(" +7 (916) 123-45-67 ")
	require.Nil(t, verr)
	assert.Equal(t, "+79161234567", got)

	got, verr = Phone("79161234567")
	require.Nil(t, verr)
	assert.Equal(t, "+79161234567", got)

	_, verr = Phone("hello")
	require.NotNil(t, verr)
	assert.NotEmpty(t, verr.Suggestions)

	_, verr = Phone("123")
	require.NotNil(t, verr)
}

func TestRole(t *testing.T) {
	role, verr := Role(" Courier ")
	require.Nil(t, verr)
	assert.Equal(t, "courier", role.ID)

	_, verr = Role("astronaut")
	require.NotNil(t, verr)
	assert.Contains(t, verr.Suggestions, "manager")
}

func TestClaimCategory(t *testing.T) {
	cat, verr := ClaimCategory("meals")
	require.Nil(t, verr)
	assert.Equal(t, "meals", cat.ID)

	_, verr = ClaimCategory("entertainment")
	require.NotNil(t, verr)
	assert.Contains(t, verr.Suggestions, "other")
}

func TestAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1250.50", 1250.50, true},
		{"1250,50", 1250.50, true},
		{" 100 ", 100, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"12.345", 0, false},
		{"2000000", 0, false},
		{"сто рублей", 0, false},
		// экспоненциальная запись — не сумма из чека
		{"1e3", 0, false},
		{"1E3", 0, false},
		{"0x10", 0, false},
		{"Inf", 0, false},
		{"+100", 0, false},
	}
	for _, tt := range tests {
		got, verr := Amount(tt.input)
		if tt.ok {
			require.Nil(t, verr, "input %q", tt.input)
			assert.Equal(t, tt.want, got)
		} else {
			require.NotNil(t, verr, "input %q", tt.input)
		}
	}
}

func TestDescriptionSkip(t *testing.T) {
	got, verr := Description("-")
	require.Nil(t, verr)
	assert.Empty(t, got)

	got, verr = Description("такси до аэропорта")
	require.Nil(t, verr)
	assert.Equal(t, "такси до аэропорта", got)
}

func TestDayOffDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	got, verr := DayOffDate("2025-04-15", now)
	require.Nil(t, verr)
	assert.Equal(t, "2025-04-15", got)

	got, verr = DayOffDate("15.04.2025", now)
	require.Nil(t, verr)
	assert.Equal(t, "2025-04-15", got)

	// сегодня — допустимо
	_, verr = DayOffDate("2025-03-10", now)
	require.Nil(t, verr)

	_, verr = DayOffDate("2025-03-09", now)
	require.NotNil(t, verr)

	_, verr = DayOffDate("2026-03-20", now)
	require.NotNil(t, verr)

	_, verr = DayOffDate("послезавтра", now)
	require.NotNil(t, verr)
}

func TestYesNo(t *testing.T) {
	for _, in := range []string{"да", "Да", "yes", "ok"} {
		got, verr := YesNo(in)
		require.Nil(t, verr, "input %q", in)
		assert.True(t, got)
	}
	for _, in := range []string{"нет", "No"} {
		got, verr := YesNo(in)
		require.Nil(t, verr, "input %q", in)
		assert.False(t, got)
	}
	_, verr := YesNo("возможно")
	require.NotNil(t, verr)
}
