package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/staff_bot/internal/model"
)

func TestDayOffHappyPath(t *testing.T) {
	ctx := context.Background()
	states := newTestStates(t)
	tables := newFakeTables()
	flow := NewDayOffFlow(states, tables)
	userID := int64(9)

	res := flow.Start(ctx, userID)
	require.True(t, res.Success)
	assert.Equal(t, model.StepDayOffDate, res.NextStep)

	date := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	res = flow.ProcessStep(ctx, userID, model.StepDayOffDate, date)
	require.True(t, res.Success)
	assert.Equal(t, model.StepDayOffReason, res.NextStep)

	res = flow.ProcessStep(ctx, userID, model.StepDayOffReason, "семейные обстоятельства")
	require.True(t, res.Success)
	assert.Equal(t, model.StepDayOffConfirm, res.NextStep)

	res = flow.ProcessStep(ctx, userID, model.StepDayOffConfirm, "да")
	require.True(t, res.Success)
	assert.Equal(t, model.StepIdle, res.NextStep)

	rows := tables.tableRows("dayoffs")
	require.Len(t, rows, 1)
	assert.Equal(t, "9", rows[0][1])
	assert.Equal(t, date, rows[0][2])
	assert.Equal(t, "семейные обстоятельства", rows[0][3])
}

func TestDayOffPastDateRejected(t *testing.T) {
	ctx := context.Background()
	states := newTestStates(t)
	flow := NewDayOffFlow(states, newFakeTables())
	userID := int64(9)

	flow.Start(ctx, userID)
	res := flow.ProcessStep(ctx, userID, model.StepDayOffDate, "2000-01-01")
	assert.False(t, res.Success)

	step, _ := states.GetState(ctx, userID)
	assert.Equal(t, model.StepDayOffDate, step)
}

func TestDayOffConfirmNoCancels(t *testing.T) {
	ctx := context.Background()
	states := newTestStates(t)
	tables := newFakeTables()
	flow := NewDayOffFlow(states, tables)
	userID := int64(9)

	flow.Start(ctx, userID)
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	flow.ProcessStep(ctx, userID, model.StepDayOffDate, date)
	flow.ProcessStep(ctx, userID, model.StepDayOffReason, "врач")

	res := flow.ProcessStep(ctx, userID, model.StepDayOffConfirm, "нет")
	assert.True(t, res.Success)
	assert.Empty(t, tables.tableRows("dayoffs"))

	step, _ := states.GetState(ctx, userID)
	assert.Equal(t, model.StepIdle, step)
}
