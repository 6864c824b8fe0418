package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/staff_bot/internal/model"
)

func startClaim(t *testing.T) (*ClaimFlow, *fakeTables, *fakeBlobs, *contextStates) {
	t.Helper()
	states := newTestStates(t)
	tables := newFakeTables()
	blobs := newFakeBlobs()
	flow := NewClaimFlow(states, tables, blobs)
	return flow, tables, blobs, &contextStates{states: states}
}

// contextStates — небольшая обертка, чтобы не таскать ctx в каждом assert.
type contextStates struct {
	states interface {
		GetState(ctx context.Context, userID int64) (model.Step, model.TempData)
	}
}

func (c *contextStates) step(userID int64) model.Step {
	step, _ := c.states.GetState(context.Background(), userID)
	return step
}

func (c *contextStates) data(userID int64) model.TempData {
	_, data := c.states.GetState(context.Background(), userID)
	return data
}

func TestClaimHappyPathWithPhoto(t *testing.T) {
	ctx := context.Background()
	flow, tables, blobs, st := startClaim(t)
	userID := int64(7)

	res := flow.Start(ctx, userID)
	require.True(t, res.Success)
	assert.Equal(t, model.StepClaimCategory, res.NextStep)

	res = flow.ProcessStep(ctx, userID, model.StepClaimCategory, "meals")
	require.True(t, res.Success)

	res = flow.ProcessStep(ctx, userID, model.StepClaimAmount, "1250,50")
	require.True(t, res.Success)

	res = flow.ProcessStep(ctx, userID, model.StepClaimDescription, "обед с клиентом")
	require.True(t, res.Success)
	assert.Equal(t, model.StepClaimPhoto, res.NextStep)

	res = flow.ProcessPhoto(ctx, userID, []byte{0xFF, 0xD8})
	require.True(t, res.Success)
	assert.Equal(t, model.StepClaimConfirm, res.NextStep)
	assert.Len(t, blobs.uploads, 1)

	res = flow.ProcessStep(ctx, userID, model.StepClaimConfirm, "да")
	require.True(t, res.Success)
	assert.Equal(t, model.StepIdle, res.NextStep)

	rows := tables.tableRows("claims")
	require.Len(t, rows, 1)
	assert.Equal(t, "7", rows[0][1])
	assert.Equal(t, "meals", rows[0][2])
	assert.Equal(t, "1250.50", rows[0][3])
	assert.Equal(t, "обед с клиентом", rows[0][4])
	assert.Contains(t, rows[0][5], "https://blobs.example/7/")
	assert.Equal(t, model.StepIdle, st.step(userID))
}

func TestClaimSkipsDescriptionAndPhoto(t *testing.T) {
	ctx := context.Background()
	flow, tables, _, _ := startClaim(t)
	userID := int64(7)

	flow.Start(ctx, userID)
	flow.ProcessStep(ctx, userID, model.StepClaimCategory, "transport")
	flow.ProcessStep(ctx, userID, model.StepClaimAmount, "300")
	flow.ProcessStep(ctx, userID, model.StepClaimDescription, "-")

	res := flow.ProcessStep(ctx, userID, model.StepClaimPhoto, "-")
	require.True(t, res.Success)
	assert.Equal(t, model.StepClaimConfirm, res.NextStep)

	res = flow.ProcessStep(ctx, userID, model.StepClaimConfirm, "да")
	require.True(t, res.Success)

	rows := tables.tableRows("claims")
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0][4])
	assert.Empty(t, rows[0][5])
}

func TestClaimConfirmNoCancels(t *testing.T) {
	ctx := context.Background()
	flow, tables, _, st := startClaim(t)
	userID := int64(7)

	flow.Start(ctx, userID)
	flow.ProcessStep(ctx, userID, model.StepClaimCategory, "other")
	flow.ProcessStep(ctx, userID, model.StepClaimAmount, "99")
	flow.ProcessStep(ctx, userID, model.StepClaimDescription, "-")
	flow.ProcessStep(ctx, userID, model.StepClaimPhoto, "-")

	res := flow.ProcessStep(ctx, userID, model.StepClaimConfirm, "нет")
	assert.True(t, res.Success)

	assert.Empty(t, tables.tableRows("claims"))
	assert.Equal(t, model.StepIdle, st.step(userID))
}

func TestClaimPhotoOutsidePhotoStep(t *testing.T) {
	ctx := context.Background()
	flow, _, blobs, _ := startClaim(t)
	userID := int64(7)

	flow.Start(ctx, userID)
	res := flow.ProcessPhoto(ctx, userID, []byte{1})
	assert.False(t, res.Success)
	assert.Empty(t, blobs.uploads, "photo before the photo step is not uploaded")
}

func TestClaimPhotoUploadFailureRetries(t *testing.T) {
	ctx := context.Background()
	flow, _, blobs, st := startClaim(t)
	userID := int64(7)

	flow.Start(ctx, userID)
	flow.ProcessStep(ctx, userID, model.StepClaimCategory, "meals")
	flow.ProcessStep(ctx, userID, model.StepClaimAmount, "100")
	flow.ProcessStep(ctx, userID, model.StepClaimDescription, "-")

	blobs.uploadErr = fmt.Errorf("storage down")
	res := flow.ProcessPhoto(ctx, userID, []byte{1})
	assert.False(t, res.Success)
	assert.Equal(t, model.StepClaimPhoto, st.step(userID), "user stays on the photo step")

	blobs.uploadErr = nil
	res = flow.ProcessPhoto(ctx, userID, []byte{1})
	assert.True(t, res.Success)
}

func TestClaimAmountValidation(t *testing.T) {
	ctx := context.Background()
	flow, _, _, st := startClaim(t)
	userID := int64(7)

	flow.Start(ctx, userID)
	flow.ProcessStep(ctx, userID, model.StepClaimCategory, "meals")

	res := flow.ProcessStep(ctx, userID, model.StepClaimAmount, "минус сто")
	assert.False(t, res.Success)
	assert.Equal(t, model.StepClaimAmount, st.step(userID))
	assert.Equal(t, "meals", st.data(userID).String("category"), "accumulated data survives a failed step")
}
