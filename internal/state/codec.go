package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ivanoskov/staff_bot/internal/model"
)

// stateRange — фиксированные колонки зеркала:
// A user_id, B шаг, C temp_data в JSON, D last_updated в RFC3339.
const stateRange = "A:D"

// encodeRow кодирует состояние в строку листа.
func encodeRow(st *model.ConversationState) ([]string, error) {
	data := st.TempData
	if data == nil {
		data = model.TempData{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode temp data: %w", err)
	}
	return []string{
		strconv.FormatInt(st.UserID, 10),
		string(st.CurrentStep),
		string(raw),
		st.LastUpdated.UTC().Format(time.RFC3339),
	}, nil
}

// decodeRow разбирает строку листа в состояние. Любое испорченное
// поле делает строку непригодной целиком.
func decodeRow(row []string) (*model.ConversationState, error) {
	if len(row) < 4 {
		return nil, fmt.Errorf("expected 4 columns, got %d", len(row))
	}

	userID, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", row[0], err)
	}

	step, err := model.ParseStep(row[1])
	if err != nil {
		return nil, err
	}

	data := model.TempData{}
	if row[2] != "" {
		if err := json.Unmarshal([]byte(row[2]), &data); err != nil {
			return nil, fmt.Errorf("bad temp data for user %d: %w", userID, err)
		}
	}

	updated, err := time.Parse(time.RFC3339, row[3])
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", row[3], err)
	}

	return &model.ConversationState{
		UserID:      userID,
		CurrentStep: step,
		TempData:    data,
		LastUpdated: updated,
	}, nil
}
