package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/user_states!A:D", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		io.WriteString(w, `{"range":"user_states!A1:D2","values":[["1","idle","{}","2025-03-10T12:00:00Z"],[2,"claiming-amount",null,"x"]]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")
	rows, err := c.GetRange(context.Background(), "user_states", "A:D")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "idle", "{}", "2025-03-10T12:00:00Z"}, rows[0])
	// числовые и пустые ячейки приводятся к строкам
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "", rows[1][2])
}

func TestGetRangeMissingTableIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Unable to parse range"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")
	rows, err := c.GetRange(context.Background(), "missing", "A:D")
	require.NoError(t, err, "missing table must read as empty, not as an error")
	assert.Empty(t, rows)
}

func TestGetRangeServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")
	_, err := c.GetRange(context.Background(), "user_states", "A:D")
	require.Error(t, err)
}

func TestAppendRow(t *testing.T) {
	var gotBody valueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/claims!A:G:append", r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")
	err := c.AppendRow(context.Background(), "claims", "A:G", []string{"id", "7", "meals"})
	require.NoError(t, err)

	require.Len(t, gotBody.Values, 1)
	assert.Equal(t, []any{"id", "7", "meals"}, gotBody.Values[0])
}

func TestUpdateRowTargetsSingleRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/user_states!A5:D5", r.URL.Path)
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")
	err := c.UpdateRow(context.Background(), "user_states", 5, "A:D", []string{"1", "idle", "{}", "t"})
	require.NoError(t, err)
}

func TestUpdateRowRejectsBadRange(t *testing.T) {
	c := NewClient("http://unused", "sheet-1", "secret")
	err := c.UpdateRow(context.Background(), "user_states", 0, "A:D", nil)
	require.Error(t, err)
	err = c.UpdateRow(context.Background(), "user_states", 5, "AD", nil)
	require.Error(t, err)
}

func TestEnsureTable(t *testing.T) {
	var batchCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			io.WriteString(w, `{"sheets":[{"properties":{"sheetId":3,"title":"user_states"}}]}`)
		case r.Method == http.MethodPost:
			batchCalls++
			io.WriteString(w, `{"replies":[{"addSheet":{"properties":{"sheetId":42}}}]}`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")

	created, err := c.EnsureTable(context.Background(), "user_states")
	require.NoError(t, err)
	assert.False(t, created, "existing sheet is not recreated")
	assert.Zero(t, batchCalls)

	created, err = c.EnsureTable(context.Background(), "claims")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, batchCalls)

	// после создания идентификатор листа закэширован
	created, err = c.EnsureTable(context.Background(), "claims")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, batchCalls)
}

func TestDeleteRow(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			io.WriteString(w, `{"sheets":[{"properties":{"sheetId":3,"title":"user_states"}}]}`)
		case r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			io.WriteString(w, `{}`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sheet-1", "secret")
	require.NoError(t, c.DeleteRow(context.Background(), "user_states", 5))

	requests := gotReq["requests"].([]any)
	require.Len(t, requests, 1)
	dim := requests[0].(map[string]any)["deleteDimension"].(map[string]any)["range"].(map[string]any)
	assert.Equal(t, float64(3), dim["sheetId"])
	assert.Equal(t, float64(4), dim["startIndex"], "row indexes are 1-based, dimension indexes 0-based")
	assert.Equal(t, float64(5), dim["endIndex"])
}
