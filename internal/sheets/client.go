package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Client — клиент Sheets REST API поверх одной электронной таблицы.
// Все запросы идут через ограничитель частоты: квота сервиса
// считается на минуты, и фоновая синхронизация легко ее выедает.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	baseURL       string
	spreadsheetID string
	token         string

	mu       sync.Mutex
	sheetIDs map[string]int64 // имя листа -> числовой sheetId
}

// NewClient создает клиент табличного сервиса.
func NewClient(baseURL, spreadsheetID, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:       rate.NewLimiter(rate.Limit(1), 3),
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		token:         token,
		sheetIDs:      make(map[string]int64),
	}
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

// EnsureTable создает лист с указанным именем, если его еще нет.
func (c *Client) EnsureTable(ctx context.Context, name string) (bool, error) {
	if _, ok, err := c.sheetID(ctx, name); err != nil {
		return false, err
	} else if ok {
		return false, nil
	}

	req := map[string]any{
		"requests": []any{
			map[string]any{
				"addSheet": map[string]any{
					"properties": map[string]any{"title": name},
				},
			},
		},
	}
	var resp struct {
		Replies []struct {
			AddSheet struct {
				Properties struct {
					SheetID int64 `json:"sheetId"`
				} `json:"properties"`
			} `json:"addSheet"`
		} `json:"replies"`
	}
	path := fmt.Sprintf("/v4/spreadsheets/%s:batchUpdate", c.spreadsheetID)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return false, fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	c.mu.Lock()
	if len(resp.Replies) > 0 {
		c.sheetIDs[name] = resp.Replies[0].AddSheet.Properties.SheetID
	}
	c.mu.Unlock()
	return true, nil
}

// GetRange возвращает значения диапазона listName!cellRange.
// Отсутствующий лист сервис отдает как клиентскую ошибку —
// для вызывающего это просто пустой результат.
func (c *Client) GetRange(ctx context.Context, table, cellRange string) ([][]string, error) {
	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s",
		c.spreadsheetID, url.PathEscape(table+"!"+cellRange))

	var vr valueRange
	err := c.do(ctx, http.MethodGet, path, nil, &vr)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusBadRequest || se.code == http.StatusNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get range %s!%s: %w", table, cellRange, err)
	}

	rows := make([][]string, 0, len(vr.Values))
	for _, raw := range vr.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			if cell == nil {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow добавляет строку в конец диапазона.
func (c *Client) AppendRow(ctx context.Context, table, cellRange string, row []string) error {
	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		c.spreadsheetID, url.PathEscape(table+"!"+cellRange))

	body := valueRange{Values: [][]any{toAnyRow(row)}}
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to append row to %s: %w", table, err)
	}
	return nil
}

// UpdateRow перезаписывает строку rowIndex в пределах колонок диапазона.
func (c *Client) UpdateRow(ctx context.Context, table string, rowIndex int, cellRange string, row []string) error {
	rowRange, err := rangeForRow(cellRange, rowIndex)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.spreadsheetID, url.PathEscape(table+"!"+rowRange))

	body := valueRange{Values: [][]any{toAnyRow(row)}}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to update row %d in %s: %w", rowIndex, table, err)
	}
	return nil
}

// DeleteRow удаляет строку rowIndex листа целиком.
func (c *Client) DeleteRow(ctx context.Context, table string, rowIndex int) error {
	id, ok, err := c.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("sheet %q not found", table)
	}

	req := map[string]any{
		"requests": []any{
			map[string]any{
				"deleteDimension": map[string]any{
					"range": map[string]any{
						"sheetId":    id,
						"dimension":  "ROWS",
						"startIndex": rowIndex - 1,
						"endIndex":   rowIndex,
					},
				},
			},
		},
	}
	path := fmt.Sprintf("/v4/spreadsheets/%s:batchUpdate", c.spreadsheetID)
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to delete row %d from %s: %w", rowIndex, table, err)
	}
	return nil
}

// sheetID возвращает числовой идентификатор листа по имени,
// подтягивая метаданные таблицы при промахе кэша.
func (c *Client) sheetID(ctx context.Context, name string) (int64, bool, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[name]
	c.mu.Unlock()
	if ok {
		return id, true, nil
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	path := fmt.Sprintf("/v4/spreadsheets/%s?fields=sheets.properties", c.spreadsheetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &meta); err != nil {
		return 0, false, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	for _, sh := range meta.Sheets {
		c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetID
	}
	id, ok = c.sheetIDs[name]
	c.mu.Unlock()
	return id, ok, nil
}

// do выполняет запрос к API с учетом лимита частоты.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{code: resp.StatusCode, body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("sheets api returned status %d: %s", e.code, e.body)
}

// rangeForRow превращает диапазон колонок "A:D" в диапазон
// одной строки, например "A5:D5".
func rangeForRow(cellRange string, rowIndex int) (string, error) {
	parts := strings.SplitN(cellRange, ":", 2)
	if len(parts) != 2 || rowIndex < 1 {
		return "", fmt.Errorf("invalid range %q for row %d", cellRange, rowIndex)
	}
	return fmt.Sprintf("%s%d:%s%d", parts[0], rowIndex, parts[1], rowIndex), nil
}

func toAnyRow(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
