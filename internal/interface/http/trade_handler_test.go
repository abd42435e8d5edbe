package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trade-journal/internal/domain/journal"
)

func userIDFor(t *testing.T, server *Server, email string) string {
	t.Helper()
	u, err := server.Store().FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("user lookup failed: %v", err)
	}
	return u.ID
}

func pnl(v float64) *float64 { return &v }

func seedTrades(t *testing.T, server *Server, userID string) {
	t.Helper()
	records := []journal.TradeRecord{
		{ID: 1, Symbol: "EURUSD", Timeframe: "M15", EA: "Alpha", Side: journal.SideBuy,
			OpenTime: "2024-01-01T09:00:00Z", CloseTime: "2024-01-01T10:00:00Z", GrossPnl: pnl(10)},
		{ID: 2, Symbol: "EURUSD", Timeframe: "M15", EA: "Alpha", Side: journal.SideSell,
			OpenTime: "2024-01-02T09:00:00Z", CloseTime: "2024-01-02T10:00:00Z", GrossPnl: pnl(-4)},
		{ID: 3, Symbol: "XAUUSD", Timeframe: "H1", EA: "Beta", Side: journal.SideBuy,
			OpenTime: "2024-01-03T09:00:00Z", GrossPnl: pnl(7)},
	}
	if _, err := server.Store().BulkInsert(context.Background(), userID, records); err != nil {
		t.Fatalf("seed trades failed: %v", err)
	}
}

func TestTradeHandler_ListAndFilter(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	t.Run("ListAll", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/trades", token, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d. body: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Trades []journal.TradeRecord `json:"trades"`
			Count  int                   `json:"count"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Count != 3 {
			t.Errorf("expected 3 trades, got %d", resp.Count)
		}
		if len(resp.Trades) > 0 && resp.Trades[0].ID != 3 {
			t.Errorf("expected newest trade first, got id %d", resp.Trades[0].ID)
		}
	})

	t.Run("FilterBySymbol", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/trades?symbol=XAUUSD", token, nil))

		var resp struct {
			Count int `json:"count"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Count != 1 {
			t.Errorf("expected 1 trade, got %d", resp.Count)
		}
	})
}

func TestTradeHandler_CreateAndDelete(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")

	body, _ := json.Marshal(journal.TradeRecord{Symbol: "GBPUSD", OpenTime: "2024-02-01T08:00:00Z"})
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("POST", "/api/trades", token, body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. body: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("DELETE", "/api/trades/1", token, nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("DELETE", "/api/trades/999", token, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing trade, got %d", w.Code)
	}
}

func TestTradeHandler_ImportCSV(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")

	csvBody := strings.Join([]string{
		"id,symbol,timeframe,open_time,close_time,gross_pnl,ea",
		"1,EURUSD,M15,2024-01-01T09:00:00Z,2024-01-01T10:00:00Z,12.5,Alpha",
		"2,XAUUSD,H1,2024-01-02T09:00:00Z,,,-",
		",GBPUSD,M5,2024-01-03T09:00:00Z,,,",
	}, "\n")

	req, _ := http.NewRequest("POST", "/api/trades/import", bytes.NewBufferString(csvBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/csv")

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result struct {
			Inserted int `json:"inserted"`
			Skipped  int `json:"skipped"`
		} `json:"result"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Result.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", resp.Result.Inserted)
	}
	if resp.Result.Skipped != 1 {
		t.Errorf("expected 1 skipped (missing id), got %d", resp.Result.Skipped)
	}
}

func TestTradeHandler_ExportCSV(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("GET", "/api/trades/export", token, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 4 { // header + 3 trades
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,symbol,timeframe") {
		t.Errorf("unexpected header: %s", lines[0])
	}
}
