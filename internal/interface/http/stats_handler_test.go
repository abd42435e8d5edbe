package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-journal/internal/application/analytics"
)

func TestStatsHandler_Summary(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/summary", token, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Summary analytics.Summary `json:"summary"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Summary.Trades != 3 || resp.Summary.Wins != 2 || resp.Summary.Losses != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Summary.GrossPnl != 13 {
		t.Errorf("expected gross pnl 13, got %v", resp.Summary.GrossPnl)
	}
}

func TestStatsHandler_GroupEndpoints(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	paths := []string{"/api/stats/ea", "/api/stats/symbol", "/api/stats/timeframe", "/api/stats/close-reason"}
	for _, path := range paths {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", path, token, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
			continue
		}
		var resp struct {
			Rows []analytics.AggregateRow `json:"rows"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		total := 0
		for _, row := range resp.Rows {
			total += row.Trades
		}
		if total != 3 {
			t.Errorf("%s: rows should cover all 3 trades, got %d", path, total)
		}
	}
}

func TestStatsHandler_EAFiltered(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/ea?ea=Alpha", token, nil))

	var resp struct {
		Rows []analytics.AggregateRow `json:"rows"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Rows) != 1 || resp.Rows[0].Label != "Alpha" || resp.Rows[0].Trades != 2 {
		t.Errorf("unexpected rows: %+v", resp.Rows)
	}
}

func TestStatsHandler_Bins(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	t.Run("DayOfWeek", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/day-of-week", token, nil))
		var resp struct {
			Bins []analytics.Bin `json:"bins"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp.Bins) != 7 {
			t.Fatalf("expected 7 bins, got %d", len(resp.Bins))
		}
		if resp.Bins[0].Label != "Monday" {
			t.Errorf("expected Monday first, got %s", resp.Bins[0].Label)
		}
	})

	t.Run("HourOfDay", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/hour-of-day", token, nil))
		var resp struct {
			Bins []analytics.Bin `json:"bins"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp.Bins) != 24 {
			t.Fatalf("expected 24 bins, got %d", len(resp.Bins))
		}
	})
}

func TestStatsHandler_Confluences(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	t.Run("Default", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/confluences", token, nil))
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("UnknownDim", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/confluences?dim=bogus", token, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("Sniper", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/sniper", token, nil))
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestStatsHandler_Heatmap(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "user@example.com", "password123")
	seedTrades(t, server, userIDFor(t, server, "user@example.com"))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, authedRequest("GET", "/api/stats/heatmap", token, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Grid analytics.HeatGrid `json:"grid"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Grid.EAs) != 2 || len(resp.Grid.Timeframes) != 2 {
		t.Errorf("unexpected grid axes: %+v", resp.Grid)
	}
	if len(resp.Grid.Cells) != 2 {
		t.Errorf("expected 2 occupied cells, got %d", len(resp.Grid.Cells))
	}
}
