package livehttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrader/internal/decision"
	"autotrader/internal/executor"
	"autotrader/internal/ledger"
)

type stubExecutor struct {
	lastSymbol string
	lastText   string
	lastAction decision.Action
}

func (s *stubExecutor) Execute(_ context.Context, sym, text string) executor.Result {
	s.lastSymbol, s.lastText = sym, text
	return executor.Result{Symbol: sym, Side: string(decision.ParseAction(text)), Status: ledger.StatusHold}
}

func (s *stubExecutor) ExecuteDecision(_ context.Context, sym string, d decision.Decision) executor.Result {
	s.lastSymbol, s.lastAction = sym, d.Action
	return executor.Result{Symbol: sym, Side: string(d.Action)}
}

func newTestServer(t *testing.T) (*Server, ledger.Store, *stubExecutor) {
	t.Helper()
	store := ledger.NewFileStore(t.TempDir())
	exec := &stubExecutor{}
	srv, err := NewServer(ServerConfig{
		Store:    store,
		Executor: exec,
		Info:     Info{Name: "autotrader", Mode: "paper", QuoteSuffix: "USDT", Retention: 20, Symbols: []string{"BTC"}},
	})
	require.NoError(t, err)
	return srv, store, exec
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, store ledger.Store) {
	t.Helper()
	ctx := context.Background()
	_, err := store.Append(ctx, "BTC", ledger.Record{Symbol: "BTCUSDT", Decision: "BUY", Quantity: 0.1, Status: ledger.StatusClosed}, 20)
	require.NoError(t, err)
	_, err = store.Append(ctx, "BTC", ledger.Record{Symbol: "BTCUSDT", Decision: "BUY", Quantity: 0.2, TakeProfit: "5%", Status: ledger.StatusOpen}, 20)
	require.NoError(t, err)
}

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthAndInfo(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, srv, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "paper", info.Mode)
	assert.Equal(t, []string{"BTC"}, info.Symbols)
}

func TestTradesRoutes(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seed(t, store)

	t.Run("symbols", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/trades", "")
		assert.JSONEq(t, `{"symbols":["BTC"]}`, w.Body.String())
	})

	t.Run("records", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/trades/btc?limit=1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Symbol  string          `json:"symbol"`
			Open    bool            `json:"open"`
			Records []ledger.Record `json:"records"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "BTC", body.Symbol)
		assert.True(t, body.Open)
		require.Len(t, body.Records, 1)
		assert.Equal(t, 0.2, body.Records[0].Quantity)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/trades/BTC?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown symbol is empty", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/trades/DOGE", "")
		assert.Contains(t, w.Body.String(), `"records":[]`)
	})

	t.Run("snippet", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/trades/BTC/snippet", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Recent Trades (last 2):")
		assert.Contains(t, w.Body.String(), "TP: 5%")
	})

	t.Run("chart", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/trades/BTC/chart", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "echarts")
		assert.True(t, strings.HasSuffix(strings.TrimSpace(w.Body.String()), "</html>"))
	})
}

func TestSubmitDecision(t *testing.T) {
	srv, _, exec := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/decisions/eth", `{"text":"FINAL TRANSACTION PROPOSAL: **BUY**"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "eth", exec.lastSymbol)
	assert.Contains(t, w.Body.String(), `"side":"BUY"`)

	w = do(t, srv, http.MethodPost, "/api/decisions/eth", `{"action":"close_long","text":"TP 5% SL 2%"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, decision.ActionSell, exec.lastAction)

	w = do(t, srv, http.MethodPost, "/api/decisions/eth", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/decisions/eth", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/decisions/c:btc", `{"text":"FINAL TRANSACTION PROPOSAL: **BUY**"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid symbol")
	assert.Equal(t, "eth", exec.lastSymbol)
}

func TestChartRenderFailure(t *testing.T) {
	srv, _, _ := newTestServer(t)
	orig := renderChart
	renderChart = func(w io.Writer, sym string, records []ledger.Record) error {
		_, _ = io.WriteString(w, "<html><partial")
		return errors.New("render boom")
	}
	t.Cleanup(func() { renderChart = orig })

	w := do(t, srv, http.MethodGet, "/api/trades/BTC/chart", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "<html>")
	assert.Contains(t, w.Body.String(), "render boom")
}
