package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 两种实现共用同一组行为用例。
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("file", func(t *testing.T) {
		fn(t, NewFileStore(t.TempDir()))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func rec(decision string, status Status) Record {
	return Record{Symbol: "BTCUSDT", Decision: decision, Quantity: 0.001, Status: status}
}

func statuses(records []Record) []Status {
	out := make([]Status, 0, len(records))
	for _, r := range records {
		out = append(out, r.Status)
	}
	return out
}

func TestStoreLoadAbsent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		assert.Empty(t, s.Load(context.Background(), "BTC", 20))
		assert.NoError(t, s.CloseLastOpen(context.Background(), "BTC", 20))
		syms, err := s.ListSymbols(context.Background())
		require.NoError(t, err)
		assert.Empty(t, syms)
	})
}

func TestStoreAppendStampsAndOrders(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Append(ctx, "btc", rec("BUY", StatusOpen), 20)
		require.NoError(t, err)
		out, err := s.Append(ctx, "BTC", rec("HOLD", StatusHold), 20)
		require.NoError(t, err)

		require.Len(t, out, 2)
		assert.Equal(t, "BUY", out[0].Decision)
		assert.Equal(t, "HOLD", out[1].Decision)
		assert.NotEmpty(t, out[0].Timestamp)
		_, err = out[0].Time()
		assert.NoError(t, err)

		assert.Equal(t, out, s.Load(ctx, "BTC", 20))
		assert.Equal(t, out[1:], s.Load(ctx, "BTC", 1))
	})
}

func TestStoreRetentionFIFO(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const n = 5
		for round := 0; round < 3; round++ {
			for i := 0; i < n+2; i++ {
				r := rec("HOLD", StatusHold)
				r.Quantity = float64(round*100 + i)
				out, err := s.Append(ctx, "ETH", r, n)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(out), n)
			}
			got := s.Load(ctx, "ETH", 100)
			require.Len(t, got, n)
			for i, r := range got {
				assert.Equal(t, float64(round*100+2+i), r.Quantity)
			}
		}
	})
}

func TestStoreCloseLastOpenFlipsNewestOnly(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, st := range []Status{StatusOpen, StatusClosed, StatusOpen} {
			_, err := s.Append(ctx, "SOL", rec("BUY", st), 20)
			require.NoError(t, err)
		}
		require.NoError(t, s.CloseLastOpen(ctx, "SOL", 20))
		assert.Equal(t, []Status{StatusOpen, StatusClosed, StatusClosed}, statuses(s.Load(ctx, "SOL", 20)))

		require.NoError(t, s.CloseLastOpen(ctx, "SOL", 20))
		assert.Equal(t, []Status{StatusClosed, StatusClosed, StatusClosed}, statuses(s.Load(ctx, "SOL", 20)))

		require.NoError(t, s.CloseLastOpen(ctx, "SOL", 20))
		assert.Len(t, s.Load(ctx, "SOL", 20), 3)
	})
}

func TestStoreListSymbolsSorted(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, sym := range []string{"sol", "BTC", "eth"} {
			_, err := s.Append(ctx, sym, rec("HOLD", StatusHold), 20)
			require.NoError(t, err)
		}
		syms, err := s.ListSymbols(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"BTC", "ETH", "SOL"}, syms)
	})
}

func TestStoreConcurrentAppends(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Append(ctx, "DOGE", rec("HOLD", StatusHold), 50)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Len(t, s.Load(ctx, "DOGE", 50), 10)
	})
}

func TestFileStoreCorruptIsEmpty(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	dir := filepath.Join(root, "trades", "BTC")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for _, body := range []string{"{not json", `{"status":"open"}`, `[1, 2]`, ""} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, logFileName), []byte(body), 0o644))
			assert.Empty(t, s.Load(context.Background(), "BTC", 20))

			out, err := s.Append(context.Background(), "BTC", rec("HOLD", StatusHold), 20)
			require.NoError(t, err)
			assert.Len(t, out, 1)
		})
	}
}

func TestFileStoreFormat(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	_, err := s.Append(context.Background(), "btc", Record{Symbol: "BTCUSDT", Decision: "BUY", Quantity: 0.001, TakeProfit: "1.5%", Status: StatusOpen}, 20)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "trades", "BTC", logFileName))
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "[\n  {\n    \"timestamp\": ")
	assert.Contains(t, body, `"take_profit": "1.5%"`)
	assert.Contains(t, body, `"stop_loss": ""`)
	assert.Contains(t, body, `"error": null`)

	leftovers, err := filepath.Glob(filepath.Join(root, "trades", "BTC", ".*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStoreReadsLegacyTimestamps(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "trades", "ETH")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	legacy := `[{"timestamp": "2024-05-01T12:00:00.123456", "symbol": "ETHUSDT", "decision": "BUY", "quantity": 0.01, "take_profit": "", "stop_loss": "", "status": "open", "error": null}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, logFileName), []byte(legacy), 0o644))

	got := NewFileStore(root).Load(context.Background(), "eth", 20)
	require.Len(t, got, 1)
	ts, err := got[0].Time()
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())
	assert.Nil(t, got[0].Error)
}

func TestSQLiteStoreAudit(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.RecordExecution(ctx, AuditEntry{
		TraceID: "t-1", Symbol: "BTC", Side: "BUY", Executed: true,
		Payload: []byte(`{"executed":true}`),
	}))
	rows, err := s.ListAudits(ctx, "BTC", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t-1", rows[0].TraceID)
	assert.JSONEq(t, `{"executed":true}`, string(rows[0].Payload))
}

func TestLastOpen(t *testing.T) {
	_, ok := LastOpen(nil)
	assert.False(t, ok)

	records := []Record{rec("BUY", StatusOpen), rec("SELL", StatusClosed)}
	records[0].Quantity = 2
	got, ok := LastOpen(records)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Quantity)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "No recent trades recorded.", Snippet(nil, 20))

	records := []Record{
		{Timestamp: "t1", Decision: "BUY", TakeProfit: "1.5%", StopLoss: "0.8%", Quantity: 0.001, Status: StatusOpen},
		{Timestamp: "t2", Decision: "SELL", Quantity: 0.001, Status: StatusClosed},
	}
	want := "Recent Trades (last 1):\n- t2 | SELL | TP:  | SL:  | Q: 0.001 | closed"
	assert.Equal(t, want, Snippet(records, 1))
	assert.Contains(t, Snippet(records, 20), "Recent Trades (last 2):\n- t1 | BUY | TP: 1.5% | SL: 0.8% | Q: 0.001 | open")
}

func TestSymbolLocksSerialize(t *testing.T) {
	locks := NewSymbolLocks()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("BTC")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestFileStoreRejectsUnsafeKeys(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	ctx := context.Background()
	for _, key := range []string{"..", ".", "../ETH", "BTC/ETH"} {
		t.Run(key, func(t *testing.T) {
			_, err := s.Append(ctx, key, rec("BUY", StatusOpen), 20)
			assert.Error(t, err)
			assert.Error(t, s.CloseLastOpen(ctx, key, 20))
			assert.Empty(t, s.Load(ctx, key, 20))
		})
	}
	_, err := os.Stat(filepath.Join(root, logFileName))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "trades", logFileName))
	assert.True(t, os.IsNotExist(err))
	syms, err := s.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestSymbolLocksEvictIdleKeys(t *testing.T) {
	locks := NewSymbolLocks()
	for i := 0; i < 100; i++ {
		unlock := locks.Lock(fmt.Sprintf("SYM%d", i))
		unlock()
	}
	assert.Equal(t, 0, locks.size())

	unlock := locks.Lock("BTC")
	assert.Equal(t, 1, locks.size())
	done := make(chan struct{})
	go func() {
		defer close(done)
		u := locks.Lock("BTC")
		u()
	}()
	unlock()
	unlock()
	<-done
	assert.Equal(t, 0, locks.size())
}
