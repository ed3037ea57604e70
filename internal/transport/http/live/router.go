package livehttp

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"autotrader/internal/decision"
	"autotrader/internal/executor"
	"autotrader/internal/ledger"
	"autotrader/internal/pkg/symbol"
)

// LedgerReader 是路由需要的只读台账能力。
type LedgerReader interface {
	Load(ctx context.Context, symbol string, limit int) []ledger.Record
	ListSymbols(ctx context.Context) ([]string, error)
}

type Executor interface {
	Execute(ctx context.Context, sym, text string) executor.Result
	ExecuteDecision(ctx context.Context, sym string, d decision.Decision) executor.Result
}

// Info 是 /api/info 返回的运行概要。
type Info struct {
	Name        string   `json:"name"`
	Mode        string   `json:"mode"`
	QuoteSuffix string   `json:"quote_suffix"`
	Retention   int      `json:"retention"`
	Symbols     []string `json:"symbols"`
}

type Router struct {
	store LedgerReader
	exec  Executor
	info  Info
}

func NewRouter(store LedgerReader, exec Executor, info Info) *Router {
	if info.Retention <= 0 {
		info.Retention = ledger.DefaultRetention
	}
	if info.Symbols == nil {
		info.Symbols = []string{}
	}
	return &Router{store: store, exec: exec, info: info}
}

// Register 将路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	group.GET("/info", r.handleInfo)
	group.GET("/trades", r.handleSymbols)
	group.GET("/trades/:symbol", r.handleTrades)
	group.GET("/trades/:symbol/snippet", r.handleSnippet)
	group.GET("/trades/:symbol/chart", r.handleChart)
	if r.exec != nil {
		group.POST("/decisions/:symbol", r.handleDecision)
	}
}

func (r *Router) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, r.info)
}

func (r *Router) handleSymbols(c *gin.Context) {
	syms, err := r.store.ListSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if syms == nil {
		syms = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"symbols": syms})
}

func (r *Router) handleTrades(c *gin.Context) {
	limit, ok := r.parseLimit(c)
	if !ok {
		return
	}
	sym := symbol.Clean(c.Param("symbol"))
	records := r.store.Load(c.Request.Context(), sym, limit)
	if records == nil {
		records = []ledger.Record{}
	}
	_, long := ledger.LastOpen(records)
	c.JSON(http.StatusOK, gin.H{"symbol": sym, "open": long, "records": records})
}

func (r *Router) handleSnippet(c *gin.Context) {
	limit, ok := r.parseLimit(c)
	if !ok {
		return
	}
	records := r.store.Load(c.Request.Context(), symbol.Clean(c.Param("symbol")), limit)
	c.String(http.StatusOK, ledger.Snippet(records, limit))
}

func (r *Router) handleChart(c *gin.Context) {
	sym := symbol.Clean(c.Param("symbol"))
	records := r.store.Load(c.Request.Context(), sym, r.info.Retention)
	var buf bytes.Buffer
	if err := renderChart(&buf, sym, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type decisionRequest struct {
	Text string `json:"text"`
	// Action 可选，覆盖文本中解析出的动作。
	Action string `json:"action"`
}

func (r *Router) handleDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Action) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text or action is required"})
		return
	}
	sym := c.Param("symbol")
	if err := symbol.Validate(sym); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var res executor.Result
	if strings.TrimSpace(req.Action) != "" {
		d := decision.Parse(req.Text)
		d.Action = decision.NormalizeAction(req.Action)
		res = r.exec.ExecuteDecision(c.Request.Context(), sym, d)
	} else {
		res = r.exec.Execute(c.Request.Context(), sym, req.Text)
	}
	c.JSON(http.StatusOK, res)
}

// parseLimit 读取 ?limit=，缺省为保留条数；非法值直接返回 400。
func (r *Router) parseLimit(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return r.info.Retention, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return n, true
}
