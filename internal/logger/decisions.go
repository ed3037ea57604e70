package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// 决策文本与执行结果单独落盘，按 trace_id 串联。

var (
	decisionMu  sync.Mutex
	decisionLog *log.Logger
)

func SetDecisionWriter(w io.Writer) {
	decisionMu.Lock()
	defer decisionMu.Unlock()
	if w == nil {
		decisionLog = nil
		return
	}
	decisionLog = log.New(w, "", log.LstdFlags)
}

type dumpSection struct {
	Title string
	Body  string
}

func dump(kind, symbol, traceID string, sections []dumpSection) {
	decisionMu.Lock()
	l := decisionLog
	decisionMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[DECISION]")
	for _, tag := range []string{kind, symbol, traceID} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

// LogDecisionText 记录某个币种收到的原始决策文本。
func LogDecisionText(symbol, traceID, text string) {
	dump("input", symbol, traceID, []dumpSection{{Title: "TEXT", Body: text}})
}

// LogExecution 记录决策对应的执行结果 JSON，空内容直接忽略。
func LogExecution(symbol, traceID, payload string) {
	if strings.TrimSpace(payload) == "" {
		return
	}
	dump("result", symbol, traceID, []dumpSection{{Title: "RESULT", Body: payload}})
}
