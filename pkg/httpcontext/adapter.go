// Package httpcontext bridges fasthttp request contexts into stdlib
// contexts carrying a deadline and request metadata.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/teamtrack/backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

type metaKey string

const (
	KeyRemoteAddr metaKey = "remote_addr"
	KeyUserAgent  metaKey = "user_agent"
)

// Adapter derives a per-request stdlib context bounded by a fixed timeout.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach builds the request-scoped context. The request ID is taken from the
// caller when present, minted otherwise, and echoed back on the response so
// clients can correlate.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	stdCtx = logger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(requestIDHeader, reqID)

	if addr := ctx.RemoteAddr(); addr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, addr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if ctx != nil {
		if id := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader))); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
