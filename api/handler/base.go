package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/api/transport"
	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/internal/middleware"
	"github.com/teamtrack/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	if status == http.StatusNoContent {
		ctx.SetStatusCode(status)
		return
	}
	h.respondJSON(ctx, status, transport.NewSuccess(data))
}

// respondError maps domain error codes onto HTTP statuses. Guard violations
// ride 409 so callers can tell "try again later" from "you asked wrong".
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		status := http.StatusInternalServerError
		switch dErr.Code {
		case domain.ErrCodeNotFound:
			status = http.StatusNotFound
		case domain.ErrCodeInvalid:
			status = http.StatusBadRequest
		case domain.ErrCodeGuard, domain.ErrCodeConflict:
			status = http.StatusConflict
		}
		h.respondJSON(ctx, status, transport.NewError(string(dErr.Code), dErr.Error(), nil))
		return
	}

	h.logger.Error("unhandled error", zap.Error(err))
	h.respondJSON(ctx, http.StatusInternalServerError,
		transport.NewError(string(domain.ErrCodeInternal), "internal error", nil))
}

// actor reconstructs the acting identity from the middleware headers.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	raw := string(ctx.Request.Header.Peek(middleware.HeaderActorID))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		h.respondJSON(ctx, http.StatusUnauthorized,
			transport.NewError("UNAUTHORIZED", "missing actor identity", nil))
		return domain.Actor{}, false
	}
	return domain.Actor{
		ID:     id,
		Handle: string(ctx.Request.Header.Peek(middleware.HeaderActorHandle)),
	}, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
