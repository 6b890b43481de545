package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/pkg/httpcontext"
	reportUC "github.com/teamtrack/backend/usecase/report"
)

type ReportHandler struct {
	baseHandler
	uc *reportUC.UseCase
}

func NewReportHandler(uc *reportUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Per-assignee statistics for a named period
// @Tags reports
// @Router /api/v1/reports [get]
func (h *ReportHandler) Statistics(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}

	period := reportUC.Period(ctx.QueryArgs().Peek("period"))
	start, end, err := reportUC.PeriodWindow(period, time.Now())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Statistics(stdCtx, start, end)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"period": period,
		"start":  start,
		"end":    end,
		"stats":  stats,
	})
}
