package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/api/transport"
	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/pkg/httpcontext"
	taskUC "github.com/teamtrack/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.CreateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, taskUC.CreateRequest{
		AssigneeHandle: req.AssigneeHandle,
		Priority:       req.Priority,
		Text:           req.Text,
		Deadline:       req.Deadline,
		Comment:        req.Comment,
		Recurring:      req.Recurring,
		RecurPeriod:    req.RecurPeriod,
		MessageRef:     req.MessageRef,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get task with subtasks
// @Tags tasks
// @Router /api/v1/tasks/{number} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Get(stdCtx, number)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}

	status := domain.Status(ctx.QueryArgs().Peek("status"))
	assigneeID, _ := strconv.ParseInt(string(ctx.QueryArgs().Peek("assignee_id")), 10, 64)
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 0)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		tasks []domain.Task
		err   error
	)
	if assigneeID != 0 {
		tasks, err = h.uc.ListForUser(stdCtx, assigneeID, status, limit, offset)
	} else {
		tasks, err = h.uc.ListAll(stdCtx, status, limit, offset)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Change task status
// @Tags tasks
// @Router /api/v1/tasks/{number}/status [put]
func (h *TaskHandler) ChangeStatus(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	var req transport.ChangeStatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.ChangeStatus(stdCtx, number, domain.Status(req.Status), actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Edit task fields
// @Tags tasks
// @Router /api/v1/tasks/{number} [put]
func (h *TaskHandler) Edit(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	var req transport.EditTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Edit(stdCtx, number, taskUC.EditRequest{
		Text:        req.Text,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		Comment:     req.Comment,
		Recurring:   req.Recurring,
		RecurPeriod: req.RecurPeriod,
	}, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Comment on task
// @Tags tasks
// @Router /api/v1/tasks/{number}/comments [post]
func (h *TaskHandler) AddComment(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	var req transport.CommentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AddComment(stdCtx, number, req.Text, actor); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Add subtask
// @Tags tasks
// @Router /api/v1/tasks/{number}/subtasks [post]
func (h *TaskHandler) AddSubtask(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	var req transport.SubtaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.uc.AddSubtask(stdCtx, number, req.Text)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, sub)
}

// @Summary Toggle subtask done flag
// @Tags tasks
// @Router /api/v1/subtasks/{id}/toggle [post]
func (h *TaskHandler) ToggleSubtask(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}

	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "bad subtask id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.uc.ToggleSubtask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sub)
}

// @Summary Get task history
// @Tags tasks
// @Router /api/v1/tasks/{number}/history [get]
func (h *TaskHandler) History(ctx *fasthttp.RequestCtx) {
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.History(stdCtx, number)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{number} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	number, ok := h.taskNumber(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, number); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *TaskHandler) taskNumber(ctx *fasthttp.RequestCtx) (string, bool) {
	number, _ := ctx.UserValue("number").(string)
	if number == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task number", nil))
		return "", false
	}
	return number, true
}
