package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/service"
)

// TaskHandler handles task requests.
type TaskHandler struct {
	tasks  *service.TaskService
	logger zerolog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks *service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With().Str("handler", "task").Logger(),
	}
}

// RegisterRoutes registers task routes on an authenticated router.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createTaskRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Deadline     time.Time `json:"deadline"`
	AssignedToID string    `json:"assigned_to_id"`
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), principal, service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

type listTasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int64          `json:"total"`
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	input := service.ListTasksInput{}
	input.Limit, input.Offset = paginationParams(r)

	if v := r.URL.Query().Get("status"); v != "" {
		status, err := domain.ParseTaskStatus(v)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		input.Status = status
	}

	out, err := h.tasks.List(r.Context(), principal, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listTasksResponse{
		Tasks: out.Tasks,
		Total: out.TotalCount,
	})
}

func (h *TaskHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	task, err := h.tasks.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// updateTaskRequest distinguishes absent fields from zero values: only
// fields present in the JSON body are applied.
type updateTaskRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	AssignedToID *string    `json:"assigned_to_id,omitempty"`
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	input := service.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		AssignedToID: req.AssignedToID,
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		input.Status = &status
	}

	task, err := h.tasks.Update(r.Context(), principal, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	if err := h.tasks.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
