package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/allmight/taskapp/internal/middleware"
	"github.com/allmight/taskapp/internal/model"
	"github.com/allmight/taskapp/internal/service"
)

// TaskHandler handles task endpoints. All of them require authentication
// and operate only on the calling user's tasks.
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents the task creation request body
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed,omitempty"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Owner       string `json:"owner"`
	CreatedOn   string `json:"created_on"`
	UpdatedOn   string `json:"updated_on"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Description: task.Description,
		Completed:   task.Completed,
		Owner:       task.Owner,
		CreatedOn:   task.CreatedOn.Format(time.RFC3339),
		UpdatedOn:   task.UpdatedOn.Format(time.RFC3339),
	}
}

func taskIDFromPath(r *http.Request) string {
	id := r.PathValue("id")
	if !strings.HasPrefix(id, "task:") {
		id = "task:" + id
	}
	return id
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	task, err := h.taskService.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusCreated, toTaskResponse(task))
}

// List handles GET /tasks with optional completed, sortedBy, limit and
// skip query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	query := r.URL.Query()
	tasks, err := h.taskService.List(r.Context(), user.ID, service.ListQuery{
		Completed: query.Get("completed"),
		SortedBy:  query.Get("sortedBy"),
		Limit:     query.Get("limit"),
		Skip:      query.Get("skip"),
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, toTaskResponse(task))
	}
	WriteJSON(w, http.StatusOK, responses)
}

// Get handles GET /task/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	task, err := h.taskService.Get(r.Context(), taskIDFromPath(r), user.ID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

// Update handles PATCH /task/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	updates, err := DecodeRawFields(r)
	if err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	task, err := h.taskService.Update(r.Context(), taskIDFromPath(r), user.ID, updates)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /task/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	task, err := h.taskService.Delete(r.Context(), taskIDFromPath(r), user.ID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, toTaskResponse(task))
}
