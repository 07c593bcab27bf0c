package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Frontier/internal/cloudcache"
	"github.com/MikeSquared-Agency/Frontier/internal/config"
	"github.com/MikeSquared-Agency/Frontier/internal/decision"
	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
	"github.com/MikeSquared-Agency/Frontier/internal/hermes"
	"github.com/MikeSquared-Agency/Frontier/internal/store"
)

// Registrar starts tracking an upstream optimization run.
type Registrar interface {
	Register(ctx context.Context, upstreamID, name string, industry frontier.Industry) (*store.Task, error)
}

type TasksHandler struct {
	store    store.Store
	hermes   hermes.Client
	reg      Registrar
	clouds   *cloudcache.Cache
	defaults config.CloudConfig
	logger   *slog.Logger
}

func NewTasksHandler(s store.Store, h hermes.Client, reg Registrar, clouds *cloudcache.Cache, defaults config.CloudConfig, logger *slog.Logger) *TasksHandler {
	return &TasksHandler{store: s, hermes: h, reg: reg, clouds: clouds, defaults: defaults, logger: logger}
}

type CreateTaskRequest struct {
	UpstreamID string `json:"upstream_id"`
	Name       string `json:"name,omitempty"`
	Industry   string `json:"industry,omitempty"`
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.UpstreamID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upstream_id required"})
		return
	}
	industry := frontier.IndustryLight
	if req.Industry != "" {
		parsed, err := frontier.ParseIndustry(req.Industry)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		industry = parsed
	}

	task, err := h.reg.Register(r.Context(), req.UpstreamID, req.Name, industry)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		Industry: q.Get("industry"),
		Limit:    queryInt(q.Get("limit")),
		Offset:   queryInt(q.Get("offset")),
	}
	if s := q.Get("status"); s != "" {
		status := store.TaskStatus(s)
		filter.Status = &status
	}

	tasks, err := h.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if tasks == nil {
		tasks = []*store.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	if err := h.store.DeleteTask(r.Context(), task.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.hermes != nil {
		if err := h.hermes.Publish(hermes.SubjectTaskDeleted(task.ID.String()), hermes.TaskDeletedEvent{TaskID: task.ID.String()}); err != nil {
			h.logger.Warn("failed to publish task deleted", "task_id", task.ID, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TasksHandler) Events(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	events, err := h.store.GetTaskEvents(r.Context(), task.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if events == nil {
		events = []*store.TaskEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *TasksHandler) Solutions(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	solutions, err := h.store.GetSolutions(r.Context(), task.ID, queryInt(r.URL.Query().Get("limit")))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, solutions)
}

// Solution returns one stored solution. A solution id from another task is
// not found.
func (h *TasksHandler) Solution(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	solution, err := h.store.GetSolution(r.Context(), task.ID, chi.URLParam(r, "solutionID"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if solution == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "solution not found"})
		return
	}
	writeJSON(w, http.StatusOK, solution)
}

// Cloud returns the cached synthetic cloud around a completed task's
// frontier. X-Cache reports hit or miss.
func (h *TasksHandler) Cloud(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	if task.Status != store.StatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task has no frontier yet"})
		return
	}

	q := r.URL.Query()
	var size int
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid size"})
			return
		}
		size = n
	}
	var seed uint64
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid seed"})
			return
		}
		seed = n
	}
	params, err := resolveCloudParams(h.defaults, q.Get("shape"), q.Has("size"), size, q.Has("seed"), seed)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	front, err := h.store.GetSolutions(r.Context(), task.ID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	key := cloudcache.NewKey(front, task.Industry.Directions(), params.size, params.seed, params.shape)
	cloud, hit, err := h.clouds.Get(key, front)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
		if h.hermes != nil {
			err := h.hermes.Publish(hermes.SubjectCloudGenerated(task.ID.String()), hermes.CloudGeneratedEvent{
				TaskID:  task.ID.String(),
				Shape:   key.Shape,
				Seed:    key.Seed,
				Points:  len(cloud.Points),
				Skipped: cloud.Skipped,
			})
			if err != nil {
				h.logger.Warn("failed to publish cloud generated", "task_id", task.ID, "error", err)
			}
		}
		h.logger.Debug("cloud generated", "task_id", task.ID, "shape", key.Shape, "points", len(cloud.Points))
	}
	writeJSON(w, http.StatusOK, newCloudResponse(front, cloud, key))
}

type TaskSummary struct {
	Task                    *store.Task                       `json:"task"`
	FrontierSize            int                               `json:"frontier_size"`
	RepresentativeSolutions *decision.RepresentativeSolutions `json:"representative_solutions,omitempty"`
}

func (h *TasksHandler) Summary(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	solutions, err := h.store.GetSolutions(r.Context(), task.ID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	summary := TaskSummary{Task: task, FrontierSize: len(solutions)}
	if reps, ok := decision.Representatives(solutions); ok {
		summary.RepresentativeSolutions = &reps
	}
	writeJSON(w, http.StatusOK, summary)
}

// loadTask resolves the {id} URL param, writing 400/404/500 itself when it
// cannot.
func loadTask(w http.ResponseWriter, r *http.Request, s store.Store) (*store.Task, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return nil, false
	}
	task, err := s.GetTask(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return nil, false
	}
	return task, true
}

func queryInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
