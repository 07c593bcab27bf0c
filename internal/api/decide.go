package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Frontier/internal/decision"
	"github.com/MikeSquared-Agency/Frontier/internal/store"
)

type DecideHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewDecideHandler(s store.Store, logger *slog.Logger) *DecideHandler {
	return &DecideHandler{store: s, logger: logger}
}

type AHPRequest struct {
	Matrix01 float64 `json:"matrix_01"`
	Matrix02 float64 `json:"matrix_02"`
	Matrix12 float64 `json:"matrix_12"`
}

type ahpFailure struct {
	decision.AHPResult
	Error string `json:"error"`
}

// AHP derives criterion weights from pairwise judgements. An inconsistent
// matrix answers 422 with the computed ratio.
func (h *DecideHandler) AHP(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	var req AHPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := decision.AHP(req.Matrix01, req.Matrix02, req.Matrix12)
	switch {
	case errors.Is(err, decision.ErrInvalidComparison):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, decision.ErrInconsistent):
		writeJSON(w, http.StatusUnprocessableEntity, ahpFailure{AHPResult: res, Error: err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.recordEvent(r, task, "ahp", map[string]interface{}{
		"weights":           res.Weights,
		"consistency_ratio": res.ConsistencyRatio,
	})
	writeJSON(w, http.StatusOK, res)
}

type TOPSISRequest struct {
	Weights *decision.Weights `json:"weights,omitempty"`
}

// TOPSIS ranks the task's stored solutions and persists scores and ranks.
// An empty body uses the default weights.
func (h *DecideHandler) TOPSIS(w http.ResponseWriter, r *http.Request) {
	task, ok := loadTask(w, r, h.store)
	if !ok {
		return
	}
	var req TOPSISRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	weights := decision.DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}

	solutions, err := h.store.GetSolutions(r.Context(), task.ID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	res, err := decision.TOPSIS(solutions, weights)
	switch {
	case errors.Is(err, decision.ErrNoSolutions):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task has no solutions to rank"})
		return
	case errors.Is(err, decision.ErrInvalidWeights):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	scores := make(map[string]float64, len(res.Scores))
	ranks := make(map[string]int, len(res.Scores))
	for _, s := range res.Scores {
		scores[s.SolutionID] = s.Score
		ranks[s.SolutionID] = s.Rank
	}
	if err := h.store.UpdateTopsisScores(r.Context(), task.ID, scores, ranks); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.recordEvent(r, task, "topsis", map[string]interface{}{"best_solution_id": res.BestSolutionID})
	writeJSON(w, http.StatusOK, res)
}

func (h *DecideHandler) recordEvent(r *http.Request, task *store.Task, event string, payload map[string]interface{}) {
	if err := h.store.CreateTaskEvent(r.Context(), &store.TaskEvent{
		TaskID:  task.ID,
		Event:   event,
		Payload: payload,
	}); err != nil {
		h.logger.Warn("failed to record task event", "task_id", task.ID, "event", event, "error", err)
	}
}
