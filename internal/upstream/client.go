// Package upstream talks to the optimization service that produces Pareto
// frontiers for tracked tasks.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

// Upstream task statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TaskStatus is upstream's view of a run. Progress is a percentage, 0 to 100.
type TaskStatus struct {
	TaskID                string     `json:"task_id"`
	Name                  string     `json:"name"`
	Status                string     `json:"status"`
	Progress              float64    `json:"progress"`
	SolutionCount         int        `json:"solution_count"`
	RecommendedSolutionID string     `json:"recommended_solution_id,omitempty"`
	Error                 string     `json:"error,omitempty"`
	CreatedAt             *time.Time `json:"created_at,omitempty"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
}

// Solution is one Pareto solution as reported upstream.
type Solution struct {
	ID                 string   `json:"id"`
	Rank               int      `json:"rank"`
	F1                 float64  `json:"f1"`
	F2                 float64  `json:"f2"`
	F3                 *float64 `json:"f3,omitempty"`
	TotalCost          float64  `json:"total_cost"`
	ImplementationDays float64  `json:"implementation_days"`
	ExpectedBenefit    float64  `json:"expected_benefit"`
	TopsisScore        *float64 `json:"topsis_score,omitempty"`
}

func (s Solution) Point() frontier.Point {
	return frontier.Point{
		ID:                 s.ID,
		Rank:               s.Rank,
		F1:                 s.F1,
		F2:                 s.F2,
		F3:                 s.F3,
		TotalCost:          s.TotalCost,
		ImplementationDays: s.ImplementationDays,
		ExpectedBenefit:    s.ExpectedBenefit,
		TopsisScore:        s.TopsisScore,
	}
}

// Points converts solutions to frontier points, keeping order.
func Points(solutions []Solution) []frontier.Point {
	points := make([]frontier.Point, len(solutions))
	for i, s := range solutions {
		points[i] = s.Point()
	}
	return points
}

type Client interface {
	GetTaskStatus(ctx context.Context, upstreamID string) (*TaskStatus, error)
	GetSolutions(ctx context.Context, upstreamID string, limit int) ([]Solution, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

const tasksPath = "/api/v1/tianchou/tasks/"

func (c *HTTPClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("upstream %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *HTTPClient) GetTaskStatus(ctx context.Context, upstreamID string) (*TaskStatus, error) {
	data, err := c.doReq(ctx, http.MethodGet, tasksPath+url.PathEscape(upstreamID))
	if err != nil {
		return nil, err
	}
	var status TaskStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decode task status: %w", err)
	}
	return &status, nil
}

// GetSolutions fetches up to limit solutions. The service answers with either
// a bare array or an object wrapping it under "solutions".
func (c *HTTPClient) GetSolutions(ctx context.Context, upstreamID string, limit int) ([]Solution, error) {
	path := tasksPath + url.PathEscape(upstreamID) + "/solutions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	data, err := c.doReq(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var solutions []Solution
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Solutions []Solution `json:"solutions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode solutions: %w", err)
		}
		solutions = wrapped.Solutions
	} else if err := json.Unmarshal(data, &solutions); err != nil {
		return nil, fmt.Errorf("decode solutions: %w", err)
	}
	if solutions == nil {
		solutions = []Solution{}
	}
	return solutions, nil
}
