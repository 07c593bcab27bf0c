package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MikeSquared-Agency/Frontier/internal/cloudcache"
	"github.com/MikeSquared-Agency/Frontier/internal/config"
	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

const (
	maxCloudSize = 100000
	maxBodyBytes = 8 << 20
)

type CloudsHandler struct {
	gen      cloudcache.Generator
	defaults config.CloudConfig
}

func NewCloudsHandler(gen cloudcache.Generator, defaults config.CloudConfig) *CloudsHandler {
	return &CloudsHandler{gen: gen, defaults: defaults}
}

// CloudRequest asks for a cloud around an ad-hoc frontier. Directions win
// over Industry when both are given. With neither, f1 and f2 are
// worse-if-larger and f3 is worse-if-smaller.
type CloudRequest struct {
	Frontier   []frontier.Point     `json:"frontier"`
	Industry   string               `json:"industry,omitempty"`
	Directions *frontier.Directions `json:"directions,omitempty"`
	CloudSize  *int                 `json:"cloud_size,omitempty"`
	Seed       *uint64              `json:"seed,omitempty"`
	Shape      string               `json:"shape,omitempty"`
}

type CloudResponse struct {
	Cloud            []frontier.Point      `json:"cloud"`
	Projections      []frontier.Projection `json:"projections"`
	Skipped          int                   `json:"skipped"`
	MalformedAnchors int                   `json:"malformed_anchors"`
	HasF3            bool                  `json:"has_f3"`
	Spans            [3]float64            `json:"spans"`
	Shape            string                `json:"shape"`
	Seed             uint64                `json:"seed"`
}

func newCloudResponse(front []frontier.Point, cloud frontier.Cloud, key cloudcache.Key) CloudResponse {
	return CloudResponse{
		Cloud:            cloud.Points,
		Projections:      frontier.Project(front, cloud),
		Skipped:          cloud.Skipped,
		MalformedAnchors: cloud.MalformedAnchors,
		HasF3:            cloud.HasF3,
		Spans:            cloud.Spans,
		Shape:            key.Shape,
		Seed:             key.Seed,
	}
}

// Create synthesizes a cloud for the posted frontier. Results are not cached.
func (h *CloudsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CloudRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var dirs frontier.Directions
	if req.Directions != nil {
		dirs = *req.Directions
	} else if req.Industry != "" {
		industry, err := frontier.ParseIndustry(req.Industry)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		dirs = industry.Directions()
	}

	var sizeOverride int
	if req.CloudSize != nil {
		sizeOverride = *req.CloudSize
	}
	var seedOverride uint64
	if req.Seed != nil {
		seedOverride = *req.Seed
	}
	params, err := resolveCloudParams(h.defaults, req.Shape, req.CloudSize != nil, sizeOverride, req.Seed != nil, seedOverride)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	key := cloudcache.NewKey(req.Frontier, dirs, params.size, params.seed, params.shape)
	cloud, err := h.gen.Generate(key, req.Frontier)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newCloudResponse(req.Frontier, cloud, key))
}

// Shapes lists the available cloud presets.
func (h *CloudsHandler) Shapes(w http.ResponseWriter, r *http.Request) {
	shapes := []frontier.Shape{}
	for _, name := range frontier.ShapeNames() {
		shape, _ := frontier.ShapeByName(name)
		shapes = append(shapes, shape)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": h.defaults.Shape,
		"shapes":  shapes,
	})
}

type cloudParams struct {
	shape string
	size  int
	seed  uint64
}

// resolveCloudParams fills request gaps from config. A shape named without a
// size gets that shape's own default size.
func resolveCloudParams(defaults config.CloudConfig, shapeName string, hasSize bool, size int, hasSeed bool, seed uint64) (cloudParams, error) {
	p := cloudParams{shape: defaults.Shape, size: defaults.Size, seed: defaults.Seed}
	if shapeName != "" {
		shape, err := frontier.ShapeByName(shapeName)
		if err != nil {
			return p, err
		}
		p.shape = shape.Name
		if shape.Name != defaults.Shape {
			p.size = shape.DefaultSize
		}
	}
	if hasSize {
		if size > maxCloudSize {
			return p, fmt.Errorf("cloud_size must be at most %d", maxCloudSize)
		}
		p.size = size
	}
	if hasSeed {
		p.seed = seed
	}
	return p, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
