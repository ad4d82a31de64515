package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

// SampleResponse is the body of the rand, randn and randc endpoints.
type SampleResponse struct {
	X      []float64 `json:"x"`
	Stream int       `json:"stream"`
	Value  float64   `json:"value"`
}

// NoiseRequest is the body of POST /v1/noise. Params override the server's
// parameters by store name, e.g. {"p_add": 0.3}.
type NoiseRequest struct {
	Points [][]float64        `json:"points"`
	Params map[string]float64 `json:"params,omitempty"`
}

// NoiseSample is the noise drawn for one point.
type NoiseSample struct {
	Value    float64 `json:"value"`
	Event    string  `json:"event"`
	Jittered bool    `json:"jittered"`
}

// NoiseResponse is the answer to a NoiseRequest.
type NoiseResponse struct {
	Params    noise.Params  `json:"params"`
	Effective noise.Params  `json:"effective"`
	Warnings  []string      `json:"warnings,omitempty"`
	Samples   []NoiseSample `json:"samples"`
}

// ParamsResponse is the body of GET /v1/params.
type ParamsResponse struct {
	Params    noise.Params `json:"params"`
	Effective noise.Params `json:"effective"`
	Frozen    bool         `json:"frozen"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSample(draw randomizer.Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		x, err := ParsePoint(r.URL.Query().Get("x"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		stream := 0
		if raw := r.URL.Query().Get("stream"); raw != "" {
			if stream, err = strconv.Atoi(raw); err != nil || stream < 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid stream %q", raw))
				return
			}
		}
		writeJSON(w, http.StatusOK, SampleResponse{X: x, Stream: stream, Value: draw(x, stream)})
	}
}

func (s *Server) handleNoise(w http.ResponseWriter, r *http.Request) {
	var req NoiseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Points) > MaxPoints {
		writeError(w, http.StatusBadRequest, fmt.Errorf("at most %d points per request, got %d", MaxPoints, len(req.Points)))
		return
	}

	params := s.params
	if err := params.Merge(req.Params); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	policy, err := noise.NewPolicy(params,
		noise.WithRands(noise.RandsFrom(s.sampler)),
		noise.WithObserver(s.collector),
		noise.WithLogger(s.logger),
	)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, noise.ErrNegativeParameter) || errors.Is(err, noise.ErrNonFiniteParameter) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	resp := NoiseResponse{
		Params:    policy.Params(),
		Effective: policy.EffectiveParams(),
		Samples:   make([]NoiseSample, len(req.Points)),
	}
	for _, warning := range policy.Warnings() {
		resp.Warnings = append(resp.Warnings, warning.Message)
	}
	for i, x := range req.Points {
		sample := policy.Sample(x)
		resp.Samples[i] = NoiseSample{
			Value:    sample.Value,
			Event:    sample.Event.String(),
			Jittered: sample.Jittered,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleParams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ParamsResponse{
		Params:    s.params,
		Effective: s.params.Effective(),
		Frozen:    s.sampler.Frozen(),
	})
}

// ParsePoint reads comma separated coordinates; an empty string is the empty
// point, whose missing coordinates count as 0.
func ParsePoint(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []float64{}, nil
	}
	parts := strings.Split(raw, ",")
	x := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid coordinate %d %q", i, part)
		}
		x[i] = v
	}
	return x, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
