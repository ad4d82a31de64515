package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func postNoise(t *testing.T, url string, req any) (*http.Response, NoiseResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/v1/noise", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out NoiseResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestSampleEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var got SampleResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/rand?x=1,2&stream=0", &got))
	assert.Equal(t, 0.4755286006364264, got.Value)
	assert.Equal(t, []float64{1, 2}, got.X)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/rand?x=1,2&stream=2", &got))
	assert.Equal(t, 0.970173708235748, got.Value)
	assert.Equal(t, 2, got.Stream)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/randn?x=1,2&stream=1", &got))
	assert.InEpsilon(t, 0.03986983971085585, got.Value, 1e-12)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/randc?x=1,2&stream=4", &got))
	assert.InEpsilon(t, 0.14043429601161864, got.Value, 1e-12)
}

func TestSampleMissingCoordinates(t *testing.T) {
	ts := newTestServer(t)

	var empty, zeros SampleResponse
	getJSON(t, ts.URL+"/v1/rand", &empty)
	getJSON(t, ts.URL+"/v1/rand?x=0,0", &zeros)
	assert.Equal(t, zeros.Value, empty.Value)
}

func TestSampleBadRequest(t *testing.T) {
	ts := newTestServer(t)

	for _, query := range []string{"x=1,abc", "x=NaN", "x=1&stream=one", "x=1,2&stream=-1"} {
		var e errorResponse
		status := getJSON(t, ts.URL+"/v1/rand?"+query, &e)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.NotEmpty(t, e.Error, query)
	}
}

func TestNoiseEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, out := postNoise(t, ts.URL, NoiseRequest{
		Points: [][]float64{{1, 2}, {0, 0}},
		Params: map[string]float64{noise.KeyPAdd: 0.8, noise.KeyPSubtract: 0.5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Samples, 2)

	assert.Equal(t, "subtract", out.Samples[0].Event)
	assert.InEpsilon(t, -2.002164550400149, out.Samples[0].Value, 1e-12)
	assert.InEpsilon(t, 0.9421050413102292, out.Samples[1].Value, 1e-12)
	assert.InDelta(t, 0.5, out.Effective.PAdd, 1e-15)
	assert.Equal(t, 0.8, out.Params.PAdd)
	assert.Len(t, out.Warnings, 1)
}

func TestNoiseEndpointDefaults(t *testing.T) {
	ts := newTestServer(t)

	resp, out := postNoise(t, ts.URL, NoiseRequest{Points: [][]float64{{1, 2}, {0, 0}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, out.Samples[0].Value)
	assert.Equal(t, "none", out.Samples[0].Event)
	assert.InEpsilon(t, 0.9421050413102292, out.Samples[1].Value, 1e-12)
	assert.Equal(t, noise.DefaultPAdd, out.Params.PAdd)
}

func TestNoiseEndpointRejects(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		req  any
	}{
		{"negative", NoiseRequest{Points: [][]float64{{1}}, Params: map[string]float64{noise.KeyPAdd: -1}}},
		{"unknown parameter", NoiseRequest{Points: [][]float64{{1}}, Params: map[string]float64{"p_other": 1}}},
		{"unknown field", map[string]any{"pts": [][]float64{{1}}}},
		{"too many points", NoiseRequest{Points: make([][]float64, MaxPoints+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postNoise(t, ts.URL, tt.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestParamsEndpoint(t *testing.T) {
	params := noise.Params{PAdd: 0.9, PSubtract: 0.3, Epsilon: noise.DefaultEpsilon}
	ts := newTestServer(t, WithParams(params))

	var got ParamsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/params", &got))
	assert.Equal(t, params, got.Params)
	assert.InDelta(t, 0.7, got.Effective.PAdd, 1e-15)
	assert.True(t, got.Frozen)
}

func TestUnfrozenSampler(t *testing.T) {
	ts := newTestServer(t, WithSamplerOptions(randomizer.WithUnfrozen(rand.New(rand.NewSource(7)))))

	var params ParamsResponse
	getJSON(t, ts.URL+"/v1/params", &params)
	assert.False(t, params.Frozen)

	var first, second SampleResponse
	getJSON(t, ts.URL+"/v1/rand?x=1,2", &first)
	getJSON(t, ts.URL+"/v1/rand?x=1,2", &second)
	assert.NotEqual(t, first.Value, second.Value)
}

func TestNewRejectsNegativeParams(t *testing.T) {
	_, err := New(WithParams(noise.Params{PSubtract: -0.1}))
	assert.ErrorIs(t, err, noise.ErrNegativeParameter)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := New(WithRegistry(reg))
	require.NoError(t, err)
	ts := httptest.NewServer(s)
	defer ts.Close()

	resp, _ := postNoise(t, ts.URL, NoiseRequest{
		Points: [][]float64{{1, 2}},
		Params: map[string]float64{noise.KeyPSubtract: 1, noise.KeyPAdd: 0},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Collector().EventsTotal.WithLabelValues("subtract")))

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "noiser_noise_events_total"))
	assert.True(t, strings.Contains(string(body), "noiser_seeds_recorded_total"))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var got map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &got))
	assert.Equal(t, "ok", got["status"])
}

func TestParsePoint(t *testing.T) {
	x, err := ParsePoint(" 1.5, -2 ,3e2")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 300}, x)

	x, err = ParsePoint("")
	require.NoError(t, err)
	assert.Empty(t, x)
}
