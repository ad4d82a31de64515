package batch_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianbland/noisifier/pkg/batch"
	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/noiser"
	"github.com/brianbland/noisifier/pkg/problem"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

func grid(n int) [][]float64 {
	points := make([][]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			points = append(points, []float64{float64(i) - 2.5, float64(j)*0.5 - 1})
		}
	}
	return points
}

func noisy(t *testing.T, name string, params noise.Params, opts ...noiser.Option) problem.Problem {
	t.Helper()
	p, err := problem.NewRegistry().GetByName(name, 2)
	require.NoError(t, err)
	n, err := noiser.New(append([]noiser.Option{noiser.WithParams(params)}, opts...)...)
	require.NoError(t, err)
	return n.Noisify(p)
}

func TestEvaluateAllKeepsOrder(t *testing.T) {
	p := noisy(t, "sphere", noise.Params{PAdd: 0.5, PSubtract: 0.3, PEpsilon: 1, Epsilon: 0.1})
	points := grid(8)

	var mu sync.Mutex
	var last batch.Progress
	e := batch.NewEvaluator(batch.Options{Workers: 5}, func(p batch.Progress) {
		mu.Lock()
		defer mu.Unlock()
		if p.Completed > last.Completed {
			last = p
		}
	})

	results, err := e.EvaluateAll(context.Background(), p, points)
	require.NoError(t, err)
	require.Len(t, results, len(points))
	assert.Empty(t, batch.Failed(results))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, points[i], r.X)
		want, err := p.Evaluate(points[i])
		require.NoError(t, err)
		assert.Equal(t, want, r.Objectives)
	}
	assert.Equal(t, len(points), last.Completed)
	assert.Equal(t, len(points), last.Total)
}

func TestEvaluateAllConstraintsAndFailures(t *testing.T) {
	p := noisy(t, "constrained-sphere", noise.DefaultParams(0, 0))
	e := batch.NewEvaluator(batch.Options{Workers: 2, Constraints: true}, nil)

	results, err := e.EvaluateAll(context.Background(), p, [][]float64{{0, 0}, {1}})
	require.NoError(t, err)
	assert.Len(t, results[0].Constraint, 2)
	require.Len(t, batch.Failed(results), 1)
	assert.ErrorIs(t, results[1].Err, problem.ErrDimensionMismatch)
}

func TestEvaluateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := noisy(t, "sphere", noise.DefaultParams(0, 0))
	_, err := batch.NewEvaluator(batch.DefaultOptions(), nil).EvaluateAll(ctx, p, grid(4))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAuditFrozenNoiseIsDeterministic(t *testing.T) {
	p := noisy(t, "constrained-sphere", noise.Params{PAdd: 0.4, PSubtract: 0.4, PEpsilon: 0.5, Epsilon: 1e-3})
	e := batch.NewEvaluator(batch.Options{Workers: 8, Constraints: true}, nil)

	report, err := e.Audit(context.Background(), p, grid(6), 4)
	require.NoError(t, err)
	assert.True(t, report.Deterministic(), "mismatches: %v", report.Mismatches)
	assert.Equal(t, 36*4, report.Evaluations)
}

func TestAuditDetectsUnfrozenNoise(t *testing.T) {
	sampler := randomizer.NewSampler(randomizer.WithUnfrozen(rand.New(rand.NewSource(3))))
	p := noisy(t, "sphere", noise.Params{PAdd: 1}, noiser.WithSampler(sampler))

	report, err := batch.NewEvaluator(batch.DefaultOptions(), nil).Audit(context.Background(), p, grid(3), 2)
	require.NoError(t, err)
	assert.False(t, report.Deterministic())
	assert.Len(t, report.Mismatches, 9)
}

func TestAuditValidation(t *testing.T) {
	p := noisy(t, "sphere", noise.DefaultParams(0, 0))
	e := batch.NewEvaluator(batch.DefaultOptions(), nil)

	_, err := e.Audit(context.Background(), p, grid(2), 1)
	assert.Error(t, err)

	_, err = e.Audit(context.Background(), p, [][]float64{{1, 2, 3}}, 2)
	assert.ErrorIs(t, err, problem.ErrDimensionMismatch)
}
