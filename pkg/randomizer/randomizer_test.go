package randomizer_test

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianbland/noisifier/pkg/randomizer"
)

// legacyTolerance bounds the distance to values computed by the legacy Python
// noiser. Uniform values match it bit for bit; Gaussian and Cauchy values go
// through math.Log and math.Cos, which may differ from the C library in the
// last bit.
const legacyTolerance = 1e-12

func TestDeriveSeed(t *testing.T) {
	tests := []struct {
		name   string
		x      []float64
		stream int
		want   float64
	}{
		{"small point", []float64{1, 2}, 0, 7.070638062619653},
		{"later stream", []float64{1, 2}, 3, 27.741134515654913},
		{"origin", []float64{0, 0}, 0, 2.0},
		{"huge point is folded", []float64{1e30, 1e30}, 0, 1.1409652970969568e+20},
		{"negative point", []float64{-1, -2}, 1, 9.95401687592616},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := randomizer.DeriveSeed(tt.x, tt.stream)
			assert.Equal(t, tt.want, got)
			assert.True(t, diag.OK())
			assert.Greater(t, got, 0.0)
			assert.LessOrEqual(t, got, 1e21)
		})
	}
}

func TestDeriveSeedUsesLeadingCoordinatesOnly(t *testing.T) {
	base, _ := randomizer.DeriveSeed([]float64{1, 2}, 0)
	extra, _ := randomizer.DeriveSeed([]float64{1, 2, 3, 4}, 0)
	assert.Equal(t, base, extra)

	short, _ := randomizer.DeriveSeed([]float64{1}, 0)
	padded, _ := randomizer.DeriveSeed([]float64{1, 0}, 0)
	assert.Equal(t, padded, short)

	empty, _ := randomizer.DeriveSeed(nil, 0)
	assert.Equal(t, 2.0, empty)
}

func TestDeriveSeedNonFinite(t *testing.T) {
	for _, x := range [][]float64{
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
		{math.NaN(), 1},
	} {
		seed, diag := randomizer.DeriveSeed(x, 0)
		assert.Equal(t, 1.0, seed)
		assert.True(t, diag.NonFiniteSeed)
		assert.False(t, diag.OK())
	}
}

func TestUniform(t *testing.T) {
	tests := []struct {
		name string
		n    int
		seed float64
		want []float64
	}{
		{"regular seed", 5, 12345.0, []float64{0.19788841865858456, 0.9494217210213755, 0.7838003895170057, 0.9838846246636866, 0.9141300529773021}},
		{"seed below one", 3, 0.5, []float64{0.7945502900027438, 0.08019245256678781, 0.1346157289271316}},
		{"largest seed", 3, 1e21, []float64{0.8055199123013391, 0.7661652303143243, 0.9390258928476953}},
		{"nine digit seed", 3, 123456789.0, []float64{0.3969884758801146, 0.3516286599224567, 0.8228873167293553}},
		{"inexact products", 3, 5e15, []float64{0.993337894321111, 0.8757133879120058, 0.8224935814843017}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := randomizer.Uniform(tt.n, tt.seed)
			assert.Equal(t, tt.want, got)
			assert.True(t, diag.OK())
		})
	}
}

func TestUniformProperties(t *testing.T) {
	long, _ := randomizer.Uniform(100, 42)
	short, _ := randomizer.Uniform(10, 42)
	assert.Equal(t, long[:10], short, "prefixes should agree")

	negative, _ := randomizer.Uniform(10, -42)
	assert.Equal(t, short, negative, "sign of the seed should not matter")

	for _, v := range long {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	empty, diag := randomizer.Uniform(0, 42)
	assert.Empty(t, empty)
	assert.True(t, diag.OK())
}

func TestGaussianMatchesLegacy(t *testing.T) {
	got, diag := randomizer.Gaussian(3, 7.070638062619653)
	require.True(t, diag.OK())
	assert.InEpsilonSlice(t, []float64{-0.1659221611172823, 0.5256384462224913, -2.0806512724336264}, got, legacyTolerance)
}

func TestCauchyMatchesLegacy(t *testing.T) {
	got, diag := randomizer.Cauchy(2, 7.070638062619653)
	require.True(t, diag.OK())
	assert.InEpsilonSlice(t, []float64{2.135718410193632, -0.24476599261921456}, got, legacyTolerance)
}

func TestSamplersMatchLegacy(t *testing.T) {
	x := []float64{1, 2}
	assert.InEpsilon(t, 0.03986983971085585, randomizer.Randn(x, 1), legacyTolerance)
	assert.InEpsilon(t, 0.14043429601161864, randomizer.Randc(x, 4), legacyTolerance)
	assert.InEpsilon(t, 1.766803568208878, randomizer.Randc([]float64{-3.3, 1.1}, 4), legacyTolerance)
}

func TestSamplerFrozenValues(t *testing.T) {
	x := []float64{1, 2}

	assert.Equal(t, 0.4755286006364264, randomizer.Rand(x, 0))
	assert.Equal(t, 0.970173708235748, randomizer.Rand(x, 2))

	// repeated calls are identical
	assert.Equal(t, randomizer.Randn(x, 1), randomizer.Randn(x, 1))
	assert.Equal(t, randomizer.Rand(x, 0), randomizer.Rand([]float64{1, 2, 7}, 0))
	assert.NotEqual(t, randomizer.Rand(x, 0), randomizer.Rand(x, 1))
}

func TestSamplerRecordsSeeds(t *testing.T) {
	ring := randomizer.NewSeedRing(0)
	s := randomizer.NewSampler(randomizer.WithRecorder(ring))

	s.Rand([]float64{1, 2}, 0)
	s.Randn([]float64{1, 2}, 3)

	assert.Equal(t, []float64{27.741134515654913, 7.070638062619653}, ring.Seeds())
}

func TestSamplerWarnsOnNonFiniteSeed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := randomizer.NewSampler(randomizer.WithLogger(logger))

	v := s.Rand([]float64{math.Inf(1), 0}, 0)
	want, _ := randomizer.Uniform(1, 1)

	assert.Equal(t, want[0], v)
	assert.Contains(t, buf.String(), "seed is not finite")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestSamplerUnfrozen(t *testing.T) {
	ring := randomizer.NewSeedRing(0)
	s := randomizer.NewSampler(
		randomizer.WithUnfrozen(rand.New(rand.NewSource(7))),
		randomizer.WithRecorder(ring),
	)
	require.False(t, s.Frozen())

	x := []float64{1, 2}
	first := s.Rand(x, 0)
	second := s.Rand(x, 0)
	assert.NotEqual(t, first, second)

	for _, seed := range ring.Seeds() {
		assert.GreaterOrEqual(t, seed, 1e4)
	}
	assert.True(t, randomizer.NewSampler().Frozen())
}

func TestSeedRing(t *testing.T) {
	ring := randomizer.NewSeedRing(3)
	for i := 1; i <= 5; i++ {
		ring.RecordSeed(float64(i))
	}
	assert.Equal(t, []float64{5, 4, 3}, ring.Seeds())
	assert.Equal(t, 3, ring.Len())

	ring.Reset()
	assert.Empty(t, ring.Seeds())

	fallback := randomizer.NewSeedRing(-1)
	for i := 0; i < 2*randomizer.DefaultRingSize; i++ {
		fallback.RecordSeed(float64(i))
	}
	assert.Equal(t, randomizer.DefaultRingSize, fallback.Len())
	assert.Equal(t, float64(2*randomizer.DefaultRingSize-1), fallback.Seeds()[0])
}

func TestSeedRingConcurrent(t *testing.T) {
	ring := randomizer.NewSeedRing(0)
	s := randomizer.NewSampler(randomizer.WithRecorder(ring))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Rand([]float64{float64(w), float64(i)}, i%4)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, randomizer.DefaultRingSize, ring.Len())
}
