package optimizer

import (
	"errors"
	"testing"
)

func testConfig() Config {
	return Config{
		Lower:       []float64{-5, -5},
		Upper:       []float64{5, 5},
		Initial:     []float64{2, 2},
		InitialStep: 1,
		Seed:        7,
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"random", TypeRandomSearch},
		{" Random-Search ", TypeRandomSearch},
		{"1+1", TypeOnePlusOne},
		{"(1+1)-ES", TypeOnePlusOne},
		{"compass", TypeCompass},
		{"coordinate", TypeCompass},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if err != nil {
				t.Fatalf("ParseType(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseType("cma-es"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestFactoryCreatesAllTypes(t *testing.T) {
	factory := NewFactory()
	for _, typ := range AvailableTypes() {
		t.Run(string(typ), func(t *testing.T) {
			opt, err := factory.Create(typ, testConfig())
			if err != nil {
				t.Fatalf("Create(%s) returned error: %v", typ, err)
			}
			if TypeDescription(typ) == "Unknown optimizer type" {
				t.Errorf("Missing description for %s", typ)
			}

			first := opt.Ask()
			if first[0] != 2 || first[1] != 2 {
				t.Errorf("Expected first point to be the initial solution, got %v", first)
			}
		})
	}

	if _, err := factory.Create("bogus", testConfig()); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}

	cfg := testConfig()
	cfg.Upper = cfg.Upper[:1]
	if _, err := factory.Create(TypeCompass, cfg); err == nil {
		t.Error("Expected error for mismatched bounds")
	}
}

func sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func run(opt Optimizer, budget int) float64 {
	for i := 0; i < budget; i++ {
		x := opt.Ask()
		opt.Tell(x, sphere(x))
	}
	_, f := opt.Best()
	return f
}

func TestOptimizersImproveOnSphere(t *testing.T) {
	factory := NewFactory()
	limits := map[Type]float64{
		TypeRandomSearch: 1,
		TypeOnePlusOne:   1e-3,
		TypeCompass:      1e-6,
	}

	for typ, limit := range limits {
		t.Run(string(typ), func(t *testing.T) {
			opt, err := factory.Create(typ, testConfig())
			if err != nil {
				t.Fatal(err)
			}
			if f := run(opt, 400); f > limit {
				t.Errorf("Expected best value below %g after 400 evaluations, got %g", limit, f)
			}
		})
	}
}

func TestOptimizerResetReproduces(t *testing.T) {
	factory := NewFactory()
	for _, typ := range AvailableTypes() {
		t.Run(string(typ), func(t *testing.T) {
			opt, err := factory.Create(typ, testConfig())
			if err != nil {
				t.Fatal(err)
			}
			first := run(opt, 50)
			opt.Reset()
			if _, f := opt.Best(); f <= first {
				t.Errorf("Expected reset to forget the incumbent, got %g", f)
			}
			if second := run(opt, 50); second != first {
				t.Errorf("Expected identical runs after reset, got %g and %g", first, second)
			}
		})
	}
}

func TestCompassSearchHalvesStep(t *testing.T) {
	cs := NewCompassSearch(Config{
		Lower:       []float64{-1, -1},
		Upper:       []float64{1, 1},
		Initial:     []float64{0, 0},
		InitialStep: 0.5,
	}).(*CompassSearch)

	// the initial point is optimal, so every poll fails
	for i := 0; i < 5; i++ {
		x := cs.Ask()
		cs.Tell(x, sphere(x))
	}
	if cs.Step() != 0.25 {
		t.Errorf("Expected step 0.25 after one failed poll, got %g", cs.Step())
	}
}

func TestOnePlusOneStepAdaptation(t *testing.T) {
	es := NewOnePlusOne(OnePlusOneConfig{Config: testConfig(), SuccessFactor: 2}).(*OnePlusOne)
	es.Tell(es.Ask(), 10)

	es.Tell([]float64{1, 1}, 1)
	if es.Step() != 2 {
		t.Errorf("Expected step to double on success, got %g", es.Step())
	}

	es.Tell([]float64{3, 3}, 18)
	if want := 2 / 1.189207115002721; es.Step() < want-1e-12 || es.Step() > want+1e-12 {
		t.Errorf("Expected step %g after failure, got %g", want, es.Step())
	}
}

func TestClamp(t *testing.T) {
	cfg := testConfig()
	x := cfg.Clamp([]float64{-10, 10})
	if x[0] != -5 || x[1] != 5 {
		t.Errorf("Expected clamped point [-5 5], got %v", x)
	}
}
