// Package problem defines the evaluator capability wrapped by the noisifier
// and a small suite of benchmark functions implementing it.
package problem

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrNoConstraints is returned by Constraint on unconstrained problems.
	ErrNoConstraints = errors.New("problem has no constraints")

	// ErrDimensionMismatch is returned when a point has the wrong length.
	ErrDimensionMismatch = errors.New("point dimension does not match problem")
)

// Problem is a black-box objective with optional constraints and read-only
// metadata. Single-objective problems return a slice of length one from
// Evaluate. Constraint values are feasible when <= 0.
type Problem interface {
	Evaluate(x []float64) ([]float64, error)
	Constraint(x []float64) ([]float64, error)

	ID() string
	Name() string
	Dimension() int
	NumberOfObjectives() int
	NumberOfConstraints() int
	LowerBounds() []float64
	UpperBounds() []float64
	InitialSolution() []float64

	// BestValue returns the optimal objective value when it is known.
	BestValue() (float64, bool)
	// BestParameter returns an optimal point when it is known.
	BestParameter() ([]float64, bool)
	// Evaluations counts calls of Evaluate.
	Evaluations() int
}

// Definition describes a problem built by New.
type Definition struct {
	ID          string
	Name        string
	Dimension   int
	Objectives  int
	Constraints int
	Lower       float64
	Upper       float64
	Initial     []float64

	Objective  func(x []float64) []float64
	Constraint func(x []float64) []float64

	BestValue     *float64
	BestParameter []float64
}

// Benchmark is a Problem backed by plain functions. It is safe for concurrent
// evaluation.
type Benchmark struct {
	def         Definition
	evaluations atomic.Int64
}

// New creates a Benchmark from def.
func New(def Definition) (*Benchmark, error) {
	if def.Dimension < 1 {
		return nil, fmt.Errorf("problem %q: dimension must be positive, got %d", def.Name, def.Dimension)
	}
	if def.Objective == nil {
		return nil, fmt.Errorf("problem %q: objective function is required", def.Name)
	}
	if def.Objectives < 1 {
		def.Objectives = 1
	}
	if def.Constraints > 0 && def.Constraint == nil {
		return nil, fmt.Errorf("problem %q: %d constraints declared without a constraint function", def.Name, def.Constraints)
	}
	if def.Upper <= def.Lower {
		return nil, fmt.Errorf("problem %q: upper bound %g must exceed lower bound %g", def.Name, def.Upper, def.Lower)
	}
	if def.Initial == nil {
		def.Initial = make([]float64, def.Dimension)
		for i := range def.Initial {
			def.Initial[i] = (def.Lower + def.Upper) / 2
		}
	}
	if def.ID == "" {
		def.ID = fmt.Sprintf("%s_d%02d", def.Name, def.Dimension)
	}
	return &Benchmark{def: def}, nil
}

func (b *Benchmark) check(x []float64) error {
	if len(x) != b.def.Dimension {
		return fmt.Errorf("%w: %s expects %d values, got %d", ErrDimensionMismatch, b.def.ID, b.def.Dimension, len(x))
	}
	return nil
}

// Evaluate returns the objective values at x.
func (b *Benchmark) Evaluate(x []float64) ([]float64, error) {
	if err := b.check(x); err != nil {
		return nil, err
	}
	b.evaluations.Add(1)
	return b.def.Objective(x), nil
}

// Constraint returns the constraint values at x.
func (b *Benchmark) Constraint(x []float64) ([]float64, error) {
	if b.def.Constraints == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoConstraints, b.def.ID)
	}
	if err := b.check(x); err != nil {
		return nil, err
	}
	return b.def.Constraint(x), nil
}

func (b *Benchmark) ID() string               { return b.def.ID }
func (b *Benchmark) Name() string             { return b.def.Name }
func (b *Benchmark) Dimension() int           { return b.def.Dimension }
func (b *Benchmark) NumberOfObjectives() int  { return b.def.Objectives }
func (b *Benchmark) NumberOfConstraints() int { return b.def.Constraints }
func (b *Benchmark) Evaluations() int         { return int(b.evaluations.Load()) }

func (b *Benchmark) LowerBounds() []float64 { return fill(b.def.Dimension, b.def.Lower) }
func (b *Benchmark) UpperBounds() []float64 { return fill(b.def.Dimension, b.def.Upper) }

func (b *Benchmark) InitialSolution() []float64 {
	return append([]float64(nil), b.def.Initial...)
}

func (b *Benchmark) BestValue() (float64, bool) {
	if b.def.BestValue == nil {
		return 0, false
	}
	return *b.def.BestValue, true
}

func (b *Benchmark) BestParameter() ([]float64, bool) {
	if b.def.BestParameter == nil {
		return nil, false
	}
	return append([]float64(nil), b.def.BestParameter...), true
}

func fill(n int, v float64) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
