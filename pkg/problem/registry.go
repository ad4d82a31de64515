package problem

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a problem of the given dimension.
type Factory func(dimension int) (Problem, error)

type entry struct {
	description string
	factory     Factory
}

// Registry maps problem names to factories.
type Registry struct {
	entries map[string]entry
}

// NewRegistry returns a registry holding the built-in benchmark functions.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}

	r.Register("sphere", "Separable quadratic, the baseline for noise handling",
		unconstrained("sphere", Sphere, 0, zeros))
	r.Register("ellipsoid", "Ill-conditioned quadratic with condition number 1e6",
		unconstrained("ellipsoid", Ellipsoid, 0, zeros))
	r.Register("rastrigin", "Highly multimodal, regular structure of local optima",
		unconstrained("rastrigin", Rastrigin, 0, zeros))
	r.Register("rosenbrock", "Curved valley, optimum at the all-ones vector",
		unconstrained("rosenbrock", Rosenbrock, 0, ones))
	r.Register("double-sphere", "Bi-objective pair of spheres centred at zeros and ones", newDoubleSphere)
	r.Register("constrained-sphere", "Sphere centred at ones restricted to sum(x) <= n/2", newConstrainedSphere)

	return r
}

// Register adds or replaces a problem factory.
func (r *Registry) Register(name, description string, factory Factory) {
	r.entries[normalize(name)] = entry{description: description, factory: factory}
}

// GetByName builds the named problem.
func (r *Registry) GetByName(name string, dimension int) (Problem, error) {
	e, ok := r.entries[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q (valid: %s)", name, strings.Join(r.Names(), ", "))
	}
	return e.factory(dimension)
}

// Names returns the registered problem names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Description returns the description of the named problem.
func (r *Registry) Description(name string) string {
	if e, ok := r.entries[normalize(name)]; ok {
		return e.description
	}
	return "Unknown problem"
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func zeros(int) float64 { return 0 }
func ones(int) float64  { return 1 }

func unconstrained(name string, f func([]float64) float64, best float64, optimum func(int) float64) Factory {
	return func(dimension int) (Problem, error) {
		return New(Definition{
			Name:          name,
			Dimension:     dimension,
			Lower:         -5,
			Upper:         5,
			Initial:       fill(dimension, 2),
			Objective:     single(f),
			BestValue:     &best,
			BestParameter: optimumPoint(dimension, optimum),
		})
	}
}

func optimumPoint(dimension int, optimum func(int) float64) []float64 {
	if dimension < 1 {
		return nil
	}
	x := make([]float64, dimension)
	for i := range x {
		x[i] = optimum(i)
	}
	return x
}

func newDoubleSphere(dimension int) (Problem, error) {
	return New(Definition{
		Name:       "double-sphere",
		Dimension:  dimension,
		Objectives: 2,
		Lower:      -5,
		Upper:      5,
		Objective:  doubleSphere,
	})
}

func newConstrainedSphere(dimension int) (Problem, error) {
	best := float64(dimension) / 4
	return New(Definition{
		Name:        "constrained-sphere",
		Dimension:   dimension,
		Constraints: 2,
		Lower:       -5,
		Upper:       5,
		Initial:     fill(dimension, -1),
		Objective: single(func(x []float64) float64 {
			return shiftedSphere(x, 1)
		}),
		Constraint:    halfSpace,
		BestValue:     &best,
		BestParameter: optimumPoint(dimension, func(int) float64 { return 0.5 }),
	})
}
