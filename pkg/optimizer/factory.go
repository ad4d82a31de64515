// Package optimizer provides simple derivative-free optimizers used to
// exercise noisy problems, and a factory to select them by name.
package optimizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for optimizer names that are not registered
var ErrUnknownType = errors.New("unknown optimizer type")

// Type represents the type of optimizer
type Type string

const (
	TypeRandomSearch Type = "random"
	TypeOnePlusOne   Type = "one-plus-one"
	TypeCompass      Type = "compass"
)

// Factory creates optimizers based on configuration
type Factory struct{}

// NewFactory creates a new optimizer factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates an optimizer of the specified type
func (f *Factory) Create(t Type, cfg Config) (Optimizer, error) {
	if len(cfg.Initial) == 0 {
		return nil, fmt.Errorf("optimizer %s needs an initial solution", t)
	}
	if len(cfg.Lower) != len(cfg.Initial) || len(cfg.Upper) != len(cfg.Initial) {
		return nil, fmt.Errorf("optimizer %s: bounds have %d/%d entries for dimension %d",
			t, len(cfg.Lower), len(cfg.Upper), len(cfg.Initial))
	}
	if cfg.InitialStep <= 0 {
		cfg.InitialStep = 1
	}

	switch t {
	case TypeRandomSearch:
		return NewRandomSearch(cfg), nil

	case TypeOnePlusOne:
		return NewOnePlusOne(OnePlusOneConfig{
			Config:        cfg,
			SuccessFactor: 1.5,
			MinStep:       1e-12,
		}), nil

	case TypeCompass:
		return NewCompassSearch(cfg), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}

// AvailableTypes returns a list of available optimizer types
func AvailableTypes() []Type {
	return []Type{
		TypeRandomSearch,
		TypeOnePlusOne,
		TypeCompass,
	}
}

// AvailableTypeNames returns the available types as strings
func AvailableTypeNames() []string {
	types := AvailableTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// TypeDescription returns a description for each optimizer type
func TypeDescription(t Type) string {
	switch t {
	case TypeRandomSearch:
		return "Random Search - Uniform sampling within the bounds"
	case TypeOnePlusOne:
		return "(1+1)-ES - Gaussian mutation with one-fifth success rule step control"
	case TypeCompass:
		return "Compass Search - Axis-aligned polling with step halving"
	default:
		return "Unknown optimizer type"
	}
}

// ParseType parses a string into a Type
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "random-search":
		return TypeRandomSearch, nil
	case "one-plus-one", "1+1", "(1+1)-es", "es":
		return TypeOnePlusOne, nil
	case "compass", "coordinate":
		return TypeCompass, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownType, s)
	}
}
