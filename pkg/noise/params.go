package noise

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultPAdd is the add-outlier probability used when no other noise is
	// configured.
	DefaultPAdd = 0.2

	// DefaultEpsilon is the standard deviation of the Gaussian jitter.
	DefaultEpsilon = 1e-4
)

// Parameter names as written to the parameter store.
const (
	KeyPAdd      = "p_add"
	KeyPSubtract = "p_subtract"
	KeyPEpsilon  = "p_epsilon"
	KeyEpsilon   = "epsilon"
)

var (
	// ErrNegativeParameter is returned when a probability or scale is below zero.
	ErrNegativeParameter = errors.New("noise parameters cannot be negative")

	// ErrNonFiniteParameter is returned when a parameter is NaN or infinite.
	ErrNonFiniteParameter = errors.New("noise parameters must be finite")

	// ErrUnknownParameter is returned when setting a key that is not a noise
	// parameter.
	ErrUnknownParameter = errors.New("unknown noise parameter")
)

// Params is the numeric part of a noise configuration.
type Params struct {
	PAdd      float64 `json:"p_add" yaml:"p_add"`
	PSubtract float64 `json:"p_subtract" yaml:"p_subtract"`
	PEpsilon  float64 `json:"p_epsilon" yaml:"p_epsilon"`
	Epsilon   float64 `json:"epsilon" yaml:"epsilon"`
}

// DefaultParams returns the parameters for the given subtract and jitter
// probabilities. PAdd is DefaultPAdd iff both are zero and 0 otherwise.
func DefaultParams(pSubtract, pEpsilon float64) Params {
	pAdd := 0.0
	if pSubtract == 0 && pEpsilon == 0 {
		pAdd = DefaultPAdd
	}
	return Params{
		PAdd:      pAdd,
		PSubtract: pSubtract,
		PEpsilon:  pEpsilon,
		Epsilon:   DefaultEpsilon,
	}
}

// Validate rejects non-finite and negative values and reports configurations
// that are accepted but probably not what was meant.
func (p Params) Validate() ([]Warning, error) {
	for _, v := range []float64{p.PAdd, p.PSubtract, p.PEpsilon, p.Epsilon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w but were %s", ErrNonFiniteParameter, p)
		}
	}
	if p.PAdd < 0 || p.PSubtract < 0 || p.PEpsilon < 0 || p.Epsilon < 0 {
		return nil, fmt.Errorf("%w but were %s", ErrNegativeParameter, p)
	}

	var warnings []Warning
	if p.PAdd+p.PSubtract > 1 {
		warnings = append(warnings, Warning{
			Kind: WarnProbabilitySum,
			Message: fmt.Sprintf("p_subtract=%g + p_add=%g > 1, hence p_add is interpreted as 1-p_subtract",
				p.PSubtract, p.PAdd),
		})
	}
	if p.PEpsilon > 0 && p.Epsilon == 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnIneffectiveJitter,
			Message: fmt.Sprintf("p_epsilon=%g > 0 is not effective because epsilon=0", p.PEpsilon),
		})
	}
	return warnings, nil
}

// Effective returns the parameters the policy actually uses: when
// PAdd+PSubtract exceeds 1, PAdd becomes 1-PSubtract.
func (p Params) Effective() Params {
	if p.PAdd+p.PSubtract > 1 {
		p.PAdd = 1 - p.PSubtract
		if p.PAdd < 0 {
			p.PAdd = 0
		}
	}
	return p
}

// Map returns the parameters keyed by their store names.
func (p Params) Map() map[string]float64 {
	return map[string]float64{
		KeyPAdd:      p.PAdd,
		KeyPSubtract: p.PSubtract,
		KeyPEpsilon:  p.PEpsilon,
		KeyEpsilon:   p.Epsilon,
	}
}

// Set assigns one parameter by its store name.
func (p *Params) Set(key string, value float64) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case KeyPAdd:
		p.PAdd = value
	case KeyPSubtract:
		p.PSubtract = value
	case KeyPEpsilon:
		p.PEpsilon = value
	case KeyEpsilon:
		p.Epsilon = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	return nil
}

// Merge overwrites the parameters present in values and leaves the others
// untouched.
func (p *Params) Merge(values map[string]float64) error {
	for key, value := range values {
		if err := p.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Enabled reports whether any noise can be produced at all.
func (p Params) Enabled() bool {
	return p.PAdd > 0 || p.PSubtract > 0 || (p.PEpsilon > 0 && p.Epsilon > 0)
}

func (p Params) String() string {
	return fmt.Sprintf("{p_add: %g, p_subtract: %g, p_epsilon: %g, epsilon: %g}",
		p.PAdd, p.PSubtract, p.PEpsilon, p.Epsilon)
}
