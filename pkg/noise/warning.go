package noise

// WarningKind classifies a configuration warning.
type WarningKind int

const (
	// WarnProbabilitySum is raised when p_add + p_subtract exceeds 1.
	WarnProbabilitySum WarningKind = iota + 1
	// WarnIneffectiveJitter is raised when jitter has a probability but no scale.
	WarnIneffectiveJitter
	// WarnStoreUnreadable is raised when a parameter store cannot be read.
	WarnStoreUnreadable
)

func (k WarningKind) String() string {
	switch k {
	case WarnProbabilitySum:
		return "probability_sum"
	case WarnIneffectiveJitter:
		return "ineffective_jitter"
	case WarnStoreUnreadable:
		return "store_unreadable"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal finding about a noise configuration.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return w.Message
}
