package study

// Params defines the configurable thresholds of the study engine
type Params struct {
	// MinAttempts is the minimum number of graded responses before an item
	// can graduate to well known.
	MinAttempts int

	// WellKnownThreshold is the accuracy an item must reach, together with
	// MinAttempts, to graduate.
	WellKnownThreshold float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinAttempts        int
	WellKnownThreshold float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinAttempts:        5,
		WellKnownThreshold: 0.9,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero or out-of-range values keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinAttempts > 0 {
		params.MinAttempts = config.MinAttempts
	}
	if config.WellKnownThreshold > 0 && config.WellKnownThreshold <= 1 {
		params.WellKnownThreshold = config.WellKnownThreshold
	}

	return params
}
