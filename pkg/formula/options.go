package formula

// Option configures the builder and the forms it produces.
type Option func(*config)

type config struct {
	labeler     func(string) string
	onWarning   func(Warning)
	initialRows func(*Element) int
}

func defaultConfig() config {
	return config{
		labeler:     DefaultLabeler,
		initialRows: MinItemsRows,
	}
}

func newConfig(options []Option) config {
	cfg := defaultConfig()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Warning reports a lenient-parse decision, such as an unknown `$type`
// falling back to text.
type Warning struct {
	Path    Path
	Message string
}

// WithLabeler overrides how display labels are derived from element keys
// when no `$name` directive is present.
func WithLabeler(labeler func(string) string) Option {
	return func(cfg *config) {
		if labeler != nil {
			cfg.labeler = labeler
		}
	}
}

// WithWarningHandler receives every lenient-parse warning.
func WithWarningHandler(fn func(Warning)) Option {
	return func(cfg *config) {
		cfg.onWarning = fn
	}
}

// WithInitialRows makes every collection start with exactly n rows,
// regardless of `$minItems`. Values below zero are ignored.
func WithInitialRows(n int) Option {
	return func(cfg *config) {
		if n < 0 {
			return
		}
		cfg.initialRows = func(*Element) int { return n }
	}
}

// WithRowPolicy installs a custom initial row count policy.
func WithRowPolicy(policy func(*Element) int) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.initialRows = policy
		}
	}
}

// MinItemsRows is the default row policy: max(minItems, 1), so a fresh form
// always shows at least one editable row. The count is clamped to maxItems.
func MinItemsRows(collection *Element) int {
	n := 1
	if collection.MinItems != nil && *collection.MinItems > n {
		n = *collection.MinItems
	}
	if collection.MaxItems != nil && n > *collection.MaxItems {
		n = *collection.MaxItems
	}
	return n
}
