package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Increased lists the accepted facts of every run, phrased at point
	// level, in kind priority order per run.
	Increased []IncreasedFact `json:"increased"`

	// Iterations and Generation describe the last run.
	Iterations int    `json:"iterations"`
	Generation uint64 `json:"generation"`

	// ErrorCode is the runtime error code the last run stopped with, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// IncreasedFact is one accepted fact of a scenario run.
type IncreasedFact struct {
	Step      int    `json:"step"`
	Rule      string `json:"rule,omitempty"`
	Predicate string `json:"predicate"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:      name,
		Pass:      true,
		Increased: []IncreasedFact{},
		Errors:    []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
