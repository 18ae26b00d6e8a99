package compiler

import (
	"fmt"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoHypotheses       = "E101" // at least one hypothesis required
	ErrInvalidPredicate   = "E102" // predicate fails kind or arity checks
	ErrDuplicatePredicate = "E103" // same predicate listed twice
	ErrRepeatedPoint      = "E104" // a point appears twice in one predicate
	ErrUnknownGoalPoint   = "E105" // goal names a point no hypothesis mentions
)

// ValidationError represents a problem validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled problem. Returns all errors found (does not
// fail-fast).
func Validate(p *ir.Problem) []ValidationError {
	var errs []ValidationError

	if len(p.Hypotheses) == 0 {
		errs = append(errs, ValidationError{
			Field:   "hypotheses",
			Message: "at least one hypothesis is required",
			Code:    ErrNoHypotheses,
		})
	}

	errs = append(errs, validateList("hypotheses", p.Hypotheses)...)
	errs = append(errs, validateList("goals", p.Goals)...)

	known := make(map[string]bool)
	for _, h := range p.Hypotheses {
		for _, name := range h.Points {
			known[name] = true
		}
	}
	for i, g := range p.Goals {
		for _, name := range g.Points {
			if !known[name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("goals[%d]", i),
					Message: fmt.Sprintf("%s names point %q, which no hypothesis mentions", g, name),
					Code:    ErrUnknownGoalPoint,
				})
				break
			}
		}
	}

	return errs
}

func validateList(field string, ps []ir.Predicate) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)
	for i, p := range ps {
		path := fmt.Sprintf("%s[%d]", field, i)
		if err := p.Validate(); err != nil {
			errs = append(errs, ValidationError{Field: path, Message: err.Error(), Code: ErrInvalidPredicate})
			continue
		}
		if first, ok := seen[p.String()]; ok {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("%s duplicates %s[%d]", p, field, first),
				Code:    ErrDuplicatePredicate,
			})
		} else {
			seen[p.String()] = i
		}
		if name, ok := repeatedPoint(p); ok {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("%s repeats point %q", p, name),
				Code:    ErrRepeatedPoint,
			})
		}
	}
	return errs
}

// repeatedPoint reports a point listed twice where the kind needs distinct
// points. Para, perp, cong and the angle and ratio kinds name segments, so
// a shared endpoint across segments is normal there.
func repeatedPoint(p ir.Predicate) (string, bool) {
	switch p.Kind {
	case ir.KindColl, ir.KindCyclic, ir.KindCircle, ir.KindMidp, ir.KindSimTri, ir.KindConTri:
	default:
		return "", false
	}
	groups := [][]string{p.Points}
	if p.Kind == ir.KindSimTri || p.Kind == ir.KindConTri {
		groups = [][]string{p.Points[:3], p.Points[3:]}
	}
	for _, g := range groups {
		seen := make(map[string]bool)
		for _, name := range g {
			if seen[name] {
				return name, true
			}
			seen[name] = true
		}
	}
	return "", false
}
