package ir

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParsePredicate reads one predicate in textual form: "tag(P1,P2,...)",
// with an optional trailing period.
func ParsePredicate(s string) (Predicate, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Predicate{}, fmt.Errorf("malformed predicate %q", s)
	}
	kind, err := ParseKind(strings.TrimSpace(s[:open]))
	if err != nil {
		return Predicate{}, err
	}
	body := s[open+1 : len(s)-1]
	var points []string
	if strings.TrimSpace(body) != "" {
		points = strings.Split(body, ",")
	}
	return NewPredicate(kind, points...)
}

// ParsePredicates reads one predicate per line. Blank lines and lines
// starting with '#' are skipped.
func ParsePredicates(r io.Reader) ([]Predicate, error) {
	var out []Predicate
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		p, err := ParsePredicate(text)
		if err != nil {
			return nil, &ParseError{Line: line, Text: text, Err: err}
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseProblemText reads a text problem: one predicate per line, goals
// prefixed with '?'. Comments and blank lines are skipped.
func ParseProblemText(name string, r io.Reader) (Problem, error) {
	prob := Problem{Name: name}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		goal := strings.HasPrefix(text, "?")
		p, err := ParsePredicate(strings.TrimPrefix(text, "?"))
		if err != nil {
			return Problem{}, &ParseError{Line: line, Text: text, Err: err}
		}
		if goal {
			prob.Goals = append(prob.Goals, p)
		} else {
			prob.Hypotheses = append(prob.Hypotheses, p)
		}
	}
	if err := sc.Err(); err != nil {
		return Problem{}, err
	}
	return prob, nil
}

// ParseError locates a bad line in a predicate listing.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
