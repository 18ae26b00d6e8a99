package ir

// Problem is a named set of hypotheses and goals.
type Problem struct {
	Name       string      `json:"name"`
	Hypotheses []Predicate `json:"hypotheses"`
	Goals      []Predicate `json:"goals,omitempty"`
}

// Points returns every distinct point name in first-appearance order.
func (p Problem) Points() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]Predicate{p.Hypotheses, p.Goals} {
		for _, pr := range list {
			for _, name := range pr.Points {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
	}
	return out
}
