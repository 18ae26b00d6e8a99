package engine

import "github.com/JiajunSong-Bigai/inference-engine/internal/database"

// expansionMemo remembers, per fact key, the database version at which the
// fact was last expanded. Expanding the same fact twice at one version
// cannot yield anything new, so the driver skips it.
//
// The memo lives on the Driver and survives across runs, which is what
// makes an empty incremental run a no-op.
type expansionMemo struct {
	used map[string]database.Version
}

func newExpansionMemo() *expansionMemo {
	return &expansionMemo{used: make(map[string]database.Version)}
}

// Expanded reports whether key was expanded at version v.
func (m *expansionMemo) Expanded(key string, v database.Version) bool {
	got, ok := m.used[key]
	return ok && got == v
}

// Record marks key as expanded at version v.
func (m *expansionMemo) Record(key string, v database.Version) {
	m.used[key] = v
}

// Len returns the number of facts ever expanded.
func (m *expansionMemo) Len() int {
	return len(m.used)
}
