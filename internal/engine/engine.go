package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/database"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
	"github.com/JiajunSong-Bigai/inference-engine/internal/rules"
)

// Driver saturates one Database with the rule catalog.
//
// A Driver is not safe for concurrent use. Successive Run calls continue
// from the facts earlier runs accepted.
type Driver struct {
	db            *database.Database
	catalog       *rules.Catalog
	ids           RunIDGenerator
	logger        *slog.Logger
	maxIterations int
	memo          *expansionMemo
}

// Option configures a Driver.
type Option func(*Driver)

// WithMaxIterations sets the ceiling on queue pops per run.
//
// Default: 20000 (DefaultMaxIterations). A non-positive value disables the
// ceiling.
func WithMaxIterations(n int) Option {
	return func(d *Driver) {
		d.maxIterations = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(d *Driver) {
		if g != nil {
			d.ids = g
		}
	}
}

// WithCatalog replaces the built-in rule catalog.
func WithCatalog(c *rules.Catalog) Option {
	return func(d *Driver) {
		if c != nil {
			d.catalog = c
		}
	}
}

// New creates a Driver over db. A nil db starts from an empty database.
func New(db *database.Database, opts ...Option) *Driver {
	if db == nil {
		db = database.New()
	}
	d := &Driver{
		db:            db,
		catalog:       rules.Default(),
		ids:           UUIDv7Generator{},
		logger:        slog.Default(),
		maxIterations: DefaultMaxIterations,
		memo:          newExpansionMemo(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Database returns the database the driver saturates.
func (d *Driver) Database() *database.Database {
	return d.db
}

// Derivation is one fact a run added to the database.
type Derivation struct {
	// Generation is the database generation right after the fact was added.
	Generation uint64 `json:"generation"`

	// Rule is the id of the proposing rule, empty for hypotheses.
	Rule string `json:"rule,omitempty"`

	Fact      ir.Fact      `json:"-"`
	Predicate ir.Predicate `json:"predicate"`
}

// Hypothesis reports whether the fact was given rather than derived.
func (d Derivation) Hypothesis() bool {
	return d.Rule == ""
}

// Result summarizes one run.
type Result struct {
	RunID string `json:"run_id"`

	// Increased lists the facts the run added, in kind priority order.
	Increased []Derivation `json:"increased"`

	// Iterations counts queue pops.
	Iterations int `json:"iterations"`

	// Generation is the database generation when the run ended.
	Generation uint64 `json:"generation"`
}

// Run adds the hypotheses and saturates the database.
//
// On an iteration ceiling or context cancellation Run returns the partial
// Result together with the error; the facts accepted so far stay in the
// database and it remains usable.
func (d *Driver) Run(ctx context.Context, hypotheses []ir.Predicate) (*Result, error) {
	runID := d.ids.Generate()
	log := d.logger.With("run_id", runID)
	log.Info("run started",
		"hypotheses", len(hypotheses),
		"generation", d.db.Generation(),
	)

	for i, p := range hypotheses {
		if err := p.Validate(); err != nil {
			return nil, NewInvalidPredicateError(runID, i, err)
		}
	}

	res := &Result{RunID: runID}
	q := newWorklist()

	for _, s := range d.seeds(hypotheses) {
		if d.db.AddFact(s.fact) {
			d.record(res, s)
		}
		q.Push(s)
	}
	q.Sort()

	budget := newIterationBudget(d.maxIterations)
	for sweep := 0; ; sweep++ {
		for q.Len() > 0 {
			if err := ctx.Err(); err != nil {
				log.Warn("run cancelled", "iterations", res.Iterations, "queued", q.Len())
				return d.finish(res), fmt.Errorf("run %s: %w", runID, err)
			}
			if err := budget.Check(runID); err != nil {
				log.Error("max iterations exceeded",
					"iterations", res.Iterations,
					"limit", d.maxIterations,
					"queued", q.Len(),
					"event", "iteration_limit",
				)
				return d.finish(res), fmt.Errorf("saturate: %w", err)
			}

			p, _ := q.Pop()
			res.Iterations++
			d.expand(log, q, res, p)
		}

		// Rules read more than their premise: a group expanded before a
		// later fact grew a line, merged a class or supplied a second
		// premise has not seen that fact yet.
		n := d.requeueStale(q)
		if n == 0 {
			break
		}
		log.Debug("re-expanding stale groups", "sweep", sweep, "queued", n)
	}

	d.finish(res)
	log.Info("run finished",
		"increased", len(res.Increased),
		"iterations", res.Iterations,
		"generation", res.Generation,
		"expanded", d.memo.Len(),
	)
	return res, nil
}

// expand accepts p if it is new, then queues the conclusions the catalog
// draws from its forms. A fact already expanded at the current version is
// skipped.
func (d *Driver) expand(log *slog.Logger, q *worklist, res *Result, p pending) {
	if d.db.AddFact(p.fact) {
		d.record(res, p)
	}

	key := d.db.Key(p.fact)
	v := d.db.Version()
	if d.memo.Expanded(key, v) {
		log.Debug("skipping expanded fact", "fact", d.db.Describe(p.fact), "generation", v.Generation)
		return
	}
	d.memo.Record(key, v)

	forms := d.db.AllForms(p.fact)
	conclusions := d.catalog.DeduceAll(d.db, forms)
	queued := 0
	for _, c := range conclusions {
		if d.db.ContainsFact(c.Fact) {
			continue
		}
		if q.Push(pending{key: d.db.Key(c.Fact), fact: c.Fact, rule: c.Rule}) {
			queued++
		}
	}
	q.Sort()

	log.Debug("expanded fact",
		"fact", d.db.Describe(p.fact),
		"forms", len(forms),
		"conclusions", len(conclusions),
		"queued", queued,
	)
}

// requeueStale queues one fact per stored group whose last expansion
// predates the current version, and returns how many it queued. The run
// is saturated once a full pass over the groups queues nothing.
func (d *Driver) requeueStale(q *worklist) int {
	v := d.db.Version()
	n := 0
	for _, f := range d.db.Facts() {
		key := d.db.Key(f)
		if d.memo.Expanded(key, v) {
			continue
		}
		if q.Push(pending{key: key, fact: f}) {
			n++
		}
	}
	q.Sort()
	return n
}

// seeds normalizes the hypotheses, drops repeats and orders them by kind.
func (d *Driver) seeds(hypotheses []ir.Predicate) []pending {
	out := make([]pending, 0, len(hypotheses))
	seen := make(map[string]struct{}, len(hypotheses))
	for _, p := range hypotheses {
		f, err := d.db.FromPredicate(p)
		if err != nil {
			// Validated by Run.
			continue
		}
		key := d.db.Key(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, pending{key: key, fact: f})
	}
	slices.SortStableFunc(out, func(a, b pending) int {
		return a.fact.Kind().Compare(b.fact.Kind())
	})
	return out
}

func (d *Driver) record(res *Result, p pending) {
	gen := d.db.Bump()
	res.Increased = append(res.Increased, Derivation{
		Generation: gen,
		Rule:       p.rule,
		Fact:       p.fact,
		Predicate:  d.db.Phrase(p.fact),
	})
}

func (d *Driver) finish(res *Result) *Result {
	slices.SortStableFunc(res.Increased, func(a, b Derivation) int {
		return a.Fact.Kind().Compare(b.Fact.Kind())
	})
	res.Generation = d.db.Generation()
	return res
}

// Prove reports whether p is entailed by the current database. It never
// changes the database.
func (d *Driver) Prove(p ir.Predicate) bool {
	return d.db.Prove(p)
}

// ProveAll checks every goal and returns the ones that are not entailed.
func (d *Driver) ProveAll(goals []ir.Predicate) []ir.Predicate {
	var failed []ir.Predicate
	for _, g := range goals {
		if !d.db.Prove(g) {
			failed = append(failed, g)
		}
	}
	return failed
}
