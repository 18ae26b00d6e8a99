// Package engine implements the forward-chaining driver.
//
// The driver owns one database.Database and saturates it: every accepted
// fact is expanded into its arrangements, the rule catalog proposes
// conclusions, and conclusions not yet entailed are queued. When the queue
// empties, every stored group that was last expanded at an older database
// version is queued again; the run ends when such a pass finds nothing
// stale. Facts given in a later Run therefore reach the rules together
// with everything stored before.
//
// Evaluation is single-threaded and deterministic. The queue is kept in
// kind priority order with ties broken by arrival, rules run in declaration
// order, and every group read by a rule is listed in ascending id order.
//
// The database carries an explicit generation counter. The driver advances
// it once per accepted fact and remembers, per fact, the version
// (generation plus allocated lines and classes) at which it was last
// expanded; a fact popped again at the same version is skipped.
package engine
