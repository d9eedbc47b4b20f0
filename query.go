package bitecs

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/rs/zerolog"
)

type RuleKind int

const (
	// RuleAllOf matches masks containing every listed component.
	RuleAllOf RuleKind = iota + 1
	// RuleAnyOf matches masks containing at least one listed component.
	RuleAnyOf
	// RuleExcludeOf matches masks containing none of the listed components.
	RuleExcludeOf
	// RuleOptionalOf always matches. It only subscribes the query to changes
	// of the listed components.
	RuleOptionalOf
	ruleKindEnd
)

func (k RuleKind) String() string {
	switch k {
	case RuleAllOf:
		return "all"
	case RuleAnyOf:
		return "any"
	case RuleExcludeOf:
		return "exclude"
	case RuleOptionalOf:
		return "optional"
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// Rule is a sorted set of component ids combined with one RuleKind.
type Rule struct {
	kind RuleKind
	ids  []ComponentID
	mask Mask
	key  string
}

func newRule(kind RuleKind) *Rule {
	return &Rule{kind: kind}
}

func (r *Rule) add(ids ...ComponentID) {
	for _, id := range ids {
		if i, found := slices.BinarySearch(r.ids, id); !found {
			r.ids = slices.Insert(r.ids, i, id)
		}
	}
	parts := make([]string, len(r.ids))
	for i, id := range r.ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	r.key = strings.Join(parts, "-")
	r.mask = nil
}

func (r *Rule) compile(masks maskFactory) {
	r.mask = masks.New()
	for _, id := range r.ids {
		r.mask.Set(id)
	}
}

func (r *Rule) Kind() RuleKind {
	return r.kind
}

// Key is the sorted id list joined with "-".
func (r *Rule) Key() string {
	return r.key
}

func (r *Rule) IDs() []ComponentID {
	return slices.Clone(r.ids)
}

func (r *Rule) IsEmpty() bool {
	return len(r.ids) == 0
}

func (r *Rule) isMatch(m Mask) bool {
	switch r.kind {
	case RuleAllOf:
		return m.Include(r.mask)
	case RuleAnyOf:
		return m.Any(r.mask)
	case RuleExcludeOf:
		return !m.Any(r.mask)
	}
	return true
}

// Matcher combines rules into the predicate of a Query. Rules of the same
// kind are merged. Obtain one from World.Matcher and finish with Build.
type Matcher struct {
	world    *World
	rules    [ruleKindEnd]*Rule
	compiled bool
}

func newMatcher(w *World) *Matcher {
	return &Matcher{world: w}
}

func (m *Matcher) AllOf(comps ...Component) *Matcher {
	return m.with(RuleAllOf, comps)
}

func (m *Matcher) AnyOf(comps ...Component) *Matcher {
	return m.with(RuleAnyOf, comps)
}

func (m *Matcher) ExcludeOf(comps ...Component) *Matcher {
	return m.with(RuleExcludeOf, comps)
}

func (m *Matcher) OptionalOf(comps ...Component) *Matcher {
	return m.with(RuleOptionalOf, comps)
}

func (m *Matcher) with(kind RuleKind, comps []Component) *Matcher {
	if m.compiled {
		m.world.log.Warn().Str("query", m.Key()).Msg("matcher already built, rule ignored")
		return m
	}
	ids := make([]ComponentID, 0, len(comps))
	for _, c := range comps {
		if !m.world.registry.Owns(c) {
			m.world.log.Error().
				Str("component", c.Name()).
				Stringer("rule", kind).
				Msg("matcher references an unregistered component, ignored")
			continue
		}
		ids = append(ids, c.ID())
	}
	if len(ids) == 0 {
		return m
	}
	if m.rules[kind] == nil {
		m.rules[kind] = newRule(kind)
	}
	m.rules[kind].add(ids...)
	return m
}

// Rules returns the non-empty rules ordered by kind.
func (m *Matcher) Rules() []*Rule {
	rules := make([]*Rule, 0, len(m.rules))
	for _, r := range m.rules {
		if r != nil && !r.IsEmpty() {
			rules = append(rules, r)
		}
	}
	return rules
}

// Key identifies the matcher; matchers with equal keys share one Query.
func (m *Matcher) Key() string {
	var b strings.Builder
	for _, r := range m.Rules() {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(r.kind.String())
		b.WriteByte(':')
		b.WriteString(r.key)
	}
	return b.String()
}

// IDs returns every component id referenced by any rule, ascending.
func (m *Matcher) IDs() []ComponentID {
	var ids []ComponentID
	for _, r := range m.Rules() {
		ids = append(ids, r.ids...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// bounded reports whether membership requires some component. Unbounded
// matchers (only exclusions or nothing) can be affected by any change.
func (m *Matcher) bounded() bool {
	for _, kind := range []RuleKind{RuleAllOf, RuleAnyOf} {
		if r := m.rules[kind]; r != nil && !r.IsEmpty() {
			return true
		}
	}
	return false
}

func (m *Matcher) compile(masks maskFactory) {
	for _, r := range m.Rules() {
		r.compile(masks)
	}
	m.compiled = true
}

func (m *Matcher) isMatch(mask Mask) bool {
	for _, r := range m.rules {
		if r != nil && !r.IsEmpty() && !r.isMatch(mask) {
			return false
		}
	}
	return true
}

// Build returns the Query for this matcher, creating it on first use.
func (m *Matcher) Build() (*Query, error) {
	if m.world.queries == nil {
		return nil, ErrWorldNotInitialized
	}
	return m.world.queries.add(m)
}

// Query is the cached set of entities matching a Matcher. The World keeps it
// current: entities touched by a command batch are re-tested once the batch
// has been applied, so no full rescans happen after the initial fill.
type Query struct {
	matcher  *Matcher
	entities *entityPool
	log      *zerolog.Logger

	dense   []Entity
	sparse  []int
	touched []Entity
	queued  bool
}

func newQuery(m *Matcher, entities *entityPool, logger *zerolog.Logger) *Query {
	return &Query{
		matcher:  m,
		entities: entities,
		log:      logger,
	}
}

func (q *Query) index(e Entity) (int, bool) {
	if int(e) >= len(q.sparse) {
		return 0, false
	}
	idx := q.sparse[e]
	return idx, idx != tombstone
}

func (q *Query) insert(e Entity) {
	if int(e) >= len(q.sparse) {
		oldLen := len(q.sparse)
		sparse := make([]int, max(oldLen*2, int(e)+1, 128))
		copy(sparse, q.sparse)
		for i := oldLen; i < len(sparse); i++ {
			sparse[i] = tombstone
		}
		q.sparse = sparse
	}
	q.sparse[e] = len(q.dense)
	q.dense = append(q.dense, e)
}

func (q *Query) delete(e Entity) {
	idx, ok := q.index(e)
	if !invariant(ok, q.log, fmt.Sprintf("query %q does not track entity %d", q.Key(), e)) {
		return
	}
	last := len(q.dense) - 1
	if idx != last {
		moved := q.dense[last]
		q.dense[idx] = moved
		q.sparse[moved] = idx
	}
	q.dense = q.dense[:last]
	q.sparse[e] = tombstone
}

// populate fills a new query from the current entity table. With an AllOf
// rule only the owners of its rarest component are tested.
func (q *Query) populate() {
	visit := func(e Entity) {
		if q.matcher.isMatch(q.entities.mask(e)) {
			q.insert(e)
		}
	}
	r := q.matcher.rules[RuleAllOf]
	if r == nil || r.IsEmpty() {
		q.entities.forEachEntity(visit)
		return
	}
	rarest := r.ids[0]
	for _, id := range r.ids[1:] {
		if q.entities.components.count(id) < q.entities.components.count(rarest) {
			rarest = id
		}
	}
	q.entities.components.store(rarest).each(visit)
}

// batchChange records entities whose masks are about to change.
func (q *Query) batchChange(entities []Entity) {
	q.touched = append(q.touched, entities...)
}

// refresh re-tests every touched entity against the matcher.
func (q *Query) refresh() {
	for _, e := range q.touched {
		m := q.entities.mask(e)
		match := m != nil && q.matcher.isMatch(m)
		_, tracked := q.index(e)
		switch {
		case match && !tracked:
			q.insert(e)
		case !match && tracked:
			q.delete(e)
		}
	}
	q.touched = q.touched[:0]
	q.queued = false
}

func (q *Query) Matcher() *Matcher {
	return q.matcher
}

func (q *Query) Key() string {
	return q.matcher.Key()
}

// Len returns the number of matching entities.
func (q *Query) Len() int {
	return len(q.dense)
}

func (q *Query) Contains(e Entity) bool {
	_, ok := q.index(e)
	return ok
}

// Entities yields the matching entities. The set only changes while the
// World applies commands, so it is safe to request changes while iterating.
func (q *Query) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range q.dense {
			if !yield(e) {
				return
			}
		}
	}
}

func (q *Query) ForEach(fn func(Entity)) {
	for _, e := range q.dense {
		fn(e)
	}
}

// Snapshot copies the matching entities.
func (q *Query) Snapshot() []Entity {
	return iter_util.Collect(q.Entities())
}

func (q *Query) Cursor() *Cursor {
	return newCursor(q)
}

func (q *Query) clear() {
	q.dense = q.dense[:0]
	q.sparse = nil
	q.touched = q.touched[:0]
	q.queued = false
}
