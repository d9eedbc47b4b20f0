package bitecs

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// queryPool deduplicates queries by matcher key. Each query is subscribed to
// the command buffer once, when it is first built.
type queryPool struct {
	entities *entityPool
	queue    *opQueue
	masks    maskFactory
	cache    *SimpleCache[*Query]
	log      *zerolog.Logger
}

func newQueryPool(entities *entityPool, queue *opQueue, masks maskFactory, limit int, logger *zerolog.Logger) *queryPool {
	return &queryPool{
		entities: entities,
		queue:    queue,
		masks:    masks,
		cache:    newSimpleCache[*Query](limit),
		log:      logger,
	}
}

func (p *queryPool) get(key string) (*Query, bool) {
	idx, ok := p.cache.GetIndex(key)
	if !ok {
		return nil, false
	}
	return *p.cache.GetItem(idx), true
}

// add returns the query for m, building and filling it on first use.
func (p *queryPool) add(m *Matcher) (*Query, error) {
	key := m.Key()
	if q, ok := p.get(key); ok {
		return q, nil
	}
	m.compile(p.masks)
	q := newQuery(m, p.entities, p.log)
	if _, err := p.cache.Register(key, q); err != nil {
		return nil, eris.Wrapf(err, "building query %q", key)
	}
	q.populate()

	ids := m.IDs()
	if !m.bounded() {
		ids = make([]ComponentID, 0, p.entities.registry.ComponentCount())
		for id := 1; id <= p.entities.registry.ComponentCount(); id++ {
			ids = append(ids, ComponentID(id))
		}
	}
	p.queue.registerQuery(q, ids)

	p.log.Debug().Str("query", key).Int("matched", q.Len()).Msg("query built")
	return q, nil
}

func (p *queryPool) len() int {
	return p.cache.Len()
}

// clear empties every query. Subscriptions and keys are kept so systems can
// keep using the queries they built.
func (p *queryPool) clear() {
	p.cache.Each(func(_ int, q **Query) {
		(*q).clear()
	})
}
