package bitecs

// addOps is the list of pending additions for one component type.
type addOps struct {
	entities   []Entity
	components []any
	size       int
}

func newAddOps() *addOps {
	return &addOps{
		entities:   make([]Entity, 64),
		components: make([]any, 64),
	}
}

func (o *addOps) push(e Entity, c any) {
	if o.size == len(o.entities) {
		n := nextCapacity(len(o.entities), 64)
		entities := make([]Entity, n)
		copy(entities, o.entities)
		components := make([]any, n)
		copy(components, o.components)
		o.entities, o.components = entities, components
	}
	o.entities[o.size] = e
	o.components[o.size] = c
	o.size++
}

func (o *addOps) touched() []Entity {
	return o.entities[:o.size]
}

// reset empties the list and keeps its capacity.
func (o *addOps) reset() {
	clear(o.components[:o.size])
	o.size = 0
}

// delOps is the list of pending removals for one component type.
type delOps struct {
	entities []Entity
	size     int
}

func newDelOps() *delOps {
	return &delOps{entities: make([]Entity, 64)}
}

func (o *delOps) push(e Entity) {
	if o.size == len(o.entities) {
		entities := make([]Entity, nextCapacity(len(o.entities), 64))
		copy(entities, o.entities)
		o.entities = entities
	}
	o.entities[o.size] = e
	o.size++
}

func (o *delOps) touched() []Entity {
	return o.entities[:o.size]
}

func (o *delOps) reset() {
	o.size = 0
}

// opQueue is the command buffer. Structural changes requested during a tick
// are recorded per component type and applied by process, which the World
// runs once at the start of every tick before any system.
type opQueue struct {
	entities *entityPool

	adds     []*addOps
	dels     []*delOps
	queries  [][]*Query
	notified []*Query
	pending  int
}

func newOpQueue(entities *entityPool, componentCount int) *opQueue {
	return &opQueue{
		entities: entities,
		adds:     make([]*addOps, componentCount+1),
		dels:     make([]*delOps, componentCount+1),
		queries:  make([][]*Query, componentCount+1),
	}
}

func (q *opQueue) valid(id ComponentID) bool {
	return id != 0 && int(id) < len(q.adds)
}

// registerQuery subscribes query to structural changes of every id.
func (q *opQueue) registerQuery(query *Query, ids []ComponentID) {
	for _, id := range ids {
		if q.valid(id) {
			q.queries[id] = append(q.queries[id], query)
		}
	}
}

func (q *opQueue) enqueueAdd(e Entity, id ComponentID, c any) {
	if !q.valid(id) {
		return
	}
	ops := q.adds[id]
	if ops == nil {
		ops = newAddOps()
		q.adds[id] = ops
	}
	ops.push(e, c)
	q.pending++
}

func (q *opQueue) enqueueRemove(e Entity, id ComponentID) {
	if !q.valid(id) {
		return
	}
	ops := q.dels[id]
	if ops == nil {
		ops = newDelOps()
		q.dels[id] = ops
	}
	ops.push(e)
	q.pending++
}

// enqueueDestroy queues the removal of every component e has right now.
func (q *opQueue) enqueueDestroy(e Entity) bool {
	if q.entities.mask(e) == nil {
		return false
	}
	q.entities.forEachComponent(e, func(id ComponentID) {
		q.enqueueRemove(e, id)
	})
	return true
}

// process applies every queued change. All removals, for every type, run
// before any addition so an entity can be stripped and re-equipped within
// one tick. Queries registered on a type are told which entities it touched
// before the change is applied and re-test them once everything is done.
func (q *opQueue) process() {
	if q.pending == 0 {
		return
	}
	for id, ops := range q.dels {
		if ops == nil || ops.size == 0 {
			continue
		}
		touched := ops.touched()
		q.notify(ComponentID(id), touched)
		for _, e := range touched {
			q.entities.removeComponent(e, ComponentID(id))
		}
		ops.reset()
	}
	for id, ops := range q.adds {
		if ops == nil || ops.size == 0 {
			continue
		}
		q.notify(ComponentID(id), ops.touched())
		for i := 0; i < ops.size; i++ {
			q.entities.addComponent(ops.entities[i], ComponentID(id), ops.components[i])
		}
		ops.reset()
	}
	q.pending = 0

	q.entities.recycleDestroyed()
	for _, query := range q.notified {
		query.refresh()
	}
	clear(q.notified)
	q.notified = q.notified[:0]
}

func (q *opQueue) notify(id ComponentID, touched []Entity) {
	for _, query := range q.queries[id] {
		query.batchChange(touched)
		if !query.queued {
			query.queued = true
			q.notified = append(q.notified, query)
		}
	}
}

// pendingOps returns the number of changes waiting for process.
func (q *opQueue) pendingOps() int {
	return q.pending
}

// clear drops pending changes and hands queued instances back to their
// stores. Query subscriptions survive.
func (q *opQueue) clear() {
	for id, ops := range q.adds {
		if ops == nil {
			continue
		}
		if store := q.entities.components.store(ComponentID(id)); store != nil {
			for _, c := range ops.components[:ops.size] {
				store.release(c)
			}
		}
		ops.reset()
	}
	for _, ops := range q.dels {
		if ops != nil {
			ops.reset()
		}
	}
	for _, query := range q.notified {
		query.queued = false
	}
	clear(q.notified)
	q.notified = q.notified[:0]
	q.pending = 0
}
