package engine

import (
	"container/list"

	"outcry/internal/common"
)

// location is enough to reach a resting order without scanning the book.
type location struct {
	side    common.Side
	price   uint64
	element *list.Element
}

// Registry maps the id of every resting order to where it rests. An entry
// exists exactly while the order is in a book.
type Registry struct {
	locations map[string]location
}

func NewRegistry() *Registry {
	return &Registry{
		locations: make(map[string]location),
	}
}

func (r *Registry) add(id string, loc location) {
	r.locations[id] = loc
}

func (r *Registry) lookup(id string) (location, bool) {
	loc, ok := r.locations[id]
	return loc, ok
}

func (r *Registry) remove(id string) {
	delete(r.locations, id)
}

func (r *Registry) Contains(id string) bool {
	_, ok := r.locations[id]
	return ok
}

func (r *Registry) Len() int { return len(r.locations) }
