package interceptor

import (
	"fmt"
	"sort"

	"github.com/patrickmn/go-cache"
)

// Registry stores method descriptors keyed by "Type.Name". It is safe for
// concurrent use.
type Registry struct {
	methods *cache.Cache
}

// NewRegistry creates an empty registry. Entries never expire.
func NewRegistry() *Registry {
	return &Registry{methods: cache.New(cache.NoExpiration, 0)}
}

// Register adds methods in order, stopping at the first one that is invalid
// or whose key already exists. Methods added before the failure stay
// registered.
func (r *Registry) Register(methods ...*Method) error {
	for _, m := range methods {
		if m == nil || m.typeName == "" || m.name == "" {
			return ErrInvalidMethod
		}
		if err := r.methods.Add(m.Key(), m, cache.NoExpiration); err != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateMethod, m.Key())
		}
	}
	return nil
}

// MustRegister is Register but panics on failure.
func (r *Registry) MustRegister(methods ...*Method) {
	if err := r.Register(methods...); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for typeName.name.
func (r *Registry) Lookup(typeName, name string) (*Method, error) {
	key := typeName + "." + name
	v, ok := r.methods.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, key)
	}
	return v.(*Method), nil
}

// Methods returns every registered descriptor ordered by key.
func (r *Registry) Methods() []*Method {
	items := r.methods.Items()
	methods := make([]*Method, 0, len(items))
	for _, item := range items {
		methods = append(methods, item.Object.(*Method))
	}
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Key() < methods[j].Key()
	})
	return methods
}

// Len is the number of registered methods.
func (r *Registry) Len() int {
	return r.methods.ItemCount()
}
