package event

import (
	"sync"

	"github.com/dshills/chartkit/internal/event/topic"
)

// Owner is an object that dynamic topics can be scoped to. Owners are
// compared by identity, so implementations are pointer types.
type Owner interface {
	ID() string
}

type ownedName struct {
	owner Owner
	name  string
}

// TopicRegistry memoizes dynamic topic keys per (owner, logical name). The
// same owner and name always yield the same key until the owner is released.
// Callers must use a single payload type per name.
type TopicRegistry struct {
	mu        sync.Mutex
	namespace string
	keys      map[ownedName]*topic.Key
	names     map[Owner][]string
}

// NewTopicRegistry creates a registry whose key names are prefixed with
// namespace.
func NewTopicRegistry(namespace string) *TopicRegistry {
	return &TopicRegistry{
		namespace: namespace,
		keys:      make(map[ownedName]*topic.Key),
		names:     make(map[Owner][]string),
	}
}

// Namespace returns the registry's name prefix.
func (r *TopicRegistry) Namespace() string {
	return r.namespace
}

// Dynamic returns the topic for (owner, name), creating it on first use. It
// panics with ErrInvalidTopic for an empty or wildcard name.
func Dynamic[T any](r *TopicRegistry, owner Owner, name string) Topic[T] {
	return Topic[T]{key: r.key(owner, name)}
}

func (r *TopicRegistry) key(owner Owner, name string) *topic.Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	on := ownedName{owner: owner, name: name}
	if k, ok := r.keys[on]; ok {
		return k
	}

	var ownerID string
	if owner != nil {
		ownerID = owner.ID()
	}
	k := topic.NewKey(checkName(topic.Join(r.namespace, ownerID).Child(name)))
	r.keys[on] = k
	r.names[owner] = append(r.names[owner], name)
	return k
}

// Release forgets every key created for owner. Later lookups create new keys,
// so owners are released only once nothing is subscribed on their topics.
func (r *TopicRegistry) Release(owner Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.names[owner] {
		delete(r.keys, ownedName{owner: owner, name: name})
	}
	delete(r.names, owner)
}

// Len returns the number of memoized keys.
func (r *TopicRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

var defaultTopics = NewTopicRegistry("")

// DynamicTopic returns the (owner, name) topic from the package registry.
func DynamicTopic[T any](owner Owner, name string) Topic[T] {
	return Dynamic[T](defaultTopics, owner, name)
}

// ReleaseTopics releases owner's keys from the package registry.
func ReleaseTopics(owner Owner) {
	defaultTopics.Release(owner)
}
