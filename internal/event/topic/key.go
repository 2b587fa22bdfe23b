package topic

import (
	"strconv"
	"sync/atomic"
)

var lastKeyID atomic.Uint64

// Key is the identity of one logical event. Keys are compared by pointer;
// the name is only used for logging and wildcard whitelists.
type Key struct {
	id   uint64
	name Topic
}

// NewKey creates a new, distinct key with the given name.
func NewKey(name Topic) *Key {
	return &Key{
		id:   lastKeyID.Add(1),
		name: name,
	}
}

// Name returns the key's topic name.
func (k *Key) Name() Topic {
	if k == nil {
		return ""
	}
	return k.name
}

// ID returns the process-unique sequence number of the key.
func (k *Key) ID() uint64 {
	if k == nil {
		return 0
	}
	return k.id
}

// String returns "name#id".
func (k *Key) String() string {
	if k == nil {
		return "<nil>"
	}
	return string(k.name) + "#" + strconv.FormatUint(k.id, 10)
}
