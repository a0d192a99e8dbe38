package agenda

import (
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Index maps date keys to the appointments scheduled on that day.
// It is safe for concurrent use; writers are serialised.
type Index struct {
	mu    sync.RWMutex
	days  map[string][]Appointment
	ids   map[string]struct{}
	newID func() string
}

// Option configures an Index.
type Option func(*Index)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(ix *Index) {
		ix.newID = gen
	}
}

// NewIndex returns an empty index.
func NewIndex(opts ...Option) *Index {
	ix := &Index{
		days:  make(map[string][]Appointment),
		ids:   make(map[string]struct{}),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// CountFor returns the number of appointments under key.
func (ix *Index) CountFor(key string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.days[key])
}

// Counts returns CountFor for every key in one read.
// Keys without appointments are omitted.
func (ix *Index) Counts(keys []string) map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	counts := make(map[string]int)
	for _, k := range keys {
		if n := len(ix.days[k]); n > 0 {
			counts[k] = n
		}
	}
	return counts
}

// ListFor returns a copy of the appointments under key in insertion order.
// The result is never nil.
func (ix *Index) ListFor(key string) []Appointment {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	list := ix.days[key]
	if len(list) == 0 {
		return []Appointment{}
	}
	return slices.Clone(list)
}

// Add assigns a fresh ID to d and appends it under key.
func (ix *Index) Add(key string, d Draft) Appointment {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	appt := d.withID(ix.uniqueID())
	ix.days[key] = append(ix.days[key], appt)
	ix.ids[appt.ID] = struct{}{}
	return appt
}

// Remove deletes the appointment with id from key's list. It reports whether
// an entry was removed; an unknown id or key is a no-op.
func (ix *Index) Remove(key, id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	list := ix.days[key]
	i := slices.IndexFunc(list, func(a Appointment) bool { return a.ID == id })
	if i < 0 {
		return false
	}

	delete(ix.ids, id)
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(ix.days, key)
	} else {
		ix.days[key] = list
	}
	return true
}

// Days returns the sorted keys that have at least one appointment.
func (ix *Index) Days() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]string, 0, len(ix.days))
	for k := range ix.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// uniqueID draws IDs until one is unused. Caller must hold the write lock.
func (ix *Index) uniqueID() string {
	for {
		id := ix.newID()
		if _, taken := ix.ids[id]; !taken {
			return id
		}
	}
}

// Partitioned is a day's list split by shift, each side in insertion order.
type Partitioned struct {
	Morning   []Appointment `json:"morning"`
	Afternoon []Appointment `json:"afternoon"`
}

// Partition splits list by shift. Morning and afternoon together hold every
// element of list exactly once.
func Partition(list []Appointment) Partitioned {
	p := Partitioned{
		Morning:   []Appointment{},
		Afternoon: []Appointment{},
	}
	for _, a := range list {
		if a.Shift == Afternoon {
			p.Afternoon = append(p.Afternoon, a)
		} else {
			p.Morning = append(p.Morning, a)
		}
	}
	return p
}

// Len returns the total number of appointments.
func (p Partitioned) Len() int {
	return len(p.Morning) + len(p.Afternoon)
}
