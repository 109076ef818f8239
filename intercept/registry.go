package intercept

import "sync"

// interceptorList interceptors of one event name plus the leak-warning flag
type interceptorList struct {
	entries []*Interceptor
	warned  bool
}

// registry event name -> interceptor list
// A name is present only while its list is non-empty.
type registry struct {
	mu    sync.RWMutex
	lists map[string]*interceptorList
	names []string // first-registration order
	max   int
}

func newRegistry(limit int) *registry {
	return &registry{
		lists: make(map[string]*interceptorList),
		max:   limit,
	}
}

// add appends i and reports whether this append crossed the ceiling for the first time
func (r *registry) add(name string, i *Interceptor) (count, limit int, warn bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[name]
	if !ok {
		list = &interceptorList{}
		r.lists[name] = list
		r.names = append(r.names, name)
	}
	list.entries = append(list.entries, i)

	count = len(list.entries)
	limit = r.max
	if limit > 0 && count > limit && !list.warned {
		list.warned = true
		warn = true
	}
	return count, limit, warn
}

// remove deletes the most recently registered occurrence of i
func (r *registry) remove(name string, i *Interceptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[name]
	if !ok {
		return false
	}

	idx := -1
	for j := len(list.entries) - 1; j >= 0; j-- {
		if list.entries[j] == i {
			idx = j
			break
		}
	}
	if idx < 0 {
		return false
	}

	if len(list.entries) == 1 {
		r.deleteLocked(name)
		return true
	}

	entries := make([]*Interceptor, 0, len(list.entries)-1)
	entries = append(entries, list.entries[:idx]...)
	list.entries = append(entries, list.entries[idx+1:]...)
	return true
}

// snapshot copy of the list for name (nil when absent)
func (r *registry) snapshot(name string) []*Interceptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.lists[name]
	if !ok {
		return nil
	}
	out := make([]*Interceptor, len(list.entries))
	copy(out, list.entries)
	return out
}

func (r *registry) count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if list, ok := r.lists[name]; ok {
		return len(list.entries)
	}
	return 0
}

// total interceptors across every event
func (r *registry) total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, list := range r.lists {
		n += len(list.entries)
	}
	return n
}

func (r *registry) has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.lists[name]
	return ok
}

func (r *registry) eventNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *registry) empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lists) == 0
}

func (r *registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lists = make(map[string]*interceptorList)
	r.names = nil
}

func (r *registry) setMax(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.max = n
}

func (r *registry) getMax() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.max
}

func (r *registry) deleteLocked(name string) {
	delete(r.lists, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i:i], r.names[i+1:]...)
			break
		}
	}
}
