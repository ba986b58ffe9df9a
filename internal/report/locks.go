package report

import "sync"

// keyedMutex serializes lifecycle mutations per report id. Two concurrent
// transcribe calls against the same id run one after the other instead of
// racing on the status column; operations on different ids never contend.
type keyedMutex struct {
	mu   sync.Mutex
	held map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{held: make(map[int64]*lockEntry)}
}

// lock acquires the mutex for id and returns its unlock func. Entries are
// removed once the last waiter releases, so the map stays bounded by the
// number of in-flight operations.
func (k *keyedMutex) lock(id int64) (unlock func()) {
	k.mu.Lock()
	e := k.held[id]
	if e == nil {
		e = &lockEntry{}
		k.held[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.held, id)
		}
		k.mu.Unlock()
	}
}
