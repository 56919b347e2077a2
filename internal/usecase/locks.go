package usecase

import "sync"

// seatLocks serializes read-modify-write operations per seat. Booking
// requests, bus callbacks and timer firings for the same seat run on
// different goroutines; holding the seat's lock for the whole load,
// decide, persist sequence keeps them from tearing each other's state.
type seatLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSeatLocks() *seatLocks {
	return &seatLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for seatID and returns its unlock func.
func (l *seatLocks) Lock(seatID string) func() {
	l.mu.Lock()
	m, ok := l.locks[seatID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[seatID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
