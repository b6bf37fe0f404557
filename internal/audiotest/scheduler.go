// SPDX-License-Identifier: EPL-2.0

package audiotest

import "sync"

// ManualScheduler runs registered callbacks only when Tick is called.
type ManualScheduler struct {
	mtx  sync.Mutex
	next int
	fns  map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{fns: make(map[int]func())}
}

func (s *ManualScheduler) Register(fn func()) func() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := s.next
	s.next++
	s.fns[id] = fn

	return func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		delete(s.fns, id)
	}
}

// Tick runs every registered callback n times.
func (s *ManualScheduler) Tick(n int) {
	s.mtx.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mtx.Unlock()

	for range n {
		for _, fn := range fns {
			fn()
		}
	}
}

// Len is the number of registered callbacks.
func (s *ManualScheduler) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.fns)
}
