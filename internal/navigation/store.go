package navigation

import "sync"

// Store keeps one State per user. Update serialises transitions for a user;
// different users never contend on the same lock.
type Store struct {
	mu     sync.Mutex
	states map[string]*userState
}

type userState struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{states: make(map[string]*userState)}
}

func (s *Store) entry(user string) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.states[user]
	if !ok {
		e = &userState{state: Initial()}
		s.states[user] = e
	}
	return e
}

func (s *Store) Get(user string) State {
	e := s.entry(user)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Dispatch applies a to the user's state and returns the result.
func (s *Store) Dispatch(user string, a Action) State {
	e := s.entry(user)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, a)
	return e.state
}

// Forget drops the user's state.
func (s *Store) Forget(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, user)
}
