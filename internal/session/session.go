// Package session holds the per-virtual-user key/value store.
//
// A Session is owned by exactly one virtual user for its whole lifetime.
// It is never shared between users, so it carries no locking.
package session

import (
	"fmt"
	"sort"
)

// Session is the mutable state of one virtual user.
type Session struct {
	userID string
	attrs  map[string]any
}

// New creates an empty session for the given user.
func New(userID string) *Session {
	return &Session{
		userID: userID,
		attrs:  make(map[string]any),
	}
}

// UserID returns the virtual user identifier the session belongs to.
func (s *Session) UserID() string {
	return s.userID
}

// Get returns the attribute stored under key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.attrs[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *Session) Set(key string, value any) {
	s.attrs[key] = value
}

// Remove deletes key from the session.
func (s *Session) Remove(key string) {
	delete(s.attrs, key)
}

// Contains reports whether key is present.
func (s *Session) Contains(key string) bool {
	_, ok := s.attrs[key]
	return ok
}

// Counter returns the integer counter stored under name.
// The second result is false when the counter is absent or holds a non-integer.
func (s *Session) Counter(name string) (int, bool) {
	v, ok := s.attrs[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// SetCounter stores an integer counter under name.
func (s *Session) SetCounter(name string, n int) {
	s.attrs[name] = n
}

// Increment adds one to the counter under name and returns the new value.
// A missing counter is treated as zero.
func (s *Session) Increment(name string) int {
	n, _ := s.Counter(name)
	n++
	s.attrs[name] = n
	return n
}

// Attributes returns a copy of all attributes.
func (s *Session) Attributes() map[string]any {
	out := make(map[string]any, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

// Keys returns attribute names in sorted order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.attrs))
	for k := range s.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the session for logs.
func (s *Session) String() string {
	return fmt.Sprintf("Session(user=%s, attrs=%d)", s.userID, len(s.attrs))
}
