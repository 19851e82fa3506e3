package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_GetSet(t *testing.T) {
	s := New("user-1")

	_, ok := s.Get("token")
	assert.False(t, ok)

	s.Set("token", "abc")
	v, ok := s.Get("token")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.True(t, s.Contains("token"))

	s.Remove("token")
	assert.False(t, s.Contains("token"))
}

func TestSession_Counter(t *testing.T) {
	s := New("user-1")

	_, ok := s.Counter("i")
	assert.False(t, ok, "absent counter")

	s.SetCounter("i", 0)
	n, ok := s.Counter("i")
	require.True(t, ok)
	assert.Equal(t, 0, n)

	assert.Equal(t, 1, s.Increment("i"))
	assert.Equal(t, 2, s.Increment("i"))
}

func TestSession_CounterWrongType(t *testing.T) {
	s := New("user-1")
	s.Set("i", "not a number")

	_, ok := s.Counter("i")
	assert.False(t, ok)
}

func TestSession_IncrementMissing(t *testing.T) {
	s := New("user-1")
	assert.Equal(t, 1, s.Increment("fresh"))
}

func TestSession_AttributesIsCopy(t *testing.T) {
	s := New("user-1")
	s.Set("a", 1)

	attrs := s.Attributes()
	attrs["a"] = 2
	attrs["b"] = 3

	v, _ := s.Get("a")
	assert.Equal(t, 1, v)
	assert.False(t, s.Contains("b"))
}

func TestSession_KeysSorted(t *testing.T) {
	s := New("user-1")
	s.Set("zeta", 1)
	s.Set("alpha", 2)
	s.Set("mid", 3)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Keys())
	assert.Equal(t, "user-1", s.UserID())
}
