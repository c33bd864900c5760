package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager(16)
	s := m.Create("pm@example.com")
	require.NotEmpty(t, s.Token)
	require.NotNil(t, s.Trail)

	got, ok := m.Get(s.Token)
	require.True(t, ok)
	assert.Equal(t, "pm@example.com", got.Owner)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager(16)
	a := m.Create("a@example.com")
	b := m.Create("b@example.com")

	a.Trail.Append("assistant", "draft for a")
	assert.Equal(t, 1, a.Trail.Len())
	assert.Equal(t, 0, b.Trail.Len())

	a.AppendChat("user", "idea")
	assert.Empty(t, b.ChatContext(6))
}

func TestDelete(t *testing.T) {
	m := NewManager(16)
	s := m.Create("pm@example.com")
	m.Delete(s.Token)

	_, ok := m.Get(s.Token)
	assert.False(t, ok)
}

func TestChatContextReturnsLastN(t *testing.T) {
	m := NewManager(16)
	s := m.Create("pm@example.com")
	for i := 0; i < 10; i++ {
		s.AppendChat("user", fmt.Sprintf("m%d", i))
	}

	ctx := s.ChatContext(6)
	require.Len(t, ctx, 6)
	assert.Equal(t, "m4", ctx[0].Content)
	assert.Equal(t, "m9", ctx[5].Content)
}
