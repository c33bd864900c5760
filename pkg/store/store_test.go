package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListArtifacts(t *testing.T) {
	s := openTestStore(t)

	id, err := s.SaveArtifact(&ArtifactRecord{
		Owner:         "pm@example.com",
		Subject:       "Widget",
		SourceInput:   "a gadget for gardens",
		Output:        "# PRD\n...",
		IsNewCreation: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.ListArtifacts("pm@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Widget", got[0].Subject)
	assert.True(t, got[0].IsNewCreation)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestListArtifactsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC()
	for i, subject := range []string{"first", "second", "third"} {
		_, err := s.SaveArtifact(&ArtifactRecord{
			Owner:     "pm@example.com",
			Subject:   subject,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := s.ListArtifacts("pm@example.com")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Subject)
	assert.Equal(t, "first", got[2].Subject)
}

func TestListArtifactsScopedToOwner(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SaveArtifact(&ArtifactRecord{Owner: "a@example.com", Subject: "A"})
	require.NoError(t, err)
	_, err = s.SaveArtifact(&ArtifactRecord{Owner: "b@example.com", Subject: "B"})
	require.NoError(t, err)

	got, err := s.ListArtifacts("a@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Subject)
}

func TestSaveAndListMessages(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SaveMessage(&MessageRecord{Owner: "pm@example.com", Content: "an idea", FromUser: true})
	require.NoError(t, err)
	_, err = s.SaveMessage(&MessageRecord{Owner: "pm@example.com", Content: "a response", FromUser: false})
	require.NoError(t, err)

	got, err := s.ListMessages("pm@example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a response", got[0].Content)
	assert.False(t, got[0].FromUser)
	assert.True(t, got[1].FromUser)
}

func TestCreateAndGetUser(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.CreateUser("pm@example.com", "encoded-hash"))

	got, err := s.GetUser("pm@example.com")
	require.NoError(t, err)
	assert.Equal(t, "encoded-hash", got.PasswordHash)

	_, err = s.GetUser("missing@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.CreateUser("pm@example.com", "h1"))
	assert.Error(t, s.CreateUser("pm@example.com", "h2"))
}

func TestOpenIsIdempotentOnSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}
