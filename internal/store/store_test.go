package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/advisor-relay/memory"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), log.New(&bytes.Buffer{}))
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitialize_CreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "test.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Initialize(context.Background()))
	assert.FileExists(t, path)
	assert.Equal(t, path, s.Path())
}

func TestInitialize_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.Append(ctx, "", memory.RoleUser, "kept")
	require.NoError(t, s.Initialize(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppend_AssignsIncreasingIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := s.Append(ctx, "s1", memory.RoleUser, "hi")
	second := s.Append(ctx, "s1", memory.RoleAssistant, "hello")

	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.Greater(t, second.ID, first.ID)
}

func TestAppend_RejectsUnknownRole(t *testing.T) {
	s := setupTestStore(t)

	res := s.Append(context.Background(), "", memory.Role("tool"), "x")
	assert.False(t, res.OK())

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAppend_ReportsFailureWithoutPanicking(t *testing.T) {
	var buf bytes.Buffer
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), log.New(&buf))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	res := s.Append(context.Background(), "", memory.RoleUser, "lost")
	assert.Error(t, res.Err)
	assert.Contains(t, buf.String(), "failed to save message")
}

func TestAppend_BeforeInitializeFails(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), log.New(&bytes.Buffer{}))
	require.NoError(t, err)
	defer s.Close()

	res := s.Append(context.Background(), "", memory.RoleUser, "no table")
	assert.False(t, res.OK())
}

func TestListAll_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	s.Append(ctx, "", memory.RoleUser, "one")
	s.Append(ctx, "", memory.RoleAssistant, "two")
	s.Append(ctx, "", memory.RoleUser, "three")

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "three", records[0].Content)
	assert.Equal(t, "two", records[1].Content)
	assert.Equal(t, "one", records[2].Content)
	assert.Equal(t, memory.RoleAssistant, records[1].Role)
	assert.True(t, records[0].Timestamp.Equal(base.Add(3*time.Second)))
}

func TestListAll_SameTimestampFallsBackToID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Append(ctx, "", memory.RoleUser, "first")
	s.Append(ctx, "", memory.RoleAssistant, "second")

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Content)
}

func TestListAll_Repeatable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.Append(ctx, "", memory.RoleUser, "a")
	s.Append(ctx, "", memory.RoleAssistant, "b")

	first, err := s.ListAll(ctx)
	require.NoError(t, err)
	second, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListAll_EmptyIsNotNil(t *testing.T) {
	s := setupTestStore(t)

	records, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListRecent_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c"} {
		s.Append(ctx, "", memory.RoleUser, c)
	}

	records, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].Content)
}

func TestListAll_KeepsSessionID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.Append(ctx, "alice", memory.RoleUser, "hi")

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].SessionID)
}

func TestUnavailableLocation_FailsPerCall(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blockfile")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	ctx := context.Background()

	s, err := Open(filepath.Join(blocker, "sub", "relationship_ai.db"), log.New(&bytes.Buffer{}))
	require.NoError(t, err, "Open must not touch the filesystem")
	defer s.Close()

	err = s.Initialize(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInitialized))

	res := s.Append(ctx, "", memory.RoleUser, "hello")
	assert.False(t, res.OK())

	_, err = s.ListAll(ctx)
	assert.Error(t, err)
}
