package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RunRaiser/internal/domain"
)

type recordingStore struct {
	saved []domain.FullMemory
	err   error
}

func (s *recordingStore) Get(context.Context) (domain.FullMemory, error) {
	if len(s.saved) == 0 {
		return domain.EmptyMemory(), nil
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *recordingStore) Put(_ context.Context, mem domain.FullMemory) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, mem)
	return nil
}

var day = time.Date(2025, time.December, 1, 23, 59, 0, 0, time.UTC)

func TestUpdaterPersistsCopy(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	u := NewUpdater(store, 0, func() time.Time { return day })

	mem := domain.EmptyMemory()
	mem.Episodic.PastSuccessfulPosts = []string{"older"}

	msg, err := u.Update(context.Background(), mem, domain.PostCandidate{Text: "newest"})
	require.NoError(t, err)
	assert.Equal(t, Confirmation, msg)

	require.Len(t, store.saved, 1)
	assert.Equal(t, []string{"older", "newest"}, store.saved[0].Episodic.PastSuccessfulPosts)
	assert.Equal(t, "2025-12-01", store.saved[0].Statistical.LastUpdateDate)
	assert.Equal(t, []string{"older"}, mem.Episodic.PastSuccessfulPosts, "input memory must not change")
}

func TestUpdaterStoreFailure(t *testing.T) {
	t.Parallel()

	u := NewUpdater(&recordingStore{err: errors.New("disk full")}, 5, nil)
	_, err := u.Update(context.Background(), domain.EmptyMemory(), domain.PostCandidate{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestUpdaterWithoutStore(t *testing.T) {
	t.Parallel()

	msg, err := NewUpdater(nil, 0, nil).Update(context.Background(), domain.EmptyMemory(), domain.PostCandidate{Text: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestApplyBoundsHistoryAndSkipsRepeat(t *testing.T) {
	t.Parallel()

	mem := domain.EmptyMemory()
	for _, text := range []string{"a", "b", "b", "c", "d"} {
		mem = Apply(mem, domain.PostCandidate{Text: text}, 3, day)
	}
	assert.Equal(t, []string{"b", "c", "d"}, mem.Episodic.PastSuccessfulPosts)
}
