package presets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/domain/journal"
)

var errMissing = errors.New("document not found")

type fakeStore struct {
	docs    map[string][]byte
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string][]byte{}}
}

func (s *fakeStore) LoadDoc(_ context.Context, userID string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	doc, ok := s.docs[userID]
	if !ok {
		return nil, errMissing
	}
	return doc, nil
}

func (s *fakeStore) SaveDoc(_ context.Context, userID string, doc []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.docs[userID] = doc
	return nil
}

func (s *fakeStore) NotFound(err error) bool { return errors.Is(err, errMissing) }

func TestSaveLoadList(t *testing.T) {
	store := newFakeStore()
	uc := NewUseCase(store)
	ctx := context.Background()

	require.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "london", Filter: journal.FilterState{Session: "London"}}))
	require.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "eurusd-only", Filter: journal.FilterState{Symbol: "EURUSD"}}))

	items := uc.List(ctx, "u1")
	require.Len(t, items, 2)
	assert.Equal(t, "eurusd-only", items[0].Name, "list is sorted by name")

	got, ok := uc.Load(ctx, "u1", "london")
	require.True(t, ok)
	assert.Equal(t, "London", got.Filter.Session)

	// Name lookup is case-sensitive.
	_, ok = uc.Load(ctx, "u1", "London")
	assert.False(t, ok)
}

func TestSaveOverwritesByName(t *testing.T) {
	store := newFakeStore()
	uc := NewUseCase(store)
	ctx := context.Background()

	require.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "scalps", Filter: journal.FilterState{Timeframe: "M5"}}))
	require.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "scalps", Filter: journal.FilterState{Timeframe: "M1"}}))

	items := uc.List(ctx, "u1")
	require.Len(t, items, 1)
	assert.Equal(t, "M1", items[0].Filter.Timeframe)
}

func TestSaveRejectsBlankName(t *testing.T) {
	uc := NewUseCase(newFakeStore())
	err := uc.Save(context.Background(), "u1", journal.FilterPreset{Name: "  "})
	assert.Error(t, err)
}

func TestStorageFailuresAreNonFatal(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("quota exceeded")
	uc := NewUseCase(store)
	ctx := context.Background()

	// Write failure is swallowed; the caller keeps working.
	assert.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "x"}))

	store.saveErr = nil
	store.loadErr = errors.New("storage unavailable")
	assert.Empty(t, uc.List(ctx, "u1"))
}

func TestMalformedDocumentTreatedAsEmpty(t *testing.T) {
	store := newFakeStore()
	store.docs["u1"] = []byte("{this is not json")
	uc := NewUseCase(store)

	assert.Empty(t, uc.List(context.Background(), "u1"))

	// A save on top of the malformed document resets it cleanly.
	require.NoError(t, uc.Save(context.Background(), "u1", journal.FilterPreset{Name: "fresh"}))
	assert.Len(t, uc.List(context.Background(), "u1"), 1)
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	uc := NewUseCase(store)
	ctx := context.Background()

	require.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "a"}))
	require.NoError(t, uc.Save(ctx, "u1", journal.FilterPreset{Name: "b"}))

	uc.Delete(ctx, "u1", "a")
	items := uc.List(ctx, "u1")
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Name)

	// Deleting a name that does not exist is a no-op.
	uc.Delete(ctx, "u1", "missing")
	assert.Len(t, uc.List(ctx, "u1"), 1)
}
