package versioning_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type recordingSink struct {
	commits []versioning.Commit
	fail    error
}

func (s *recordingSink) Commit(_ context.Context, c versioning.Commit) error {
	if s.fail != nil {
		return s.fail
	}
	s.commits = append(s.commits, c)
	return nil
}

func newCounterpartyStore(opts ...versioning.Option) *versioning.Store[domain.Counterparty] {
	return versioning.NewStore[domain.Counterparty](domain.KindCounterparty, opts...)
}

func alice() domain.Counterparty {
	return domain.Counterparty{Name: "Alice", Kind: domain.Customer}
}

func TestCreate_SingleCreatedRecord(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	assert.Equal(t, "owner-1", e.OwnerID)
	assert.False(t, e.IsDeleted)
	assert.Equal(t, e.CreatedAt, e.LastModified)

	history := e.History()
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionCreated, history[0].Action)
	assert.Equal(t, "actor-1", history[0].ActorID)
	assert.Equal(t, e.CreatedAt, history[0].Timestamp)
}

func TestCreate_Validation(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	tests := []struct {
		name    string
		ownerID string
		actorID string
		state   domain.Counterparty
	}{
		{"missing actor", "owner-1", "", alice()},
		{"missing owner", "", "actor-1", alice()},
		{"missing name", "owner-1", "actor-1", domain.Counterparty{Kind: domain.Customer}},
		{"bad kind", "owner-1", "actor-1", domain.Counterparty{Name: "Bob", Kind: "FRIEND"}},
		{"bad email", "owner-1", "actor-1", domain.Counterparty{Name: "Bob", Kind: domain.Supplier, Email: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.ownerID, tt.actorID, tt.state)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestCreateWithID_Duplicate(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	_, err := store.CreateWithID(ctx, "cp-1", "owner-1", "actor-1", alice())
	require.NoError(t, err)
	_, err = store.CreateWithID(ctx, "cp-1", "owner-1", "actor-1", alice())
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestLifecycle_FourRecords(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)

	updated := alice()
	updated.Phone = "555-0100"
	_, err = store.Apply(ctx, e.ID, domain.ActionUpdated, "actor-1", updated)
	require.NoError(t, err)

	deleted, err := store.SoftDelete(ctx, e.ID, "actor-2")
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	require.NotNil(t, deleted.DeletedAt)

	restored, err := store.Restore(ctx, e.ID, "actor-2")
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, updated, restored.State)

	history := restored.History()
	require.Len(t, history, 4)
	actions := []domain.VersionAction{history[0].Action, history[1].Action, history[2].Action, history[3].Action}
	assert.Equal(t, []domain.VersionAction{
		domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted, domain.ActionRestored,
	}, actions)

	var beforeDelete, afterRestore struct {
		IsDeleted bool                `json:"isDeleted"`
		State     domain.Counterparty `json:"state"`
	}
	require.NoError(t, json.Unmarshal(history[1].Snapshot, &beforeDelete))
	require.NoError(t, json.Unmarshal(history[3].Snapshot, &afterRestore))
	assert.Equal(t, beforeDelete, afterRestore)
}

func TestLifecycle_Rules(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)

	_, err = store.Restore(ctx, e.ID, "actor-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "restoring a live entity")

	_, err = store.Apply(ctx, e.ID, domain.ActionDeleted, "actor-1", alice())
	assert.ErrorIs(t, err, apperrors.ErrValidation, "lifecycle actions go through SoftDelete")

	_, err = store.SoftDelete(ctx, e.ID, "actor-1")
	require.NoError(t, err)

	_, err = store.SoftDelete(ctx, e.ID, "actor-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "deleting twice")

	_, err = store.Apply(ctx, e.ID, domain.ActionUpdated, "actor-1", alice())
	assert.ErrorIs(t, err, apperrors.ErrValidation, "updating a deleted entity")

	_, err = store.Apply(ctx, "missing", domain.ActionUpdated, "actor-1", alice())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	h, err := store.History(e.ID)
	require.NoError(t, err)
	assert.Len(t, h, 2)
}

func TestApply_EarlierRecordsNeverChange(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)

	var seen []versioning.Record
	for i := 0; i < 100; i++ {
		state := alice()
		state.Notes = fmt.Sprintf("revision %d", i)
		_, err := store.Apply(ctx, e.ID, domain.ActionUpdated, "actor-1", state)
		require.NoError(t, err)

		history, err := store.History(e.ID)
		require.NoError(t, err)
		require.Len(t, history, i+2)
		for j, prev := range seen {
			require.Equal(t, prev.Snapshot, history[j].Snapshot, "record %d changed after apply %d", j, i)
			require.Equal(t, prev.Timestamp, history[j].Timestamp)
		}
		seen = history
	}
}

func TestApply_TimestampsStrictlyIncrease(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := newCounterpartyStore(versioning.WithClock(clock.Now))
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := store.Apply(ctx, e.ID, domain.ActionUpdated, "actor-1", alice())
		require.NoError(t, err)
	}

	history, err := store.History(e.ID)
	require.NoError(t, err)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)

	e.State.Name = "Mallory"
	history := e.History()
	history[0].Snapshot[0] = 'X'

	got, err := store.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.State.Name)
	assert.Equal(t, byte('{'), got.History()[0].Snapshot[0])
}

func TestApplyExpected(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)

	next := alice()
	next.Notes = "first edit"

	first, err := store.ApplyExpected(ctx, e.ID, 1, domain.ActionUpdated, "actor-1", next)
	require.NoError(t, err)
	assert.Equal(t, 2, first.HistoryLen())

	replayed, err := store.ApplyExpected(ctx, e.ID, 1, domain.ActionUpdated, "actor-1", next)
	require.NoError(t, err, "a retried write is accepted without appending")
	assert.Equal(t, 2, replayed.HistoryLen())

	other := alice()
	other.Notes = "someone else"
	_, err = store.ApplyExpected(ctx, e.ID, 1, domain.ActionUpdated, "actor-2", other)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := store.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "first edit", got.State.Notes)
}

func TestSinkFailureLeavesStoreUnchanged(t *testing.T) {
	sink := &recordingSink{}
	store := newCounterpartyStore(versioning.WithSink(sink))
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)
	require.Len(t, sink.commits, 1)
	assert.Equal(t, 0, sink.commits[0].Seq)
	assert.Equal(t, domain.KindCounterparty, sink.commits[0].Kind)

	sink.fail = errors.New("disk full")
	changed := alice()
	changed.Name = "Alicia"
	_, err = store.Apply(ctx, e.ID, domain.ActionUpdated, "actor-1", changed)
	require.Error(t, err)

	got, err := store.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.State.Name)
	assert.Equal(t, 1, got.HistoryLen())

	sink.fail = nil
	_, err = store.Apply(ctx, e.ID, domain.ActionUpdated, "actor-1", changed)
	require.NoError(t, err)
	require.Len(t, sink.commits, 2)
	assert.Equal(t, 1, sink.commits[1].Seq)
}

func TestMutate_SeesCurrentState(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	e, err := store.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)

	got, err := store.Mutate(ctx, e.ID, domain.ActionUpdated, "actor-1", func(cur domain.Counterparty) (domain.Counterparty, error) {
		cur.Notes = cur.Name + " pays late"
		return cur, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice pays late", got.State.Notes)

	_, err = store.Mutate(ctx, e.ID, domain.ActionUpdated, "actor-1", func(cur domain.Counterparty) (domain.Counterparty, error) {
		return cur, apperrors.NewValidationError("notes", "rejected")
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 2, mustGet(t, store, e.ID).HistoryLen())
}

func TestHydrate_RebuildsFromHistory(t *testing.T) {
	source := newCounterpartyStore()
	ctx := context.Background()

	e, err := source.Create(ctx, "owner-1", "actor-1", alice())
	require.NoError(t, err)
	_, err = source.SoftDelete(ctx, e.ID, "actor-1")
	require.NoError(t, err)

	entity := mustGet(t, source, e.ID)
	target := newCounterpartyStore()
	require.NoError(t, target.Hydrate([]versioning.StoredEntity{{Header: entity.Header, Records: entity.History()}}))

	got := mustGet(t, target, e.ID)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, alice(), got.State)
	assert.Equal(t, entity.History(), got.History())

	restored, err := target.Restore(ctx, e.ID, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, 3, restored.HistoryLen())
}

func TestList_FilterAndOrder(t *testing.T) {
	store := newCounterpartyStore()
	ctx := context.Background()

	names := []string{"Ann", "Ben", "Cid"}
	for _, n := range names {
		_, err := store.Create(ctx, "owner-1", "actor-1", domain.Counterparty{Name: n, Kind: domain.Both})
		require.NoError(t, err)
	}
	all := store.List(nil)
	require.Len(t, all, 3)
	for i, e := range all {
		assert.Equal(t, names[i], e.State.Name)
	}

	_, err := store.SoftDelete(ctx, all[1].ID, "actor-1")
	require.NoError(t, err)
	live := store.List(func(e *versioning.Entity[domain.Counterparty]) bool { return !e.IsDeleted })
	assert.Len(t, live, 2)
}

func mustGet(t *testing.T, store *versioning.Store[domain.Counterparty], id string) *versioning.Entity[domain.Counterparty] {
	t.Helper()
	e, err := store.Get(id)
	require.NoError(t, err)
	return e
}
