// Package versioning keeps every domain entity behind an append-only log of
// immutable snapshots. Stores are keyed by id; each mutation appends exactly one
// Record and swaps in a new entity value, so earlier records are never touched.
package versioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/utils/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Cloner is implemented by every state type kept in a Store. Clone must return a
// value that shares no mutable memory (slices, pointers) with the receiver.
type Cloner[T any] interface {
	Clone() T
}

// Header holds the lifecycle metadata shared by all versioned entities.
type Header struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerID"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified time.Time  `json:"lastModified"`
	IsDeleted    bool       `json:"isDeleted"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// Record is one immutable entry of an entity history. Snapshot is the JSON
// encoding of the full entity (header and state) right after Action.
type Record struct {
	Timestamp time.Time            `json:"timestamp"`
	Action    domain.VersionAction `json:"action"`
	ActorID   string               `json:"actorID"`
	Snapshot  json.RawMessage      `json:"snapshot"`
}

func (r Record) clone() Record {
	r.Snapshot = append(json.RawMessage(nil), r.Snapshot...)
	return r
}

// Entity is a versioned domain object. Values handed out by a Store are copies;
// changing them has no effect on the store.
type Entity[T Cloner[T]] struct {
	Header
	State   T
	history []Record
}

// History returns a copy of the entity's records, oldest first.
func (e *Entity[T]) History() []Record {
	out := make([]Record, len(e.history))
	for i, r := range e.history {
		out[i] = r.clone()
	}
	return out
}

// HistoryLen returns the number of records appended so far.
func (e *Entity[T]) HistoryLen() int {
	return len(e.history)
}

func (e *Entity[T]) clone() *Entity[T] {
	out := &Entity[T]{Header: e.Header, State: e.State.Clone()}
	if e.DeletedAt != nil {
		d := *e.DeletedAt
		out.DeletedAt = &d
	}
	out.history = e.history[:len(e.history):len(e.history)]
	return out
}

type snapshot[T any] struct {
	Header
	State T `json:"state"`
}

// Commit is what a Store hands to its Sink for one mutation: the entity header
// after the change and the record appended at position Seq.
type Commit struct {
	Kind   string
	Header Header
	Seq    int
	Record Record
}

// Sink persists commits. A Store calls Commit before making a change visible;
// when it fails the change is dropped.
type Sink interface {
	Commit(ctx context.Context, c Commit) error
}

// StoredEntity is a persisted entity log used to rebuild a Store.
type StoredEntity struct {
	Header  Header
	Records []Record
}

type config struct {
	validate *validator.Validate
	clock    func() time.Time
	newID    func() string
	sink     Sink
}

// Option configures a Store.
type Option func(*config)

// WithClock overrides the time source used for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *config) { c.clock = clock }
}

// WithSink makes every commit go through sink before it is applied in memory.
func WithSink(sink Sink) Option {
	return func(c *config) { c.sink = sink }
}

// WithIDGenerator overrides id generation for Create.
func WithIDGenerator(newID func() string) Option {
	return func(c *config) { c.newID = newID }
}

// WithValidator overrides the validator used on new states.
func WithValidator(v *validator.Validate) Option {
	return func(c *config) { c.validate = v }
}

// Store is an in-memory, id-keyed collection of versioned entities of one kind.
type Store[T Cloner[T]] struct {
	kind string
	cfg  config

	mu       sync.RWMutex
	entities map[string]*Entity[T]
	order    []string
}

// NewStore creates an empty store for the given entity kind.
func NewStore[T Cloner[T]](kind string, opts ...Option) *Store[T] {
	cfg := config{
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.validate == nil {
		cfg.validate = validation.New()
	}
	return &Store[T]{
		kind:     kind,
		cfg:      cfg,
		entities: make(map[string]*Entity[T]),
	}
}

// Kind returns the entity kind this store holds.
func (s *Store[T]) Kind() string {
	return s.kind
}

// Create adds a new entity with a generated id and a single "created" record.
func (s *Store[T]) Create(ctx context.Context, ownerID, actorID string, state T) (*Entity[T], error) {
	return s.CreateWithID(ctx, s.cfg.newID(), ownerID, actorID, state)
}

// CreateWithID is Create with a caller-chosen id.
func (s *Store[T]) CreateWithID(ctx context.Context, id, ownerID, actorID string, state T) (*Entity[T], error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("id", "is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.NewValidationError("ownerID", "is required")
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, apperrors.NewValidationError("actorID", "is required")
	}
	state = state.Clone()
	if err := s.validateState(state); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[id]; exists {
		return nil, fmt.Errorf("%s %s: %w", s.kind, id, apperrors.ErrDuplicate)
	}

	now := s.now()
	e := &Entity[T]{
		Header: Header{ID: id, OwnerID: ownerID, CreatedAt: now, LastModified: now},
		State:  state,
	}
	rec, err := newRecord(e, domain.ActionCreated, actorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, e.Header, 0, rec); err != nil {
		return nil, err
	}
	e.history = []Record{rec}
	s.entities[id] = e
	s.order = append(s.order, id)
	return e.clone(), nil
}

// Apply appends an "updated" or "payment_recorded" record carrying newState.
// Deletion and restoration go through SoftDelete and Restore.
func (s *Store[T]) Apply(ctx context.Context, id string, action domain.VersionAction, actorID string, newState T) (*Entity[T], error) {
	if err := checkApplyAction(action); err != nil {
		return nil, err
	}
	return s.change(ctx, id, mutation[T]{
		action:      action,
		actorID:     actorID,
		expectedLen: -1,
		state:       func(T) (T, error) { return newState.Clone(), nil },
	})
}

// ApplyExpected is Apply guarded by the history length the caller last saw.
// Replaying the same call after it succeeded returns the stored entity instead
// of appending twice; any other mismatch is reported as apperrors.ErrConflict.
func (s *Store[T]) ApplyExpected(ctx context.Context, id string, expectedLen int, action domain.VersionAction, actorID string, newState T) (*Entity[T], error) {
	if err := checkApplyAction(action); err != nil {
		return nil, err
	}
	if expectedLen < 1 {
		return nil, apperrors.NewValidationError("expectedLen", "must be at least 1")
	}
	return s.change(ctx, id, mutation[T]{
		action:      action,
		actorID:     actorID,
		expectedLen: expectedLen,
		state:       func(T) (T, error) { return newState.Clone(), nil },
		replayOf:    newState,
	})
}

// Mutate derives the next state from the current one under the store's write
// lock and appends it with the given action. fn receives a private copy.
func (s *Store[T]) Mutate(ctx context.Context, id string, action domain.VersionAction, actorID string, fn func(current T) (T, error)) (*Entity[T], error) {
	if err := checkApplyAction(action); err != nil {
		return nil, err
	}
	return s.change(ctx, id, mutation[T]{
		action:      action,
		actorID:     actorID,
		expectedLen: -1,
		state:       fn,
	})
}

// SoftDelete marks the entity deleted, keeping its history.
func (s *Store[T]) SoftDelete(ctx context.Context, id, actorID string) (*Entity[T], error) {
	return s.change(ctx, id, mutation[T]{
		action:         domain.ActionDeleted,
		actorID:        actorID,
		expectedLen:    -1,
		allowOnDeleted: true,
		state:          func(cur T) (T, error) { return cur, nil },
		header: func(h *Header, now time.Time) error {
			if h.IsDeleted {
				return apperrors.NewValidationError("isDeleted", "entity is already deleted")
			}
			h.IsDeleted = true
			h.DeletedAt = &now
			return nil
		},
	})
}

// Restore clears the deleted flag of a soft-deleted entity.
func (s *Store[T]) Restore(ctx context.Context, id, actorID string) (*Entity[T], error) {
	return s.change(ctx, id, mutation[T]{
		action:         domain.ActionRestored,
		actorID:        actorID,
		expectedLen:    -1,
		allowOnDeleted: true,
		state:          func(cur T) (T, error) { return cur, nil },
		header: func(h *Header, _ time.Time) error {
			if !h.IsDeleted {
				return apperrors.NewValidationError("isDeleted", "entity is not deleted")
			}
			h.IsDeleted = false
			h.DeletedAt = nil
			return nil
		},
	})
}

// Get returns a copy of the entity with the given id.
func (s *Store[T]) Get(id string) (*Entity[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", s.kind, id, apperrors.ErrNotFound)
	}
	return e.clone(), nil
}

// History returns a copy of the records of the entity with the given id.
func (s *Store[T]) History(id string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", s.kind, id, apperrors.ErrNotFound)
	}
	return e.History(), nil
}

// List returns copies of all entities accepted by keep, in creation order.
// A nil keep accepts everything. keep sees a copy and may not retain it across calls.
func (s *Store[T]) List(keep func(*Entity[T]) bool) []*Entity[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entity[T], 0, len(s.order))
	for _, id := range s.order {
		e := s.entities[id].clone()
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entities, deleted ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Hydrate loads persisted entity logs into an empty store. The last record of
// each log is authoritative for header and state.
func (s *Store[T]) Hydrate(items []StoredEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if len(item.Records) == 0 {
			return fmt.Errorf("%s %s: empty history", s.kind, item.Header.ID)
		}
		var snap snapshot[T]
		if err := json.Unmarshal(item.Records[len(item.Records)-1].Snapshot, &snap); err != nil {
			return fmt.Errorf("%s %s: decode snapshot: %w", s.kind, item.Header.ID, err)
		}
		if _, exists := s.entities[snap.ID]; exists {
			return fmt.Errorf("%s %s: %w", s.kind, snap.ID, apperrors.ErrDuplicate)
		}
		history := make([]Record, len(item.Records))
		for i, r := range item.Records {
			history[i] = r.clone()
		}
		s.entities[snap.ID] = &Entity[T]{Header: snap.Header, State: snap.State, history: history}
		s.order = append(s.order, snap.ID)
	}
	return nil
}

type mutation[T Cloner[T]] struct {
	action         domain.VersionAction
	actorID        string
	expectedLen    int // -1 skips the check
	allowOnDeleted bool
	state          func(current T) (T, error)
	header         func(h *Header, now time.Time) error
	replayOf       T
}

func (s *Store[T]) change(ctx context.Context, id string, m mutation[T]) (*Entity[T], error) {
	if strings.TrimSpace(m.actorID) == "" {
		return nil, apperrors.NewValidationError("actorID", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", s.kind, id, apperrors.ErrNotFound)
	}

	if m.expectedLen >= 0 {
		n := len(cur.history)
		switch {
		case n == m.expectedLen:
		case n == m.expectedLen+1 && isReplay(cur.history[n-1], m.action, m.actorID, m.replayOf):
			return cur.clone(), nil
		default:
			return nil, apperrors.NewConflictError(fmt.Sprintf("%s %s has %d versions, expected %d", s.kind, id, n, m.expectedLen))
		}
	}

	if cur.IsDeleted && !m.allowOnDeleted {
		return nil, apperrors.NewValidationError("isDeleted", "entity is deleted; restore it first")
	}

	next := cur.clone()
	state, err := m.state(next.State.Clone())
	if err != nil {
		return nil, err
	}
	if err := s.validateState(state); err != nil {
		return nil, err
	}
	next.State = state

	now := s.now()
	if last := cur.history[len(cur.history)-1].Timestamp; !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	if m.header != nil {
		if err := m.header(&next.Header, now); err != nil {
			return nil, err
		}
	}
	next.LastModified = now

	rec, err := newRecord(next, m.action, m.actorID, now)
	if err != nil {
		return nil, err
	}
	seq := len(cur.history)
	if err := s.commit(ctx, next.Header, seq, rec); err != nil {
		return nil, err
	}
	// full slice expression on cur.history forces a copy, so cur is left as it was
	next.history = append(cur.history[:seq:seq], rec)
	s.entities[id] = next
	return next.clone(), nil
}

func (s *Store[T]) commit(ctx context.Context, h Header, seq int, rec Record) error {
	if s.cfg.sink == nil {
		return nil
	}
	err := s.cfg.sink.Commit(ctx, Commit{Kind: s.kind, Header: h, Seq: seq, Record: rec.clone()})
	if err != nil {
		return fmt.Errorf("commit %s %s: %w", s.kind, h.ID, err)
	}
	return nil
}

// now truncates to microseconds so timestamps survive a database round trip unchanged.
func (s *Store[T]) now() time.Time {
	return s.cfg.clock().UTC().Truncate(time.Microsecond)
}

func (s *Store[T]) validateState(state T) error {
	err := s.cfg.validate.Struct(state)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(fe.Namespace(), "failed on '"+fe.Tag()+"'")
	}
	return apperrors.NewValidationError("", err.Error())
}

func newRecord[T Cloner[T]](e *Entity[T], action domain.VersionAction, actorID string, at time.Time) (Record, error) {
	raw, err := json.Marshal(snapshot[T]{Header: e.Header, State: e.State})
	if err != nil {
		return Record{}, apperrors.NewValidationError("state", "cannot be encoded: "+err.Error())
	}
	return Record{Timestamp: at, Action: action, ActorID: actorID, Snapshot: raw}, nil
}

func checkApplyAction(action domain.VersionAction) error {
	switch action {
	case domain.ActionUpdated, domain.ActionPaymentRecorded:
		return nil
	case domain.ActionCreated, domain.ActionDeleted, domain.ActionRestored:
		return apperrors.NewValidationError("action", string(action)+" is a lifecycle action and cannot be applied directly")
	default:
		return apperrors.NewValidationError("action", "unknown action "+string(action))
	}
}

func isReplay[T any](last Record, action domain.VersionAction, actorID string, state T) bool {
	if last.Action != action || last.ActorID != actorID {
		return false
	}
	var stored struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(last.Snapshot, &stored); err != nil {
		return false
	}
	want, err := json.Marshal(state)
	if err != nil {
		return false
	}
	return string(stored.State) == string(want)
}
