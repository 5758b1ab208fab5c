// Package ledger keeps per-counterparty running balances.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/utils/accounting"
	"github.com/SscSPs/bookkeeping_app/internal/utils/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewEntry is the input to AddEntry.
type NewEntry struct {
	PersonID    string
	Date        time.Time
	Type        domain.EntryType
	Amount      decimal.Decimal
	Description string
}

// Option configures a Book.
type Option func(*Book)

// WithClock overrides the time source used for CreatedAt.
func WithClock(clock func() time.Time) Option {
	return func(b *Book) { b.clock = clock }
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(newID func() string) Option {
	return func(b *Book) { b.newID = newID }
}

// Book holds the ledgers of all counterparties. Each ledger is kept sorted by
// date, with equal dates ordered by insertion sequence, and every entry carries
// the running balance up to and including itself.
type Book struct {
	mu       sync.RWMutex
	byPerson map[string][]domain.LedgerEntry
	owner    map[string]string // entry id -> person id
	seq      int64

	clock    func() time.Time
	newID    func() string
	validate *validator.Validate
}

// NewBook returns an empty Book.
func NewBook(opts ...Option) *Book {
	b := &Book{
		byPerson: make(map[string][]domain.LedgerEntry),
		owner:    make(map[string]string),
		clock:    time.Now,
		newID:    uuid.NewString,
		validate: validation.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddEntry inserts a new entry at its chronological position and recomputes the
// running balance of that entry and every later one.
func (b *Book) AddEntry(in NewEntry) (domain.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := domain.LedgerEntry{
		ID:          b.newID(),
		PersonID:    strings.TrimSpace(in.PersonID),
		Date:        in.Date.UTC(),
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Seq:         b.seq + 1,
		CreatedAt:   b.clock().UTC(),
	}
	if err := b.check(entry); err != nil {
		return domain.LedgerEntry{}, err
	}
	b.seq = entry.Seq
	return b.insertLocked(entry), nil
}

// Insert places a fully formed entry, keeping its id and sequence. It is used to
// rebuild a Book from persisted entries.
func (b *Book) Insert(entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(entry); err != nil {
		return domain.LedgerEntry{}, err
	}
	if entry.Seq <= 0 {
		return domain.LedgerEntry{}, apperrors.NewValidationError("seq", "must be positive")
	}
	if entry.Seq > b.seq {
		b.seq = entry.Seq
	}
	return b.insertLocked(entry), nil
}

// ReserveSeq makes later entries number above seq. Sequence numbers of removed
// entries are never handed out again.
func (b *Book) ReserveSeq(seq int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if seq > b.seq {
		b.seq = seq
	}
}

// DeleteEntry removes the entry and recomputes every later balance. Ledger lines
// are really removed; their audit trail lives elsewhere.
func (b *Book) DeleteEntry(entryID string) (domain.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	personID, ok := b.owner[entryID]
	if !ok {
		return domain.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	list := b.byPerson[personID]
	pos := indexOf(list, entryID)
	removed := list[pos]

	next := make([]domain.LedgerEntry, 0, len(list)-1)
	next = append(next, list[:pos]...)
	next = append(next, list[pos+1:]...)
	recompute(next, pos)

	if len(next) == 0 {
		delete(b.byPerson, personID)
	} else {
		b.byPerson[personID] = next
	}
	delete(b.owner, entryID)
	return removed, nil
}

// Entry returns one entry by id.
func (b *Book) Entry(entryID string) (domain.LedgerEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	personID, ok := b.owner[entryID]
	if !ok {
		return domain.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	list := b.byPerson[personID]
	return list[indexOf(list, entryID)], nil
}

// Entries returns a copy of the counterparty's ledger in chronological order.
func (b *Book) Entries(personID string) []domain.LedgerEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]domain.LedgerEntry(nil), b.byPerson[personID]...)
}

// NetBalance is the running balance after the chronologically last entry, or zero.
func (b *Book) NetBalance(personID string) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := b.byPerson[personID]
	if len(list) == 0 {
		return decimal.Zero
	}
	return list[len(list)-1].BalanceAfterEntry
}

// Balance summarises the counterparty's ledger.
func (b *Book) Balance(personID string) domain.CounterpartyBalance {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := b.byPerson[personID]
	net := decimal.Zero
	if len(list) > 0 {
		net = list[len(list)-1].BalanceAfterEntry
	}
	return domain.CounterpartyBalance{
		PersonID:   personID,
		NetBalance: net,
		Status:     accounting.BalanceStatus(net),
		EntryCount: len(list),
	}
}

// StatusLabel describes who owes whom for a net balance.
func StatusLabel(balance decimal.Decimal) string {
	return accounting.BalanceStatus(balance).Label()
}

func (b *Book) check(entry domain.LedgerEntry) error {
	if err := b.validate.Struct(entry); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.NewValidationError(verrs[0].Field(), "failed on '"+verrs[0].Tag()+"'")
		}
		return apperrors.NewValidationError("", err.Error())
	}
	if _, exists := b.owner[entry.ID]; exists {
		return fmt.Errorf("ledger entry %s: %w", entry.ID, apperrors.ErrDuplicate)
	}
	return nil
}

func (b *Book) insertLocked(entry domain.LedgerEntry) domain.LedgerEntry {
	list := b.byPerson[entry.PersonID]
	pos := sort.Search(len(list), func(i int) bool { return before(entry, list[i]) })

	next := make([]domain.LedgerEntry, 0, len(list)+1)
	next = append(next, list[:pos]...)
	next = append(next, entry)
	next = append(next, list[pos:]...)
	recompute(next, pos)

	b.byPerson[entry.PersonID] = next
	b.owner[entry.ID] = entry.PersonID
	return next[pos]
}

// before orders entries by date, then by insertion sequence.
func before(a, b domain.LedgerEntry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Seq < b.Seq
}

// recompute rewrites BalanceAfterEntry from position from to the end; earlier
// entries are left alone.
func recompute(list []domain.LedgerEntry, from int) {
	running := decimal.Zero
	if from > 0 {
		running = list[from-1].BalanceAfterEntry
	}
	for i := from; i < len(list); i++ {
		running = running.Add(accounting.SignedAmount(list[i]))
		list[i].BalanceAfterEntry = running
	}
}

func indexOf(list []domain.LedgerEntry, entryID string) int {
	for i := range list {
		if list[i].ID == entryID {
			return i
		}
	}
	return -1
}
