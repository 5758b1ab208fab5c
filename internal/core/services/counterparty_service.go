package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/ledger"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/SscSPs/bookkeeping_app/internal/utils/pagination"
)

type counterpartyService struct {
	BaseService
}

// NewCounterpartyService creates a counterparty service over the dataset.
func NewCounterpartyService(data *Dataset) *counterpartyService {
	return &counterpartyService{BaseService: BaseService{data: data}}
}

func (s *counterpartyService) CreateCounterparty(ctx context.Context, req dto.CreateCounterpartyRequest, userID string) (*versioning.Entity[domain.Counterparty], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	cp := domain.Counterparty{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
		Kind:  req.Kind,
		Notes: req.Notes,
	}
	created, err := s.data.Counterparties.Create(ctx, userID, userID, cp)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create counterparty")
		return nil, err
	}
	s.LogInfo(ctx, "Counterparty created", slog.String("counterparty_id", created.ID))
	return created, nil
}

func (s *counterpartyService) GetCounterparty(ctx context.Context, counterpartyID string, userID string) (*versioning.Entity[domain.Counterparty], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return owned(s.data.Counterparties, counterpartyID, userID)
}

func (s *counterpartyService) ListCounterparties(ctx context.Context, userID string, includeDeleted bool) ([]*versioning.Entity[domain.Counterparty], error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	return s.data.Counterparties.List(ownedBy[domain.Counterparty](userID, includeDeleted)), nil
}

func (s *counterpartyService) GetCounterpartyHistory(ctx context.Context, counterpartyID string, userID string) ([]versioning.Record, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	e, err := owned(s.data.Counterparties, counterpartyID, userID)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

func (s *counterpartyService) UpdateCounterparty(ctx context.Context, counterpartyID string, req dto.UpdateCounterpartyRequest, expectedVersion int, userID string) (*versioning.Entity[domain.Counterparty], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	cur, err := owned(s.data.Counterparties, counterpartyID, userID)
	if err != nil {
		return nil, err
	}
	next := cur.State
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		next.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		next.Email = strings.TrimSpace(*req.Email)
	}
	if req.Kind != nil {
		next.Kind = *req.Kind
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}

	var updated *versioning.Entity[domain.Counterparty]
	if expectedVersion > 0 {
		updated, err = s.data.Counterparties.ApplyExpected(ctx, counterpartyID, expectedVersion, domain.ActionUpdated, userID, next)
	} else {
		updated, err = s.data.Counterparties.Apply(ctx, counterpartyID, domain.ActionUpdated, userID, next)
	}
	if err != nil {
		s.LogFailure(ctx, err, "Failed to update counterparty", slog.String("counterparty_id", counterpartyID))
		return nil, err
	}
	s.LogInfo(ctx, "Counterparty updated", slog.String("counterparty_id", counterpartyID), slog.Int("version", updated.HistoryLen()))
	return updated, nil
}

func (s *counterpartyService) DeleteCounterparty(ctx context.Context, counterpartyID string, userID string) (*versioning.Entity[domain.Counterparty], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Counterparties, counterpartyID, userID); err != nil {
		return nil, err
	}
	deleted, err := s.data.Counterparties.SoftDelete(ctx, counterpartyID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete counterparty", slog.String("counterparty_id", counterpartyID))
		return nil, err
	}
	s.LogInfo(ctx, "Counterparty deleted", slog.String("counterparty_id", counterpartyID))
	return deleted, nil
}

func (s *counterpartyService) RestoreCounterparty(ctx context.Context, counterpartyID string, userID string) (*versioning.Entity[domain.Counterparty], error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Counterparties, counterpartyID, userID); err != nil {
		return nil, err
	}
	restored, err := s.data.Counterparties.Restore(ctx, counterpartyID, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to restore counterparty", slog.String("counterparty_id", counterpartyID))
		return nil, err
	}
	s.LogInfo(ctx, "Counterparty restored", slog.String("counterparty_id", counterpartyID))
	return restored, nil
}

func (s *counterpartyService) AddLedgerEntry(ctx context.Context, counterpartyID string, req dto.CreateLedgerEntryRequest, userID string) (*domain.LedgerEntry, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if err := liveRef(s.data.Counterparties, "counterpartyID", counterpartyID, userID); err != nil {
		return nil, err
	}
	entry, err := s.data.postLedgerEntry(ctx, userID, userID, ledger.NewEntry{
		PersonID:    counterpartyID,
		Date:        req.Date,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to add ledger entry", slog.String("counterparty_id", counterpartyID))
		return nil, err
	}
	s.LogInfo(ctx, "Ledger entry added", slog.String("counterparty_id", counterpartyID), slog.String("entry_id", entry.ID))
	return &entry, nil
}

func (s *counterpartyService) DeleteLedgerEntry(ctx context.Context, counterpartyID string, entryID string, userID string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := owned(s.data.Counterparties, counterpartyID, userID); err != nil {
		return err
	}
	entry, err := s.data.Book.Entry(entryID)
	if err != nil {
		return err
	}
	if entry.PersonID != counterpartyID {
		return fmt.Errorf("ledger entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	for _, t := range s.data.Transactions.List(nil) {
		if !t.IsDeleted && t.State.LedgerEntryRef == entryID {
			return apperrors.NewValidationError("entryID", "entry belongs to settlement transaction "+t.ID+"; delete the transaction instead")
		}
	}
	if err := s.data.removeLedgerEntry(ctx, userID, entryID); err != nil {
		s.LogFailure(ctx, err, "Failed to delete ledger entry", slog.String("entry_id", entryID))
		return err
	}
	s.LogInfo(ctx, "Ledger entry deleted", slog.String("counterparty_id", counterpartyID), slog.String("entry_id", entryID))
	return nil
}

func (s *counterpartyService) ListLedgerEntries(ctx context.Context, counterpartyID string, params dto.ListLedgerEntriesParams, userID string) ([]domain.LedgerEntry, string, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if _, err := owned(s.data.Counterparties, counterpartyID, userID); err != nil {
		return nil, "", err
	}

	entries := s.data.Book.Entries(counterpartyID)
	start := 0
	if params.NextToken != "" {
		cursor, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, "", apperrors.NewValidationError("nextToken", err.Error())
		}
		for start < len(entries) && !cursor.After(entries[start].Date, entries[start].Seq) {
			start++
		}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	end := min(start+limit, len(entries))
	page := entries[start:end]

	next := ""
	if end < len(entries) && len(page) > 0 {
		last := page[len(page)-1]
		next = pagination.EncodeToken(last.Date, last.Seq)
	}
	if page == nil {
		page = []domain.LedgerEntry{}
	}
	return page, next, nil
}

func (s *counterpartyService) GetBalance(ctx context.Context, counterpartyID string, userID string) (*domain.CounterpartyBalance, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if _, err := owned(s.data.Counterparties, counterpartyID, userID); err != nil {
		return nil, err
	}
	balance := s.data.Book.Balance(counterpartyID)
	return &balance, nil
}
