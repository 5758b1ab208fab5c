package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_app/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxVersionLogRepository stores every versioned entity as one row in entities
// plus one row per version record in entity_versions.
type PgxVersionLogRepository struct {
	BaseRepository
}

// newPgxVersionLogRepository creates a new repository for the entity version log.
func newPgxVersionLogRepository(pool *pgxpool.Pool) portsrepo.VersionLogRepositoryWithTx {
	return &PgxVersionLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxVersionLogRepository implements portsrepo.VersionLogRepositoryWithTx
var _ portsrepo.VersionLogRepositoryWithTx = (*PgxVersionLogRepository)(nil)

// Commit writes the entity row and the new version row in one transaction. The
// entity row only advances when its stored history length equals c.Seq, so a
// commit is applied at most once. Retrying a commit that already landed is a
// no-op; any other mismatch is a conflict.
func (r *PgxVersionLogRepository) Commit(ctx context.Context, c versioning.Commit) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	if c.Seq == 0 {
		batch.Queue(`
			INSERT INTO entities (kind, id, owner_id, created_at, last_modified, is_deleted, deleted_at, history_len, snapshot)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8);`,
			c.Kind, c.Header.ID, c.Header.OwnerID, c.Header.CreatedAt, c.Header.LastModified,
			c.Header.IsDeleted, c.Header.DeletedAt, string(c.Record.Snapshot),
		)
	} else {
		batch.Queue(`
			UPDATE entities
			SET last_modified = $3, is_deleted = $4, deleted_at = $5, history_len = $6 + 1, snapshot = $7
			WHERE kind = $1 AND id = $2 AND history_len = $6;`,
			c.Kind, c.Header.ID, c.Header.LastModified, c.Header.IsDeleted, c.Header.DeletedAt,
			c.Seq, string(c.Record.Snapshot),
		)
	}
	batch.Queue(`
		INSERT INTO entity_versions (kind, entity_id, seq, recorded_at, action, actor_id, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		c.Kind, c.Header.ID, c.Seq, c.Record.Timestamp, string(c.Record.Action), c.Record.ActorID,
		string(c.Record.Snapshot),
	)

	br := tx.SendBatch(ctx, batch)
	tag, entityErr := br.Exec()
	var versionErr error
	if entityErr == nil && tag.RowsAffected() == 1 {
		_, versionErr = br.Exec()
	}
	if err := br.Close(); err != nil && entityErr == nil && versionErr == nil {
		versionErr = err
	}

	switch {
	case isUniqueViolation(entityErr), isUniqueViolation(versionErr), entityErr == nil && tag.RowsAffected() == 0:
		r.Rollback(ctx, tx)
		return r.resolveRetry(ctx, c)
	case entityErr != nil:
		return apperrors.NewAppError(500, "failed to write entity "+c.Kind+" "+c.Header.ID, entityErr)
	case versionErr != nil:
		return apperrors.NewAppError(500, "failed to write version record for "+c.Kind+" "+c.Header.ID, versionErr)
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		return fmt.Errorf("commit %s %s seq %d: %w", c.Kind, c.Header.ID, c.Seq, err)
	}
	return nil
}

// resolveRetry decides whether a rejected write was a replay of a record that is
// already stored.
func (r *PgxVersionLogRepository) resolveRetry(ctx context.Context, c versioning.Commit) error {
	query := `
		SELECT action, actor_id, snapshot::text
		FROM entity_versions
		WHERE kind = $1 AND entity_id = $2 AND seq = $3;
	`
	var action, actorID, snapshot string
	err := r.Pool.QueryRow(ctx, query, c.Kind, c.Header.ID, c.Seq).Scan(&action, &actorID, &snapshot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewConflictError(fmt.Sprintf("%s %s is not at version %d", c.Kind, c.Header.ID, c.Seq))
		}
		return apperrors.NewAppError(500, "failed to read version record for "+c.Kind+" "+c.Header.ID, err)
	}
	if action == string(c.Record.Action) && actorID == c.Record.ActorID && snapshot == string(c.Record.Snapshot) {
		return nil
	}
	return apperrors.NewConflictError(fmt.Sprintf("%s %s version %d was written by another commit", c.Kind, c.Header.ID, c.Seq))
}

// LoadKind returns every entity of a kind with its full history, oldest entity first.
func (r *PgxVersionLogRepository) LoadKind(ctx context.Context, kind string) ([]versioning.StoredEntity, error) {
	query := `
		SELECT e.id, e.owner_id, e.created_at, e.last_modified, e.is_deleted, e.deleted_at,
		       v.seq, v.recorded_at, v.action, v.actor_id, v.snapshot::text
		FROM entities e
		JOIN entity_versions v ON v.kind = e.kind AND v.entity_id = e.id
		WHERE e.kind = $1
		ORDER BY e.created_at, e.id, v.seq;
	`
	rows, err := r.Pool.Query(ctx, query, kind)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load "+kind+" entities", err)
	}
	defer rows.Close()

	var out []versioning.StoredEntity
	for rows.Next() {
		var (
			h         versioning.Header
			deletedAt *time.Time
			seq       int
			rec       versioning.Record
			action    string
			snapshot  string
		)
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.CreatedAt, &h.LastModified, &h.IsDeleted, &deletedAt,
			&seq, &rec.Timestamp, &action, &rec.ActorID, &snapshot); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan "+kind+" version row", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		rec.Action = domain.VersionAction(action)
		rec.Snapshot = []byte(snapshot)

		if seq == 0 {
			h.CreatedAt = h.CreatedAt.UTC()
			h.LastModified = h.LastModified.UTC()
			if deletedAt != nil {
				d := deletedAt.UTC()
				h.DeletedAt = &d
			}
			out = append(out, versioning.StoredEntity{Header: h})
		}
		if len(out) == 0 || out[len(out)-1].Header.ID != h.ID || len(out[len(out)-1].Records) != seq {
			return nil, apperrors.NewAppError(500, fmt.Sprintf("version log of %s %s has a gap at %d", kind, h.ID, seq), nil)
		}
		last := &out[len(out)-1]
		last.Records = append(last.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate "+kind+" version rows", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
