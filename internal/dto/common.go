package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
)

// EntityMeta is the lifecycle metadata returned with every versioned entity.
// Version is the history length; send it back in If-Match to guard an update.
type EntityMeta struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerID"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified time.Time  `json:"lastModified"`
	IsDeleted    bool       `json:"isDeleted"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	Version      int        `json:"version"`
}

// VersionRecordResponse is one entry of an entity's edit history.
type VersionRecordResponse struct {
	Timestamp time.Time            `json:"timestamp"`
	Action    domain.VersionAction `json:"action"`
	ActorID   string               `json:"actorID"`
	Snapshot  json.RawMessage      `json:"snapshot" swaggertype:"object"`
}

// HistoryResponse lists the edit history of an entity, oldest first.
type HistoryResponse struct {
	ID      string                  `json:"id"`
	Records []VersionRecordResponse `json:"records"`
}

// ListParams holds the query parameters shared by list endpoints.
type ListParams struct {
	IncludeDeleted bool `form:"includeDeleted"`
}

// AsOfParams carries an optional reporting date (YYYY-MM-DD). Zero means today.
type AsOfParams struct {
	AsOf time.Time `form:"asOf" time_format:"2006-01-02"`
}

func toMeta(h versioning.Header, version int) EntityMeta {
	return EntityMeta{
		ID:           h.ID,
		OwnerID:      h.OwnerID,
		CreatedAt:    h.CreatedAt,
		LastModified: h.LastModified,
		IsDeleted:    h.IsDeleted,
		DeletedAt:    h.DeletedAt,
		Version:      version,
	}
}

// ToHistoryResponse converts version records to their response form.
func ToHistoryResponse(id string, records []versioning.Record) HistoryResponse {
	out := HistoryResponse{ID: id, Records: make([]VersionRecordResponse, len(records))}
	for i, r := range records {
		out.Records[i] = VersionRecordResponse{
			Timestamp: r.Timestamp,
			Action:    r.Action,
			ActorID:   r.ActorID,
			Snapshot:  r.Snapshot,
		}
	}
	return out
}
