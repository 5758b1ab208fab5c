package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	portsrepo "github.com/SscSPs/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/core/services"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	ownerA = "user-a"
	ownerB = "user-b"
)

func amt(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func on(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// memoryVersionLog keeps commits the way the database does and replays them on load.
type memoryVersionLog struct {
	mu      sync.Mutex
	order   map[string][]string
	headers map[string]versioning.Header
	records map[string][]versioning.Record
}

func newMemoryVersionLog() *memoryVersionLog {
	return &memoryVersionLog{
		order:   map[string][]string{},
		headers: map[string]versioning.Header{},
		records: map[string][]versioning.Record{},
	}
}

func (l *memoryVersionLog) Commit(_ context.Context, c versioning.Commit) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := c.Kind + "/" + c.Header.ID
	if len(l.records[key]) != c.Seq {
		return fmt.Errorf("out of order commit for %s: have %d, got seq %d", key, len(l.records[key]), c.Seq)
	}
	if c.Seq == 0 {
		l.order[c.Kind] = append(l.order[c.Kind], c.Header.ID)
	}
	l.headers[key] = c.Header
	l.records[key] = append(l.records[key], c.Record)
	return nil
}

func (l *memoryVersionLog) LoadKind(_ context.Context, kind string) ([]versioning.StoredEntity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []versioning.StoredEntity
	for _, id := range l.order[kind] {
		key := kind + "/" + id
		out = append(out, versioning.StoredEntity{
			Header:  l.headers[key],
			Records: append([]versioning.Record(nil), l.records[key]...),
		})
	}
	return out, nil
}

func (l *memoryVersionLog) count(kind string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order[kind])
}

// MockVersionLog is a mock type for the VersionLogRepositoryFacade interface
type MockVersionLog struct {
	mock.Mock
}

func (m *MockVersionLog) Commit(ctx context.Context, c versioning.Commit) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockVersionLog) LoadKind(ctx context.Context, kind string) ([]versioning.StoredEntity, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]versioning.StoredEntity), args.Error(1)
}

// steppingClock advances one second per reading so every write gets its own timestamp.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newContainer(log portsrepo.VersionLogRepositoryFacade, autoStock bool) (*portssvc.ServiceContainer, error) {
	clock := &steppingClock{now: on(2024, 3, 10)}
	cfg := &config.Config{AutoStockOnSettlement: autoStock}
	return services.NewServiceContainer(context.Background(), cfg, portsrepo.RepositoryProvider{VersionLog: log}, services.WithDatasetClock(clock.Now))
}
