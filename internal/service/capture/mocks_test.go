package capture

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// memKV is an in-memory key/value store backing a real queue in tests.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// analyzerMock is a mock implementation of analyzer.
type analyzerMock struct {
	AnalyzeFunc func(ctx context.Context, audio io.Reader, fileName string, userContext *string) (domain.Decomposition, error)

	calls struct {
		Analyze []struct {
			FileName    string
			UserContext *string
		}
	}
	lockAnalyze sync.RWMutex
}

func (mock *analyzerMock) Analyze(ctx context.Context, audio io.Reader, fileName string, userContext *string) (domain.Decomposition, error) {
	if mock.AnalyzeFunc == nil {
		panic("analyzerMock.AnalyzeFunc: method is nil but analyzer.Analyze was just called")
	}
	mock.lockAnalyze.Lock()
	mock.calls.Analyze = append(mock.calls.Analyze, struct {
		FileName    string
		UserContext *string
	}{FileName: fileName, UserContext: userContext})
	mock.lockAnalyze.Unlock()
	return mock.AnalyzeFunc(ctx, audio, fileName, userContext)
}

// AnalyzeCalls gets all the calls that were made to Analyze.
func (mock *analyzerMock) AnalyzeCalls() []struct {
	FileName    string
	UserContext *string
} {
	mock.lockAnalyze.RLock()
	defer mock.lockAnalyze.RUnlock()
	return mock.calls.Analyze
}

// dreamRepoMock is a mock implementation of dreamRepo.
type dreamRepoMock struct {
	CreateFunc         func(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error)
	GetByCaptureIDFunc func(ctx context.Context, userID uuid.UUID, captureID string) (*domain.DreamRecord, error)

	lock   sync.RWMutex
	create []domain.DreamRecord
}

func (mock *dreamRepoMock) Create(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
	if mock.CreateFunc == nil {
		panic("dreamRepoMock.CreateFunc: method is nil but dreamRepo.Create was just called")
	}
	mock.lock.Lock()
	mock.create = append(mock.create, *rec)
	mock.lock.Unlock()
	return mock.CreateFunc(ctx, rec)
}

func (mock *dreamRepoMock) GetByCaptureID(ctx context.Context, userID uuid.UUID, captureID string) (*domain.DreamRecord, error) {
	if mock.GetByCaptureIDFunc == nil {
		return nil, domain.ErrNotFound
	}
	return mock.GetByCaptureIDFunc(ctx, userID, captureID)
}

// CreateCalls gets all the records passed to Create.
func (mock *dreamRepoMock) CreateCalls() []domain.DreamRecord {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.create
}

// audioStoreMock is a mock implementation of audioStore.
type audioStoreMock struct {
	RemoveFunc func(location string) error

	lock    sync.RWMutex
	removed []string
}

func (mock *audioStoreMock) Open(location string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("audio:" + location)), nil
}

func (mock *audioStoreMock) Remove(location string) error {
	mock.lock.Lock()
	mock.removed = append(mock.removed, location)
	mock.lock.Unlock()
	if mock.RemoveFunc != nil {
		return mock.RemoveFunc(location)
	}
	return nil
}

// RemoveCalls gets all locations passed to Remove.
func (mock *audioStoreMock) RemoveCalls() []string {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.removed
}

// enrichmentTriggerMock records triggered records.
type enrichmentTriggerMock struct {
	lock      sync.RWMutex
	triggered []domain.DreamRecord
}

func (mock *enrichmentTriggerMock) Trigger(rec domain.DreamRecord) {
	mock.lock.Lock()
	defer mock.lock.Unlock()
	mock.triggered = append(mock.triggered, rec)
}

// TriggerCalls gets all records passed to Trigger.
func (mock *enrichmentTriggerMock) TriggerCalls() []domain.DreamRecord {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.triggered
}

// switchableConn is an onlineChecker whose state tests can flip.
type switchableConn struct {
	online atomic.Bool
}

func newConn(online bool) *switchableConn {
	c := &switchableConn{}
	c.online.Store(online)
	return c
}

func (c *switchableConn) IsOnline() bool { return c.online.Load() }
