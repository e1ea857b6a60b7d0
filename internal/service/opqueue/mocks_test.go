package opqueue

import (
	"context"
	"sync"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// operationApplierMock is a mock implementation of operationApplier.
type operationApplierMock struct {
	ApplyFunc func(ctx context.Context, op domain.QueuedOperation) error

	calls struct {
		Apply []struct {
			Ctx context.Context
			Op  domain.QueuedOperation
		}
	}
	lockApply sync.RWMutex
}

func (mock *operationApplierMock) Apply(ctx context.Context, op domain.QueuedOperation) error {
	if mock.ApplyFunc == nil {
		panic("operationApplierMock.ApplyFunc: method is nil but operationApplier.Apply was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Op  domain.QueuedOperation
	}{Ctx: ctx, Op: op}
	mock.lockApply.Lock()
	mock.calls.Apply = append(mock.calls.Apply, callInfo)
	mock.lockApply.Unlock()
	return mock.ApplyFunc(ctx, op)
}

// ApplyCalls gets all the calls that were made to Apply.
func (mock *operationApplierMock) ApplyCalls() []struct {
	Ctx context.Context
	Op  domain.QueuedOperation
} {
	mock.lockApply.RLock()
	defer mock.lockApply.RUnlock()
	return mock.calls.Apply
}

// onlineCheckerMock is a mock implementation of onlineChecker.
type onlineCheckerMock struct {
	IsOnlineFunc func() bool
}

func (mock *onlineCheckerMock) IsOnline() bool {
	if mock.IsOnlineFunc == nil {
		panic("onlineCheckerMock.IsOnlineFunc: method is nil but onlineChecker.IsOnline was just called")
	}
	return mock.IsOnlineFunc()
}

func online() *onlineCheckerMock  { return &onlineCheckerMock{IsOnlineFunc: func() bool { return true }} }
func offline() *onlineCheckerMock { return &onlineCheckerMock{IsOnlineFunc: func() bool { return false }} }
