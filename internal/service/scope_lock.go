package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type scopeLeaseStore interface {
	Acquire(ctx context.Context, scope, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, scope, token string) error
}

// ScopeLock serialises generation runs per scope key. The in-process map
// guards a single instance; the optional lease store extends the guard
// across instances sharing Redis.
type ScopeLock struct {
	mu     sync.Mutex
	held   map[string]struct{}
	leases scopeLeaseStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewScopeLock builds a lock. leases may be nil for single-instance deployments.
func NewScopeLock(leases scopeLeaseStore, ttl time.Duration, logger *zap.Logger) *ScopeLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeLock{held: make(map[string]struct{}), leases: leases, ttl: ttl, logger: logger}
}

// Acquire claims the scope and returns its release func. A scope already held
// yields ErrScopeLocked. A nil lock admits every run.
func (l *ScopeLock) Acquire(ctx context.Context, scope string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	l.mu.Lock()
	if _, busy := l.held[scope]; busy {
		l.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrScopeLocked, "a timetable generation is already running for "+scope)
	}
	l.held[scope] = struct{}{}
	l.mu.Unlock()

	token := uuid.NewString()
	if l.leases != nil {
		ok, err := l.leases.Acquire(ctx, scope, token, l.ttl)
		if err != nil {
			l.drop(scope)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire scope lease")
		}
		if !ok {
			l.drop(scope)
			return nil, appErrors.Clone(appErrors.ErrScopeLocked, "a timetable generation is already running for "+scope)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if l.leases != nil {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := l.leases.Release(releaseCtx, scope, token); err != nil {
					l.logger.Warn("failed to release scope lease", zap.String("scope", scope), zap.Error(err))
				}
			}
			l.drop(scope)
		})
	}, nil
}

func (l *ScopeLock) drop(scope string) {
	l.mu.Lock()
	delete(l.held, scope)
	l.mu.Unlock()
}
