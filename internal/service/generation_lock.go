package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

// LeaseStore holds cross-replica leases, typically in Redis.
type LeaseStore interface {
	AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	RenewLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key, token string) error
}

type keyedSlot struct {
	ch   chan struct{}
	refs int
}

// GenerationLock serialises generation runs per (class group, term). Inside one
// process a keyed mutex queues callers; across replicas a Redis lease rejects
// concurrent runs with a conflict. The lease is renewed every ttl/3 while held,
// so ttl bounds how long a crashed holder blocks other replicas, not the run time.
type GenerationLock struct {
	mu     sync.Mutex
	slots  map[string]*keyedSlot
	leases LeaseStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewGenerationLock builds a lock. leases may be nil for single-instance deployments.
func NewGenerationLock(leases LeaseStore, ttl time.Duration, logger *zap.Logger) *GenerationLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationLock{slots: make(map[string]*keyedSlot), leases: leases, ttl: ttl, logger: logger}
}

func generationLockKey(classGroupID, termID string) string {
	return fmt.Sprintf("report_cards:generate:%s:%s", classGroupID, termID)
}

// Acquire blocks until the caller owns the (class group, term) key or ctx ends.
// The returned release func must be called exactly once.
func (l *GenerationLock) Acquire(ctx context.Context, classGroupID, termID string) (func(), error) {
	key := generationLockKey(classGroupID, termID)
	slot := l.ref(key)

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "report card generation interrupted while waiting")
	}

	localRelease := func() {
		<-slot.ch
		l.unref(key)
	}

	if l.leases == nil {
		return localRelease, nil
	}

	token := uuid.NewString()
	ok, err := l.leases.AcquireLease(ctx, key, token, l.ttl)
	if err != nil {
		localRelease()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lease")
	}
	if !ok {
		localRelease()
		return nil, appErrors.Clone(appErrors.ErrConflict, "report card generation already running for this class group")
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(key, token, stop, done)

	return func() {
		close(stop)
		<-done
		if err := l.leases.ReleaseLease(context.Background(), key, token); err != nil {
			l.logger.Warn("release generation lease failed", zap.String("key", key), zap.Error(err))
		}
		localRelease()
	}, nil
}

// renew keeps the lease alive until stop is closed. A lost lease is logged and renewal stops.
func (l *GenerationLock) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := l.ttl / 3
	if interval <= 0 {
		interval = l.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			ok, err := l.leases.RenewLease(ctx, key, token, l.ttl)
			cancel()
			switch {
			case err != nil:
				l.logger.Warn("renew generation lease failed", zap.String("key", key), zap.Error(err))
			case !ok:
				l.logger.Warn("generation lease lost", zap.String("key", key))
				return
			}
		}
	}
}

func (l *GenerationLock) ref(key string) *keyedSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &keyedSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *GenerationLock) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
