package ratelimit

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/mountarc/mountarc-api/pkg/logger"
	"github.com/mountarc/mountarc-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultWindow       = 5 * time.Minute
	DefaultMaxPerWindow = 1
)

// Result is the outcome of a single Check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store decides whether an identity may submit again.
type Store interface {
	Check(identity string) Result
}

type entry struct {
	timestamp time.Time
	count     int
}

// MemoryStore is a fixed-window limiter held in process memory.
// Limits are per instance and reset on restart.
type MemoryStore struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	window time.Duration
	max    int
	now    func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a store allowing max submissions per window.
func NewMemoryStore(window time.Duration, max int, opts ...Option) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxPerWindow
	}

	s := &MemoryStore{
		// go-cache expiry is a backstop; Check prunes against the store clock.
		cache:  gocache.New(2*window, 2*window),
		window: window,
		max:    max,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ Store = (*MemoryStore)(nil)

// Check records an attempt for identity and reports whether it is allowed.
func (s *MemoryStore) Check(identity string) Result {
	key := normalize(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	if item, found := s.cache.Get(key); found {
		e, ok := item.(*entry)
		if ok && now.Sub(e.timestamp) < s.window {
			if e.count < s.max {
				e.count++
				return Result{Allowed: true}
			}

			retryAfter := s.window - now.Sub(e.timestamp)
			logger.Debug("Submission rate limited",
				zap.String("identity", key),
				zap.Duration("retry_after", retryAfter))
			metrics.RateLimitRejections.Inc()
			return Result{Allowed: false, RetryAfter: retryAfter}
		}
	}

	s.cache.SetDefault(key, &entry{timestamp: now, count: 1})
	metrics.RateLimitEntries.Set(float64(s.cache.ItemCount()))

	return Result{Allowed: true}
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.ItemCount()
}

// prune drops entries whose window has closed. Callers hold s.mu.
func (s *MemoryStore) prune(now time.Time) {
	removed := 0
	for key, item := range s.cache.Items() {
		e, ok := item.Object.(*entry)
		if !ok || now.Sub(e.timestamp) >= s.window {
			s.cache.Delete(key)
			removed++
		}
	}
	if removed > 0 {
		metrics.RateLimitEntries.Set(float64(s.cache.ItemCount()))
	}
}

func normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Message tells the submitter how long to wait, in whole minutes rounded up.
func Message(retryAfter time.Duration) string {
	minutes := int(math.Ceil(retryAfter.Minutes()))
	if minutes <= 1 {
		return "Please wait a moment before submitting again."
	}
	return fmt.Sprintf("Please wait %d minutes before submitting again.", minutes)
}
