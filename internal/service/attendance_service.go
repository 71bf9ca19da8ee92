package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusview/attendance-api/internal/cache"
	"github.com/campusview/attendance-api/internal/models"
	"github.com/campusview/attendance-api/internal/parser"
)

// errInvalidDocument marks a 200 response whose body parsed to no identity
// fields. Retrying cannot fix a structurally different page, so this error
// is surfaced immediately.
var errInvalidDocument = errors.New("invalid attendance data received")

// Fetch task outcomes for metrics.
const (
	fetchOutcomeSuccess  = "success"
	fetchOutcomeCacheHit = "cache_hit"
	fetchOutcomeFailure  = "failure"
)

type pageFetcher interface {
	Fetch(ctx context.Context, rollNumber, campus string) (string, error)
}

// AttendanceServiceConfig tunes batching, retry and backoff behaviour.
type AttendanceServiceConfig struct {
	BatchSize   int
	RetryCount  int
	BackoffBase time.Duration
	BatchDelay  time.Duration
}

// AttendanceService orchestrates group fetches: cache consult, bounded
// concurrent portal fetches in sequential batches, retry with backoff and
// parse, with per-roll failure isolation.
type AttendanceService struct {
	fetcher pageFetcher
	cache   cache.SnapshotCache
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AttendanceServiceConfig

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

// AttendanceServiceParams groups constructor dependencies.
type AttendanceServiceParams struct {
	Fetcher pageFetcher
	Cache   cache.SnapshotCache
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  AttendanceServiceConfig
}

// NewAttendanceService constructs an AttendanceService with sane defaults.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	cfg := params.Config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		fetcher: params.Fetcher,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// FetchGroup retrieves attendance for every roll number, one FetchResult
// per input in input order. The call itself never fails: per-roll failures
// are data in the result list.
func (s *AttendanceService) FetchGroup(ctx context.Context, rollNumbers []string, campus string) []models.FetchResult {
	return s.fetchAll(ctx, rollNumbers, campus, false)
}

// RefreshGroup is FetchGroup with cache reads skipped, so live entries get
// replaced by fresh snapshots. Used by the background refresh worker.
func (s *AttendanceService) RefreshGroup(ctx context.Context, rollNumbers []string, campus string) []models.FetchResult {
	return s.fetchAll(ctx, rollNumbers, campus, true)
}

// FetchOne handles the degenerate single-roll case.
func (s *AttendanceService) FetchOne(ctx context.Context, rollNumber, campus string) models.FetchResult {
	return s.fetchOne(ctx, rollNumber, campus, false)
}

func (s *AttendanceService) fetchAll(ctx context.Context, rollNumbers []string, campus string, skipCache bool) []models.FetchResult {
	results := make([]models.FetchResult, len(rollNumbers))

	for start := 0; start < len(rollNumbers); start += s.cfg.BatchSize {
		if start > 0 && s.cfg.BatchDelay > 0 {
			s.sleep(ctx, s.cfg.BatchDelay)
		}

		end := start + s.cfg.BatchSize
		if end > len(rollNumbers) {
			end = len(rollNumbers)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = s.fetchOne(ctx, rollNumbers[idx], campus, skipCache)
			}(i)
		}
		wg.Wait()
	}

	return results
}

// fetchOne resolves a single roll number: cache first, then up to
// RetryCount portal attempts with a linearly growing pause between them.
func (s *AttendanceService) fetchOne(ctx context.Context, rollNumber, campus string, skipCache bool) models.FetchResult {
	start := s.now()

	if !skipCache && s.cache != nil {
		if snap, ok := s.cache.Get(ctx, rollNumber); ok {
			s.recordCacheLookup(true)
			s.observeFetch(fetchOutcomeCacheHit, s.now().Sub(start))
			return models.FetchResult{RollNumber: rollNumber, Success: true, Snapshot: &snap}
		}
		s.recordCacheLookup(false)
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryCount; attempt++ {
		if attempt > 1 {
			s.sleep(ctx, time.Duration(attempt-1)*s.cfg.BackoffBase)
			if s.metrics != nil {
				s.metrics.RecordRetry()
			}
		}

		text, err := s.fetcher.Fetch(ctx, rollNumber, campus)
		if err != nil {
			lastErr = err
			s.logger.Warn("portal fetch attempt failed",
				zap.String("roll", rollNumber),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		snap := parser.Parse(text)
		if !snap.HasIdentity() {
			lastErr = errInvalidDocument
			break
		}

		if s.cache != nil {
			s.cache.Put(ctx, rollNumber, snap)
		}
		s.observeFetch(fetchOutcomeSuccess, s.now().Sub(start))
		return models.FetchResult{RollNumber: rollNumber, Success: true, Snapshot: &snap}
	}

	s.observeFetch(fetchOutcomeFailure, s.now().Sub(start))
	return models.FetchResult{
		RollNumber: rollNumber,
		Success:    false,
		Error:      fmt.Sprintf("failed to fetch attendance for %s: %v", rollNumber, lastErr),
	}
}

func (s *AttendanceService) recordCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

func (s *AttendanceService) observeFetch(outcome string, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveFetch(outcome, duration)
	}
}

// sleepContext pauses for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
