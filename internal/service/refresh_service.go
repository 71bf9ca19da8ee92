package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusview/attendance-api/internal/models"
	"github.com/campusview/attendance-api/pkg/jobs"
)

type groupRefresher interface {
	RefreshGroup(ctx context.Context, rollNumbers []string, campus string) []models.FetchResult
}

// RefreshServiceConfig tunes the background refresh worker.
type RefreshServiceConfig struct {
	// CacheTTL mirrors the snapshot cache TTL.
	CacheTTL time.Duration
	// Lead is how long before expiry a refresh is scheduled.
	Lead time.Duration
	// Workers bounds concurrent refresh jobs.
	Workers int
}

type servedGroup struct {
	rollNumbers []string
	campus      string
	servedAt    time.Time
}

// RefreshService keeps snapshots for recently requested groups warm: it
// remembers which groups were served and re-fetches them shortly before
// their cache entries expire, so repeat viewers skip the portal round trip.
type RefreshService struct {
	refresher groupRefresher
	queue     *jobs.Queue
	logger    *zap.Logger
	cfg       RefreshServiceConfig

	mu     sync.Mutex
	recent map[string]servedGroup

	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefreshService constructs a RefreshService.
func NewRefreshService(refresher groupRefresher, cfg RefreshServiceConfig, logger *zap.Logger) *RefreshService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Lead <= 0 || cfg.Lead >= cfg.CacheTTL {
		cfg.Lead = cfg.CacheTTL / 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RefreshService{
		refresher: refresher,
		logger:    logger,
		cfg:       cfg,
		recent:    make(map[string]servedGroup),
		now:       time.Now,
	}
	s.queue = jobs.NewQueue("snapshot-refresh", s.handleJob, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the worker queue and the scheduling loop.
func (s *RefreshService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.queue.Start(ctx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.CacheTTL - s.cfg.Lead)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scheduleDue()
			}
		}
	}()
}

// Stop halts scheduling and waits for in-flight jobs.
func (s *RefreshService) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.queue.Stop()
}

// MarkServed records that a group view was just rendered. Groups not
// served within one TTL fall out of the refresh rotation.
func (s *RefreshService) MarkServed(name string, rollNumbers []string, campus string) {
	if name == "" || len(rollNumbers) == 0 {
		return
	}
	s.mu.Lock()
	s.recent[name] = servedGroup{
		rollNumbers: append([]string(nil), rollNumbers...),
		campus:      campus,
		servedAt:    s.now(),
	}
	s.mu.Unlock()
}

func (s *RefreshService) scheduleDue() {
	now := s.now()

	s.mu.Lock()
	due := make(map[string]servedGroup)
	for name, g := range s.recent {
		if now.Sub(g.servedAt) >= s.cfg.CacheTTL {
			delete(s.recent, name)
			continue
		}
		due[name] = g
	}
	s.mu.Unlock()

	for name, g := range due {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "refresh-group",
			Payload: g,
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("refresh enqueue failed", zap.String("group", name), zap.Error(err))
		}
	}
}

func (s *RefreshService) handleJob(ctx context.Context, job jobs.Job) error {
	g, ok := job.Payload.(servedGroup)
	if !ok {
		return nil
	}

	results := s.refresher.RefreshGroup(ctx, g.rollNumbers, g.campus)
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.logger.Debug("group refreshed",
		zap.Int("rolls", len(results)),
		zap.Int("failed", failed),
	)
	return nil
}
