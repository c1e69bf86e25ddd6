package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/scryfall"
)

// SetCatalog is the slice of the external catalog the sync job needs.
type SetCatalog interface {
	ListSets(ctx context.Context) ([]scryfall.Set, error)
	CardsBySet(ctx context.Context, setCode string) ([]model.CatalogEntry, error)
}

// SyncConfig holds configuration for the catalog sync scheduler.
type SyncConfig struct {
	// Interval is how often a full sync runs.
	// Default: 24 hours
	Interval time.Duration

	// RunTimeout bounds a single sync run.
	// Default: 2 hours
	RunTimeout time.Duration
}

// CatalogSyncService periodically walks the external catalog set by set
// and upserts every printing into the mirror. Progress is persisted per
// set so an interrupted run resumes where it stopped.
type CatalogSyncService struct {
	catalog  SetCatalog
	mirror   repository.CardMirrorRepository
	progress repository.SyncProgressRepository
	sink     func(ctx context.Context, cards []model.CatalogEntry) error
	config   SyncConfig

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewCatalogSyncService creates a new sync service. sink receives each
// set's cards; pass nil to write straight through to the mirror.
func NewCatalogSyncService(
	catalog SetCatalog,
	mirror repository.CardMirrorRepository,
	progress repository.SyncProgressRepository,
	sink func(ctx context.Context, cards []model.CatalogEntry) error,
	config SyncConfig,
) *CatalogSyncService {
	if config.Interval == 0 {
		config.Interval = 24 * time.Hour
	}
	if config.RunTimeout == 0 {
		config.RunTimeout = 2 * time.Hour
	}

	s := &CatalogSyncService{
		catalog:  catalog,
		mirror:   mirror,
		progress: progress,
		sink:     sink,
		config:   config,
		stopCh:   make(chan struct{}),
	}
	if s.sink == nil {
		s.sink = func(ctx context.Context, cards []model.CatalogEntry) error {
			return mirror.BatchUpsertCards(ctx, cards)
		}
	}
	return s
}

// Start begins the sync scheduler.
func (s *CatalogSyncService) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	log.Printf("[CatalogSync] Started - Interval: %v", s.config.Interval)

	// Resume an interrupted run shortly after startup.
	go func() {
		time.Sleep(1 * time.Minute)
		if p, err := s.Status(context.Background()); err == nil && p != nil && p.Status == model.SyncStatusRunning && p.CurrentSet != "" {
			log.Printf("[CatalogSync] Resuming interrupted run at set %s", p.CurrentSet)
			s.runSync()
		}
	}()

	go s.run()
}

func (s *CatalogSyncService) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runSync()
		case <-s.stopCh:
			log.Printf("[CatalogSync] Stopped")
			return
		}
	}
}

// Stop stops the sync scheduler.
func (s *CatalogSyncService) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate sync in the background. Returns an error
// if a run is already in flight.
func (s *CatalogSyncService) RunNow(ctx context.Context) error {
	p, err := s.Status(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if p != nil && p.Status == model.SyncStatusRunning {
		return fmt.Errorf("sync already running at set %s", p.CurrentSet)
	}

	go s.runSync()
	return nil
}

// Status returns the persisted progress of the last or current run.
func (s *CatalogSyncService) Status(ctx context.Context) (*model.SyncProgress, error) {
	return s.progress.GetSyncProgress(ctx)
}

func (s *CatalogSyncService) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
	defer cancel()

	if err := s.syncAll(ctx); err != nil {
		log.Printf("[CatalogSync] Run failed: %v", err)
	}
}

func (s *CatalogSyncService) syncAll(ctx context.Context) error {
	sets, err := s.catalog.ListSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sets: %w", err)
	}

	// Pick up where a previous run left off.
	resumeFrom := ""
	progress := model.SyncProgress{Status: model.SyncStatusRunning}
	if prev, err := s.progress.GetSyncProgress(ctx); err == nil && prev != nil {
		if prev.Status != model.SyncStatusCompleted && prev.CurrentSet != "" {
			resumeFrom = prev.CurrentSet
			progress = *prev
		}
	}

	// A resume point that the upstream no longer lists would skip every
	// set; fall back to a full walk instead.
	if resumeFrom != "" {
		found := false
		for _, set := range sets {
			if set.Code == resumeFrom {
				found = true
				break
			}
		}
		if !found {
			log.Printf("[CatalogSync] Resume set %s no longer listed, restarting full run", resumeFrom)
			resumeFrom = ""
			progress = model.SyncProgress{Status: model.SyncStatusRunning}
		}
	}

	log.Printf("[CatalogSync] Starting run - %d sets, resume_from=%q", len(sets), resumeFrom)

	skipping := resumeFrom != ""
	for _, set := range sets {
		if skipping {
			if set.Code == resumeFrom {
				skipping = false
			} else {
				continue
			}
		}
		if set.Digital {
			continue
		}

		progress.CurrentSet = set.Code
		progress.Status = model.SyncStatusRunning
		progress.UpdatedAt = time.Now()
		if err := s.progress.SaveSyncProgress(ctx, &progress); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		cards, err := s.catalog.CardsBySet(ctx, set.Code)
		if err != nil {
			s.markError(ctx, &progress, err)
			return fmt.Errorf("failed to fetch set %s: %w", set.Code, err)
		}

		if len(cards) > 0 {
			if err := s.sink(ctx, cards); err != nil {
				s.markError(ctx, &progress, err)
				return fmt.Errorf("failed to store set %s: %w", set.Code, err)
			}
		}

		progress.SetsCompleted++
		progress.TotalProcessed += len(cards)
		log.Printf("[CatalogSync] Synced set %s (%d cards, %d total)",
			set.Code, len(cards), progress.TotalProcessed)
	}

	progress.CurrentSet = ""
	progress.Status = model.SyncStatusCompleted
	progress.ErrorMessage = ""
	progress.UpdatedAt = time.Now()
	if err := s.progress.SaveSyncProgress(ctx, &progress); err != nil {
		return fmt.Errorf("failed to save final progress: %w", err)
	}

	log.Printf("[CatalogSync] Completed - %d sets, %d cards", progress.SetsCompleted, progress.TotalProcessed)
	return nil
}

func (s *CatalogSyncService) markError(ctx context.Context, progress *model.SyncProgress, cause error) {
	progress.Status = model.SyncStatusError
	progress.ErrorMessage = cause.Error()
	progress.UpdatedAt = time.Now()
	if err := s.progress.SaveSyncProgress(ctx, progress); err != nil {
		log.Printf("[CatalogSync] Failed to persist error state: %v", err)
	}
}
