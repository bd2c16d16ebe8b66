package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
	"github.com/noah-isme/youth-camp-api/pkg/export"
	"github.com/noah-isme/youth-camp-api/pkg/jobs"
	"github.com/noah-isme/youth-camp-api/pkg/storage"
)

// JobKindIDCards identifies print batch jobs on the queue.
const JobKindIDCards = "id_cards"

var errNoPrintableCards = errors.New("no approved participants with an id match the filters")

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type batchStorage interface {
	Save(name string, data []byte) error
	Read(name string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Sign(batchID, name string) (string, time.Time, error)
	Verify(token string) (storage.DownloadToken, error)
}

type cardRenderer interface {
	Render(cards []export.IDCard) ([]byte, error)
}

// PrintServiceConfig governs download links and cleanup of rendered batches.
type PrintServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

type printPayload struct {
	Selection models.EditionSelection
	Criteria  models.RegistrationCriteria
}

// PrintService renders participant ID card sheets in the background.
type PrintService struct {
	registrations registrationSource
	queue         jobDispatcher
	storage       batchStorage
	signer        downloadSigner
	renderer      cardRenderer
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           PrintServiceConfig
	now           func() time.Time

	mu      sync.RWMutex
	batches map[string]*models.PrintBatch
}

// NewPrintService constructs the service. The queue is attached afterwards
// because its handler is the service itself.
func NewPrintService(registrations registrationSource, store batchStorage, signer downloadSigner, renderer cardRenderer, metrics *MetricsService, logger *zap.Logger, cfg PrintServiceConfig) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewIDCardRenderer("Youth Leadership Camp")
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &PrintService{
		registrations: registrations,
		storage:       store,
		signer:        signer,
		renderer:      renderer,
		metrics:       metrics,
		logger:        logger,
		cfg:           cfg,
		now:           time.Now,
		batches:       make(map[string]*models.PrintBatch),
	}
}

// AttachQueue sets the dispatcher used by Enqueue.
func (s *PrintService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// Enqueue records a batch and hands it to the worker pool. Without an explicit
// status filter only approved registrations are printed.
func (s *PrintService) Enqueue(ctx context.Context, sel models.EditionSelection, criteria models.RegistrationCriteria, requestedBy string) (*models.PrintBatch, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "print queue not configured")
	}
	if unconstrained(criteria.Status) {
		criteria.Status = string(models.RegistrationApproved)
	}

	now := s.now().UTC()
	batch := &models.PrintBatch{
		ID:          uuid.NewString(),
		Edition:     sel.String(),
		Criteria:    criteria,
		Status:      models.PrintBatchQueued,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.put(batch)
	s.metrics.RecordPrintBatch(models.PrintBatchQueued)

	job := jobs.Job{ID: batch.ID, Kind: JobKindIDCards, Payload: printPayload{Selection: sel, Criteria: criteria}}
	if err := s.queue.Enqueue(job); err != nil {
		s.fail(batch.ID, "failed to enqueue batch")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue print batch")
	}

	s.logger.Info("print batch queued", zap.String("batch_id", batch.ID), zap.String("edition", batch.Edition), zap.String("requested_by", requestedBy))
	return s.snapshot(batch.ID), nil
}

// Status returns a copy of the batch.
func (s *PrintService) Status(ctx context.Context, id string) (*models.PrintBatch, error) {
	batch := s.snapshot(id)
	if batch == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "print batch not found")
	}
	return batch, nil
}

// Handle renders one batch. It is the queue handler.
func (s *PrintService) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(printPayload)
	if !ok {
		s.fail(job.ID, "malformed job payload")
		return nil
	}
	s.update(job.ID, func(b *models.PrintBatch) { b.Status = models.PrintBatchProcessing })

	regs, err := s.registrations.List(ctx, payload.Selection)
	if err != nil {
		return fmt.Errorf("load registrations: %w", err)
	}
	cards := printableCards(FilterRegistrations(regs, payload.Criteria))
	if len(cards) == 0 {
		s.fail(job.ID, errNoPrintableCards.Error())
		return nil
	}

	pdf, err := s.renderer.Render(cards)
	if err != nil {
		return fmt.Errorf("render id cards: %w", err)
	}
	name := path.Join(s.now().UTC().Format("2006-01-02"), fmt.Sprintf("id_cards_%s.pdf", job.ID))
	if err := s.storage.Save(name, pdf); err != nil {
		return fmt.Errorf("store id cards: %w", err)
	}
	token, expiresAt, err := s.signer.Sign(job.ID, name)
	if err != nil {
		return fmt.Errorf("sign download: %w", err)
	}

	s.update(job.ID, func(b *models.PrintBatch) {
		b.Status = models.PrintBatchReady
		b.CardCount = len(cards)
		b.Error = ""
		b.DownloadURL = fmt.Sprintf("%s/print-batches/download/%s", s.cfg.APIPrefix, token)
		b.ExpiresAt = &expiresAt
	})
	s.metrics.RecordPrintBatch(models.PrintBatchReady)
	s.logger.Info("print batch ready", zap.String("batch_id", job.ID), zap.Int("cards", len(cards)))
	return nil
}

// GiveUp marks a batch failed once the queue stops retrying it.
func (s *PrintService) GiveUp(job jobs.Job, err error) {
	s.fail(job.ID, err.Error())
}

// ResolveDownload validates token and returns the stored PDF.
func (s *PrintService) ResolveDownload(ctx context.Context, token string) (*ExportFile, error) {
	decoded, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	batch := s.snapshot(decoded.BatchID)
	if batch != nil && batch.Status != models.PrintBatchReady {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "print batch not ready")
	}
	payload, err := s.storage.Read(decoded.Name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "print batch file not found")
	}
	return &ExportFile{
		Filename:    path.Base(decoded.Name),
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}

// StartCleanup purges expired PDFs every CleanupInterval until ctx ends.
func (s *PrintService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *PrintService) cleanupExpired() {
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("print batch cleanup failed", zap.Error(err))
	}

	cutoff := s.now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, b := range s.batches {
		if b.UpdatedAt.Before(cutoff) {
			delete(s.batches, id)
		}
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		s.logger.Info("print batches purged", zap.Int("files", len(removed)))
	}
}

func (s *PrintService) put(b *models.PrintBatch) {
	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()
}

func (s *PrintService) update(id string, fn func(*models.PrintBatch)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return
	}
	fn(b)
	b.UpdatedAt = s.now().UTC()
}

func (s *PrintService) fail(id, msg string) {
	s.update(id, func(b *models.PrintBatch) {
		b.Status = models.PrintBatchFailed
		b.Error = msg
	})
	s.metrics.RecordPrintBatch(models.PrintBatchFailed)
	s.logger.Warn("print batch failed", zap.String("batch_id", id), zap.String("reason", msg))
}

func (s *PrintService) snapshot(id string) *models.PrintBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func printableCards(regs []models.Registration) []export.IDCard {
	cards := make([]export.IDCard, 0, len(regs))
	for _, reg := range regs {
		if reg.ParticipantID == nil || *reg.ParticipantID == "" {
			continue
		}
		cards = append(cards, export.IDCard{
			ParticipantID: *reg.ParticipantID,
			Name:          reg.Name,
			Church:        reg.Church,
			Grade:         reg.Grade,
			Location:      reg.ParticipantLocation,
		})
	}
	return cards
}
