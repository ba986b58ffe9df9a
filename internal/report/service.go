// Package report drives a report through its lifecycle: pending →
// transcribing → transcribed → summarizing → completed, with failed
// reachable from either in-progress stage. The service is the single place
// that translates an adapter failure into a persisted failed state before
// returning it upward.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/minute/internal/blob"
	"github.com/kalambet/minute/internal/render"
	"github.com/kalambet/minute/internal/storage"
	"github.com/kalambet/minute/internal/summarize"
	"github.com/kalambet/minute/internal/transcribe"
)

// ErrNotTranscribed is returned when summarization is requested before a
// successful transcription. The report state is left untouched.
var ErrNotTranscribed = errors.New("report must be transcribed first")

// Transcriber converts stored audio into a normalized transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) (*transcribe.Result, error)
}

// Summarizer converts a transcription into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcription string) (*summarize.Result, error)
}

// Detail is a report with its structured fields decoded. Nullable fields are
// pointers so absent values serialize as JSON null, matching the stored row.
type Detail struct {
	ID               int64                  `json:"id"`
	OriginalFilename string                 `json:"original_filename"`
	FileSize         int64                  `json:"file_size"`
	Duration         *float64               `json:"duration"`
	Transcription    *string                `json:"transcription"`
	Language         *string                `json:"language"`
	Summary          *string                `json:"summary"`
	Topics           []summarize.Topic      `json:"topics"`
	Decisions        []summarize.Decision   `json:"decisions"`
	ActionItems      []summarize.ActionItem `json:"action_items"`
	Status           string                 `json:"status"`
	ErrorMessage     *string                `json:"error_message"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// Service orchestrates the report lifecycle. All dependencies are injected,
// so adapters and stores can be substituted with test doubles.
type Service struct {
	store       *storage.Store
	blobs       *blob.Store
	transcriber Transcriber
	summarizer  Summarizer
	locks       *keyedMutex
	logger      *slog.Logger
}

// NewService creates a Service with the given store, blob store and adapters.
func NewService(store *storage.Store, blobs *blob.Store, t Transcriber, s Summarizer) *Service {
	return &Service{
		store:       store,
		blobs:       blobs,
		transcriber: t,
		summarizer:  s,
		locks:       newKeyedMutex(),
		logger:      slog.Default(),
	}
}

// Create stores the uploaded audio and inserts a pending report. The upload
// is validated (extension allow-list, size ceiling) before anything is
// persisted, so a rejected file never leaves a row behind.
func (s *Service) Create(ctx context.Context, originalName string, r io.Reader) (Detail, error) {
	key, size, err := s.blobs.SaveAudio(originalName, r)
	if err != nil {
		return Detail{}, err
	}

	id, err := s.store.CreateReport(storage.Report{
		OriginalFilename: originalName,
		FilePath:         key,
		FileSize:         size,
	})
	if err != nil {
		// Roll the blob back so storage failures don't orphan uploads.
		s.blobs.Delete(key)
		return Detail{}, fmt.Errorf("creating report: %w", err)
	}

	s.logger.Info("report created", "id", id, "filename", originalName, "size", size)
	return s.Get(ctx, id)
}

// Get fetches one report with structured fields decoded. Pure read.
func (s *Service) Get(_ context.Context, id int64) (Detail, error) {
	rep, err := s.store.GetReport(id)
	if err != nil {
		return Detail{}, err
	}
	return toDetail(rep), nil
}

// List returns reports newest first with skip/limit pagination. Pure read.
func (s *Service) List(_ context.Context, skip, limit int) ([]Detail, error) {
	reports, err := s.store.ListReports(skip, limit)
	if err != nil {
		return nil, err
	}
	details := make([]Detail, len(reports))
	for i, rep := range reports {
		details[i] = toDetail(rep)
	}
	return details, nil
}

// Transcribe runs the pending/failed → transcribing → transcribed transition.
// The transcribing status is committed before the adapter call, so a crash
// mid-call leaves a visibly in-progress record. On adapter failure the report
// is committed as failed with the error text, then the error is returned.
func (s *Service) Transcribe(ctx context.Context, id int64, language string) (Detail, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	rep, err := s.store.GetReport(id)
	if err != nil {
		return Detail{}, err
	}

	if err := s.store.SetStatus(id, storage.StatusTranscribing); err != nil {
		return Detail{}, fmt.Errorf("entering transcribing: %w", err)
	}

	result, err := s.transcriber.Transcribe(ctx, s.blobs.Path(rep.FilePath), language)
	if err != nil {
		s.fail(id, err)
		return Detail{}, err
	}

	if err := s.store.SaveTranscription(id, result.Transcription, result.Language, result.Duration); err != nil {
		return Detail{}, fmt.Errorf("saving transcription: %w", err)
	}

	s.logger.Info("report transcribed", "id", id, "language", result.Language, "duration", result.Duration)
	return s.Get(ctx, id)
}

// Summarize runs the transcribed → summarizing → completed transition.
// Precondition: a non-empty transcript must already be committed, otherwise
// ErrNotTranscribed is returned with no state change.
func (s *Service) Summarize(ctx context.Context, id int64) (Detail, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	rep, err := s.store.GetReport(id)
	if err != nil {
		return Detail{}, err
	}
	if rep.Transcription == "" {
		return Detail{}, ErrNotTranscribed
	}

	if err := s.store.SetStatus(id, storage.StatusSummarizing); err != nil {
		return Detail{}, fmt.Errorf("entering summarizing: %w", err)
	}

	result, err := s.summarizer.Summarize(ctx, rep.Transcription)
	if err != nil {
		s.fail(id, err)
		return Detail{}, err
	}

	if result.Dropped.Total() > 0 {
		s.logger.Warn("summary entries dropped during validation", "id", id,
			"topics", result.Dropped.Topics,
			"decisions", result.Dropped.Decisions,
			"action_items", result.Dropped.ActionItems)
	}

	topicsJSON, err := summarize.EncodeJSON(result.Topics)
	if err != nil {
		return Detail{}, fmt.Errorf("encoding topics: %w", err)
	}
	decisionsJSON, err := summarize.EncodeJSON(result.Decisions)
	if err != nil {
		return Detail{}, fmt.Errorf("encoding decisions: %w", err)
	}
	actionItemsJSON, err := summarize.EncodeJSON(result.ActionItems)
	if err != nil {
		return Detail{}, fmt.Errorf("encoding action items: %w", err)
	}

	if err := s.store.SaveSummary(id, result.Summary, topicsJSON, decisionsJSON, actionItemsJSON); err != nil {
		return Detail{}, fmt.Errorf("saving summary: %w", err)
	}

	s.logger.Info("report summarized", "id", id,
		"topics", len(result.Topics), "decisions", len(result.Decisions), "action_items", len(result.ActionItems))
	return s.Get(ctx, id)
}

// ProcessComplete transcribes and then, if requested, summarizes. A failure
// in the first stage aborts before the second is attempted.
func (s *Service) ProcessComplete(ctx context.Context, id int64, language string, includeSummary bool) (Detail, error) {
	detail, err := s.Transcribe(ctx, id, language)
	if err != nil {
		return Detail{}, err
	}
	if !includeSummary {
		return detail, nil
	}
	return s.Summarize(ctx, id)
}

// RenderPDF re-renders the PDF artifact from current stored state and
// persists it at its deterministic key. Status is never touched: export is a
// derivation outside the lifecycle and works at any stage; sections whose
// fields are still absent are simply omitted.
func (s *Service) RenderPDF(ctx context.Context, id int64) ([]byte, string, error) {
	rep, err := s.store.GetReport(id)
	if err != nil {
		return nil, "", err
	}

	data, err := render.PDF(buildDocument(rep))
	if err != nil {
		return nil, "", err
	}

	key, err := s.blobs.SaveArtifact(id, "pdf", data)
	if err != nil {
		return nil, "", err
	}
	return data, key, nil
}

// RenderMarkdown re-renders the Markdown artifact from current stored state
// and persists it at its deterministic key.
func (s *Service) RenderMarkdown(ctx context.Context, id int64) ([]byte, string, error) {
	rep, err := s.store.GetReport(id)
	if err != nil {
		return nil, "", err
	}

	data := []byte(render.Markdown(buildDocument(rep)))

	key, err := s.blobs.SaveArtifact(id, "md", data)
	if err != nil {
		return nil, "", err
	}
	return data, key, nil
}

// Delete removes the source audio, any rendered artifacts and the report
// row. Blob removal happens before the row delete; a crash in between leaves
// an orphaned row pointing at deleted blobs, which is an accepted
// inconsistency window rather than a transactional guarantee.
func (s *Service) Delete(_ context.Context, id int64) error {
	unlock := s.locks.lock(id)
	defer unlock()

	rep, err := s.store.GetReport(id)
	if err != nil {
		return err
	}

	keys := []string{
		rep.FilePath,
		blob.ArtifactKey(id, "pdf"),
		blob.ArtifactKey(id, "md"),
	}
	g := new(errgroup.Group)
	for _, key := range keys {
		g.Go(func() error {
			s.blobs.Delete(key) // missing blob is a no-op
			return nil
		})
	}
	g.Wait()

	if err := s.store.DeleteReport(id); err != nil {
		return err
	}
	s.logger.Info("report deleted", "id", id)
	return nil
}

// fail commits the failed state for a report. A storage error here is logged
// rather than returned: the adapter error is the one the caller must see.
func (s *Service) fail(id int64, cause error) {
	if err := s.store.MarkFailed(id, cause.Error()); err != nil {
		s.logger.Error("failed to persist failure state", "id", id, "error", err)
	}
}

// buildDocument assembles the renderable view of a report.
func buildDocument(rep storage.Report) render.Document {
	return render.Document{
		Title:         "Meeting Report - " + rep.OriginalFilename,
		Date:          rep.CreatedAt.Format("2006-01-02 15:04"),
		Duration:      rep.Duration,
		Language:      rep.Language,
		Summary:       rep.Summary,
		Topics:        summarize.DecodeTopics(rep.Topics),
		Decisions:     summarize.DecodeDecisions(rep.Decisions),
		ActionItems:   summarize.DecodeActionItems(rep.ActionItems),
		Transcription: rep.Transcription,
	}
}

// toDetail decodes a stored row into its typed view. This is the single
// place structured columns are parsed; a corrupt column degrades to an
// absent field instead of failing the read.
func toDetail(rep storage.Report) Detail {
	d := Detail{
		ID:               rep.ID,
		OriginalFilename: rep.OriginalFilename,
		FileSize:         rep.FileSize,
		Topics:           summarize.DecodeTopics(rep.Topics),
		Decisions:        summarize.DecodeDecisions(rep.Decisions),
		ActionItems:      summarize.DecodeActionItems(rep.ActionItems),
		Status:           rep.Status,
		CreatedAt:        rep.CreatedAt,
		UpdatedAt:        rep.UpdatedAt,
	}
	if rep.Duration > 0 {
		d.Duration = &rep.Duration
	}
	if rep.Transcription != "" {
		d.Transcription = &rep.Transcription
	}
	if rep.Language != "" {
		d.Language = &rep.Language
	}
	if rep.Summary != "" {
		d.Summary = &rep.Summary
	}
	if rep.ErrorMessage != "" {
		d.ErrorMessage = &rep.ErrorMessage
	}
	return d
}
