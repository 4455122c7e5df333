package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artem13815/folio/pkg/profile"
)

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// StructuredExtractor turns resume text into an Extraction.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string) (ExtractOutcome, error)
}

// ProfileReconciler persists an Extraction into a user's profile.
type ProfileReconciler interface {
	Reconcile(ctx context.Context, userID uuid.UUID, res Extraction) (ReconcileOutcome, error)
}

// UserLookup is the part of the profile store the orchestrator needs.
type UserLookup interface {
	FindUser(ctx context.Context, id uuid.UUID) (profile.User, error)
}

// Upload is an uploaded resume file.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

type IngestOutcome struct {
	Extraction     Extraction       `json:"extraction"`
	Fallback       bool             `json:"fallback"`
	SchemaWarnings []string         `json:"schemaWarnings,omitempty"`
	TextChars      int              `json:"textChars"`
	Reconcile      ReconcileOutcome `json:"reconcile"`
}

// UseCase описывает сценарий загрузки резюме в профиль.
type UseCase interface {
	Ingest(ctx context.Context, userID uuid.UUID, file *Upload) (IngestOutcome, error)
}

type Ingestor struct {
	users      UserLookup
	text       TextExtractor
	structured StructuredExtractor
	reconciler ProfileReconciler
	log        zerolog.Logger
}

func NewIngestor(users UserLookup, text TextExtractor, structured StructuredExtractor, reconciler ProfileReconciler, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		users:      users,
		text:       text,
		structured: structured,
		reconciler: reconciler,
		log:        log.With().Str("component", "ingestor").Logger(),
	}
}

// Ingest runs text extraction, structured extraction and reconciliation
// for one uploaded PDF. Only invalid input, a document without text and a
// failed scalar profile update are returned as errors; a model failure is
// absorbed by the fallback payload and a failed collection is reported in
// the outcome.
func (s *Ingestor) Ingest(ctx context.Context, userID uuid.UUID, file *Upload) (IngestOutcome, error) {
	if err := s.validate(ctx, userID, file); err != nil {
		return IngestOutcome{}, err
	}
	log := s.log.With().Str("user_id", userID.String()).Str("filename", file.Filename).Logger()

	text, err := s.text.Extract(file.Data)
	if err != nil {
		if errors.Is(err, ErrExtractionFailed) {
			return IngestOutcome{}, err
		}
		return IngestOutcome{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	ext, err := s.structured.Extract(ctx, text)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			return IngestOutcome{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
		return IngestOutcome{}, err
	}
	if ext.Fallback {
		log.Warn().Err(ext.Cause).Msg("structured extraction fell back to default payload")
	}

	rec, err := s.reconciler.Reconcile(ctx, userID, ext.Result)
	if err != nil {
		return IngestOutcome{}, err
	}
	if rec.Partial() {
		log.Warn().
			Str("skills", string(rec.Skills.Status)).
			Str("experience", string(rec.Experience.Status)).
			Str("education", string(rec.Education.Status)).
			Msg("resume ingested with partial profile update")
	} else {
		log.Info().Bool("fallback", ext.Fallback).Int("chars", len(text)).Msg("resume ingested")
	}

	return IngestOutcome{
		Extraction:     ext.Result,
		Fallback:       ext.Fallback,
		SchemaWarnings: ext.SchemaWarnings,
		TextChars:      len(text),
		Reconcile:      rec,
	}, nil
}

func (s *Ingestor) validate(ctx context.Context, userID uuid.UUID, file *Upload) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if file == nil || len(file.Data) == 0 {
		return fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if !strings.Contains(strings.ToLower(file.MediaType), "pdf") {
		return fmt.Errorf("%w: unsupported media type %q", ErrInvalidInput, file.MediaType)
	}
	if _, err := s.users.FindUser(ctx, userID); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return fmt.Errorf("%w: unknown user", ErrInvalidInput)
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}
