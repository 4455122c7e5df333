package resume

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/folio/pkg/profile"
	"github.com/artem13815/folio/pkg/profile/profiletest"
)

type countingText struct {
	calls int
	text  string
	err   error
}

func (c *countingText) Extract(data []byte) (string, error) {
	c.calls++
	return c.text, c.err
}

type stubStructured struct {
	out   ExtractOutcome
	err   error
	calls int
	seen  string
}

func (s *stubStructured) Extract(ctx context.Context, text string) (ExtractOutcome, error) {
	s.calls++
	s.seen = text
	return s.out, s.err
}

func pdfUpload(data []byte) *Upload {
	return &Upload{Filename: "cv.pdf", MediaType: "application/pdf", Data: data}
}

func TestIngest_RejectsInvalidInput(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	text := &countingText{text: "Ada"}
	structured := &stubStructured{}
	ing := NewIngestor(store, text, structured, newReconciler(store), zerolog.Nop())

	cases := []struct {
		name   string
		userID uuid.UUID
		file   *Upload
	}{
		{"png", id, &Upload{Filename: "cv.png", MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}},
		{"no file", id, nil},
		{"empty file", id, pdfUpload(nil)},
		{"nil user", uuid.Nil, pdfUpload([]byte("%PDF-1.4"))},
		{"unknown user", uuid.New(), pdfUpload([]byte("%PDF-1.4"))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ing.Ingest(context.Background(), c.userID, c.file)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, text.calls)
	assert.Zero(t, structured.calls)
}

func TestIngest_MediaTypeIsCaseInsensitive(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	structured := &stubStructured{out: ExtractOutcome{Result: Extraction{"name": "Ada"}}}
	ing := NewIngestor(store, &countingText{text: "Ada"}, structured, newReconciler(store), zerolog.Nop())

	_, err := ing.Ingest(context.Background(), id, &Upload{MediaType: "Application/PDF", Data: []byte("x")})
	assert.NoError(t, err)
}

func TestIngest_ExtractionFailureIsTerminal(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	structured := &stubStructured{}
	ing := NewIngestor(store, NewPDFExtractor(), structured, newReconciler(store), zerolog.Nop())

	_, err := ing.Ingest(context.Background(), id, pdfUpload([]byte("garbage that is not a pdf")))
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Zero(t, structured.calls)
}

func TestIngest_EmptyStructuredInputMapsToExtractionFailed(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	structured := &stubStructured{err: ErrEmptyInput}
	ing := NewIngestor(store, &countingText{text: "x"}, structured, newReconciler(store), zerolog.Nop())

	_, err := ing.Ingest(context.Background(), id, pdfUpload([]byte("x")))
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestIngest_EndToEnd(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Email: "ada@example.com", Name: "placeholder"})
	store.SeedSkills(id, "Cobol")
	structured := &stubStructured{out: ExtractOutcome{Result: Extraction{
		"name":   "Ada",
		"skills": []any{"Rust"},
	}}}
	ing := NewIngestor(store, NewPDFExtractor(), structured, newReconciler(store), zerolog.Nop())

	out, err := ing.Ingest(context.Background(), id, pdfUpload(buildPDF("Ada Lovelace\nRust")))
	require.NoError(t, err)
	assert.Contains(t, structured.seen, "Ada Lovelace")
	assert.False(t, out.Fallback)
	assert.Positive(t, out.TextChars)

	u := store.User(id)
	assert.Equal(t, "Ada", u.Name)
	assert.True(t, u.HasCompletedProfileSetup)
	assert.True(t, u.IsUploadResumeForProfile)

	skills := store.Skills(id)
	require.Len(t, skills, 1)
	assert.Equal(t, "Rust", skills[0].Name)
	assert.Equal(t, "General", skills[0].Category)
}

func TestIngest_FallbackIsReported(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	failing := &stubModel{err: errors.New("503")}
	ing := NewIngestor(store, &countingText{text: "Ada"},
		NewLLMExtractor(failing, "test", zerolog.Nop()), newReconciler(store), zerolog.Nop())

	out, err := ing.Ingest(context.Background(), id, pdfUpload([]byte("x")))
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, "John Doe", store.User(id).Name)
}

func TestIngest_PartialCollectionFailureSucceeds(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	store.FailOp("DeleteAllSkills", 0, errors.New("lock timeout"))
	structured := &stubStructured{out: ExtractOutcome{Result: Extraction{
		"skills":    []any{"Go"},
		"education": []any{map[string]any{"institution": "MIT"}},
	}}}
	ing := NewIngestor(store, &countingText{text: "Ada"}, structured, newReconciler(store), zerolog.Nop())

	out, err := ing.Ingest(context.Background(), id, pdfUpload([]byte("x")))
	require.NoError(t, err)
	assert.True(t, out.Reconcile.Partial())
	assert.Equal(t, CollectionReplaced, out.Reconcile.Education.Status)
}

func TestIngest_ScalarFailureFails(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	store.FailOp("UpdateUser", 0, errors.New("db down"))
	structured := &stubStructured{out: ExtractOutcome{Result: Extraction{"name": "Ada"}}}
	ing := NewIngestor(store, &countingText{text: "Ada"}, structured, newReconciler(store), zerolog.Nop())

	_, err := ing.Ingest(context.Background(), id, pdfUpload([]byte("x")))
	assert.ErrorIs(t, err, ErrProfileUpdate)
}
