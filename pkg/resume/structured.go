package resume

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/artem13815/folio/pkg/llm"
)

const (
	defaultMaxChars     = 12000
	defaultModelTimeout = 45 * time.Second
)

var errUnparseable = errors.New("model response is not a JSON object")

// ExtractionCache stores real (non-fallback) extraction results.
// *cache.Redis satisfies it.
type ExtractionCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ExtractOutcome is the result of structured extraction. Fallback is true
// when Result is the fixed fallback payload rather than the model's answer.
type ExtractOutcome struct {
	Result         Extraction `json:"result"`
	Fallback       bool       `json:"fallback"`
	Cached         bool       `json:"cached"`
	SchemaWarnings []string   `json:"schemaWarnings,omitempty"`
	Cause          error      `json:"-"`
}

// LLMExtractor turns resume text into an Extraction through a chat model.
type LLMExtractor struct {
	llm       llm.ChatModel
	modelName string
	timeout   time.Duration
	maxChars  int
	cache     ExtractionCache
	cacheTTL  time.Duration
	log       zerolog.Logger
}

type ExtractorOption func(*LLMExtractor)

// WithModelTimeout bounds a single model call. After it expires the call is
// treated as failed and the fallback payload is used.
func WithModelTimeout(d time.Duration) ExtractorOption {
	return func(e *LLMExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithMaxChars(n int) ExtractorOption {
	return func(e *LLMExtractor) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

func WithCache(c ExtractionCache, ttl time.Duration) ExtractorOption {
	return func(e *LLMExtractor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

func NewLLMExtractor(model llm.ChatModel, modelName string, log zerolog.Logger, opts ...ExtractorOption) *LLMExtractor {
	e := &LLMExtractor{
		llm:       model,
		modelName: modelName,
		timeout:   defaultModelTimeout,
		maxChars:  defaultMaxChars,
		log:       log.With().Str("component", "structured_extractor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

const systemPrompt = "You are a resume parser. Reply with exactly one JSON object and nothing else: " +
	"no markdown, no code fences, no comments. Use [] for empty lists, never null. Do not invent facts."

const userPromptTemplate = `Resume text:
<<<
%s
>>>

Return one JSON object with this shape:
{
  "name": string,
  "profile_email": string,
  "phone": string,
  "title": string,
  "location": string,
  "bio": string,
  "workExperience": [{"position": string, "company": string, "location": string, "startDate": "YYYY-MM-DD", "endDate": "YYYY-MM-DD" or null, "isCurrentPosition": boolean, "description": string}],
  "education": [{"institution": string, "degree": string, "fieldOfStudy": string, "startYear": integer, "endYear": integer, "description": string}],
  "skills": string[]
}
Omit fields that are not present in the resume.`

// Extract never fails because of the model: any model error, timeout or
// unparseable answer yields the fallback payload with Fallback set and the
// reason in Cause. Only blank input is an error (ErrEmptyInput), and in that
// case the model is not called.
func (e *LLMExtractor) Extract(ctx context.Context, text string) (ExtractOutcome, error) {
	// битые байты из шрифтов PDF выбрасываем до проверки на пустоту
	text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
	if text == "" {
		return ExtractOutcome{}, ErrEmptyInput
	}
	text = strings.TrimSpace(truncate(text, e.maxChars))
	if text == "" {
		return ExtractOutcome{}, ErrEmptyInput
	}
	key := e.cacheKey(text)

	if e.cache != nil {
		var cached Extraction
		found, err := e.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			e.log.Warn().Err(err).Msg("extraction cache read failed")
		}
		if found && cached != nil {
			return ExtractOutcome{Result: cached, Cached: true, SchemaWarnings: schemaWarnings(cached)}, nil
		}
	}

	if e.llm == nil {
		return e.fallback(fmt.Errorf("%w: model is not configured", ErrExternalModel)), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	started := time.Now()
	raw, err := e.llm.Ask(callCtx, systemPrompt, fmt.Sprintf(userPromptTemplate, text))
	if err != nil {
		return e.fallback(fmt.Errorf("%w: %w", ErrExternalModel, err)), nil
	}
	result, err := parseExtraction(raw)
	if err != nil {
		return e.fallback(fmt.Errorf("%w: %w", ErrExternalModel, err)), nil
	}

	warnings := schemaWarnings(result)
	if len(warnings) > 0 {
		e.log.Warn().Strs("warnings", warnings).Msg("extraction does not match documented schema")
	}
	e.log.Debug().Dur("took", time.Since(started)).Int("chars", len(text)).Msg("structured extraction done")

	if e.cache != nil {
		if err := e.cache.SetJSON(ctx, key, result, e.cacheTTL); err != nil {
			e.log.Warn().Err(err).Msg("extraction cache write failed")
		}
	}
	return ExtractOutcome{Result: result, SchemaWarnings: warnings}, nil
}

func (e *LLMExtractor) fallback(cause error) ExtractOutcome {
	e.log.Warn().Err(cause).Msg("structured extraction failed, using fallback payload")
	return ExtractOutcome{Result: FallbackExtraction(), Fallback: true, Cause: cause}
}

func (e *LLMExtractor) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(e.modelName + "\x00" + text))
	return "folio:extraction:" + hex.EncodeToString(sum[:])
}

// parseExtraction accepts a bare JSON object, one wrapped in a code fence,
// or one embedded in surrounding prose.
func parseExtraction(raw string) (Extraction, error) {
	raw = stripCodeFence(strings.TrimSpace(raw))
	if m, ok := decodeObject(raw); ok {
		return m, nil
	}
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			if m, ok := decodeObject(raw[i : j+1]); ok {
				return m, nil
			}
		}
	}
	return nil, errUnparseable
}

func decodeObject(s string) (Extraction, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return Extraction(m), true
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most max bytes without splitting the last rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
