package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/legisdesk/bill-registry/internal/cache"
	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/processing"
)

var (
	// ErrServiceUnavailable means the text-generation call did not complete.
	ErrServiceUnavailable = errors.New("translation service unavailable")
	// ErrParseFailure means the reply was empty or not the expected JSON object.
	ErrParseFailure = errors.New("translation reply malformed")
	// ErrUnsupportedLanguage means the target tag is not one we translate to.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gemini-3-flash-preview"

// Fields are the translatable, displayable parts of a bill.
type Fields struct {
	Title                string `json:"title"`
	Ministry             string `json:"ministry"`
	Summary              string `json:"summary"`
	Status               string `json:"status"`
	CommitteeStatus      string `json:"committeeStatus"`
	FinancialImplication string `json:"financialImplication"`
}

// FieldsOf returns the untranslated fields of bill.
func FieldsOf(bill models.Bill) Fields {
	return Fields{
		Title:                bill.Title,
		Ministry:             bill.Ministry,
		Summary:              bill.Summary,
		Status:               string(bill.Status),
		CommitteeStatus:      bill.CommitteeStatus,
		FinancialImplication: bill.FinancialImplication,
	}
}

// Result is what callers display. Bill carries the translated text fields;
// Fields also carries the translated status label, which is not a models.Status.
// On any failure both equal the source and Fallback is set; Err records why.
type Result struct {
	Bill     models.Bill `json:"bill"`
	Language string      `json:"language"`
	Fields   Fields      `json:"fields"`
	Fallback bool        `json:"fallback"`
	Err      error       `json:"-"`
}

func result(bill models.Bill, tag string, f Fields) Result {
	bill.Title = f.Title
	bill.Ministry = f.Ministry
	bill.Summary = f.Summary
	bill.CommitteeStatus = f.CommitteeStatus
	bill.FinancialImplication = f.FinancialImplication
	return Result{Bill: bill, Language: tag, Fields: f}
}

// Options configure a Translator.
type Options struct {
	Model    string
	Cache    cache.Cache
	CacheTTL time.Duration
	Log      *slog.Logger
}

// Translator turns bills into another language through an LLM provider.
// Concurrent requests for the same bill and language share one call.
type Translator struct {
	provider llm.Provider
	model    string
	cache    cache.Cache
	ttl      time.Duration
	log      *slog.Logger
	group    singleflight.Group
}

// New creates a Translator. A nil provider makes every translation fall back.
func New(provider llm.Provider, opts Options) *Translator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Translator{
		provider: provider,
		model:    opts.Model,
		cache:    opts.Cache,
		ttl:      opts.CacheTTL,
		log:      opts.Log,
	}
}

// Translate never fails: errors degrade to the source-language fields.
func (t *Translator) Translate(ctx context.Context, bill models.Bill, lang string) Result {
	tag, ok := NormalizeLanguage(lang)
	if !ok {
		return t.fallback(bill, tag, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang))
	}
	if tag == DefaultLanguage {
		return Result{Bill: bill, Language: tag, Fields: FieldsOf(bill)}
	}

	key := cache.Key("translation", bill.ID, processing.RevisionHash(bill), tag, t.model)
	if t.cache != nil {
		if raw, hit := t.cache.Get(ctx, key); hit {
			var f Fields
			if err := json.Unmarshal(raw, &f); err == nil {
				return result(bill, tag, f)
			}
		}
	}

	ch := t.group.DoChan(key, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		fields, err := t.generate(detached, bill, tag)
		if err == nil {
			t.store(detached, key, bill.ID, fields)
		}
		return fields, err
	})

	select {
	case <-ctx.Done():
		return t.fallback(bill, tag, fmt.Errorf("%w: %w", ErrServiceUnavailable, ctx.Err()))
	case res := <-ch:
		if res.Err != nil {
			return t.fallback(bill, tag, res.Err)
		}
		return result(bill, tag, res.Val.(Fields))
	}
}

func (t *Translator) store(ctx context.Context, key, id string, fields Fields) {
	if t.cache == nil {
		return
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := t.cache.Set(ctx, key, raw, t.ttl); err != nil {
		t.log.Warn("cache translation", slog.String("id", id), slog.Any("err", err))
	}
}

func (t *Translator) generate(ctx context.Context, bill models.Bill, tag string) (Fields, error) {
	if t.provider == nil {
		return Fields{}, fmt.Errorf("%w: no provider configured", ErrServiceUnavailable)
	}

	req := llm.Prompt(t.model, BuildPrompt(bill, tag))
	req.JSON = true

	resp, err := t.provider.Generate(ctx, req)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	translated, err := ParseReply(resp.Text)
	if err != nil {
		return Fields{}, err
	}
	return Overlay(FieldsOf(bill), translated), nil
}

func (t *Translator) fallback(bill models.Bill, tag string, err error) Result {
	t.log.Warn("translation fell back to source text",
		slog.String("id", bill.ID),
		slog.String("lang", tag),
		slog.Any("err", err),
	)
	return Result{
		Bill:     bill,
		Language: tag,
		Fields:   FieldsOf(bill),
		Fallback: true,
		Err:      err,
	}
}

// BuildPrompt asks for a JSON translation of the bill's descriptive fields.
func BuildPrompt(bill models.Bill, tag string) string {
	return fmt.Sprintf(`Translate this legislative info to %s (%s). Provide a detailed professional summary and history. Respond strictly in JSON:
Title: %s
Ministry: %s
History: %s
Current Status: %s
Committee: %s
Financial Implication: %s
JSON format: { "title": "...", "ministry": "...", "summary": "...", "status": "...", "committeeStatus": "...", "financialImplication": "..." }`,
		LanguageName(tag), tag,
		bill.Title,
		bill.Ministry,
		bill.Summary,
		bill.Status,
		orNA(bill.CommitteeStatus),
		orNA(bill.FinancialImplication),
	)
}

// ParseReply decodes a model reply, tolerating a surrounding code fence.
func ParseReply(text string) (Fields, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return Fields{}, fmt.Errorf("%w: empty reply", ErrParseFailure)
	}

	var f Fields
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if strings.TrimSpace(f.Title) == "" {
		return Fields{}, fmt.Errorf("%w: missing title", ErrParseFailure)
	}
	return f, nil
}

// Overlay replaces base fields with the non-empty translated ones.
func Overlay(base, translated Fields) Fields {
	pick := func(orig, tr string) string {
		if s := strings.TrimSpace(tr); s != "" {
			return s
		}
		return orig
	}
	return Fields{
		Title:                pick(base.Title, translated.Title),
		Ministry:             pick(base.Ministry, translated.Ministry),
		Summary:              pick(base.Summary, translated.Summary),
		Status:               pick(base.Status, translated.Status),
		CommitteeStatus:      pick(base.CommitteeStatus, translated.CommitteeStatus),
		FinancialImplication: pick(base.FinancialImplication, translated.FinancialImplication),
	}
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
