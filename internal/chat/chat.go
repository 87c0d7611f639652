package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/translate"
)

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("empty message")

const (
	// DefaultModel is used when the service is created without one.
	DefaultModel = "gemini-3-pro-preview"

	NoResponseText  = "No response received."
	UnavailableText = "Service unavailable."
)

// Service answers questions about legislation through an LLM provider.
type Service struct {
	provider llm.Provider
	model    string
	log      *slog.Logger
}

// New creates a chat service. A nil provider answers every turn with UnavailableText.
func New(provider llm.Provider, model string, log *slog.Logger) *Service {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{provider: provider, model: model, log: log}
}

// Send appends text and the model's reply to transcript and returns the new transcript.
// The input slice is never modified.
func (s *Service) Send(ctx context.Context, transcript []llm.Message, lang, text string) ([]llm.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return transcript, ErrEmptyMessage
	}

	out := make([]llm.Message, 0, len(transcript)+2)
	out = append(out, transcript...)
	out = append(out, llm.Message{Role: llm.RoleUser, Text: text})

	return append(out, llm.Message{Role: llm.RoleModel, Text: s.reply(ctx, out, lang)}), nil
}

func (s *Service) reply(ctx context.Context, history []llm.Message, lang string) string {
	if s.provider == nil {
		return UnavailableText
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		Model:    s.model,
		System:   SystemInstruction(lang),
		Messages: history,
	})
	if err != nil {
		s.log.Warn("chat generation failed", slog.String("lang", lang), slog.Any("err", err))
		return UnavailableText
	}
	if strings.TrimSpace(resp.Text) == "" {
		return NoResponseText
	}
	return resp.Text
}

// SystemInstruction frames the assistant and names the reply language.
func SystemInstruction(lang string) string {
	tag, ok := translate.NormalizeLanguage(lang)
	if !ok {
		tag = translate.DefaultLanguage
	}
	return fmt.Sprintf(
		"You are an expert Indian Legislative Assistant. Provide deep insights into bills, acts, and the parliamentary process. Respond in %s.",
		translate.LanguageName(tag),
	)
}
