package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Role identifies the speaker of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Provider is a text-generation backend.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces the next model turn for the conversation in req.
	Generate(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Request is a provider-neutral generation request.
type Request struct {
	// Model overrides the provider's default model.
	Model string

	// System is an optional system instruction.
	System string

	// Messages is the conversation so far; the last entry is the user turn to answer.
	Messages []Message

	// JSON asks the provider to reply with a JSON object.
	JSON bool

	// MaxTokens limits the response length. Zero uses the provider default.
	MaxTokens int
}

// Prompt builds a single-turn request.
func Prompt(model, text string) Request {
	return Request{
		Model:    model,
		Messages: []Message{{Role: RoleUser, Text: text}},
	}
}

// Response is the generated model turn.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "gemini", "openai", "ollama", ""
	Provider string

	// Model is the default model when a request does not name one.
	Model string

	APIKey  string
	BaseURL string
	Timeout time.Duration

	MaxTokens int

	// RequestsPerSecond bounds outbound calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// Limiter, when set, is used instead of one built from RequestsPerSecond
	// so several providers can share a single budget.
	Limiter *rate.Limiter
}

// DefaultConfig returns the Gemini defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Model:     "gemini-3-flash-preview",
		Timeout:   30 * time.Second,
		MaxTokens: 2048,
		Burst:     5,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func pickModel(req Request, cfg Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg.Model != "" {
		return cfg.Model
	}
	return fallback
}

func pickMaxTokens(req Request, cfg Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 1024
}
