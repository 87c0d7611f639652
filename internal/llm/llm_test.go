package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubProvider struct {
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(_ context.Context, req Request) (*Response, error) {
	s.calls++
	return &Response{Text: "ok", Model: req.Model}, nil
}

func (s *stubProvider) IsAvailable(context.Context) bool { return true }

func TestOpenAIProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 3)
		require.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		require.Equal(t, openai.ChatMessageRoleAssistant, req.Messages[2].Role)
		require.NotNil(t, req.ResponseFormat)

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  {\"title\":\"x\"}  "},
			}},
			Usage: openai.Usage{TotalTokens: 42},
		})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System: "be brief",
		Messages: []Message{
			{Role: RoleUser, Text: "hi"},
			{Role: RoleModel, Text: "hello"},
		},
		JSON: true,
	})
	require.NoError(t, err)
	require.Equal(t, `{"title":"x"}`, resp.Text)
	require.Equal(t, 42, resp.TokensUsed)
	require.Equal(t, openai.GPT4oMini, resp.Model)
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Prompt("", "hi"))
	require.Error(t, err)
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	require.Error(t, err)
}

func TestOllamaProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "json", req.Format)
		require.False(t, req.Stream)
		require.Equal(t, "system", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           req.Model,
			Message:         ollamaMessage{Role: "assistant", Content: "namaste"},
			Done:            true,
			PromptEvalCount: 3,
			EvalCount:       4,
		})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL + "/", Model: "mistral"})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{System: "sys", Messages: []Message{{Role: RoleUser, Text: "hi"}}, JSON: true})
	require.NoError(t, err)
	require.Equal(t, "namaste", resp.Text)
	require.Equal(t, "mistral", resp.Model)
	require.Equal(t, 7, resp.TokensUsed)
}

func TestOllamaProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Prompt("", "hi"))
	require.ErrorContains(t, err, "model not found")
	require.False(t, p.IsAvailable(context.Background()))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)
	require.Nil(t, p)

	_, err = NewProvider(context.Background(), Config{Provider: "bard"})
	require.Error(t, err)

	p, err = NewProvider(context.Background(), Config{Provider: "ollama", RequestsPerSecond: 2})
	require.NoError(t, err)
	require.IsType(t, &Limited{}, p)
	require.Equal(t, "ollama", p.Name())

	_, err = NewProvider(context.Background(), Config{Provider: "gemini"})
	require.Error(t, err)
}

func TestLimitedRespectsContext(t *testing.T) {
	stub := &stubProvider{}
	l := NewLimited(stub, 0.001, 1)

	_, err := l.Generate(context.Background(), Prompt("m", "first"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Generate(ctx, Prompt("m", "second"))
	require.Error(t, err)
	require.Equal(t, 1, stub.calls)
}

func TestSharedLimiterSpansProviders(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	require.Nil(t, NewLimiter(0, 1))

	p, err := NewProvider(context.Background(), Config{Provider: "ollama", RequestsPerSecond: 50, Limiter: limiter})
	require.NoError(t, err)
	require.Same(t, limiter, p.(*Limited).limiter)

	translate, chat := &stubProvider{}, &stubProvider{}
	a := NewSharedLimited(translate, limiter)
	b := NewSharedLimited(chat, limiter)

	_, err = a.Generate(context.Background(), Prompt("m", "first"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = b.Generate(ctx, Prompt("m", "second"))
	require.Error(t, err)
	require.Equal(t, 1, translate.calls)
	require.Zero(t, chat.calls)
}

func TestGeminiContents(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Text: "hello"},
		{Role: RoleModel, Text: "hi there"},
	})
	require.Len(t, contents, 2)
	require.EqualValues(t, genai.RoleUser, contents[0].Role)
	require.EqualValues(t, genai.RoleModel, contents[1].Role)
	require.Equal(t, "hi there", contents[1].Parts[0].Text)

	cfg := geminiConfig(Request{System: "sys", JSON: true}, Config{MaxTokens: 99})
	require.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.Equal(t, int32(99), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.SystemInstruction)
}
