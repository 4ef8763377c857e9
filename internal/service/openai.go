package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/set-night/gptdesk/internal/domain"
)

// Completer is the remote completion service.
type Completer interface {
	// Stream submits msgs and returns the full reply. Each text delta is
	// passed to onDelta as soon as it arrives. Failures are *domain.RemoteError.
	Stream(ctx context.Context, apiKey, model string, msgs []domain.Message, onDelta func(string)) (string, error)
	// ValidateKey checks that apiKey is accepted and may use model.
	ValidateKey(ctx context.Context, apiKey, model string) error
}

type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *ModelsCache
}

// NewOpenAIClient builds the adapter. An empty baseURL uses the public API;
// a zero timeout keeps the client library's default.
func NewOpenAIClient(baseURL string, timeout, modelsTTL time.Duration) *OpenAIClient {
	c := &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   NewModelsCache(modelsTTL),
	}
	if timeout > 0 {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

func (c *OpenAIClient) client(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	return openai.NewClientWithConfig(cfg)
}

func (c *OpenAIClient) Stream(ctx context.Context, apiKey, model string, msgs []domain.Message, onDelta func(string)) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(msgs),
		Stream:   true,
	}

	stream, err := c.client(apiKey).CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", c.remoteError(apiKey, err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sb.String(), c.remoteError(apiKey, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return sb.String(), nil
}

func (c *OpenAIClient) ValidateKey(ctx context.Context, apiKey, model string) error {
	ids := c.cache.Get(apiKey)
	if ids == nil {
		list, err := c.client(apiKey).ListModels(ctx)
		if err != nil {
			return classifyError(err)
		}
		modelIDs := make([]string, 0, len(list.Models))
		for _, m := range list.Models {
			modelIDs = append(modelIDs, m.ID)
		}
		ids = c.cache.Set(apiKey, modelIDs)
	}

	if _, ok := ids[model]; !ok {
		return &domain.RemoteError{
			Kind:    domain.RemoteModelUnavailable,
			Message: fmt.Sprintf("The API key is valid, but the model '%s' is not available.", model),
		}
	}
	return nil
}

// remoteError classifies err and forgets the cached model list of a key
// the remote side no longer accepts.
func (c *OpenAIClient) remoteError(apiKey string, err error) error {
	err = classifyError(err)
	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.Kind == domain.RemoteInvalidAPIKey {
		c.cache.Invalidate(apiKey)
	}
	return err
}

func toOpenAIMessages(msgs []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		})
	}
	return out
}

// classifyError maps a client library failure to a RemoteError whose message
// is the service's own text when it sent one.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := classifyRemote(apiErr.HTTPStatusCode, codeString(apiErr.Code), apiErr.Message)
		slog.Debug("remote api error", "status", apiErr.HTTPStatusCode, "kind", kind, "type", apiErr.Type)
		return &domain.RemoteError{
			Kind:       kind,
			Message:    apiErr.Message,
			StatusCode: apiErr.HTTPStatusCode,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.RemoteError{
			Kind:       classifyRemote(reqErr.HTTPStatusCode, "", reqErr.Error()),
			Message:    reqErr.Error(),
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return &domain.RemoteError{Kind: domain.RemoteOther, Message: err.Error(), Err: err}
}

func classifyRemote(status int, code, message string) domain.RemoteErrorKind {
	switch code {
	case "invalid_api_key":
		return domain.RemoteInvalidAPIKey
	case "model_not_found":
		return domain.RemoteModelUnavailable
	case "context_length_exceeded":
		return domain.RemoteContextTooLong
	case "rate_limit_exceeded", "insufficient_quota":
		return domain.RemoteRateLimited
	}

	msg := strings.ToLower(message)
	if strings.Contains(msg, "maximum context length") || strings.Contains(msg, "context length exceeded") {
		return domain.RemoteContextTooLong
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.RemoteInvalidAPIKey
	case http.StatusNotFound:
		return domain.RemoteModelUnavailable
	case http.StatusTooManyRequests:
		return domain.RemoteRateLimited
	case http.StatusRequestEntityTooLarge:
		return domain.RemoteContextTooLong
	}
	return domain.RemoteOther
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
