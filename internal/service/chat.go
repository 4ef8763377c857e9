package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/set-night/gptdesk/internal/repository"
)

const fileMessageTemplate = `
Question: %s

Attached file information:
Filename: %s
Content:
%s
`

// TurnResult describes a finished turn. When the remote call failed, Err is
// set and Reply holds its message, which was also stored as the assistant turn.
type TurnResult struct {
	Reply            string
	PromptTokens     int
	CompletionTokens int
	Cost             domain.Cost
	Err              *domain.RemoteError
}

// UploadResult is the outcome of attaching a file.
type UploadResult struct {
	File   *domain.FileInfo
	Cached bool
}

type ChatService struct {
	store        repository.Store
	completer    Completer
	ingestor     FileIngestor
	counter      TokenCounter
	sessions     *SessionRegistry
	defaultModel string
}

func NewChatService(
	store repository.Store,
	completer Completer,
	ingestor FileIngestor,
	counter TokenCounter,
	sessions *SessionRegistry,
	defaultModel string,
) *ChatService {
	return &ChatService{
		store:        store,
		completer:    completer,
		ingestor:     ingestor,
		counter:      counter,
		sessions:     sessions,
		defaultModel: defaultModel,
	}
}

func (c *ChatService) Sessions() *SessionRegistry {
	return c.sessions
}

func (c *ChatService) DefaultModel() string {
	return c.defaultModel
}

// AvailableModels returns the static model registry.
func (c *ChatService) AvailableModels() []domain.AIModel {
	return config.Models
}

// Login validates apiKey against the remote service and starts a session
// for it. An empty id lets the registry pick one.
func (c *ChatService) Login(ctx context.Context, id, apiKey, model string) (*Session, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, domain.ErrEmptyAPIKey
	}
	if model == "" {
		model = c.defaultModel
	}
	if !config.IsKnownModel(model) {
		return nil, domain.ErrModelNotFound
	}

	if err := c.completer.ValidateKey(ctx, apiKey, model); err != nil {
		return nil, err
	}

	if err := c.store.Update(ctx, func(doc *domain.Document) error {
		doc.Session(apiKey)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("init session record: %w", err)
	}

	sess := c.sessions.Create(id, apiKey, model)
	slog.Info("session started", "session", sess.ID, "model", model)
	return sess, nil
}

// Logout ends the session. Its persisted history is kept.
func (c *ChatService) Logout(sess *Session) {
	c.sessions.Delete(sess.ID)
	slog.Info("session ended", "session", sess.ID)
}

func (c *ChatService) SetModel(sess *Session, model string) error {
	if !config.IsKnownModel(model) {
		return domain.ErrModelNotFound
	}
	sess.setModel(model)
	return nil
}

// UploadFile attaches a file to the session. A file name already in the
// key's cache returns the cached FileInfo without extracting again. On error
// neither the cache nor the attachment changes.
func (c *ChatService) UploadFile(ctx context.Context, sess *Session, name string, data []byte, mimeType string) (*UploadResult, error) {
	if err := sess.begin(ctx, eventUpload); err != nil {
		return nil, err
	}
	defer func() {
		sess.advance(ctx, eventFileDone)
		sess.settle()
	}()

	doc, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	if rec, ok := doc.Lookup(sess.APIKey); ok {
		if fi, ok := rec.Files[name]; ok {
			sess.attach(&fi)
			slog.Debug("file cache hit", "session", sess.ID, "file", name)
			return &UploadResult{File: &fi, Cached: true}, nil
		}
	}

	info, err := c.ingestor.Ingest(name, data, mimeType, sess.Model())
	if err != nil {
		return nil, err
	}

	if err := c.store.Update(ctx, func(doc *domain.Document) error {
		doc.Session(sess.APIKey).Files[name] = *info
		return nil
	}); err != nil {
		return nil, fmt.Errorf("save file cache: %w", err)
	}

	sess.attach(info)
	slog.Info("file attached", "session", sess.ID, "file", name, "language", info.Language, "tokens", info.Tokens)
	return &UploadResult{File: info}, nil
}

// DetachFile stops injecting the attached file into new turns. The cache
// entry stays.
func (c *ChatService) DetachFile(sess *Session) {
	sess.attach(nil)
}

// Submit runs one turn: assemble the user content, check the budget of the
// whole candidate transcript, stream the reply through onDelta and commit
// both turns with their usage. A remote failure is committed as the
// assistant turn and reported in TurnResult.Err with a nil error.
func (c *ChatService) Submit(ctx context.Context, sess *Session, prompt string, onDelta func(string)) (*TurnResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if err := sess.begin(ctx, eventSubmit); err != nil {
		return nil, err
	}
	defer sess.settle()

	model, attached := sess.snapshot()
	userMsg := composeUserMessage(prompt, attached)
	sess.advance(ctx, eventAssemble)

	doc, err := c.store.Load(ctx)
	if err != nil {
		sess.advance(ctx, eventReject)
		return nil, fmt.Errorf("load store: %w", err)
	}
	var history []domain.Message
	if rec, ok := doc.Lookup(sess.APIKey); ok {
		history = rec.Messages
	}
	transcript := make([]domain.Message, 0, len(history)+1)
	transcript = append(transcript, history...)
	transcript = append(transcript, userMsg)

	if _, err := validateTranscript(c.counter, transcript, model); err != nil {
		sess.advance(ctx, eventReject)
		return nil, err
	}

	sess.advance(ctx, eventDispatch)
	slog.Debug("dispatching turn", "session", sess.ID, "model", model, "messages", len(transcript))

	streaming := false
	reply, err := c.completer.Stream(ctx, sess.APIKey, model, transcript, func(delta string) {
		if !streaming {
			streaming = true
			sess.advance(ctx, eventStream)
		}
		if onDelta != nil {
			onDelta(delta)
		}
	})

	// The turn always runs to commit or failure, even when the caller is gone.
	persistCtx := context.WithoutCancel(ctx)

	if err != nil {
		sess.advance(ctx, eventFail)
		remote := asRemoteError(err)
		slog.Warn("remote completion failed", "session", sess.ID, "model", model, "kind", remote.Kind, "error", remote.Message)

		assistant := domain.Message{Role: domain.RoleAssistant, Content: remote.Message}
		if err := c.appendTurns(persistCtx, sess.APIKey, userMsg, assistant, nil); err != nil {
			return nil, err
		}
		sess.advance(ctx, eventFinish)
		return &TurnResult{Reply: remote.Message, Err: remote}, nil
	}

	if !streaming {
		sess.advance(ctx, eventStream)
	}
	sess.advance(ctx, eventCommit)

	assistant := domain.Message{Role: domain.RoleAssistant, Content: reply}
	result := &TurnResult{
		Reply:            reply,
		PromptTokens:     c.counter.CountMessages(transcript, model),
		CompletionTokens: c.counter.Count(reply, model),
	}
	result.Cost = EstimateCost(result.PromptTokens, result.CompletionTokens, model)

	if err := c.appendTurns(persistCtx, sess.APIKey, userMsg, assistant, result); err != nil {
		return nil, err
	}
	sess.advance(ctx, eventFinish)

	slog.Info("turn committed",
		"session", sess.ID,
		"model", model,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"cost", result.Cost.TotalCost.String(),
	)
	return result, nil
}

// appendTurns re-reads the record and appends the user and assistant turns,
// adding usage when result is set.
func (c *ChatService) appendTurns(ctx context.Context, apiKey string, user, assistant domain.Message, result *TurnResult) error {
	err := c.store.Update(ctx, func(doc *domain.Document) error {
		rec := doc.Session(apiKey)
		rec.Messages = append(rec.Messages, user, assistant)
		if result != nil {
			rec.Usage.Add(result.PromptTokens, result.CompletionTokens, result.Cost)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Clear empties the transcript, the file cache and the usage of the
// session's key in a single write and drops the attachment.
func (c *ChatService) Clear(ctx context.Context, sess *Session) error {
	if sess.State() != StateIdle {
		return domain.ErrTurnInProgress
	}
	if err := c.ClearKey(ctx, sess.APIKey); err != nil {
		return err
	}
	sess.attach(nil)
	slog.Info("chat cleared", "session", sess.ID)
	return nil
}

func (c *ChatService) ClearKey(ctx context.Context, apiKey string) error {
	err := c.store.Update(ctx, func(doc *domain.Document) error {
		doc.Session(apiKey).Reset()
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// History returns the stored transcript of apiKey, empty when unknown.
func (c *ChatService) History(ctx context.Context, apiKey string) ([]domain.Message, error) {
	rec, err := c.record(ctx, apiKey)
	if err != nil || rec == nil {
		return []domain.Message{}, err
	}
	return rec.Messages, nil
}

func (c *ChatService) Usage(ctx context.Context, apiKey string) (domain.Usage, error) {
	rec, err := c.record(ctx, apiKey)
	if err != nil || rec == nil {
		return domain.Usage{}, err
	}
	return rec.Usage, nil
}

// Files returns the cached files of apiKey sorted by name.
func (c *ChatService) Files(ctx context.Context, apiKey string) ([]domain.FileInfo, error) {
	rec, err := c.record(ctx, apiKey)
	if err != nil || rec == nil {
		return []domain.FileInfo{}, err
	}
	files := make([]domain.FileInfo, 0, len(rec.Files))
	for _, fi := range rec.Files {
		files = append(files, fi)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Record returns the stored record of apiKey, an empty one when unknown.
func (c *ChatService) Record(ctx context.Context, apiKey string) (*domain.SessionRecord, error) {
	rec, err := c.record(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = domain.NewSessionRecord()
	}
	return rec, nil
}

func (c *ChatService) record(ctx context.Context, apiKey string) (*domain.SessionRecord, error) {
	doc, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	rec, ok := doc.Lookup(apiKey)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func composeUserMessage(prompt string, attached *domain.FileInfo) domain.Message {
	if attached == nil {
		return domain.Message{Role: domain.RoleUser, Content: prompt}
	}
	return domain.Message{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(fileMessageTemplate, prompt, attached.Name, attached.Content),
		Display: prompt,
	}
}

func asRemoteError(err error) *domain.RemoteError {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return remote
	}
	return &domain.RemoteError{Kind: domain.RemoteOther, Message: err.Error(), Err: err}
}
