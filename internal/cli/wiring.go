package cli

import (
	"context"

	"github.com/set-night/gptdesk/internal/repository"
	"github.com/set-night/gptdesk/internal/service"
)

// newChatService opens the configured store and wires the chat service
// around it. The caller closes the returned store.
func (a *app) newChatService(ctx context.Context) (*service.ChatService, repository.Store, error) {
	store, err := repository.Open(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}

	counter := service.NewTiktokenCounter()
	completer := service.NewOpenAIClient(a.cfg.OpenAIBaseURL, a.cfg.RequestTimeout, a.cfg.ModelsCacheTTL)
	chat := service.NewChatService(
		store,
		completer,
		service.NewIngestor(counter),
		counter,
		service.NewSessionRegistry(),
		a.cfg.DefaultModel,
	)
	return chat, store, nil
}
