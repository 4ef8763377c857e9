package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var ErrDocumentTooLarge = errors.New("document exceeds the download limit")

// DownloadDocument fetches the bytes of an uploaded document. Documents
// above limit bytes are refused before and during the download.
func DownloadDocument(ctx context.Context, b *bot.Bot, doc *models.Document, limit int64) ([]byte, error) {
	if doc.FileSize > limit {
		return nil, ErrDocumentTooLarge
	}

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: doc.FileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrDocumentTooLarge
	}
	return data, nil
}
