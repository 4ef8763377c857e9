package service

import (
	"log/slog"
	"strings"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
)

// FileIngestor turns an uploaded file into a FileInfo.
type FileIngestor interface {
	Ingest(name string, data []byte, mimeType, model string) (*domain.FileInfo, error)
}

// extractor returns the plain text of a file and its display label.
type extractor func(name string, data []byte) (text, label string, err error)

type Ingestor struct {
	counter    TokenCounter
	extractors map[string]extractor
}

func NewIngestor(counter TokenCounter) *Ingestor {
	ing := &Ingestor{
		counter: counter,
		extractors: map[string]extractor{
			"txt":  extractPlainText,
			"pdf":  labelled(extractPDF, "PDF"),
			"docx": labelled(extractDOCX, "DOCX"),
		},
	}
	for _, ext := range config.SupportedExtensions() {
		if _, ok := ing.extractors[ext]; !ok {
			ing.extractors[ext] = extractSourceCode
		}
	}
	return ing
}

// Ingest extracts, labels and measures a file. Files over the model's usable
// budget are rejected outright, never truncated.
func (i *Ingestor) Ingest(name string, data []byte, mimeType, model string) (*domain.FileInfo, error) {
	ext := FileExtension(name)
	extract, ok := i.extractors[ext]
	if !ok {
		return nil, &domain.UnsupportedFileTypeError{Extension: ext}
	}

	text, label, err := extract(name, data)
	if err != nil {
		return nil, &domain.FileProcessingError{Name: name, Err: err}
	}

	tokens, err := validateFileSize(i.counter, text, model)
	if err != nil {
		return nil, err
	}

	slog.Debug("file ingested", "name", name, "language", label, "tokens", tokens, "size", len(data))

	return &domain.FileInfo{
		Name:     name,
		MimeType: mimeType,
		Content:  text,
		Language: label,
		Size:     int64(len(data)),
		Tokens:   tokens,
	}, nil
}

// FileExtension returns the lower-cased text after the last dot of name.
func FileExtension(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.ToLower(name)
}

func extractPlainText(_ string, data []byte) (string, string, error) {
	text, err := decodeText(data)
	if err != nil {
		return "", "", err
	}
	return text, config.PlainTextLabel, nil
}

func extractSourceCode(name string, data []byte) (string, string, error) {
	text, err := decodeText(data)
	if err != nil {
		return "", "", err
	}
	return text, DetectLanguage(name, text), nil
}

func labelled(fn func([]byte) (string, error), label string) extractor {
	return func(_ string, data []byte) (string, string, error) {
		text, err := fn(data)
		if err != nil {
			return "", "", err
		}
		return text, label, nil
	}
}
