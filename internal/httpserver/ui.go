package httpserver

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
)

//go:embed static/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	Models       []domain.AIModel
	DefaultModel string
	Accept       string
	FileHelp     []fileTypeHelp
}

type fileTypeHelp struct {
	Extension   string
	Description string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	exts := config.SupportedExtensions()
	data := indexData{
		Models:       s.chat.AvailableModels(),
		DefaultModel: s.chat.DefaultModel(),
		FileHelp:     make([]fileTypeHelp, 0, len(exts)),
	}
	accept := make([]string, 0, len(exts))
	for _, ext := range exts {
		accept = append(accept, "."+ext)
		data.FileHelp = append(data.FileHelp, fileTypeHelp{Extension: ext, Description: config.SupportedFiles[ext]})
	}
	data.Accept = strings.Join(accept, ",")

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		slog.Error("render index", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
