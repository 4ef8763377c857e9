package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/set-night/gptdesk/internal/export"
	"github.com/set-night/gptdesk/internal/service"
)

type messageView struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

type fileView struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Language string `json:"language"`
	Size     int64  `json:"size"`
	Tokens   int    `json:"tokens"`
}

type usageView struct {
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
	Turns            int    `json:"turns"`
	Cost             string `json:"cost"`
}

type sessionView struct {
	ID       string        `json:"id"`
	Model    string        `json:"model"`
	Attached *fileView     `json:"attached,omitempty"`
	Messages []messageView `json:"messages"`
	Files    []fileView    `json:"files"`
	Usage    usageView     `json:"usage"`
}

func newFileView(fi *domain.FileInfo) *fileView {
	if fi == nil {
		return nil
	}
	return &fileView{Name: fi.Name, Type: fi.MimeType, Language: fi.Language, Size: fi.Size, Tokens: fi.Tokens}
}

func newUsageView(u domain.Usage) usageView {
	return usageView{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens(),
		Turns:            u.Turns,
		Cost:             domain.FormatCost(u.Cost),
	}
}

func (s *Server) buildSessionView(r *http.Request, sess *service.Session) (*sessionView, error) {
	ctx := r.Context()

	history, err := s.chat.History(ctx, sess.APIKey)
	if err != nil {
		return nil, err
	}
	files, err := s.chat.Files(ctx, sess.APIKey)
	if err != nil {
		return nil, err
	}
	usage, err := s.chat.Usage(ctx, sess.APIKey)
	if err != nil {
		return nil, err
	}

	view := &sessionView{
		ID:       sess.ID,
		Model:    sess.Model(),
		Attached: newFileView(sess.Attached()),
		Messages: make([]messageView, 0, len(history)),
		Files:    make([]fileView, 0, len(files)),
		Usage:    newUsageView(usage),
	}
	for _, m := range history {
		view.Messages = append(view.Messages, messageView{Role: m.Role, Content: m.Text()})
	}
	for i := range files {
		view.Files = append(view.Files, *newFileView(&files[i]))
	}
	return view, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"apiKey"`
		Model  string `json:"model"`
	}
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.chat.Login(r.Context(), "", body.APIKey, body.Model)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	setSessionCookie(w, sess.ID)

	view, err := s.buildSessionView(r, sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "session": view})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.chat.Logout(sessionFrom(r.Context()))
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildSessionView(r, sessionFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "session": view})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"models":  s.chat.AvailableModels(),
		"default": s.chat.DefaultModel(),
	})
}

func (s *Server) handleSetModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Model string `json:"model"`
	}
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(r.Context())
	if err := s.chat.SetModel(sess, body.Model); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "model": sess.Model()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload: "+err.Error())
		return
	}

	sess := sessionFrom(r.Context())
	res, err := s.chat.UploadFile(r.Context(), sess, header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "File processed successfully"
	if res.Cached {
		message = "Using cached file information"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"cached":  res.Cached,
		"message": message,
		"file":    newFileView(res.File),
	})
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	s.chat.DetachFile(sessionFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(r.Context())
	stream := newEventStream(w)

	res, err := s.chat.Submit(r.Context(), sess, body.Prompt, func(delta string) {
		if err := stream.Send("delta", map[string]string{"text": delta}); err != nil {
			slog.Debug("client stream closed", "session", sess.ID, "error", err)
		}
	})
	if err != nil {
		if !stream.Started() {
			writeServiceError(w, err)
			return
		}
		_ = stream.Send("error", map[string]string{"message": err.Error()})
		return
	}

	if res.Err != nil {
		_ = stream.Send("error", map[string]string{"message": res.Err.Message, "kind": string(res.Err.Kind)})
	}

	usage, err := s.chat.Usage(r.Context(), sess.APIKey)
	if err != nil {
		slog.Warn("load usage after turn", "session", sess.ID, "error", err)
	}
	_ = stream.Send("done", map[string]any{
		"reply":            res.Reply,
		"promptTokens":     res.PromptTokens,
		"completionTokens": res.CompletionTokens,
		"cost":             domain.FormatCost(res.Cost.TotalCost),
		"usage":            newUsageView(usage),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.Clear(r.Context(), sessionFrom(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "md"
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(r.Context())
	rec, err := s.chat.Record(r.Context(), sess.APIKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(export.NewTranscript(sess.APIKey, rec, time.Now()), &buf); err != nil {
		slog.Error("export transcript", "session", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[exporter.Extension()])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="conversation.%s"`, exporter.Extension()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

var exportContentTypes = map[string]string{
	"json": "application/json; charset=utf-8",
	"yaml": "application/yaml; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

// writeServiceError maps the error taxonomy onto HTTP statuses. The message
// is shown to the user as is.
func writeServiceError(w http.ResponseWriter, err error) {
	var remote *domain.RemoteError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEmptyAPIKey), errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrModelNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedFileType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrFileTooLarge), errors.Is(err, domain.ErrPromptTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrFileProcessing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTurnInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusUnauthorized
	case errors.As(err, &remote):
		status = http.StatusBadGateway
		if remote.Kind == domain.RemoteInvalidAPIKey {
			status = http.StatusUnauthorized
		}
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		if errors.Is(err, domain.ErrStoreCorrupt) {
			message = "The session store could not be read."
		}
	}
	if errors.Is(err, domain.ErrEmptyAPIKey) {
		message = "Please enter your OpenAI API key to continue."
	}
	writeError(w, status, strings.TrimSpace(message))
}
