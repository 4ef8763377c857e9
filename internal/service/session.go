package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/set-night/gptdesk/internal/domain"
)

// Turn states.
const (
	StateIdle           = "idle"
	StateFileCheck      = "file_check"
	StatePromptAssembly = "prompt_assembly"
	StateBudgetCheck    = "budget_check"
	StateDispatch       = "dispatch"
	StateStreaming      = "streaming"
	StateCommit         = "commit"
	StateFailure        = "failure"
)

// Turn events.
const (
	eventUpload   = "upload"
	eventFileDone = "file_done"
	eventSubmit   = "submit"
	eventAssemble = "assemble"
	eventReject   = "reject"
	eventDispatch = "dispatch"
	eventStream   = "stream"
	eventCommit   = "commit"
	eventFail     = "fail"
	eventFinish   = "finish"
)

func newTurnState() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventUpload, Src: []string{StateIdle}, Dst: StateFileCheck},
			{Name: eventFileDone, Src: []string{StateFileCheck}, Dst: StateIdle},
			{Name: eventSubmit, Src: []string{StateIdle}, Dst: StatePromptAssembly},
			{Name: eventAssemble, Src: []string{StatePromptAssembly}, Dst: StateBudgetCheck},
			{Name: eventReject, Src: []string{StatePromptAssembly, StateBudgetCheck}, Dst: StateIdle},
			{Name: eventDispatch, Src: []string{StateBudgetCheck}, Dst: StateDispatch},
			{Name: eventStream, Src: []string{StateDispatch}, Dst: StateStreaming},
			{Name: eventCommit, Src: []string{StateStreaming}, Dst: StateCommit},
			{Name: eventFail, Src: []string{StateDispatch, StateStreaming}, Dst: StateFailure},
			{Name: eventFinish, Src: []string{StateCommit, StateFailure}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// Session is the per-front-end context of one conversation: the API key it
// acts for, the selected model, the attached file and the turn state.
type Session struct {
	ID        string
	APIKey    string
	CreatedAt time.Time

	mu       sync.Mutex
	model    string
	attached *domain.FileInfo
	state    *fsm.FSM
}

func newSession(id, apiKey, model string) *Session {
	return &Session{
		ID:        id,
		APIKey:    apiKey,
		CreatedAt: time.Now(),
		model:     model,
		state:     newTurnState(),
	}
}

func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) setModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// Attached returns a copy of the attached file, nil when none.
func (s *Session) Attached() *domain.FileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached == nil {
		return nil
	}
	fi := *s.attached
	return &fi
}

func (s *Session) attach(fi *domain.FileInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fi == nil {
		s.attached = nil
		return
	}
	cp := *fi
	s.attached = &cp
}

func (s *Session) snapshot() (string, *domain.FileInfo) {
	return s.Model(), s.Attached()
}

// State returns the current turn state.
func (s *Session) State() string {
	return s.machine().Current()
}

func (s *Session) machine() *fsm.FSM {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin starts a turn or an upload. Only one may run at a time.
// Transitions never see the caller's cancellation: a canceled event leaves
// the machine with a pending transition that rejects every later event.
func (s *Session) begin(ctx context.Context, event string) error {
	err := s.machine().Event(context.WithoutCancel(ctx), event)
	if err == nil {
		return nil
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return domain.ErrTurnInProgress
	}
	return fmt.Errorf("start %s: %w", event, err)
}

func (s *Session) advance(ctx context.Context, event string) {
	m := s.machine()
	if err := m.Event(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn("turn state transition failed", "session", s.ID, "event", event, "state", m.Current(), "error", err)
	}
}

// settle puts a fresh idle machine in place after a turn or upload ends on
// any path. SetState alone would keep a half-finished transition.
func (s *Session) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newTurnState()
}

// SessionRegistry owns the live sessions. A session exists from login until
// Delete is called for it.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Create registers a session for apiKey. An empty id gets a random one; an
// existing session with the same id is replaced.
func (r *SessionRegistry) Create(id, apiKey, model string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := newSession(id, apiKey, model)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
	return s
}

func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
