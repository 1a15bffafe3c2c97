package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/llm"
	"reelforge/internal/scenes"
	"reelforge/internal/storage"
)

// Message is one turn of the conversation, kept for transcript display
// and for resuming a session in another process.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Session is the complete state of one video creation workflow. It is
// the unit of persistence: everything needed to resume lives here or in
// the project folder next to it.
type Session struct {
	ID               string    `json:"id"`
	Stage            Stage     `json:"stage"`
	AwaitingApproval bool      `json:"awaiting_approval"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Theme          *llm.Theme     `json:"theme,omitempty"`
	Research       string         `json:"research,omitempty"`
	Script         string         `json:"script,omitempty"`
	Scenes         []scenes.Scene `json:"scenes,omitempty"`
	Metadata       *llm.Metadata  `json:"metadata,omitempty"`
	FinalVideoPath string         `json:"final_video_path,omitempty"`
	FailureReason  string         `json:"failure_reason,omitempty"`

	History []Message `json:"history"`
}

func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Stage:     StageTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) AddUser(content string) {
	s.History = append(s.History, Message{Role: roleUser, Content: content, Time: time.Now().UTC()})
}

func (s *Session) AddAssistant(content string) {
	s.History = append(s.History, Message{Role: roleAssistant, Content: content, Time: time.Now().UTC()})
}

// Fail moves the session to its failed terminal state, recording the
// cause verbatim.
func (s *Session) Fail(err error) {
	s.Stage = StageFailed
	s.AwaitingApproval = false
	s.FailureReason = err.Error()
}

func (s *Session) advance() error {
	next, err := nextStage(s.Stage)
	if err != nil {
		return err
	}
	s.Stage = next
	return nil
}

// SessionStore persists sessions into their project folders.
type SessionStore struct {
	store *storage.Store
}

func NewSessionStore(store *storage.Store) *SessionStore {
	return &SessionStore{store: store}
}

func (st *SessionStore) Project(id string) *storage.Project {
	return st.store.Project(id)
}

func (st *SessionStore) Save(s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	project := st.store.Project(s.ID)
	if err := project.EnsureDirs(); err != nil {
		return fmt.Errorf("prepare project folder: %w", err)
	}
	return project.WriteJSON(project.SessionPath(), s)
}

func (st *SessionStore) Load(id string) (*Session, error) {
	project := st.store.Project(id)
	if !project.Exists() {
		return nil, fmt.Errorf("session %s not found", id)
	}
	var s Session
	if err := project.ReadJSON(project.SessionPath(), &s); err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return &s, nil
}

func (st *SessionStore) List() ([]string, error) {
	return st.store.List()
}
