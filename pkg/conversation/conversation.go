package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is the persisted conversation state. At most one record is active
// per user; it is read then overwritten by one process at a time.
type Record struct {
	ID            string    `json:"id"`
	Active        bool      `json:"active"`
	Messages      []Message `json:"messages"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Timeout is the staleness window. A session inactive longer than this
// requires the user to choose how to proceed.
const Timeout = time.Hour

// StaleAt reports whether the record is active and inactive past the
// staleness window at the given moment.
func (r *Record) StaleAt(now time.Time) bool {
	if r == nil || !r.Active {
		return false
	}
	return now.After(r.LastMessageAt.Add(Timeout))
}

// Store persists the record at a fixed path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a store for the conversation file at path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Load reads the current record. A missing, corrupt, or unreadable file
// loads as no conversation.
func (s *Store) Load() *Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

// Save writes the record, indented for manual inspection.
func (s *Store) Save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling conversation: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing conversation file: %w", err)
	}
	return nil
}

// Start writes a fresh active record, replacing whatever was there.
func (s *Store) Start() (*Record, error) {
	now := s.now()
	rec := &Record{
		ID:            uuid.NewString(),
		Active:        true,
		Messages:      []Message{},
		StartedAt:     now,
		LastMessageAt: now,
	}
	if err := s.Save(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Stop removes the record. Stopping with no record is a no-op.
func (s *Store) Stop() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing conversation file: %w", err)
	}
	return nil
}

// Append adds a message to the active record and bumps last_message_at.
// Without an active record this is a no-op.
func (s *Store) Append(role Role, content string) error {
	rec := s.Load()
	if rec == nil || !rec.Active {
		return nil
	}
	now := s.now()
	rec.Messages = append(rec.Messages, Message{Role: role, Content: content, Timestamp: now})
	rec.LastMessageAt = now
	return s.Save(rec)
}
