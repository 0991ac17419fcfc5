package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	historyFile = "chat_history.json"
)

// ChatHistory is the persisted transcript of shelf chat sessions.
type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is a single question or answer in the transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadChatHistory loads the chat history from a target .shelf/chat_history.json.
// Returns nil, nil if no history exists yet.
func (m *Manager) LoadChatHistory(overrideDir string) (*ChatHistory, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, historyFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chat history: %w", err)
	}

	history := &ChatHistory{}
	if err := json.Unmarshal(data, history); err != nil {
		return nil, fmt.Errorf("parsing chat history: %w", err)
	}

	return history, nil
}

// SaveChatHistory persists the chat history to a target .shelf/chat_history.json.
func (m *Manager) SaveChatHistory(history *ChatHistory, overrideDir string) error {
	if history == nil {
		return errors.New("cannot save nil chat history")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling chat history: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, historyFile), data, 0o600); err != nil {
		return fmt.Errorf("writing chat history: %w", err)
	}

	return nil
}

// ClearChatHistory removes the chat history file.
// Returns nil if the file doesn't exist.
func (m *Manager) ClearChatHistory(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, historyFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing chat history: %w", err)
	}

	return nil
}
