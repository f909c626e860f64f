package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionRequired = errors.New("session id is required")
	ErrFileRequired    = errors.New("file is required")
)

// HistoryQuery narrows a history fetch. Zero values mean "all sessions" and
// the backend default limit.
type HistoryQuery struct {
	SessionID string
	Limit     int
}

// Backend is the subset of the REST API the chat views need.
type Backend interface {
	History(ctx context.Context, token string, q HistoryQuery) ([]Message, error)
	SendMessage(ctx context.Context, token string, req SendRequest) (Reply, error)
	DeleteSession(ctx context.Context, token, sessionID string) (int, error)
	SystemPrompt(ctx context.Context, token, sessionID string) (string, error)
	SetSystemPrompt(ctx context.Context, token, sessionID, prompt string) error
	KnowledgeBases(ctx context.Context, token string) ([]KnowledgeBase, error)
	UploadKnowledgeBase(ctx context.Context, token, filename string, content io.Reader) (KBUpload, error)
}

type Service struct {
	backend      Backend
	historyLimit int
}

func NewService(backend Backend, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 1000
	}
	return &Service{backend: backend, historyLimit: historyLimit}
}

// Sessions fetches the user's messages and derives one summary per session.
func (s *Service) Sessions(ctx context.Context, token string) ([]SessionSummary, error) {
	msgs, err := s.backend.History(ctx, token, HistoryQuery{Limit: s.historyLimit})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return Summarize(msgs), nil
}

func (s *Service) Transcript(ctx context.Context, token, sessionID string) (*Transcript, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	msgs, err := s.backend.History(ctx, token, HistoryQuery{SessionID: sessionID, Limit: s.historyLimit})
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	prompt, err := s.backend.SystemPrompt(ctx, token, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	return &Transcript{SessionID: sessionID, Messages: msgs, SystemPrompt: prompt}, nil
}

// Send posts a user message. An empty SessionID lets the backend open a new
// conversation; the returned Reply carries the id to use from then on.
func (s *Service) Send(ctx context.Context, token string, req SendRequest) (Reply, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return Reply{}, ErrEmptyMessage
	}
	req.KBID = strings.TrimSpace(req.KBID)
	reply, err := s.backend.SendMessage(ctx, token, req)
	if err != nil {
		return Reply{}, fmt.Errorf("send message: %w", err)
	}
	if reply.SessionID == "" {
		reply.SessionID = req.SessionID
	}
	return reply, nil
}

func (s *Service) Delete(ctx context.Context, token, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if _, err := s.backend.DeleteSession(ctx, token, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) SetSystemPrompt(ctx context.Context, token, sessionID, prompt string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if err := s.backend.SetSystemPrompt(ctx, token, sessionID, strings.TrimSpace(prompt)); err != nil {
		return fmt.Errorf("set system prompt: %w", err)
	}
	return nil
}

// KnowledgeBases lists the user's uploaded PDFs, newest first as the backend
// orders them.
func (s *Service) KnowledgeBases(ctx context.Context, token string) ([]KnowledgeBase, error) {
	kbs, err := s.backend.KnowledgeBases(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	return kbs, nil
}

// Upload hands a PDF to the backend for ingestion. File type checks are the
// backend's.
func (s *Service) Upload(ctx context.Context, token, filename string, content io.Reader) (KBUpload, error) {
	if strings.TrimSpace(filename) == "" || content == nil {
		return KBUpload{}, ErrFileRequired
	}
	up, err := s.backend.UploadKnowledgeBase(ctx, token, filename, content)
	if err != nil {
		return KBUpload{}, fmt.Errorf("upload knowledge base: %w", err)
	}
	return up, nil
}
