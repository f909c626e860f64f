package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type recordingBackend struct {
	messages []Message
	prompt   string
	err      error

	lastQuery   HistoryQuery
	lastSession string
	lastMessage string
	lastKB      string
	lastPrompt  string
	deleted     []string

	kbs        []KnowledgeBase
	uploadName string
	uploadBody string
}

func (b *recordingBackend) History(ctx context.Context, token string, q HistoryQuery) ([]Message, error) {
	_ = ctx
	b.lastQuery = q
	if b.err != nil {
		return nil, b.err
	}
	if q.SessionID == "" {
		return b.messages, nil
	}
	var out []Message
	for _, m := range b.messages {
		if m.SessionID == q.SessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (b *recordingBackend) SendMessage(ctx context.Context, token string, req SendRequest) (Reply, error) {
	_ = ctx
	b.lastSession = req.SessionID
	b.lastMessage = req.Message
	b.lastKB = req.KBID
	if b.err != nil {
		return Reply{}, b.err
	}
	if req.SessionID == "" {
		return Reply{SessionID: "new-session", Reply: "ok"}, nil
	}
	return Reply{Reply: "ok"}, nil
}

func (b *recordingBackend) DeleteSession(ctx context.Context, token, sessionID string) (int, error) {
	_ = ctx
	if b.err != nil {
		return 0, b.err
	}
	b.deleted = append(b.deleted, sessionID)
	return 2, nil
}

func (b *recordingBackend) SystemPrompt(ctx context.Context, token, sessionID string) (string, error) {
	_ = ctx
	return b.prompt, b.err
}

func (b *recordingBackend) SetSystemPrompt(ctx context.Context, token, sessionID, prompt string) error {
	_ = ctx
	b.lastPrompt = prompt
	return b.err
}

func (b *recordingBackend) KnowledgeBases(ctx context.Context, token string) ([]KnowledgeBase, error) {
	_ = ctx
	return b.kbs, b.err
}

func (b *recordingBackend) UploadKnowledgeBase(ctx context.Context, token, filename string, content io.Reader) (KBUpload, error) {
	_ = ctx
	if b.err != nil {
		return KBUpload{}, b.err
	}
	body, err := io.ReadAll(content)
	if err != nil {
		return KBUpload{}, err
	}
	b.uploadName = filename
	b.uploadBody = string(body)
	return KBUpload{ID: "kb-1", Chunks: 4}, nil
}

func TestSessions_UsesHistoryLimitAndSummarizes(t *testing.T) {
	b := &recordingBackend{messages: []Message{
		msg("A", "hi", "2024-01-01T10:00:00Z"),
		msg("B", "hello", "2024-01-01T12:00:00Z"),
	}}
	svc := NewService(b, 50)

	got, err := svc.Sessions(context.Background(), "tok")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if b.lastQuery.Limit != 50 || b.lastQuery.SessionID != "" {
		t.Fatalf("unexpected query: %+v", b.lastQuery)
	}
	if len(got) != 2 || got[0].SessionID != "B" {
		t.Fatalf("unexpected summaries: %+v", got)
	}
}

func TestSessions_WrapsBackendError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&recordingBackend{err: boom}, 0)

	if _, err := svc.Sessions(context.Background(), "tok"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestTranscript_FiltersBySessionAndLoadsPrompt(t *testing.T) {
	b := &recordingBackend{
		prompt: "be brief",
		messages: []Message{
			msg("A", "hi", "2024-01-01T10:00:00Z"),
			msg("B", "hello", "2024-01-01T12:00:00Z"),
		},
	}
	svc := NewService(b, 0)

	tr, err := svc.Transcript(context.Background(), "tok", "A")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(tr.Messages) != 1 || tr.Messages[0].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", tr.Messages)
	}
	if tr.SystemPrompt != "be brief" {
		t.Fatalf("unexpected prompt: %q", tr.SystemPrompt)
	}
	if b.lastQuery.SessionID != "A" || b.lastQuery.Limit != 1000 {
		t.Fatalf("unexpected query: %+v", b.lastQuery)
	}
}

func TestSend_RejectsBlankMessage(t *testing.T) {
	b := &recordingBackend{}
	svc := NewService(b, 0)

	if _, err := svc.Send(context.Background(), "tok", SendRequest{SessionID: "A", Message: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if b.lastMessage != "" {
		t.Fatalf("backend should not be called")
	}
}

func TestSend_KeepsSessionID(t *testing.T) {
	b := &recordingBackend{}
	svc := NewService(b, 0)

	reply, err := svc.Send(context.Background(), "tok", SendRequest{SessionID: "A", Message: " Hello ", KBID: " kb-9 "})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.SessionID != "A" || b.lastMessage != "Hello" || b.lastKB != "kb-9" {
		t.Fatalf("unexpected reply=%+v message=%q kb=%q", reply, b.lastMessage, b.lastKB)
	}

	reply, err = svc.Send(context.Background(), "tok", SendRequest{Message: "Hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.SessionID != "new-session" {
		t.Fatalf("expected backend-assigned session, got %q", reply.SessionID)
	}
}

func TestDeleteAndPromptRequireSession(t *testing.T) {
	svc := NewService(&recordingBackend{}, 0)
	ctx := context.Background()

	if err := svc.Delete(ctx, "tok", ""); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
	if err := svc.SetSystemPrompt(ctx, "tok", "", "x"); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

func TestKnowledgeBases(t *testing.T) {
	b := &recordingBackend{kbs: []KnowledgeBase{{ID: "kb-1", Filename: "manual.pdf", Chunks: 4}}}
	svc := NewService(b, 0)

	kbs, err := svc.KnowledgeBases(context.Background(), "tok")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(kbs) != 1 || kbs[0].Filename != "manual.pdf" {
		t.Fatalf("unexpected kbs: %+v", kbs)
	}

	b.err = errors.New("down")
	if _, err := svc.KnowledgeBases(context.Background(), "tok"); !errors.Is(err, b.err) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestUpload(t *testing.T) {
	b := &recordingBackend{}
	svc := NewService(b, 0)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "tok", "", strings.NewReader("x")); !errors.Is(err, ErrFileRequired) {
		t.Fatalf("expected ErrFileRequired, got %v", err)
	}

	up, err := svc.Upload(ctx, "tok", "manual.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.ID != "kb-1" || b.uploadName != "manual.pdf" || b.uploadBody != "%PDF-1.4" {
		t.Fatalf("unexpected upload=%+v name=%q body=%q", up, b.uploadName, b.uploadBody)
	}
}
