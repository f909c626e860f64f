package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/suPer8Hu/gopherchat-web/internal/chat"
)

var _ chat.Backend = (*Client)(nil)

type sendMessageReq struct {
	SessionID *string `json:"session_id"`
	Message   string  `json:"message"`
	KBID      *string `json:"kb_id,omitempty"`
}

type promptBody struct {
	Prompt *string `json:"prompt"`
}

type deleteResp struct {
	Deleted int `json:"deleted"`
}

func (c *Client) History(ctx context.Context, token string, q chat.HistoryQuery) ([]chat.Message, error) {
	query := url.Values{}
	if q.SessionID != "" {
		query.Set("session_id", q.SessionID)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var msgs []chat.Message
	if err := c.Get(ctx, "/history", token, query, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a user message. An empty SessionID is sent as null so the
// backend opens a new session; kb_id is sent only when a knowledge base is
// selected.
func (c *Client) SendMessage(ctx context.Context, token string, in chat.SendRequest) (chat.Reply, error) {
	req := sendMessageReq{Message: in.Message}
	if in.SessionID != "" {
		req.SessionID = &in.SessionID
	}
	if in.KBID != "" {
		req.KBID = &in.KBID
	}

	var out chat.Reply
	if err := c.PostJSON(ctx, "/chat/", token, req, &out); err != nil {
		return chat.Reply{}, err
	}
	return out, nil
}

func (c *Client) DeleteSession(ctx context.Context, token, sessionID string) (int, error) {
	var out deleteResp
	if err := c.Delete(ctx, "/history/"+url.PathEscape(sessionID), token, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) SystemPrompt(ctx context.Context, token, sessionID string) (string, error) {
	var out promptBody
	if err := c.Get(ctx, "/history/"+url.PathEscape(sessionID)+"/prompt", token, nil, &out); err != nil {
		return "", err
	}
	if out.Prompt == nil {
		return "", nil
	}
	return *out.Prompt, nil
}

func (c *Client) SetSystemPrompt(ctx context.Context, token, sessionID, prompt string) error {
	return c.PutJSON(ctx, "/history/"+url.PathEscape(sessionID)+"/prompt", token, promptBody{Prompt: &prompt}, nil)
}
