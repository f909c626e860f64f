package apiclient

import (
	"context"
	"io"

	"github.com/suPer8Hu/gopherchat-web/internal/chat"
)

func (c *Client) KnowledgeBases(ctx context.Context, token string) ([]chat.KnowledgeBase, error) {
	var out []chat.KnowledgeBase
	if err := c.Get(ctx, "/kb/list", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadKnowledgeBase sends a PDF as the "file" field of /kb/upload.
func (c *Client) UploadKnowledgeBase(ctx context.Context, token, filename string, content io.Reader) (chat.KBUpload, error) {
	var out chat.KBUpload
	if err := c.PostMultipart(ctx, "/kb/upload", token, "file", filename, content, &out); err != nil {
		return chat.KBUpload{}, err
	}
	return out, nil
}
