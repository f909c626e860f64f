package templates

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
	"github.com/suPer8Hu/gopherchat-web/internal/chat"
)

func render(t *testing.T, name string, data map[string]any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Must().ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestNavOnlyWhenAuthenticated(t *testing.T) {
	out := render(t, "login.tmpl", map[string]any{
		"Title": "Login", "Auth": &auth.Context{}, "Error": "", "Next": "", "Username": "",
	})
	require.NotContains(t, out, `action="/logout"`)

	m := auth.NewManager(auth.NewMemoryStore(), auth.Options{})
	ac := &auth.Context{}
	require.NoError(t, m.Save(context.Background(), httptest.NewRecorder(), ac, "opaque-token"))

	out = render(t, "history.tmpl", map[string]any{
		"Title": "History", "Auth": ac, "Notice": "", "Sessions": []chat.SessionSummary(nil),
	})
	require.Contains(t, out, `action="/logout"`)
	require.Contains(t, out, "No history available.")
}

func TestHistoryEscapesSessionIDs(t *testing.T) {
	out := render(t, "history.tmpl", map[string]any{
		"Title": "History",
		"Auth":  &auth.Context{},
		"Sessions": []chat.SessionSummary{{
			SessionID:   "a b/c",
			LastMessage: "<b>hi</b>",
			Timestamp:   time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		}},
		"Notice": "",
	})
	require.Contains(t, out, `href="/chat/a%20b%2Fc"`)
	require.Contains(t, out, "&lt;b&gt;hi&lt;/b&gt;")
	require.Contains(t, out, "2024-01-01 11:00")
	require.False(t, strings.Contains(out, "No history available."))
}

func TestHistoryNoticeReplacesEmptyText(t *testing.T) {
	out := render(t, "history.tmpl", map[string]any{
		"Title": "History", "Auth": &auth.Context{}, "Notice": "Could not load history.", "Sessions": nil,
	})
	require.Contains(t, out, "Could not load history.")
	require.NotContains(t, out, "No history available.")
}
