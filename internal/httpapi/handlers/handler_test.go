package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
)

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                     "/chat",
		"/history":             "/history",
		"/chat/abc?x=1":        "/chat/abc?x=1",
		"//evil.example":       "/chat",
		"/\\evil.example":      "/chat",
		"https://evil.example": "/chat",
		"history":              "/chat",
		"/":                    "/chat",
		"/login?next=/history": "/chat",
		"/signup":              "/chat",
		"/\t/evil.example/":    "/chat",
		"/\n/evil.example/":    "/chat",
		"/\r/evil.example/":    "/chat",
		"/\t\\evil.example":    "/chat",
		"/chat\\..\\/evil":     "/chat",
		"/%2F/evil.example":    "/chat",
		"/chat/a%2Fb":          "/chat/a%2Fb",
	}
	for in, want := range cases {
		require.Equal(t, want, safeNext(in), "next=%q", in)
	}
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, statusFor(&apiclient.Error{Status: 401}))
	require.Equal(t, http.StatusUnprocessableEntity, statusFor(&apiclient.Error{Status: 422}))
	require.Equal(t, http.StatusBadGateway, statusFor(errors.New("dial tcp: refused")))
}

func TestChatPath(t *testing.T) {
	require.Equal(t, "/chat", chatPath(""))
	require.Equal(t, "/chat/a%2Fb", chatPath("a/b"))
}
