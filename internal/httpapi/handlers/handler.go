package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/activity"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
	"github.com/suPer8Hu/gopherchat-web/internal/chat"
	"github.com/suPer8Hu/gopherchat-web/internal/config"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/middleware"
)

const (
	msgRequired      = "Please fill in all required fields."
	msgLoginFailed   = "Login failed"
	msgSignupFailed  = "Signup failed"
	msgMessageFailed = "Message failed"
	msgHistoryFailed = "Could not load history."
	msgDeleteFailed  = "Could not delete conversation."
	msgPromptFailed  = "Could not save system prompt."
	msgUploadFailed  = "Upload failed"
)

type Handler struct {
	Cfg     config.Config
	API     *apiclient.Client
	ChatSvc *chat.Service
	Auth    *auth.Manager
	Events  activity.Publisher
}

func NewHandler(cfg config.Config, api *apiclient.Client, am *auth.Manager, events activity.Publisher) *Handler {
	if events == nil {
		events = activity.Nop{}
	}
	return &Handler{
		Cfg:     cfg,
		API:     api,
		ChatSvc: chat.NewService(api, cfg.HistoryLimit),
		Auth:    am,
		Events:  events,
	}
}

// render fills the keys every page reads from the layout.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = middleware.AuthFrom(c)
	for _, k := range []string{"Title", "Error", "Notice"} {
		if _, ok := data[k]; !ok {
			data[k] = ""
		}
	}
	c.HTML(status, name, data)
}

// reauth handles a backend 401: the stored token is dropped and the browser
// is sent to login, returning to next afterwards.
func (h *Handler) reauth(c *gin.Context, next string) {
	ac := middleware.AuthFrom(c)
	if err := h.Auth.Clear(c.Request.Context(), c.Writer, ac); err != nil {
		log.Printf("[Handler] clear token failed rid=%s err=%v", middleware.RequestIDFrom(c), err)
	}
	c.Redirect(redirectStatus(c), middleware.LoginURL(next))
}

// publish never fails the request.
func (h *Handler) publish(c *gin.Context, kind activity.Kind, username, detail string) {
	e, err := activity.NewEvent(kind, username)
	if err != nil {
		log.Printf("[Handler] new event failed kind=%s err=%v", kind, err)
		return
	}
	e.RequestID = middleware.RequestIDFrom(c)
	e.RemoteIP = c.ClientIP()
	e.Detail = detail

	// the event outlives a cancelled browser request
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.Events.Publish(ctx, e); err != nil {
		log.Printf("[Handler] publish event failed kind=%s rid=%s err=%v", kind, e.RequestID, err)
	}
}

// statusFor mirrors the backend status for API errors; anything else is a
// gateway failure.
func statusFor(err error) int {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 600 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

// GET redirects keep 302; redirects answering a form post use 303 so the
// browser follows with GET.
func redirectStatus(c *gin.Context) int {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// safeNext accepts only local absolute paths, falling back to /chat.
// Browsers drop tab and newline characters and read "\" as "/" before
// resolving a Location, so any of those could turn "/x" into "//host".
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") ||
		strings.ContainsRune(next, '\\') || strings.ContainsFunc(next, unicode.IsControl) {
		return "/chat"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil ||
		!strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/chat"
	}
	if next == "/" || strings.HasPrefix(next, "/login") || strings.HasPrefix(next, "/signup") {
		return "/chat"
	}
	return next
}
