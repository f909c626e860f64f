package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
	"github.com/suPer8Hu/gopherchat-web/internal/chat"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/middleware"
)

// HistoryPage lists one entry per conversation, newest first. A failed load
// renders an empty list with a notice instead of the "no history" text.
func (h *Handler) HistoryPage(c *gin.Context) {
	ac := middleware.AuthFrom(c)

	sessions, err := h.ChatSvc.Sessions(c.Request.Context(), ac.Token())
	notice := ""
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			h.reauth(c, "/history")
			return
		}
		log.Printf("[Handler] HistoryPage failed rid=%s err=%v", middleware.RequestIDFrom(c), err)
		sessions = []chat.SessionSummary{}
		notice = msgHistoryFailed
	}
	if c.Query("error") == "delete" && notice == "" {
		notice = msgDeleteFailed
	}

	h.render(c, http.StatusOK, "history.tmpl", gin.H{
		"Title":    "History",
		"Notice":   notice,
		"Sessions": sessions,
	})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	sid := c.Param("sessionId")
	ac := middleware.AuthFrom(c)

	if err := h.ChatSvc.Delete(c.Request.Context(), ac.Token(), sid); err != nil {
		if apiclient.IsUnauthorized(err) {
			h.reauth(c, "/history")
			return
		}
		log.Printf("[Handler] DeleteSession failed session=%s rid=%s err=%v", sid, middleware.RequestIDFrom(c), err)
		c.Redirect(http.StatusSeeOther, "/history?error=delete")
		return
	}
	c.Redirect(http.StatusSeeOther, "/history")
}
