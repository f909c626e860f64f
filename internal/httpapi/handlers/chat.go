package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
	"github.com/suPer8Hu/gopherchat-web/internal/chat"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/middleware"
)

type sendMessageForm struct {
	Message string `form:"message" binding:"required"`
	KBID    string `form:"kb_id"`
}

// chatView is what the chat page renders besides the layout keys.
type chatView struct {
	tr         *chat.Transcript
	draft      string
	kbs        []chat.KnowledgeBase
	selectedKB string
	errMsg     string
}

func chatPath(sessionID string) string {
	if sessionID == "" {
		return "/chat"
	}
	return "/chat/" + url.PathEscape(sessionID)
}

// chatPathWithKB keeps the selected knowledge base across the redirect.
func chatPathWithKB(sessionID, kbID string) string {
	p := chatPath(sessionID)
	if kbID != "" {
		p += "?kb=" + url.QueryEscape(kbID)
	}
	return p
}

// ChatPage serves both /chat (new conversation) and /chat/:sessionId.
func (h *Handler) ChatPage(c *gin.Context) {
	sid := c.Param("sessionId")
	ac := middleware.AuthFrom(c)
	v := chatView{tr: &chat.Transcript{}, selectedKB: c.Query("kb")}

	if sid != "" {
		tr, err := h.ChatSvc.Transcript(c.Request.Context(), ac.Token(), sid)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				h.reauth(c, chatPath(sid))
				return
			}
			log.Printf("[Handler] ChatPage failed session=%s rid=%s err=%v", sid, middleware.RequestIDFrom(c), err)
			v.tr = &chat.Transcript{SessionID: sid}
			v.errMsg = apiclient.DetailOr(err, msgHistoryFailed)
			h.renderChat(c, statusFor(err), v)
			return
		}
		v.tr = tr
	}

	// the picker is optional; a failed listing only hides it
	kbs, err := h.ChatSvc.KnowledgeBases(c.Request.Context(), ac.Token())
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			h.reauth(c, chatPath(sid))
			return
		}
		log.Printf("[Handler] list knowledge bases failed rid=%s err=%v", middleware.RequestIDFrom(c), err)
	}
	v.kbs = kbs
	h.renderChat(c, http.StatusOK, v)
}

// SendMessage posts the form message and redirects to the conversation so a
// reload does not resend it.
func (h *Handler) SendMessage(c *gin.Context) {
	sid := c.Param("sessionId")
	ac := middleware.AuthFrom(c)

	var req sendMessageForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderChat(c, http.StatusBadRequest, h.failedSend(sid, req, msgRequired))
		return
	}

	reply, err := h.ChatSvc.Send(c.Request.Context(), ac.Token(), chat.SendRequest{
		SessionID: sid,
		Message:   req.Message,
		KBID:      req.KBID,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			h.renderChat(c, http.StatusBadRequest, h.failedSend(sid, req, msgRequired))
			return
		}
		if apiclient.IsUnauthorized(err) {
			h.reauth(c, chatPath(sid))
			return
		}
		log.Printf("[Handler] SendMessage failed session=%s kb=%s rid=%s err=%v", sid, req.KBID, middleware.RequestIDFrom(c), err)
		h.renderChat(c, statusFor(err), h.failedSend(sid, req, apiclient.DetailOr(err, msgMessageFailed)))
		return
	}

	c.Redirect(http.StatusSeeOther, chatPathWithKB(reply.SessionID, req.KBID))
}

func (h *Handler) failedSend(sid string, req sendMessageForm, errMsg string) chatView {
	return chatView{
		tr:         &chat.Transcript{SessionID: sid},
		draft:      req.Message,
		selectedKB: req.KBID,
		errMsg:     errMsg,
	}
}

func (h *Handler) SetSystemPrompt(c *gin.Context) {
	sid := c.Param("sessionId")
	ac := middleware.AuthFrom(c)

	err := h.ChatSvc.SetSystemPrompt(c.Request.Context(), ac.Token(), sid, c.PostForm("prompt"))
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			h.reauth(c, chatPath(sid))
			return
		}
		log.Printf("[Handler] SetSystemPrompt failed session=%s rid=%s err=%v", sid, middleware.RequestIDFrom(c), err)
		h.renderChat(c, statusFor(err), chatView{
			tr:     &chat.Transcript{SessionID: sid, SystemPrompt: c.PostForm("prompt")},
			errMsg: apiclient.DetailOr(err, msgPromptFailed),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, chatPath(sid))
}

// UploadKnowledgeBase forwards a PDF from the chat page to the backend and
// returns to the conversation with the new knowledge base selected.
func (h *Handler) UploadKnowledgeBase(c *gin.Context) {
	sid := c.PostForm("session_id")
	ac := middleware.AuthFrom(c)

	fh, err := c.FormFile("file")
	if err != nil {
		h.renderChat(c, http.StatusBadRequest, chatView{tr: &chat.Transcript{SessionID: sid}, errMsg: msgRequired})
		return
	}
	f, err := fh.Open()
	if err != nil {
		log.Printf("[Handler] open upload failed rid=%s err=%v", middleware.RequestIDFrom(c), err)
		h.renderChat(c, http.StatusBadRequest, chatView{tr: &chat.Transcript{SessionID: sid}, errMsg: msgUploadFailed})
		return
	}
	defer f.Close()

	up, err := h.ChatSvc.Upload(c.Request.Context(), ac.Token(), fh.Filename, f)
	if err != nil {
		if errors.Is(err, chat.ErrFileRequired) {
			h.renderChat(c, http.StatusBadRequest, chatView{tr: &chat.Transcript{SessionID: sid}, errMsg: msgRequired})
			return
		}
		if apiclient.IsUnauthorized(err) {
			h.reauth(c, chatPath(sid))
			return
		}
		log.Printf("[Handler] UploadKnowledgeBase failed file=%s rid=%s err=%v", fh.Filename, middleware.RequestIDFrom(c), err)
		h.renderChat(c, statusFor(err), chatView{
			tr:     &chat.Transcript{SessionID: sid},
			errMsg: apiclient.DetailOr(err, msgUploadFailed),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, chatPathWithKB(sid, up.ID))
}

func (h *Handler) renderChat(c *gin.Context, status int, v chatView) {
	title := "New conversation"
	if v.tr.SessionID != "" {
		title = "Conversation"
	}
	h.render(c, status, "chat.tmpl", gin.H{
		"Title":          title,
		"Error":          v.errMsg,
		"SessionID":      v.tr.SessionID,
		"SystemPrompt":   v.tr.SystemPrompt,
		"Messages":       v.tr.Messages,
		"Draft":          v.draft,
		"KnowledgeBases": v.kbs,
		"SelectedKB":     v.selectedKB,
	})
}
