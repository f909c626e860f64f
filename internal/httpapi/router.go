package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/activity"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
	"github.com/suPer8Hu/gopherchat-web/internal/common"
	"github.com/suPer8Hu/gopherchat-web/internal/config"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/handlers"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/middleware"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/templates"
)

func NewRouter(cfg config.Config, api *apiclient.Client, am *auth.Manager, events activity.Publisher) *gin.Engine {
	r := gin.New()
	// session ids may contain escaped slashes
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.SetHTMLTemplate(templates.Must())

	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.SecureHeaders())
	// token state is read per request, before any page renders
	r.Use(middleware.LoadAuth(am))

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})

	h := handlers.NewHandler(cfg, api, am, events)

	r.GET("/healthz", func(c *gin.Context) {
		common.OK(c, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		if middleware.AuthFrom(c).Authenticated() {
			c.Redirect(http.StatusFound, "/chat")
			return
		}
		c.Redirect(http.StatusFound, "/login")
	})

	// auth
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/signup", h.SignupPage)
	r.POST("/signup", h.Signup)
	r.POST("/logout", h.Logout)

	authGroup := r.Group("/")
	authGroup.Use(middleware.RequireToken())
	// Chat
	authGroup.GET("/chat", h.ChatPage)
	authGroup.POST("/chat", h.SendMessage)
	authGroup.GET("/chat/:sessionId", h.ChatPage)
	authGroup.POST("/chat/:sessionId", h.SendMessage)
	authGroup.POST("/chat/:sessionId/prompt", h.SetSystemPrompt)
	// Knowledge bases
	authGroup.POST("/kb/upload", h.UploadKnowledgeBase)
	// History
	authGroup.GET("/history", h.HistoryPage)
	authGroup.POST("/history/:sessionId/delete", h.DeleteSession)
	return r
}
