package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/gopherchat-web/internal/activity"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi/middleware"
)

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type signupForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *Handler) LoginPage(c *gin.Context) {
	next := c.Query("next")
	if middleware.AuthFrom(c).Authenticated() {
		c.Redirect(http.StatusFound, safeNext(next))
		return
	}
	h.renderLogin(c, http.StatusOK, loginForm{Next: next}, "")
}

func (h *Handler) Login(c *gin.Context) {
	ac := middleware.AuthFrom(c)
	if ac.Authenticated() {
		c.Redirect(http.StatusSeeOther, safeNext(c.PostForm("next")))
		return
	}

	var req loginForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderLogin(c, http.StatusBadRequest, req, msgRequired)
		return
	}

	tok, err := h.API.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("[Handler] Login failed user=%s rid=%s err=%v", req.Username, middleware.RequestIDFrom(c), err)
		h.publish(c, activity.LoginFailed, req.Username, err.Error())
		h.renderLogin(c, statusFor(err), req, apiclient.DetailOr(err, msgLoginFailed))
		return
	}

	if err := h.Auth.Save(c.Request.Context(), c.Writer, ac, tok.AccessToken); err != nil {
		log.Printf("[Handler] save token failed user=%s rid=%s err=%v", req.Username, middleware.RequestIDFrom(c), err)
		h.renderLogin(c, http.StatusInternalServerError, req, msgLoginFailed)
		return
	}

	username := ac.Username()
	if username == "" {
		username = req.Username
	}
	h.publish(c, activity.LoginSucceeded, username, "")
	c.Redirect(http.StatusSeeOther, safeNext(req.Next))
}

func (h *Handler) renderLogin(c *gin.Context, status int, req loginForm, errMsg string) {
	h.render(c, status, "login.tmpl", gin.H{
		"Title":    "Login",
		"Error":    errMsg,
		"Username": req.Username,
		"Next":     req.Next,
	})
}

func (h *Handler) SignupPage(c *gin.Context) {
	if middleware.AuthFrom(c).Authenticated() {
		c.Redirect(http.StatusFound, "/chat")
		return
	}
	h.renderSignup(c, http.StatusOK, signupForm{}, "")
}

func (h *Handler) Signup(c *gin.Context) {
	if middleware.AuthFrom(c).Authenticated() {
		c.Redirect(http.StatusSeeOther, "/chat")
		return
	}

	var req signupForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderSignup(c, http.StatusBadRequest, req, msgRequired)
		return
	}

	err := h.API.Signup(c.Request.Context(), apiclient.SignupRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Printf("[Handler] Signup failed user=%s rid=%s err=%v", req.Username, middleware.RequestIDFrom(c), err)
		h.publish(c, activity.SignupFailed, req.Username, err.Error())
		h.renderSignup(c, statusFor(err), req, apiclient.DetailOr(err, msgSignupFailed))
		return
	}

	h.publish(c, activity.SignupSucceeded, req.Username, "")
	// no auto-login
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) renderSignup(c *gin.Context, status int, req signupForm, errMsg string) {
	h.render(c, status, "signup.tmpl", gin.H{
		"Title":    "Sign up",
		"Error":    errMsg,
		"Username": req.Username,
		"Email":    req.Email,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	ac := middleware.AuthFrom(c)
	wasAuthenticated := ac.Authenticated()
	username := ac.Username()

	if err := h.Auth.Clear(c.Request.Context(), c.Writer, ac); err != nil {
		log.Printf("[Handler] Logout clear failed rid=%s err=%v", middleware.RequestIDFrom(c), err)
	}
	if wasAuthenticated {
		h.publish(c, activity.Logout, username, "")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
