package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	SignUp(ctx context.Context, req *model.SignUpRequest, meta model.SessionMeta) (*model.SessionResponse, error)
	SignIn(ctx context.Context, req *model.SignInRequest, meta model.SessionMeta) (*model.SessionResponse, error)
	SignOut(ctx context.Context, token string) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	svc     Service
	auth    *middleware.AuthMiddleware
	cookies CookieConfig
}

func NewHandler(svc Service, auth *middleware.AuthMiddleware, cookies CookieConfig) *Handler {
	return &Handler{svc: svc, auth: auth, cookies: cookies}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.SignUp)
		auth.POST("/sign-in", h.SignIn)
		auth.POST("/sign-out", h.auth.RequireSession(), h.SignOut)
		auth.GET("/session", h.auth.RequireSession(), h.GetSession)
	}
}

func (h *Handler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), &req, meta(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.setCookie(c, resp.Token, resp.ExpiresAt)
	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.SignIn(c.Request.Context(), &req, meta(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.setCookie(c, resp.Token, resp.ExpiresAt)
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) SignOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context(), middleware.Token(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.clearCookie(c)
	httputil.RespondWithSuccess(c, "signed out")
}

func (h *Handler) GetSession(c *gin.Context) {
	httputil.RespondWithSuccess(c, middleware.Session(c))
}

func (h *Handler) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookies.Name, token, maxAge, "/", "", h.cookies.Secure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookies.Name, "", -1, "/", "", h.cookies.Secure, true)
}

func meta(c *gin.Context) model.SessionMeta {
	return model.SessionMeta{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
