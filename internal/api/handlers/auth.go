package handlers

import (
	"net/http"
	"time"

	"forms-service/internal/api/middleware"
	"forms-service/internal/auth"
	"forms-service/internal/models"
	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// CookieSettings controls the signed session cookie.
type CookieSettings struct {
	Secret string
	MaxAge time.Duration
	Secure bool
}

type AuthHandler struct {
	auth   *services.AuthService
	cookie CookieSettings
}

func NewAuthHandler(authService *services.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

func (h *AuthHandler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(auth.CookieName, auth.SignCookie(token, h.cookie.Secret), int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) send(c *gin.Context, status int, res *models.AuthResponse) {
	h.setCookie(c, res.Token)
	c.JSON(status, response.Envelope{Status: response.StatusSuccess, Data: res})
}

// Signup godoc
// @Summary Register a new user
// @Description Create a verified local account and sign it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Sign up data"
// @Success 201 {object} response.Envelope{data=models.AuthResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Signup(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, http.StatusCreated, res)
}

// Signin godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.SigninRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=models.AuthResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req models.SigninRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Signin(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, http.StatusOK, res)
}

// GoogleLogin godoc
// @Summary Sign in with a Google id token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.GoogleLoginRequest true "Google id token"
// @Success 200 {object} response.Envelope{data=models.AuthResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.GoogleLogin(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, http.StatusOK, res)
}

// GitHubLogin godoc
// @Summary Sign in with a GitHub authorization code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.GitHubLoginRequest true "GitHub code"
// @Success 200 {object} response.Envelope{data=models.AuthResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/github [post]
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	var req models.GitHubLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.GitHubLogin(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, http.StatusOK, res)
}

// Signout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/signout [get]
func (h *AuthHandler) Signout(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.cookie.Secure, true)
	response.OK(c, nil)
}

// Authenticated godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/authenticated [get]
func (h *AuthHandler) Authenticated(c *gin.Context) {
	response.OK(c, middleware.CurrentUser(c))
}
