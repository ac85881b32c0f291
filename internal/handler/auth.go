package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/middleware"
	"github.com/iliyamo/invoice-dashboard/internal/service"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

// AuthHandler signs users in and out with a JWT session cookie.
type AuthHandler struct {
	Auth         *service.AuthService
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

func NewAuthHandler(auth *service.AuthService, secret string, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Secret: secret, TTL: ttl, SecureCookie: secure}
}

// LoginPage describes the login form. Signed-in users never reach it; the
// Authorized gate redirects them to the dashboard.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"fields":     []string{"email", "password"},
		"redirectTo": safeRedirect(c.QueryParam("callbackUrl")),
	})
}

// safeRedirect only allows landing pages inside the dashboard.
func safeRedirect(target string) string {
	if target == "/dashboard" || strings.HasPrefix(target, "/dashboard/") {
		return target
	}
	return "/dashboard"
}

// Login verifies the submitted email/password and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.MsgFormMissing})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	user, msg := h.Auth.Authenticate(ctx, form)
	switch msg {
	case "":
	case service.MsgFormMissing:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	case service.MsgInvalidCredentials:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
	}

	tok, err := utils.NewSessionToken(h.Secret, user.ID.String(), user.Name, user.Email, h.TTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": service.MsgSomethingWrong})
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, safeRedirect(form.Get("redirectTo")))
}

// Logout clears the session cookie and returns to the landing page.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, "/")
}
