package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const LoginPage = "/login.html"

type AuthHandler struct {
	Auth    *service.AuthService
	Cookies *tokens.Codec
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return badBody()
	}

	_, err := h.Auth.Signup(c.Request().Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// the signup form treats an existing account as a plain input error
		if errors.Is(err, apperr.ErrConflict) {
			return echo.NewHTTPError(http.StatusBadRequest, apperr.Message(err))
		}
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Signup successful"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	client := ratelimit.Identity(c.RealIP(), c.Request().UserAgent())

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		// unreadable bodies still count against the client
		if err := h.Auth.Throttle(c.Request().Context(), client); err != nil {
			return httpError(err)
		}
		return badBody()
	}

	res, err := h.Auth.Login(c.Request().Context(), client, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	cookie, err := h.Cookies.Issue(res.Token, res.ExpiresAt)
	if err != nil {
		logging.FromContext(c.Request().Context()).With("svc", "auth").Error("cookie_sign", "status", "failed", "error", err)
		_ = h.Auth.Logout(c.Request().Context(), res.Token)
		return httpError(apperr.Internal())
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"isAdmin": res.IsAdmin,
	})
}

// Logout always clears the cookie and redirects, even when the session is
// already gone.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := h.Cookies.Token(c.Request())
	if err := h.Auth.Logout(c.Request().Context(), token); err != nil {
		logging.FromContext(c.Request().Context()).With("svc", "auth").Warn("logout", "status", "failed", "error", err)
	}

	c.SetCookie(h.Cookies.Clear())
	return c.Redirect(http.StatusFound, LoginPage)
}

func (h *AuthHandler) Me(c echo.Context) error {
	info := h.Auth.SessionInfo(c.Request().Context(), h.Cookies.Token(c.Request()))
	return c.JSON(http.StatusOK, echo.Map{
		"userId":  info.AccountID,
		"isAdmin": info.IsAdmin,
	})
}

func (h *AuthHandler) UserInfo(c echo.Context) error {
	name := h.Auth.UserInfo(c.Request().Context(), h.Cookies.Token(c.Request()))
	return c.JSON(http.StatusOK, echo.Map{"name": name})
}
