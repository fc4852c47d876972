package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type ContactHandler struct {
	Contacts *service.ContactService
	Cookies  *tokens.Codec
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ContactHandler) Save(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return badBody()
	}

	_, err := h.Contacts.Save(c.Request().Context(), h.Cookies.Token(c.Request()), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Contact saved"})
}

func (h *ContactHandler) Mine(c echo.Context) error {
	contacts, err := h.Contacts.Mine(c.Request().Context(), h.Cookies.Token(c.Request()))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, contacts)
}
