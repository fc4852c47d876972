package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type OrderHandler struct {
	Orders  *service.OrderService
	Cookies *tokens.Codec
}

type placeOrderRequest struct {
	ProductID   string `json:"productId"`
	PaymentMode string `json:"paymentMode"`
	CardNumber  string `json:"cardNumber"`
	CVV         string `json:"cvv"`
	UPIID       string `json:"upiId"`
	BankName    string `json:"bankName"`
}

func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody()
	}

	receipt, err := h.Orders.PlaceOrder(c.Request().Context(), h.Cookies.Token(c.Request()), service.PlaceOrderInput{
		ProductID:   req.ProductID,
		PaymentMode: req.PaymentMode,
		CardNumber:  req.CardNumber,
		CVV:         req.CVV,
		UPIID:       req.UPIID,
		BankName:    req.BankName,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *OrderHandler) Mine(c echo.Context) error {
	page, size := pageParams(c)
	res, err := h.Orders.ListMine(c.Request().Context(), h.Cookies.Token(c.Request()), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) All(c echo.Context) error {
	page, size := pageParams(c)
	res, err := h.Orders.ListAll(c.Request().Context(), h.Cookies.Token(c.Request()), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}
