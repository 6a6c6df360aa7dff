// Package handlers contains the HTTP handlers for the payment service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
	"github.com/fitstack/adaptive-payments/internal/core/service"
)

// CheckoutHandler handles HTTP requests for adaptive payment checkouts.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *zap.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

type redirectRequest struct {
	SessionID          string          `json:"session_id" binding:"required"`
	BasketID           string          `json:"basket_id" binding:"required"`
	Customer           domain.Customer `json:"customer"`
	ShippingAddress    *domain.Address `json:"shipping_address"`
	ShippingMethodCode string          `json:"shipping_method_code"`
	ReturnToStore      bool            `json:"return_to_store"`
	PrepaidReturnLabel bool            `json:"prepaid_return_label"`
}

type returnRequest struct {
	SessionID       string          `json:"session_id" binding:"required"`
	PayKey          string          `json:"pay_key" binding:"required"`
	Customer        domain.Customer `json:"customer"`
	ShippingAddress *domain.Address `json:"shipping_address"`
	ReturnToStore   bool            `json:"return_to_store"`
}

type settleRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	PayKey      string `json:"pay_key" binding:"required"`
	OrderNumber string `json:"order_number"`
}

type cancelRequest struct {
	SessionID string `json:"session_id"`
	BasketID  string `json:"basket_id"`
}

type lookupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Route   string `json:"route,omitempty"`
}

// Redirect handles POST /api/v1/checkout/redirect
// Creates the payment and returns where to send the buyer.
func (h *CheckoutHandler) Redirect(c *gin.Context) {
	var req redirectRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.service.Initiate(c.Request.Context(), service.InitiateRequest{
		SessionID:          req.SessionID,
		BasketID:           req.BasketID,
		Customer:           req.Customer,
		ShippingAddress:    req.ShippingAddress,
		ShippingMethodCode: req.ShippingMethodCode,
		ReturnToStore:      req.ReturnToStore,
		PrepaidReturnLabel: req.PrepaidReturnLabel,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"redirect_url":   res.RedirectURL,
		"pay_key":        res.PayKey,
		"correlation_id": res.CorrelationID,
	})
}

// Return handles POST /api/v1/checkout/return
// Called when the buyer comes back from the provider.
func (h *CheckoutHandler) Return(c *gin.Context) {
	var req returnRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.service.Confirm(c.Request.Context(), service.ConfirmRequest{
		SessionID:       req.SessionID,
		PayKey:          req.PayKey,
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		ReturnToStore:   req.ReturnToStore,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"pay_key":  res.PayKey,
		"amount":   res.Amount.StringFixed(2),
		"currency": res.Currency,
		"state":    res.State,
	})
}

// Settle handles POST /api/v1/checkout/settle
func (h *CheckoutHandler) Settle(c *gin.Context) {
	var req settleRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.service.Settle(c.Request.Context(), service.SettleRequest{
		SessionID:   req.SessionID,
		PayKey:      req.PayKey,
		OrderNumber: req.OrderNumber,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"settlement": res.Settlement,
		"record":     res.Record,
	})
}

// Cancel handles POST /api/v1/checkout/cancel
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if !h.bind(c, &req) {
		return
	}

	route, err := h.service.Cancel(c.Request.Context(), service.CancelRequest{
		SessionID: req.SessionID,
		BasketID:  req.BasketID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "route": route})
}

// LookupAccount handles POST /api/v1/accounts/lookup
func (h *CheckoutHandler) LookupAccount(c *gin.Context) {
	var req lookupRequest
	if !h.bind(c, &req) {
		return
	}

	status, err := h.service.LookupAccount(c.Request.Context(), req.FirstName, req.LastName, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"account":  status,
		"verified": status.IsVerified(),
	})
}

// ListTransactions handles GET /api/v1/transactions?pay_key=
func (h *CheckoutHandler) ListTransactions(c *gin.Context) {
	payKey := c.Query("pay_key")
	if payKey == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "pay_key is required",
			Code:  "VALIDATION_ERROR",
		})
		return
	}

	records, err := h.service.Transactions(c.Request.Context(), payKey)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": records})
}

// Refund handles POST /api/v1/transactions/:pay_key/refund
func (h *CheckoutHandler) Refund(c *gin.Context) {
	rec, err := h.service.Refund(c.Request.Context(), c.Param("pay_key"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "record": rec})
}

// GetSettlement handles GET /api/v1/settlements/:pay_key
func (h *CheckoutHandler) GetSettlement(c *gin.Context) {
	settlement, err := h.service.Settlement(c.Request.Context(), c.Param("pay_key"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settlement": settlement})
}

// Health handles GET /health
func (h *CheckoutHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "adaptive-payments",
		"version": "1.0.0",
	})
}

func (h *CheckoutHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "Invalid request: " + err.Error(),
			Code:  "VALIDATION_ERROR",
		})
		return false
	}
	return true
}

// fail writes the error body with the recovery route for err.
func (h *CheckoutHandler) fail(c *gin.Context, err error) {
	reason := domain.ReasonOf(err)
	status := statusFor(err, reason)

	message := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		message = "Internal server error"
	}

	h.logger.Warn("checkout request failed",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("reason", string(reason)),
		zap.Int("status", status),
		zap.Error(err),
	)

	c.JSON(status, errorResponse{
		Error: message,
		Code:  string(reason),
		Route: string(domain.RouteFor(reason)),
	})
}

func statusFor(err error, reason domain.FailureReason) int {
	switch {
	case errors.Is(err, domain.ErrSettlementNotFound), errors.Is(err, domain.ErrBasketNotFound):
		return http.StatusNotFound
	}

	switch reason {
	case domain.ReasonMissingShippingAddress, domain.ReasonMissingShippingMethod:
		return http.StatusBadRequest
	case domain.ReasonEmptyBasket, domain.ReasonValidation:
		return http.StatusUnprocessableEntity
	case domain.ReasonInvalidBasket, domain.ReasonInvalidTransaction:
		return http.StatusConflict
	case domain.ReasonCommunication, domain.ReasonGatewayRejected, domain.ReasonPaymentNotTaken:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
