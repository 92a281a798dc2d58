package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EstateEmpire/estateempire-backend/internal/api/http/apierr"
	"github.com/EstateEmpire/estateempire-backend/internal/auth"
	"github.com/EstateEmpire/estateempire-backend/internal/payments"
	propdomain "github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/transactions/domain"
)

func (h *Handler) Rent(c *gin.Context) {
	var req rentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "property_id and phone_number are required", err)
		return
	}

	rental, err := h.txService.Rent(c.Request.Context(), auth.UserID(c), domain.RentInput{
		PropertyID:  req.PropertyID,
		RentAmount:  req.RentAmount,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondTxError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rental": rental})
}

func (h *Handler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "property_id and phone_number are required", err)
		return
	}

	purchase, err := h.txService.Purchase(c.Request.Context(), auth.UserID(c), domain.PurchaseInput{
		PropertyID:  req.PropertyID,
		Amount:      req.Amount,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondTxError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": purchase})
}

func (h *Handler) Rentals(c *gin.Context) {
	rentals, err := h.txService.Rentals(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": rentals})
}

func (h *Handler) Purchases(c *gin.Context) {
	purchases, err := h.txService.Purchases(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

func (h *Handler) AgentPayments(c *gin.Context) {
	pays, err := h.txService.AgentPayments(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": pays})
}

func respondTxError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payments.ErrInvalidPhone):
		apierr.BadRequest(c, "enter a valid Safaricom or Airtel number, e.g. 0712345678", nil)
	case errors.Is(err, domain.ErrAmountMismatch):
		apierr.BadRequest(c, "amount must equal the listed price", nil)
	case errors.Is(err, domain.ErrWrongListingType):
		apierr.BadRequest(c, err.Error(), nil)
	case errors.Is(err, propdomain.ErrPropertyNotFound):
		apierr.Respond(c, http.StatusNotFound, apierr.CodeNotFound, "property not found", nil)
	case errors.Is(err, domain.ErrPropertyUnavailable):
		apierr.Respond(c, http.StatusConflict, apierr.CodeConflict, "this property is no longer available", nil)
	case errors.Is(err, domain.ErrPaymentFailed):
		apierr.Respond(c, http.StatusPaymentRequired, apierr.CodePaymentFailed, "payment was not completed, please try again", err)
	default:
		apierr.Internal(c, err)
	}
}
