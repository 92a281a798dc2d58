package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EstateEmpire/estateempire-backend/internal/api/http/apierr"
	"github.com/EstateEmpire/estateempire-backend/internal/auth"
	"github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
)

func (h *Handler) ListForRent(c *gin.Context) { h.list(c, domain.ListingRent) }

func (h *Handler) ListForSale(c *gin.Context) { h.list(c, domain.ListingSale) }

// list answers with a bare JSON array, empty when nothing matches.
func (h *Handler) list(c *gin.Context, t domain.ListingType) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierr.BadRequest(c, "location, min_price, max_price, bedrooms, limit and offset must be non-negative", err)
		return
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		apierr.BadRequest(c, "min_price cannot exceed max_price", nil)
		return
	}

	var (
		props []domain.Property
		err   error
	)
	if t == domain.ListingRent {
		props, err = h.propertyService.ListForRent(c.Request.Context(), q.filter())
	} else {
		props, err = h.propertyService.ListForSale(c.Request.Context(), q.filter())
	}
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, props)
}

func (h *Handler) GetForRent(c *gin.Context) { h.getOfType(c, domain.ListingRent) }

func (h *Handler) GetForSale(c *gin.Context) { h.getOfType(c, domain.ListingSale) }

func (h *Handler) getOfType(c *gin.Context, t domain.ListingType) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.propertyService.GetOfType(c.Request.Context(), id, t)
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateForRent(c *gin.Context) { h.create(c, domain.ListingRent) }

func (h *Handler) CreateForSale(c *gin.Context) { h.create(c, domain.ListingSale) }

func (h *Handler) create(c *gin.Context, t domain.ListingType) {
	var in domain.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, http.StatusBadRequest, apierr.CodeInvalidPayload, "invalid listing payload", err)
		return
	}

	p, err := h.propertyService.Create(c.Request.Context(), auth.UserID(c), t, in)
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.propertyService.Delete(c.Request.Context(), auth.UserID(c), id); err != nil {
		respondPropertyError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Mine lists every listing owned by the calling agent.
func (h *Handler) Mine(c *gin.Context) {
	props, err := h.propertyService.ListByAgent(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, props)
}

func (h *Handler) UnitTypes(c *gin.Context) {
	types, err := h.propertyService.UnitTypes(c.Request.Context())
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	if types == nil {
		types = []domain.UnitType{}
	}

	c.JSON(http.StatusOK, unitTypesResponse{UnitTypes: types})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apierr.BadRequest(c, "property id must be a positive integer", err)
		return 0, false
	}
	return id, true
}

func respondPropertyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidListing):
		apierr.BadRequest(c, err.Error(), nil)
	case errors.Is(err, domain.ErrPropertyNotFound):
		apierr.Respond(c, http.StatusNotFound, apierr.CodeNotFound, "property not found", nil)
	case errors.Is(err, domain.ErrNotOwner):
		apierr.Forbidden(c, "only the listing agent can change this property")
	case errors.Is(err, domain.ErrHasTransactions):
		apierr.Respond(c, http.StatusConflict, apierr.CodeConflict, "property has rentals or purchases and cannot be deleted", nil)
	default:
		apierr.Internal(c, err)
	}
}
