package http

import "github.com/gin-gonic/gin"

// Register mounts transaction routes. requireAuth authenticates; requireClient and
// requireAgent add the role checks on top of it.
func (h *Handler) Register(rg gin.IRouter, requireAuth, requireClient, requireAgent gin.HandlerFunc) {
	rg.POST("/rentals", requireAuth, requireClient, h.Rent)
	rg.POST("/purchases", requireAuth, requireClient, h.Purchase)
	rg.GET("/rentals", requireAuth, h.Rentals)
	rg.GET("/purchases", requireAuth, h.Purchases)
	rg.GET("/rental-payments", requireAuth, requireAgent, h.AgentPayments)
}
