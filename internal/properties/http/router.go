package http

import "github.com/gin-gonic/gin"

// Register mounts listing routes. requireAgent must authenticate and enforce the agent role.
func (h *Handler) Register(rg gin.IRouter, requireAgent ...gin.HandlerFunc) {
	rg.GET("/unit_types", h.UnitTypes)

	props := rg.Group("/properties")
	props.GET("/for-rent", h.ListForRent)
	props.GET("/for-sale", h.ListForSale)
	props.GET("/for-rent/:id", h.GetForRent)
	props.GET("/for-sale/:id", h.GetForSale)
	props.GET("/:id", h.Get)

	agent := props.Group("", requireAgent...)
	agent.GET("", h.Mine)
	agent.POST("/for-rent", h.CreateForRent)
	agent.POST("/for-sale", h.CreateForSale)
	agent.DELETE("/:id", h.Delete)
}
