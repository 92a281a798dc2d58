package http

import "github.com/gin-gonic/gin"

// Register mounts the public auth routes. requireAuth guards logout and me.
func (h *Handler) Register(rg gin.IRouter, requireAuth gin.HandlerFunc) {
	rg.POST("/signup", h.Signup)
	rg.POST("/verify-email", h.VerifyEmail)
	rg.POST("/verify-email/resend", h.ResendCode)
	rg.POST("/login", h.Login)

	rg.POST("/logout", requireAuth, h.Logout)
	rg.GET("/me", requireAuth, h.Me)
}
