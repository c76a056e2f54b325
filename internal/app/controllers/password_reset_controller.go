package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// PasswordResetController handles the forgot-password endpoints
type PasswordResetController struct {
	resetService *services.PasswordResetService
	logger       zerolog.Logger
}

// NewPasswordResetController creates a new PasswordResetController
func NewPasswordResetController(resetService *services.PasswordResetService, logger zerolog.Logger) *PasswordResetController {
	return &PasswordResetController{
		resetService: resetService,
		logger:       logger,
	}
}

// ForgotPassword mails a reset link
// @Summary Request a password reset
// @Description Mails a single-use reset link. The response is the same whether or not the address has an account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse "Request accepted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /auth/password/forgot [post]
func (c *PasswordResetController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.resetService.RequestReset(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "If the address has an account, a reset link has been sent")
}

// ResetPassword sets a new password from a mailed token
// @Summary Reset password
// @Description Redeems a reset token, sets the new password and signs out every session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Weak password"
// @Failure 401 {object} dto.ErrorResponse "Invalid, used or expired token"
// @Router /auth/password/reset [post]
func (c *PasswordResetController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.resetService.ResetPassword(ctx.Request.Context(), &req); err != nil {
		c.logger.Info().Err(err).Msg("Password reset rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Password has been reset")
}
