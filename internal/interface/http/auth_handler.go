package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

const msgInvalidBody = "Invalid request body"

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// fail maps a service error to the auth envelope. Unclassified and dependency
// failures are logged and answered with a generic 500 message.
func (h *AuthHandler) fail(c *gin.Context, err error, op, fallback string) {
	status, msg := http.StatusInternalServerError, fallback
	if e := application.AsError(err); e != nil {
		status, msg = e.HTTPStatus(), e.Message
	}
	if status >= http.StatusInternalServerError {
		helpers.LogError(h.Logger, "auth operation failed", err, logrus.Fields{"op": op, "request_id": c.GetString("request_id")})
	}
	response.Fail(c, status, msg)
}

func (h *AuthHandler) badBody(c *gin.Context, err error) {
	if h.Logger != nil {
		h.Logger.WithField("details", validation.ToDetails(err)).Debug("invalid request body")
	}
	response.Fail(c, http.StatusBadRequest, msgInvalidBody)
}

func (h *AuthHandler) setSession(c *gin.Context, s application.Session) {
	if h.Cookies != nil {
		h.Cookies.SetSession(c, s.Token, s.ExpiresAt)
	}
}

// Signup POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	res, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
	})
	if err != nil {
		h.fail(c, err, "signup", "An error occurred during registration. Please try again.")
		return
	}
	h.setSession(c, res.Session)
	response.OK(c, http.StatusCreated, "Registration successful! Please check your email for OTP verification.", gin.H{
		"userId": res.UserID,
		"token":  res.Session.Token,
	})
}

// VerifyOTP POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	if err := h.Svc.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.fail(c, err, "verify_otp", "An error occurred during verification. Please try again.")
		return
	}
	response.OK(c, http.StatusOK, "Email verified successfully", nil)
}

// ResendOTP POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	if err := h.Svc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err, "resend_otp", "An error occurred while sending new OTP. Please try again.")
		return
	}
	response.OK(c, http.StatusOK, "New OTP sent successfully", nil)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "login", "An error occurred during login. Please try again.")
		return
	}
	h.setSession(c, res.Session)
	response.OK(c, http.StatusOK, "", gin.H{
		"user":  res.User,
		"token": res.Session.Token,
	})
}

// ForgotPassword POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err, "forgot_password", "An error occurred while processing your request. Please try again.")
		return
	}
	response.OK(c, http.StatusOK, "Password reset token sent to your email", nil)
}

// ResetPassword POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		h.fail(c, err, "reset_password", "An error occurred while resetting your password. Please try again.")
		return
	}
	response.OK(c, http.StatusOK, "Password reset successful. You can now login with your new password.", nil)
}

// ChangePassword POST /api/v1/auth/change-password (bearer required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err, "change_password", "An error occurred while changing your password. Please try again.")
		return
	}
	response.OK(c, http.StatusOK, "Password changed successfully", nil)
}

// Session POST /api/v1/auth/session (bearer required)
func (h *AuthHandler) Session(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Fail(c, http.StatusUnauthorized, "Not authorized, token failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": application.ToPublicUser(u)})
}
