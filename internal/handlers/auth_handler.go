package handlers

import (
	"fmt"
	"log"

	"whisperbox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration, verification and sign-in.
type AuthHandler struct {
	verificationService *services.VerificationService
	messageService      *services.MessageService
	authService         *services.AuthService
	validate            *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(verificationService *services.VerificationService, messageService *services.MessageService, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		verificationService: verificationService,
		messageService:      messageService,
		authService:         authService,
		validate:            validator.New(),
	}
}

// RegisterRoutes registers the public account routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/sign-up", h.HandleSignUp)
	router.Post("/verify-code", h.HandleVerifyCode)
	router.Post("/resend-verification", h.HandleResendVerification)
	router.Post("/sign-in", h.HandleSignIn)
	router.Get("/check-username-unique", h.HandleCheckUsernameUnique)
}

// SignUpRequest represents the request body for registration.
type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleSignUp handles new user registration.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing sign-up request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.verificationService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "User registered successfully. Please check your email to verify your account.",
		"username": user.Username,
	})
}

// VerifyCodeRequest represents the request body for code verification.
type VerifyCodeRequest struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

// HandleVerifyCode validates a submitted one-time code.
func (h *AuthHandler) HandleVerifyCode(c *fiber.Ctx) error {
	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing verify-code request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.verificationService.Verify(req.Username, req.Code); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Account verified successfully",
	})
}

// ResendVerificationRequest represents the request body for a code resend.
type ResendVerificationRequest struct {
	Username string `json:"username" validate:"required"`
}

// HandleResendVerification reissues a verification code, subject to the cooldown.
func (h *AuthHandler) HandleResendVerification(c *fiber.Ctx) error {
	var req ResendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing resend request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.verificationService.Resend(req.Username); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "A new verification code has been sent to your email",
	})
}

// SignInRequest represents the request body for sign-in. Identifier accepts
// either a username or an email address.
type SignInRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// HandleSignIn handles user sign-in and issues a JWT token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing sign-in request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	token, err := h.authService.Login(req.Identifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Signed in successfully",
		"token":   token,
	})
}

// HandleCheckUsernameUnique reports whether a username is still available.
// Side-effect free; polled by the sign-up form while the user types.
func (h *AuthHandler) HandleCheckUsernameUnique(c *fiber.Ctx) error {
	username := c.Query("username")
	if err := h.validate.Var(username, "required,min=3,max=100"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid username",
		})
	}

	available, err := h.messageService.CheckUsernameAvailable(username)
	if err != nil {
		return respondError(c, err)
	}

	if !available {
		return c.JSON(fiber.Map{
			"message":   fmt.Sprintf("Username '%s' is already taken", username),
			"available": false,
		})
	}
	return c.JSON(fiber.Map{
		"message":   "Username is available",
		"available": true,
	})
}
