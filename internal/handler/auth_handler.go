package handler

import (
	"net/http"

	"github.com/holuwadafe/maglo-finance/internal/middleware"
	"github.com/holuwadafe/maglo-finance/internal/service"
	"github.com/holuwadafe/maglo-finance/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	cookie      middleware.CookieOptions
}

// NewAuthHandler sets up the routing dependencies for account and session endpoints
func NewAuthHandler(authService service.AuthService, cookie middleware.CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		// Public routes
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)

		auth.POST("/logout", requireAuth, h.Logout)
		auth.GET("/me", requireAuth, h.GetMe)
	}
}

// Signup creates an account and signs it in
// @Summary      Sign up
// @Description  Creates a user account and opens a session, returning an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SignupRequest  true  "Signup Payload"
// @Success      201      {object}  response.Response{data=service.SessionResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, h.cookie, session.Token)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, session))
}

// Login handles POST /auth/login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.SessionResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Set token as HttpOnly cookie
	middleware.SetTokenCookie(c, h.cookie, session.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// Logout revokes the current session and clears the auth cookie
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	if err := h.authService.DeleteSession(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	middleware.ClearTokenCookie(c, h.cookie)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// GetMe handles GET /auth/me to return the current authenticated user
// @Summary      Get current user
// @Description  Get the currently authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
