package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chrona/internal/models"
	"chrona/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

func (h *AuthHandler) issue(c *gin.Context, tag string, user *models.User) {
	token, exp, err := h.authService.IssueToken(user.ID)
	if err != nil {
		log.Printf("%s sign access token failed for userID=%s: err=%v", tag, user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		ExpiresAt:   exp.Unix(),
	})
}

// @Summary      Регистрация
// @Description  Creates a password account and sends a welcome email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "Account data"
// @Success      200       {object}  models.User
// @Failure      400       {object}  map[string]string
// @Failure      409       {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][register] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[auth][register] attempt email=%q", strings.TrimSpace(req.Email))

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][register]", err)
		return
	}
	log.Printf("[auth][register] success userID=%s", user.ID)
	c.JSON(http.StatusOK, user)
}

// @Summary      OAuth2 password flow
// @Description  Form login compatible with OAuth2 password clients; username is the email
// @Tags         Auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  models.TokenResponse
// @Failure      401       {object}  map[string]string
// @Router       /token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		log.Printf("[auth][token] bad request: bind form failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.login(c, "[auth][token]", req.Username, req.Password)
}

// @Summary      Вход в систему
// @Description  Authenticates by email and password and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  models.TokenResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.login(c, "[auth][login]", req.Email, req.Password)
}

func (h *AuthHandler) login(c *gin.Context, tag, email, password string) {
	start := time.Now()
	log.Printf("%s attempt email=%q", tag, strings.TrimSpace(email))

	user, err := h.userService.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, tag, err)
		return
	}
	log.Printf("%s success userID=%s took=%s", tag, user.ID, time.Since(start).Truncate(time.Millisecond))
	h.issue(c, tag, user)
}

// @Summary      Google sign-in
// @Description  Exchanges a Google ID token for an access token, creating the account on first use
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.TokenResponse
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /auth/google [post]
func (h *AuthHandler) Google(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][google] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, "[auth][google]", err)
		return
	}
	log.Printf("[auth][google] success userID=%s", user.ID)
	h.issue(c, "[auth][google]", user)
}
