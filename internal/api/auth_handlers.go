package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// claimsKey ключ gin.Context с проверенными claims
const claimsKey = "auth_claims"

// LoginRequest тело POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse выданный токен
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
}

func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
		return
	}

	user, err := rs.auth.Users.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		rs.respondError(c, err)
		return
	}

	token, expires, err := rs.auth.Tokens.Generate(user)
	if err != nil {
		rs.respondError(c, err)
		return
	}

	ok(c, "Вход выполнен", LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
	})
}

// jwtMiddleware проверяет Bearer токен. Без настроенной авторизации пропускает всё.
func (rs *RestServer) jwtMiddleware(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rs.auth == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			fail(c, http.StatusUnauthorized, "Требуется авторизация")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			fail(c, http.StatusUnauthorized, "Неверный формат токена")
			return
		}

		claims, err := rs.auth.Tokens.Validate(parts[1])
		if err != nil {
			fail(c, http.StatusUnauthorized, "Недействительный токен")
			return
		}
		if adminOnly && !claims.IsAdmin {
			fail(c, http.StatusForbidden, "Нужны права администратора")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}
