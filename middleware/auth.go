package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"filevault-manager/config"
)

const (
	// SessionCookie 普通用户会话 cookie
	SessionCookie = "session"
	// AdminCookie 管理员会话 cookie，与用户会话相互独立
	AdminCookie = "admin_session"
)

// AuthMiddleware 用户会话认证中间件。
// 浏览器应用，认证失败时重定向到登录页而不是返回 401
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseSessionCookie(c, SessionCookie)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)

		c.Set("user_id", strconv.FormatUint(uint64(userID), 10))
		c.Set("username", username)
		c.Next()
	}
}

// AdminRequired 管理员认证中间件。
// 管理员通过共享口令登录，会话中只携带 role 声明
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseSessionCookie(c, AdminCookie)
		if !ok {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		if role, _ := claims["role"].(string); role != "admin" {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// parseSessionCookie 解析并校验会话 cookie 中的 JWT
func parseSessionCookie(c *gin.Context, name string) (jwt.MapClaims, bool) {
	tokenString, err := c.Cookie(name)
	if err != nil || tokenString == "" {
		return nil, false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GetConfig().SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}
