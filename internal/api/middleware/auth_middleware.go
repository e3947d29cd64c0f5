package middleware

import (
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/marketplace/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "user_id"
	UserTypeKey = "user_type"
)

// Auth 解析Bearer token, 把user id放進request context
// 不在這裡做角色判斷, 授權檢查交給各service操作開頭
func Auth(tokenMaker *token.JWTMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			return
		}

		claims, err := tokenMaker.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserTypeKey, string(claims.UserType))
		c.Next()
	}
}

// AuthUserID 取出middleware放進去的user id
func AuthUserID(c *gin.Context) uint {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
