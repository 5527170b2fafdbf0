package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"blogserver/internal/managers"
	"blogserver/internal/schemas"
	"blogserver/internal/utils"
)

// RequireAuth validates the bearer token and checks that the session it was
// issued for still exists. A signed token alone is not enough, logout
// deletes the session row and thereby invalidates outstanding tokens.
func RequireAuth(jwtManager managers.JWTMgr, databaseManager managers.DatabaseMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, nil)
			return
		}

		claims, err := jwtManager.ValidateJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
			return
		}

		mapClaims, ok := claims.(jwt.MapClaims)
		if !ok {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, nil)
			return
		}

		userId, okSub := mapClaims["sub"].(string)
		sessionId, okSid := mapClaims["sid"].(string)
		if !okSub || !okSid {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, nil)
			return
		}

		queryString := `SELECT EXISTS(SELECT 1 FROM blog_schema.sessions WHERE session_id = $1 AND user_id = $2 AND expires_at > NOW())`
		var sessionExists bool
		if err := databaseManager.GetPool().QueryRow(c, queryString, sessionId, userId).Scan(&sessionExists); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}

		if !sessionExists {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, nil)
			return
		}

		c.Set(utils.ClaimsKey.String(), mapClaims)
		c.Next()
	}
}
