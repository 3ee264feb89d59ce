package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	firebaseutil "io.winapps.heartline/internal/firebase"
)

const authCacheTTL = time.Hour

// AuthMiddleware resolves the bearer token to a user UID - Redis cache first,
// then the users table, then Firebase ID-token verification as last resort -
// and sets "uid" on the request context.
func AuthMiddleware(firebaseApp *firebase.App, postgres *pgxpool.Pool, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with 'Bearer '"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			c.Abort()
			return
		}

		ctx := context.Background()
		cacheKey := fmt.Sprintf("auth_token:%s", token)

		uid, err := redisClient.Get(ctx, cacheKey).Result()
		if err != nil || uid == "" {
			uid = ""
			query := `SELECT uid FROM users WHERE token = $1`
			if err := postgres.QueryRow(ctx, query, token).Scan(&uid); err != nil {
				authClient, err := firebaseutil.GetAuthClient(firebaseApp)
				if err == nil {
					if idToken, err := authClient.VerifyIDToken(ctx, token); err == nil {
						uid = idToken.UID
					}
				}
			}
			if uid != "" {
				redisClient.Set(ctx, cacheKey, uid, authCacheTTL)
			}
		}

		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("uid", uid)
		c.Next()
	}
}
