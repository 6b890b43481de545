package middleware

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Headers carrying the verified actor identity into handlers. The core
// applies no authorization policy: the role claim is transported as-is.
const (
	HeaderActorID     = "X-Actor-ID"
	HeaderActorHandle = "X-Actor-Handle"
	HeaderActorRole   = "X-Actor-Role"
)

// ActorAuth validates the bearer token and surfaces the actor claims
// (user_id, handle, role) to downstream handlers.
func ActorAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			if userID, ok := claims["user_id"].(float64); ok {
				ctx.Request.Header.Set(HeaderActorID, strconv.FormatInt(int64(userID), 10))
			}
			if handle, ok := claims["handle"].(string); ok {
				ctx.Request.Header.Set(HeaderActorHandle, handle)
			}
			if role, ok := claims["role"].(string); ok {
				ctx.Request.Header.Set(HeaderActorRole, role)
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
