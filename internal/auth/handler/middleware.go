package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nudgely/auth-service/internal/auth/service"
	autherror "github.com/nudgely/auth-service/internal/errors"
)

const claimsCtxKey = "auth_claims"

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth verifies the bearer access token and rejects tokens whose
// session has been revoked, so a logout kills outstanding access tokens too.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return respondError(c, autherror.ErrUnauthenticated)
		}

		claims, err := h.userService.Authenticate(c.Context(), token)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(claimsCtxKey, claims)
		return c.Next()
	}
}

func claimsFromCtx(c *fiber.Ctx) *service.JWTCustomClaims {
	claims, _ := c.Locals(claimsCtxKey).(*service.JWTCustomClaims)
	if claims == nil {
		return &service.JWTCustomClaims{}
	}
	return claims
}
