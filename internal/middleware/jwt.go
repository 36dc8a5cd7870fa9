package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-seating/internal/model"
)

// PrincipalKey is the context key under which JWTAuth stores the
// authenticated model.Principal.
const PrincipalKey = "principal"

// JWTAuth returns middleware that validates a Bearer access token and puts a
// typed Principal in the request context. Handlers never see the raw claims
// map. The secret must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			p := principalFromClaims(claims)
			if p.ID == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			c.Set(PrincipalKey, p)
			return next(c)
		}
	}
}

func principalFromClaims(claims jwt.MapClaims) model.Principal {
	str := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}
	return model.Principal{
		ID:             str("sub"),
		Username:       str("username"),
		Email:          str("email"),
		Name:           str("name"),
		RestaurantID:   str("restaurant_id"),
		RestaurantRole: str("restaurant_role"),
	}
}
