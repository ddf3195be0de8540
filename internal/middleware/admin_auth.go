package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxAdminEmailKey = "admin_email" // string
)

const adminRole = "admin"

type errorResponse struct {
	Message string `json:"message"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized."})
}

// AdminJWTは管理者トークン（Bearer）を検証する。
// HS256でrole=adminのものだけ通す。
func AdminJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return unauthorized(c)
			}

			//Bearer形式か確認してtokenを抜く
			authz := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return unauthorized(c)
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return unauthorized(c)
			}

			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return unauthorized(c)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c)
			}
			if role, _ := claims["role"].(string); role != adminRole {
				return unauthorized(c)
			}

			email, _ := claims["email"].(string)
			c.Set(CtxAdminEmailKey, email)

			return next(c)
		}
	}
}
