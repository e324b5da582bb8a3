package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"codefriend-store/internal/model"
)

const actorContextKey = "actor"

// Auth requires a valid bearer token and stores the caller identity in the
// request context. Token issuance itself lives in the auth service; this
// middleware only verifies.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromHeader(c, jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// OptionalAuth resolves the identity when a token is present but lets
// anonymous requests through; the download endpoint serves both.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "" {
				actor, err := actorFromHeader(c, jwtSecret)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				c.Set(actorContextKey, actor)
			}
			return next(c)
		}
	}
}

// ActorFrom returns the authenticated caller, or a zero Actor for anonymous
// requests.
func ActorFrom(c echo.Context) model.Actor {
	if actor, ok := c.Get(actorContextKey).(model.Actor); ok {
		return actor
	}
	return model.Actor{}
}

func actorFromHeader(c echo.Context, jwtSecret string) (model.Actor, error) {
	header := c.Request().Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return model.Actor{}, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return model.Actor{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, fmt.Errorf("unexpected claims type")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return model.Actor{}, fmt.Errorf("missing sub claim")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return model.Actor{
		UserID: sub,
		Name:   name,
		Email:  email,
		Role:   role,
	}, nil
}
