package middleware

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

type Mode string

const (
	ModeNone   Mode = "none"
	ModeAPIKey Mode = "api_key"
	ModeJWT    Mode = "jwt"
)

func ParseAuthMode() (Mode, error) {
	mode := Mode(os.Getenv("AUTH_MODE"))
	switch mode {
	case "", ModeNone, ModeAPIKey, ModeJWT:
		if mode == "" {
			return ModeNone, nil
		}
		return mode, nil
	default:
		return "", errors.New("invalid auth mode")
	}
}

// AuthMiddleware selects the token-handling strategy by AUTH_MODE. The jwt
// handler attaches a principal when a bearer token is present; none and
// api_key pass requests through untouched (local development only — every
// gate then sees an unauthenticated request).
func AuthMiddleware(jwtHandler echo.MiddlewareFunc) (echo.MiddlewareFunc, error) {
	mode, err := ParseAuthMode()
	if err != nil {
		return nil, err
	}
	if mode == ModeJWT && jwtHandler == nil {
		return nil, errors.New("jwt middleware is required when AUTH_MODE=jwt")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch mode {
			case ModeNone:
				return next(c)
			case ModeAPIKey:
				return next(c)
			case ModeJWT:
				return jwtHandler(next)(c)
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "invalid auth mode")
			}
		}
	}, nil
}
