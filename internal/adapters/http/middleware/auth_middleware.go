package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

type Mode string

const (
	ModeNone    Mode = "none"
	ModeAPIKey  Mode = "api_key"
	ModeCognito Mode = "cognito"
)

// HeaderAPIKey carries the shared secret in api_key mode.
const HeaderAPIKey = "X-Api-Key"

func ParseAuthMode() (Mode, error) {
	mode := Mode(os.Getenv("AUTH_MODE"))
	switch mode {
	case "", ModeNone, ModeAPIKey, ModeCognito:
		if mode == "" {
			return ModeNone, nil
		}
		return mode, nil
	default:
		return "", errors.New("invalid auth mode")
	}
}

// AuthMiddleware selects the configured authentication strategy. In api_key
// mode the request header is compared against the API_KEY environment
// variable; in cognito mode the supplied JWT middleware runs.
func AuthMiddleware(cognito echo.MiddlewareFunc) (echo.MiddlewareFunc, error) {
	mode, err := ParseAuthMode()
	if err != nil {
		return nil, err
	}
	if mode == ModeCognito && cognito == nil {
		return nil, errors.New("cognito middleware is required when AUTH_MODE=cognito")
	}
	if mode == ModeAPIKey && os.Getenv("API_KEY") == "" {
		return nil, errors.New("API_KEY is required when AUTH_MODE=api_key")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch mode {
			case ModeNone:
				return next(c)
			case ModeAPIKey:
				provided := c.Request().Header.Get(HeaderAPIKey)
				expected := os.Getenv("API_KEY")
				if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
				}
				return next(c)
			case ModeCognito:
				return cognito(next)(c)
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "invalid auth mode")
			}
		}
	}, nil
}
