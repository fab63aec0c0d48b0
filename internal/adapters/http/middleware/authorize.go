package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"elearn-backoffice/internal/domain"
)

// ContextKeyPrincipal is where authentication middleware leaves the verified
// principal email on the echo context.
const ContextKeyPrincipal = "principal_email"

// HeaderPrincipal is trusted only in none/api_key modes, where no token
// carries the caller identity.
const HeaderPrincipal = "X-Principal-Email"

// AccessDecider is the slice of the access resolver the guard needs.
type AccessDecider interface {
	ResolveAccess(ctx context.Context, principal string, resource domain.Resource, action domain.Action) (domain.Decision, error)
}

func actionForMethod(method string) domain.Action {
	switch method {
	case http.MethodPost:
		return domain.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.ActionUpdate
	case http.MethodDelete:
		return domain.ActionDelete
	default:
		return domain.ActionRead
	}
}

// Principal returns the caller identity for a request: the value set by the
// token middleware when present, the trusted header otherwise.
func Principal(c echo.Context) string {
	if principal, ok := c.Get(ContextKeyPrincipal).(string); ok && principal != "" {
		return principal
	}
	return c.Request().Header.Get(HeaderPrincipal)
}

// Authorize guards a route group with the access resolver. The action is
// derived from the HTTP verb (GET→read, POST→create, PUT→update,
// DELETE→delete); the resource is fixed per group. A missing session maps to
// 401, a deny to 403, and an undetermined lookup to 502 so clients can
// retry.
func Authorize(decider AccessDecider, resource domain.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			decision, err := decider.ResolveAccess(ctx, Principal(c), resource, actionForMethod(c.Request().Method))
			if err != nil {
				return c.JSON(http.StatusBadGateway, map[string]string{"error": "authorization unavailable"})
			}
			if !decision.Allowed {
				status := http.StatusForbidden
				if decision.Reason == domain.DenyNoSession {
					status = http.StatusUnauthorized
				}
				return c.JSON(status, map[string]string{
					"error":  "access denied",
					"reason": string(decision.Reason),
				})
			}
			return next(c)
		}
	}
}
