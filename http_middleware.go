package accounts

import (
	"github.com/gofiber/fiber/v2"
)

// ClaimsContextKey is where the gate middleware parks the verified claims
// for downstream handlers.
const ClaimsContextKey = "accounts:claims"

// TargetFunc extracts the identity a request declares it acts on. Self-only
// policies require one; returning 0 means the request declared none.
type TargetFunc func(c *fiber.Ctx) int64

// TargetFromBody reads the conventional {"user_id": N} field from a JSON
// request body.
func TargetFromBody(c *fiber.Ctx) int64 {
	var payload struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return 0
	}
	return payload.UserID
}

// ClaimsFromCtx returns the claims stored by the gate middleware, or nil on
// an unprotected route.
func ClaimsFromCtx(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(ClaimsContextKey).(*Claims)
	return claims
}

// Protect adapts the gate to a fiber handler. Allow proceeds with claims in
// context; a refresh exchange terminates the request with the new access
// token; redirects surface as 302-class instruction codes; denials flow to
// the error handler.
func (g *Gate) Protect(policy Policy, target TargetFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var declared int64
		if target != nil {
			declared = target(c)
		}

		outcome := g.Authorize(c.UserContext(), c.Get(fiber.HeaderAuthorization), policy, declared)

		switch outcome.Kind {
		case OutcomeAllow:
			c.Locals(ClaimsContextKey, outcome.Claims)
			return c.Next()

		case OutcomeIssueAccess:
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"msg":         "issued new access token",
				"code":        fiber.StatusOK,
				"accessToken": outcome.AccessToken,
			})

		case OutcomeRedirect:
			return respondRedirect(c, outcome.Redirect)

		default:
			return outcome.Err
		}
	}
}

func respondRedirect(c *fiber.Ctx, reason RedirectReason) error {
	msg := "please insert additional information"
	if reason == RedirectDormantAccount {
		msg = "please release dormant condition"
	}

	return c.Status(fiber.StatusFound).JSON(fiber.Map{
		"err":    msg,
		"code":   fiber.StatusFound,
		"reason": string(reason),
	})
}
