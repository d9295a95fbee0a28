package accounts

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ErrorHandler converts every failure into the JSON envelope at the HTTP
// boundary. Nothing propagates past here as an unhandled fault; unknown
// errors collapse into a 500 without leaking their message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		var fiberErr *fiber.Error
		if goerrors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"err":  fiberErr.Message,
				"code": fiberErr.Code,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"err":  "internal server error",
			"code": fiber.StatusInternalServerError,
		})
	}

	status := statusFromRichError(rich)
	return c.Status(status).JSON(fiber.Map{
		"err":  rich.Message,
		"code": status,
	})
}

func statusFromRichError(rich *goerrors.Error) int {
	switch rich.Code {
	case goerrors.CodeBadRequest:
		return fiber.StatusBadRequest
	case goerrors.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case goerrors.CodeForbidden:
		return fiber.StatusForbidden
	case goerrors.CodeNotFound:
		return fiber.StatusNotFound
	case goerrors.CodeConflict:
		return fiber.StatusConflict
	case goerrors.CodeInternal:
		return fiber.StatusInternalServerError
	}

	switch rich.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
