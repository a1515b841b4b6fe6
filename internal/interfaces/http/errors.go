package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// StatusForKind traduce el Kind de un error de dominio a código HTTP.
func StatusForKind(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler manejador central de errores de Fiber. Los handlers devuelven errores de dominio
// y aquí se decide el status; el texto de la causa interna solo se expone si exposeDetail.
func ErrorHandler(exposeDetail bool, log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberCode(fe.Code), Message: fe.Message})
		}

		de := domain.AsError(err)
		status := StatusForKind(de.Kind)
		body := dto.ErrorResponse{Code: de.Code, Message: de.Message, Details: de.Fields}
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).
				Str("request_id", requestID(c)).Msg("error interno")
			if exposeDetail {
				body.Detail = err.Error()
			}
		}
		return c.Status(status).JSON(body)
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return "INVALID_BODY"
	default:
		return "HTTP_ERROR"
	}
}
