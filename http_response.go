package users

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPResponse is the JSON envelope used for non payload responses: errors,
// confirmations, and rejections. Reason carries the canonical status text
// and Message the human readable detail, both uppercased.
type HTTPResponse struct {
	Timestamp      time.Time `json:"timestamp"`
	HTTPStatusCode int       `json:"httpStatusCode"`
	HTTPStatus     string    `json:"httpStatus"`
	Reason         string    `json:"reason"`
	Message        string    `json:"message"`
}

// NewHTTPResponse builds the envelope for the given status code and message.
func NewHTTPResponse(statusCode int, message string) HTTPResponse {
	text := http.StatusText(statusCode)
	return HTTPResponse{
		Timestamp:      time.Now(),
		HTTPStatusCode: statusCode,
		HTTPStatus:     statusConstant(text),
		Reason:         strings.ToUpper(text),
		Message:        strings.ToUpper(message),
	}
}

// WriteHTTPResponse serializes the envelope onto a fiber response.
func WriteHTTPResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(NewHTTPResponse(statusCode, message))
}

// statusConstant renders status text in the SCREAMING_SNAKE_CASE form
// clients key off of, e.g. "Not Found" becomes "NOT_FOUND".
func statusConstant(text string) string {
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
