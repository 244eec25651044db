package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// multipart boundaries and form fields ride along with the file itself, so
// the body may legitimately exceed the file cap by a little.
const multipartSlack = 1 << 20

type limitErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// UploadLimit rejects oversized requests from the declared Content-Length
// before any body byte is read, so no storage call is ever attempted for
// them. The exact per-file check happens in the handler after the form is
// parsed.
func UploadLimit(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cl := c.Request().ContentLength; cl > maxBytes+multipartSlack {
				return c.JSON(http.StatusBadRequest, limitErrorResponse{
					Error: "Request body exceeds the upload limit",
				})
			}
			return next(c)
		}
	}
}
