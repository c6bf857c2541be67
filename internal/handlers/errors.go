package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// ErrorModel is the single-field error body used by every endpoint,
// including framework-generated errors.
type ErrorModel struct {
	status int

	Message string `doc:"Human readable error message" example:"Shortcode not found" json:"error"`
}

func (e *ErrorModel) Error() string {
	return e.Message
}

func (e *ErrorModel) GetStatus() int {
	return e.status
}

// UseErrorModel installs ErrorModel as the error representation for all
// huma-generated and handler-raised errors. Must be called before routes
// are registered.
func UseErrorModel() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		// The API contract reports every malformed request as 400, so
		// huma's schema validation failures are folded into that.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		if msg == "" && len(errs) > 0 {
			msg = errs[0].Error()
		}

		return &ErrorModel{
			status:  status,
			Message: msg,
		}
	}
}
