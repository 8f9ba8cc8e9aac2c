package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/vanisarees/storefront/pkg/errors"
)

// errorEnvelope is the error body written by pkg/httputil.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError turns a non-2xx response into an AppError. The body is
// consumed and closed.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	message := string(body)
	code := ""
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		message = env.Error.Message
		code = env.Error.Code
	}

	qualified := fmt.Sprintf("%s: %s", service, message)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(service, message)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case resp.StatusCode >= 500:
		return apperrors.Unavailable(service, fmt.Errorf("status %d: %s", resp.StatusCode, message))
	default:
		return &apperrors.AppError{Code: code, Message: qualified, Status: resp.StatusCode}
	}
}
