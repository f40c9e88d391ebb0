package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"abapai/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"google.golang.org/api/googleapi"
)

// maxDetailLen bounds the SDK error text embedded in user-facing messages.
const maxDetailLen = 200

// mapError converts an SDK or transport error into a *model.ProviderError.
//
// The message has the shape "<action>: HTTP <status> - <detail>" when an HTTP
// status can be recovered from the SDK error, and "<action>: <detail>"
// otherwise. The original error is kept as Cause for the debug log.
func mapError(p model.Provider, action string, err error) error {
	if err == nil {
		return nil
	}

	var pe *model.ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewProviderError(p, model.ErrorKindTransport,
			fmt.Sprintf("%s: request timed out", action), err)
	}
	if errors.Is(err, context.Canceled) {
		return model.NewProviderError(p, model.ErrorKindTransport,
			fmt.Sprintf("%s: request canceled", action), err)
	}

	detail := summarizeError(err)
	status := httpStatus(err)
	if status == 0 {
		return model.NewProviderError(p, model.ErrorKindTransport,
			fmt.Sprintf("%s: %s", action, detail), err)
	}

	e := model.NewProviderError(p, model.ErrorKindTransport,
		fmt.Sprintf("%s: HTTP %d - %s", action, status, detail), err)
	e.StatusCode = status
	return e
}

// httpStatus extracts the HTTP status code from the error types of the four SDKs.
func httpStatus(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}

	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return googleErr.Code
	}

	var ollamaErr api.StatusError
	if errors.As(err, &ollamaErr) {
		return ollamaErr.StatusCode
	}

	// apierror.APIError from the Google client libraries
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return coded.HTTPCode()
	}

	return 0
}

// summarizeError returns the first line of err's text, truncated.
func summarizeError(err error) string {
	msg := strings.TrimSpace(err.Error())
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = strings.TrimSpace(msg[:i])
	}
	if len(msg) > maxDetailLen {
		msg = msg[:maxDetailLen] + "..."
	}
	return msg
}
