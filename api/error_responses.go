package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ftserrors "github.com/gcbaptista/ftscore/errors"
)

// ErrorCode is a standardized, stable error tag clients can switch on
// instead of parsing the human-readable message.
type ErrorCode string

const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeIndexNotFound    ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeIndexExists      ErrorCode = "INDEX_ALREADY_EXISTS"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeUnsupportedOp    ErrorCode = "UNSUPPORTED_OPERATION"
)

// APIError is the standardized JSON error body.
type APIError struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func SendError(c *gin.Context, statusCode int, code ErrorCode, message string) {
	c.JSON(statusCode, APIError{
		Error:     "request failed",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	})
}

func SendIndexNotFoundError(c *gin.Context, indexName string) {
	SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound, "index '"+indexName+"' not found")
}

func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "invalid JSON in request body: "+err.Error())
}

// SendEngineError maps an error returned by the index engine to an HTTP
// status, inspecting the typed error kinds in ftserrors rather than
// string-matching the message.
func SendEngineError(c *gin.Context, operation string, err error) {
	var (
		notFound      *ftserrors.DocumentNotFoundError
		alreadyExists *ftserrors.IndexAlreadyExistsError
		unsupported   *ftserrors.UnsupportedOperationError
	)
	switch {
	case errors.As(err, &notFound):
		SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound, err.Error())
	case errors.As(err, &alreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeIndexExists, err.Error())
	case errors.As(err, &unsupported):
		SendError(c, http.StatusBadRequest, ErrorCodeUnsupportedOp, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, operation+": "+err.Error())
	}
}
