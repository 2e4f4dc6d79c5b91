package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"workshop/domain/shared"
	"workshop/pkg/errors"
	"workshop/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusByCode lists every code that is not a 500.
var statusByCode = map[errors.ErrorCode]int{
	errors.CodeBadRequest:      http.StatusBadRequest,
	errors.CodeValidation:      http.StatusBadRequest,
	errors.CodeInvalidAmount:   http.StatusBadRequest,
	errors.CodeUnauthorized:    http.StatusUnauthorized,
	errors.CodeForbidden:       http.StatusForbidden,
	errors.CodeTooManyRequests: http.StatusTooManyRequests,
	errors.CodeTimeout:         http.StatusGatewayTimeout,

	errors.CodeInvalidCredentials: http.StatusUnauthorized,
	errors.CodeTransactionFailed:  http.StatusServiceUnavailable,

	errors.CodeNotFound:         http.StatusNotFound,
	errors.CodeOrderNotFound:    http.StatusNotFound,
	errors.CodeLineNotFound:     http.StatusNotFound,
	errors.CodeMaterialNotFound: http.StatusNotFound,

	errors.CodeConflict:            http.StatusConflict,
	errors.CodeDuplicateLine:       http.StatusConflict,
	errors.CodeMaterialInUse:       http.StatusConflict,
	errors.CodeInsufficientBalance: http.StatusConflict,
	errors.CodeConcurrentModify:    http.StatusConflict,
}

func statusOf(code errors.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

func requestFields(c *gin.Context) []zap.Field {
	return []zap.Field{
		zap.String("request_id", GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	}
}

// HandleError renders binding and other framework-level failures.
func HandleError(c *gin.Context, err error, message string, status int) {
	logger.Warn(message, append(requestFields(c), zap.Int("status", status), zap.Error(err))...)
	write(c, status, Response{Error: string(errors.CodeBadRequest), Message: message})
}

// HandleAppError renders err with the status of its code. Client errors are
// logged at warn, server errors at error with the stack.
func HandleAppError(c *gin.Context, err error) {
	appErr := errors.FromDomainError(err)
	status := statusOf(appErr.Code)

	fields := append(requestFields(c),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", status),
		zap.Error(err))

	message := appErr.Message
	if status < http.StatusInternalServerError {
		logger.Warn(appErr.Message, fields...)
	} else {
		logger.Error(appErr.Message, append(fields, zap.Strings("stack", stackOf(err)))...)
		if appErr.Code == errors.CodeInternal {
			message = "internal server error"
		}
	}

	write(c, status, Response{Error: string(appErr.Code), Message: message, Details: appErr.Details})
}

// stackOf returns the stack recorded when err was created, or the current
// one when err carries none.
func stackOf(err error) []string {
	var s shared.Stacker
	if stdErrors.As(err, &s) && len(s.Stack()) > 0 {
		return s.Stack()
	}

	pcs := make([]uintptr, 8)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(3, pcs)])
	var out []string
	for {
		f, more := frames.Next()
		if f.Function != "" {
			out = append(out, f.Function)
		}
		if !more || len(out) == 5 {
			return out
		}
	}
}

// Abort stops the handler chain with a failure body.
func Abort(c *gin.Context, status int, code errors.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, &Response{
		Error:     string(code),
		Message:   message,
		Code:      status,
		RequestID: GetRequestID(c),
	})
}
