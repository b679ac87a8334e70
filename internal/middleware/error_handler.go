package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/service"
	"github.com/labstack/echo/v4"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:            http.StatusNotFound,
	service.KindConflict:            http.StatusConflict,
	service.KindPreconditionFailed:  http.StatusPreconditionFailed,
	service.KindUpstreamUnavailable: http.StatusServiceUnavailable,
}

// ErrorHandler renders {"message": ...}. Service errors are mapped by kind;
// anything unclassified is logged and reported as a 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	var se *service.Error
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	case errors.As(err, &se):
		if status, ok := kindStatus[se.Kind]; ok {
			code = status
		}
		msg = se.Message
	}

	if code >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
