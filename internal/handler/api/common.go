package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"medibill/internal/models"
	"medibill/internal/service"
)

// Response helpers for the uniform {error, message, data} envelope.
func okResponse(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Error:   0,
		Message: message,
		Data:    data,
	})
}

func createdResponse(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, models.APIResponse{
		Error:   0,
		Message: message,
		Data:    data,
	})
}

func failResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, models.APIResponse{
		Error:   -1,
		Message: message,
		Data:    nil,
	})
}

// errorResponse maps the service error taxonomy onto HTTP statuses:
// missing records 404, caller mistakes 400, provider and concurrency
// failures 5xx.
func errorResponse(c echo.Context, err error) error {
	var gatewayErr *service.GatewayError

	switch {
	case errors.Is(err, service.ErrBillNotFound),
		errors.Is(err, service.ErrTransactionNotFound):
		return failResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSignatureInvalid):
		return failResponse(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &gatewayErr):
		return failResponse(c, http.StatusBadGateway, gatewayErr.Error())
	case errors.Is(err, service.ErrConflict):
		return failResponse(c, http.StatusInternalServerError, err.Error())
	default:
		return failResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

var errInvalidOrderID = errors.New("invalid orderId")

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// queryInt parses an integer query parameter with a default.
func queryInt(c echo.Context, name string, defaultVal int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return v
}
