package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"garage_finance/internal/config"
	"garage_finance/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, logger logrus.FieldLogger, funcName string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidArgument):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		config.LogError(logger, "handlers", funcName, c.Request.URL.Path, nil, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
