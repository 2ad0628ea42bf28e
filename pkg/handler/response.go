package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Error struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.Error(message)
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

// okResponse wraps every successful payload under a single key so clients
// read one field per endpoint.
func okResponse(c *gin.Context, key string, payload interface{}) {
	c.JSON(http.StatusOK, gin.H{key: payload})
}
