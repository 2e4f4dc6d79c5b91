package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func write(c *gin.Context, status int, body Response) {
	body.Code = status
	body.RequestID = GetRequestID(c)
	c.JSON(status, &body)
}

func HandleSuccess(c *gin.Context, data any, message string) {
	write(c, http.StatusOK, Response{Success: true, Data: data, Message: message})
}

func HandleCreated(c *gin.Context, data any, message string) {
	write(c, http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

func HandleNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
