package auth

import (
	"net/http"

	"workshop/api/response"
	authapp "workshop/application/auth"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	auth *authapp.Service
}

func NewController(auth *authapp.Service) *Controller {
	return &Controller{auth: auth}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", c.Login)
}

// Login POST /api/v1/auth/login
func (c *Controller) Login(ctx *gin.Context) {
	var req authapp.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	identity, err := c.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, identity, "signed in")
}
