package client

import (
	"net/http"

	"workshop/api/response"
	clientapp "workshop/application/client"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	clients *clientapp.Service
}

func NewController(clients *clientapp.Service) *Controller {
	return &Controller{clients: clients}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/clients")
	{
		g.POST("", c.Register)
		g.GET("", c.List)
		g.GET("/:id", c.Get)
		g.PUT("/:id", c.Update)
		g.DELETE("/:id", c.Delete)
	}
}

func (c *Controller) Register(ctx *gin.Context) {
	var req clientapp.ClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cl, err := c.clients.Register(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, cl, "client registered")
}

func (c *Controller) Get(ctx *gin.Context) {
	cl, err := c.clients.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cl, "client retrieved")
}

func (c *Controller) List(ctx *gin.Context) {
	all, err := c.clients.List(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, all, "clients retrieved")
}

// Update PUT /api/v1/clients/:id
// An empty password keeps the current one.
func (c *Controller) Update(ctx *gin.Context) {
	var req clientapp.ClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cl, err := c.clients.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cl, "client updated")
}

func (c *Controller) Delete(ctx *gin.Context) {
	if err := c.clients.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}
