package worker

import (
	"net/http"

	"workshop/api/response"
	workerapp "workshop/application/worker"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	workers *workerapp.Service
}

func NewController(workers *workerapp.Service) *Controller {
	return &Controller{workers: workers}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/workers")
	{
		g.POST("", c.Hire)
		g.GET("", c.List)
		g.GET("/:id", c.Get)
		g.PUT("/:id", c.Update)
		g.DELETE("/:id", c.Delete)
	}
}

func (c *Controller) Hire(ctx *gin.Context) {
	var req workerapp.WorkerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	w, err := c.workers.Hire(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, w, "worker hired")
}

func (c *Controller) Get(ctx *gin.Context) {
	w, err := c.workers.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, w, "worker retrieved")
}

func (c *Controller) List(ctx *gin.Context) {
	all, err := c.workers.List(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, all, "workers retrieved")
}

// Update PUT /api/v1/workers/:id
// An empty password keeps the current one.
func (c *Controller) Update(ctx *gin.Context) {
	var req workerapp.WorkerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	w, err := c.workers.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, w, "worker updated")
}

func (c *Controller) Delete(ctx *gin.Context) {
	if err := c.workers.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}
