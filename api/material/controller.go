package material

import (
	"net/http"

	"workshop/api/response"
	materialapp "workshop/application/material"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	materials *materialapp.Service
}

func NewController(materials *materialapp.Service) *Controller {
	return &Controller{materials: materials}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/materials")
	{
		g.POST("", c.Create)
		g.GET("", c.List)
		g.GET("/:id", c.Get)
		g.PATCH("/:id", c.Update)
		g.DELETE("/:id", c.Delete)
		g.POST("/:id/balance", c.AdjustBalance)
	}
}

func (c *Controller) Create(ctx *gin.Context) {
	var req materialapp.CreateMaterialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	m, err := c.materials.Create(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, m, "material created")
}

func (c *Controller) Get(ctx *gin.Context) {
	m, err := c.materials.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, m, "material retrieved")
}

func (c *Controller) List(ctx *gin.Context) {
	all, err := c.materials.List(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, all, "materials retrieved")
}

func (c *Controller) Update(ctx *gin.Context) {
	var req materialapp.UpdateMaterialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	m, err := c.materials.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, m, "material updated")
}

func (c *Controller) Delete(ctx *gin.Context) {
	if err := c.materials.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

type balanceRequest struct {
	Delta int `json:"delta"`
}

// AdjustBalance POST /api/v1/materials/:id/balance
// A positive delta restocks, a negative one writes off.
func (c *Controller) AdjustBalance(ctx *gin.Context) {
	var req balanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	m, err := c.materials.AdjustBalance(ctx.Request.Context(), ctx.Param("id"), req.Delta)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, m, "balance adjusted")
}
