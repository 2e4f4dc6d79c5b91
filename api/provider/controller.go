package provider

import (
	"net/http"

	"workshop/api/response"
	providerapp "workshop/application/provider"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	providers *providerapp.Service
}

func NewController(providers *providerapp.Service) *Controller {
	return &Controller{providers: providers}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/providers")
	{
		g.POST("", c.Create)
		g.GET("", c.List)
		g.GET("/:id", c.Get)
		g.PUT("/:id", c.Update)
		g.DELETE("/:id", c.Delete)
		g.GET("/:id/materials", c.ListMaterials)
		g.PUT("/:id/materials/:materialId", c.LinkMaterial)
		g.DELETE("/:id/materials/:materialId", c.UnlinkMaterial)
	}
	router.GET("/materials/:id/providers", c.ListProviders)
}

func (c *Controller) Create(ctx *gin.Context) {
	var req providerapp.ProviderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	p, err := c.providers.Create(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, p, "provider created")
}

func (c *Controller) Get(ctx *gin.Context) {
	p, err := c.providers.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, p, "provider retrieved")
}

func (c *Controller) List(ctx *gin.Context) {
	all, err := c.providers.List(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, all, "providers retrieved")
}

func (c *Controller) Update(ctx *gin.Context) {
	var req providerapp.ProviderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	p, err := c.providers.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, p, "provider updated")
}

func (c *Controller) Delete(ctx *gin.Context) {
	if err := c.providers.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

// LinkMaterial PUT /api/v1/providers/:id/materials/:materialId
// Repeating the call returns the existing link.
func (c *Controller) LinkMaterial(ctx *gin.Context) {
	link, err := c.providers.LinkMaterial(ctx.Request.Context(), ctx.Param("id"), ctx.Param("materialId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, link, "material linked")
}

func (c *Controller) UnlinkMaterial(ctx *gin.Context) {
	if err := c.providers.UnlinkMaterial(ctx.Request.Context(), ctx.Param("id"), ctx.Param("materialId")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

func (c *Controller) ListMaterials(ctx *gin.Context) {
	links, err := c.providers.ListMaterials(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, links, "provider materials retrieved")
}

// ListProviders GET /api/v1/materials/:id/providers
func (c *Controller) ListProviders(ctx *gin.Context) {
	links, err := c.providers.ListProviders(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, links, "material providers retrieved")
}
