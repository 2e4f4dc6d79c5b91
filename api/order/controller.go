/*
Package order exposes the order workflow over HTTP.

Binding failures are answered with 400 directly; everything the workflow
returns goes through response.HandleAppError, which maps error codes to
statuses (insufficient stock is 409 with the shortage in details).
*/
package order

import (
	"net/http"
	"time"

	"workshop/api/response"
	orderapp "workshop/application/order"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	orders orderapp.UseCase
}

func NewController(orders orderapp.UseCase) *Controller {
	return &Controller{orders: orders}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/orders")
	{
		g.POST("", c.CreateOrder)
		g.GET("", c.ListOrders)
		g.GET("/stats", c.CountByStatus)
		g.GET("/:id", c.GetOrder)
		g.PATCH("/:id", c.UpdateOrder)
		g.DELETE("/:id", c.DeleteOrder)
		g.POST("/:id/lines", c.AddMaterial)
	}
	lines := router.Group("/order-lines")
	{
		lines.PATCH("/:lineId", c.UpdateMaterialAmount)
		lines.DELETE("/:lineId", c.RemoveMaterial)
	}
	router.GET("/clients/:id/orders", c.ClientOrders)
	router.GET("/workers/:id/orders", c.WorkerOrders)
}

// CreateOrder POST /api/v1/orders
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	o, err := c.orders.CreateOrder(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, o, "order created")
}

// GetOrder GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	o, err := c.orders.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order retrieved")
}

type listQuery struct {
	ClientID string    `form:"client_id"`
	WorkerID string    `form:"worker_id"`
	Status   string    `form:"status"`
	From     time.Time `form:"from" time_format:"2006-01-02"`
	To       time.Time `form:"to" time_format:"2006-01-02"`
}

// ListOrders GET /api/v1/orders?client_id=&worker_id=&status=&from=&to=
// Dates are YYYY-MM-DD; "to" includes the whole day.
func (c *Controller) ListOrders(ctx *gin.Context) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}
	to := q.To
	if !to.IsZero() {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	c.list(ctx, orderapp.ListOrdersQuery{
		ClientID: q.ClientID,
		WorkerID: q.WorkerID,
		Status:   q.Status,
		From:     q.From,
		To:       to,
	})
}

// ClientOrders GET /api/v1/clients/:id/orders
func (c *Controller) ClientOrders(ctx *gin.Context) {
	orders, err := c.orders.ClientOrders(ctx.Request.Context(), ctx.Param("id"))
	writeList(ctx, orders, err)
}

// WorkerOrders GET /api/v1/workers/:id/orders
func (c *Controller) WorkerOrders(ctx *gin.Context) {
	orders, err := c.orders.WorkerOrders(ctx.Request.Context(), ctx.Param("id"))
	writeList(ctx, orders, err)
}

func (c *Controller) list(ctx *gin.Context, q orderapp.ListOrdersQuery) {
	orders, err := c.orders.ListOrders(ctx.Request.Context(), q)
	writeList(ctx, orders, err)
}

func writeList(ctx *gin.Context, orders []*orderapp.OrderResponse, err error) {
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, orders, "orders retrieved")
}

// CountByStatus GET /api/v1/orders/stats
func (c *Controller) CountByStatus(ctx *gin.Context) {
	counts, err := c.orders.CountByStatus(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, counts, "order counts retrieved")
}

// UpdateOrder PATCH /api/v1/orders/:id
func (c *Controller) UpdateOrder(ctx *gin.Context) {
	var req orderapp.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	o, err := c.orders.UpdateOrder(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order updated")
}

// DeleteOrder DELETE /api/v1/orders/:id
func (c *Controller) DeleteOrder(ctx *gin.Context) {
	if err := c.orders.DeleteOrder(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

// AddMaterial POST /api/v1/orders/:id/lines
func (c *Controller) AddMaterial(ctx *gin.Context) {
	var req orderapp.LineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	line, err := c.orders.AddMaterialToOrder(ctx.Request.Context(), ctx.Param("id"), req.MaterialID, req.Amount)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, line, "material added to order")
}

type amountRequest struct {
	Amount int `json:"amount"`
}

// UpdateMaterialAmount PATCH /api/v1/order-lines/:lineId
func (c *Controller) UpdateMaterialAmount(ctx *gin.Context) {
	var req amountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	line, err := c.orders.UpdateMaterialAmount(ctx.Request.Context(), ctx.Param("lineId"), req.Amount)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, line, "line amount updated")
}

// RemoveMaterial DELETE /api/v1/order-lines/:lineId
func (c *Controller) RemoveMaterial(ctx *gin.Context) {
	if err := c.orders.RemoveMaterialFromOrder(ctx.Request.Context(), ctx.Param("lineId")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}
