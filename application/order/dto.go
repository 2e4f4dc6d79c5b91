package order

import "time"

// CreateOrderRequest is the input of CreateOrder. Lines may be empty.
type CreateOrderRequest struct {
	ClientID   string        `json:"client_id" binding:"required"`
	WorkerID   string        `json:"worker_id"`
	ProdPeriod *int          `json:"prod_period"`
	Date       *time.Time    `json:"date"`
	Lines      []LineRequest `json:"lines"`
}

type LineRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
	Amount     int    `json:"amount"`
}

// UpdateOrderRequest is a partial update. ClearWorker wins over WorkerID.
type UpdateOrderRequest struct {
	Status      *string `json:"status"`
	WorkerID    *string `json:"worker_id"`
	ClearWorker bool    `json:"clear_worker"`
	ProdPeriod  *int    `json:"prod_period"`
	ClientID    *string `json:"client_id"`
}

// ListOrdersQuery filters the order listing. Empty fields match everything.
type ListOrdersQuery struct {
	ClientID string
	WorkerID string
	Status   string
	From     time.Time
	To       time.Time
}

// OrderResponse is a materialized order: lines carry material details and
// subtotals, the header carries display names and the total cost.
type OrderResponse struct {
	ID         string         `json:"id"`
	ClientID   string         `json:"client_id"`
	ClientName string         `json:"client_name,omitempty"`
	WorkerID   string         `json:"worker_id,omitempty"`
	WorkerName string         `json:"worker_name,omitempty"`
	Date       time.Time      `json:"date"`
	ProdPeriod int            `json:"prod_period,omitempty"`
	Status     string         `json:"status"`
	Lines      []LineResponse `json:"lines"`
	Total      MoneyResponse  `json:"total"`
	Version    int            `json:"version"`
}

type LineResponse struct {
	ID           string        `json:"id"`
	OrderID      string        `json:"order_id"`
	MaterialID   string        `json:"material_id"`
	MaterialType string        `json:"material_type"`
	Amount       int           `json:"amount"`
	UnitPrice    MoneyResponse `json:"unit_price"`
	Subtotal     MoneyResponse `json:"subtotal"`
}

type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
