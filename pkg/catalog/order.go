package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusPlaced is the status of a freshly placed order.
const StatusPlaced = "PLACED"

// orderIDPrefix prefixes every public order identifier.
const orderIDPrefix = "ORD"

var (
	// ErrInvalidOrder is returned when an order request fails validation.
	ErrInvalidOrder = errors.New("invalid order")
)

// Order is a placed order. ID is the storage key, OrderID the public
// identifier handed to customers.
type Order struct {
	ID           int64       `json:"-"`
	OrderID      string      `json:"orderId"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Status       string      `json:"status"`
	OrderDate    Date        `json:"orderDate"`
	Items        []OrderItem `json:"items"`
}

// OrderItem is one product line of an order. ProductName is captured when
// the order is placed so the line survives product renames and deletions.
type OrderItem struct {
	ID          int64  `json:"-"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	TotalPrice  Money  `json:"totalPrice"`
}

// OrderRequest is the client payload for placing an order.
type OrderRequest struct {
	CustomerName string             `json:"customerName"`
	Email        string             `json:"email"`
	Items        []OrderItemRequest `json:"items"`
}

// OrderItemRequest asks for quantity units of a product.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderResponse is the client view of an order.
type OrderResponse struct {
	OrderID      string              `json:"orderId"`
	CustomerName string              `json:"customerName"`
	Email        string              `json:"email"`
	Status       string              `json:"status"`
	OrderDate    Date                `json:"orderDate"`
	Items        []OrderItemResponse `json:"items"`
}

// OrderItemResponse is the client view of an order line.
type OrderItemResponse struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	TotalPrice  Money  `json:"totalPrice"`
}

// NewOrderID returns "ORD" followed by the first eight characters of a
// random UUID, uppercased.
func NewOrderID() string {
	return orderIDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

// NewOrderItem prices quantity units of p.
func NewOrderItem(p *Product, quantity int) OrderItem {
	return OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		TotalPrice:  NewMoney(p.Price.Mul(decimal.NewFromInt(int64(quantity)))),
	}
}

// Total sums the item totals.
func (o *Order) Total() Money {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice.Decimal)
	}
	return NewMoney(total)
}

// Response maps the order to its client view.
func (o *Order) Response() OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}

	return OrderResponse{
		OrderID:      o.OrderID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Status:       o.Status,
		OrderDate:    o.OrderDate,
		Items:        items,
	}
}

// Validate checks the request before any stock is touched.
func (r *OrderRequest) Validate() error {
	var problems []string
	if strings.TrimSpace(r.CustomerName) == "" {
		problems = append(problems, "customerName is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		problems = append(problems, "email is required")
	}
	if len(r.Items) == 0 {
		problems = append(problems, "at least one item is required")
	}
	for i, item := range r.Items {
		if item.ProductID <= 0 {
			problems = append(problems, fmt.Sprintf("items[%d].productId must be positive", i))
		}
		if item.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("items[%d].quantity must be positive", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(problems, "; "))
	}
	return nil
}
