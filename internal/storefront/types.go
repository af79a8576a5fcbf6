package storefront

import "time"

// Role is the access level the backend reports for the current session.
type Role string

const (
	RoleAnonymous Role = "ANONYMOUS"
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
)

// Viewer is the read-only session identity threaded through the checkout
// flow. It is fetched once and never mutated by the client.
type Viewer struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// Anonymous reports whether the viewer has no authenticated session.
func (v Viewer) Anonymous() bool {
	return v.Role == "" || v.Role == RoleAnonymous
}

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"imageUrl"`
}

type CartItem struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	ProductPrice int64  `json:"productPrice"`
	Quantity     int    `json:"quantity"`
}

// Subtotal is the line total at the snapshot's unit price.
func (i CartItem) Subtotal() int64 {
	return i.ProductPrice * int64(i.Quantity)
}

// CartSnapshot is the cart state captured once before order creation.
// It is not re-fetched during the payment flow, so the total the user saw
// is the total the order was created with.
type CartSnapshot struct {
	Items      []CartItem `json:"items"`
	Total      int64      `json:"total"`
	CapturedAt time.Time  `json:"capturedAt"`
}

// OrderStatus is the backend-owned order lifecycle state. The client never
// mutates it directly; it only observes it and asks the backend to act.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusFailed    OrderStatus = "FAILED"
)

// PaymentRedirect is the single-use hosted-payment target returned alongside
// order creation. It must not be reused once a surface has been opened.
type PaymentRedirect struct {
	URL string `json:"url"`
	TID string `json:"tid"`
}

// PendingOrder is the result of a successful order creation: the opaque
// server-assigned order ID plus the provider redirect descriptor.
type PendingOrder struct {
	OrderID  string          `json:"orderId"`
	Total    int64           `json:"total"`
	Redirect PaymentRedirect `json:"redirect"`
}

type OrderItem struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// Order is the order history view returned by the backend.
type Order struct {
	ID         string      `json:"id"`
	Status     OrderStatus `json:"status"`
	TotalPrice int64       `json:"totalPrice"`
	Address    string      `json:"address"`
	OrderDate  string      `json:"orderDate"`
	Items      []OrderItem `json:"orderItems"`
}
