package models

import "time"

// Statuts d'un paiement. Pending ne peut évoluer que vers Complete ou Failed,
// jamais l'inverse.
const (
	PaymentPending  = "Pending"
	PaymentComplete = "Complete"
	PaymentFailed   = "Failed"
)

const OrderProcessing = "Processing"

type PaymentDetails struct {
	PaymentID     int64     `json:"paymentId"`
	CustomerID    int64     `json:"customerId"`
	Amount        float64   `json:"amount"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Order struct {
	OrderID    int64     `json:"orderId"`
	CustomerID int64     `json:"customerId"`
	OrderDate  time.Time `json:"orderDate"`
	Status     string    `json:"status"`
}

type OrderItem struct {
	OrderItemID int64     `json:"orderItemId"`
	OrderID     int64     `json:"orderId"`
	ProductID   int64     `json:"productId"`
	SellerID    int64     `json:"sellerId"`
	CustomerID  int64     `json:"customerId"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderItemDetails : historique de commande côté client (jointure produits)
type OrderItemDetails struct {
	OrderItemID  int64     `json:"orderItemId"`
	OrderID      int64     `json:"orderId"`
	CustomerID   int64     `json:"customerId"`
	SellerID     int64     `json:"sellerId"`
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	Status       string    `json:"status"`
	ProductImage string    `json:"productImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateOrderRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// ProductOrder : ligne de panier envoyée par le front à la vérification.
// La quantité vient du client, jamais le prix.
type ProductOrder struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string         `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string         `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string         `json:"razorpaySignature" binding:"required"`
	Products          []ProductOrder `json:"products" binding:"required,min=1,dive"`
}
