package models

type CartItem struct {
	CartID     int64 `json:"cartId"`
	CustomerID int64 `json:"customerId"`
	ProductID  int64 `json:"productId"`
	SellerID   int64 `json:"sellerId"`
	Quantity   int   `json:"quantity"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	SellerID  int64 `json:"sellerId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CartItemWithDetails : ligne panier enrichie pour l'affichage
type CartItemWithDetails struct {
	CartID      int64   `json:"cartId"`
	ProductID   int64   `json:"productId"`
	CustomerID  int64   `json:"customerId"`
	SellerID    int64   `json:"sellerId"`
	Quantity    int     `json:"quantity"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}
