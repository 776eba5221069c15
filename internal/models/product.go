package models

import "time"

type Product struct {
	ProductID          int64          `json:"productId"`
	SellerID           int64          `json:"sellerId"`
	ProductName        string         `json:"productName"`
	Category           string         `json:"category"`
	Price              float64        `json:"price"`
	Quantity           int            `json:"quantity"`
	Description        string         `json:"description"`
	Ingredients        string         `json:"ingredients"`
	DosageInstructions string         `json:"dosageInstructions"`
	IsActive           bool           `json:"isActive"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Images             []ProductImage `json:"images"`
}

type ProductImage struct {
	ImageID   int64     `json:"imageId"`
	ProductID int64     `json:"productId"`
	ImageURL  string    `json:"imageUrl"`
	ImageType string    `json:"imageType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductWithStore : fiche produit détaillée (page produit)
type ProductWithStore struct {
	Product
	StoreName string `json:"storeName"`
}

type AddProductRequest struct {
	ProductName        string   `json:"productName" binding:"required"`
	Category           string   `json:"category" binding:"required"`
	Price              float64  `json:"price" binding:"required,gt=0"`
	Quantity           int      `json:"quantity" binding:"required,gte=0"`
	Description        string   `json:"description"`
	Ingredients        string   `json:"ingredients"`
	DosageInstructions string   `json:"dosageInstructions"`
	ImageURLs          []string `json:"imageUrls"`
}

type ProductSearchResult struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
}
