package models

import "time"

type Seller struct {
	SellerID      int64     `json:"sellerId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	PhoneNumber   string    `json:"phoneNumber,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	UserType      string    `json:"userType"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SellerInfo : fiche boutique obligatoire avant de pouvoir vendre
type SellerInfo struct {
	SellerInfoID               int64   `json:"sellerInfoId"`
	SellerID                   int64   `json:"sellerId"`
	StoreName                  string  `json:"storeName" binding:"required"`
	Description                string  `json:"description"`
	ContactEmail               string  `json:"contactEmail"`
	ContactPhone               string  `json:"contactPhone"`
	BusinessRegistrationNumber string  `json:"businessRegistrationNumber"`
	AyushLicense               string  `json:"ayushLicense"`
	GstNumber                  string  `json:"gstNumber"`
	Rating                     float64 `json:"rating"`
	TotalSales                 int64   `json:"totalSales"`
	ProfileImg                 string  `json:"profileImg,omitempty"`
	ProfileImgType             string  `json:"profileImgType,omitempty"`
}
