package seller

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

// GetSellerInfo retourne la fiche boutique publique d'un vendeur
func GetSellerInfo(c *gin.Context) {
	sellerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant vendeur invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var info models.SellerInfo
	err = database.Postgres.QueryRowContext(ctx, `
		SELECT seller_info_id, seller_id, store_name, description, contact_email,
		       contact_phone, business_registration_number, ayush_license, gst_number,
		       rating, total_sales, profile_img, profile_img_type
		FROM seller_info
		WHERE seller_id = $1`,
		sellerID,
	).Scan(&info.SellerInfoID, &info.SellerID, &info.StoreName, &info.Description,
		&info.ContactEmail, &info.ContactPhone, &info.BusinessRegistrationNumber,
		&info.AyushLicense, &info.GstNumber, &info.Rating, &info.TotalSales,
		&info.ProfileImg, &info.ProfileImgType)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fiche boutique introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fiche boutique"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// RequiredInfo indique si le vendeur connecté a déjà rempli sa fiche
// boutique. Tant que non, il ne peut pas publier de produits.
func RequiredInfo(c *gin.Context) {
	sellerID := c.GetString("sellerid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var infoID int64
	err := database.Postgres.QueryRowContext(ctx,
		`SELECT seller_info_id FROM seller_info WHERE seller_id = $1`, sellerID,
	).Scan(&infoID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{"infoRequired": true})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fiche boutique"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"infoRequired": false})
}

// AddSellerInfo crée ou met à jour la fiche boutique du vendeur connecté
func AddSellerInfo(c *gin.Context) {
	sellerID := c.GetString("sellerid")

	var input models.SellerInfo
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var infoID int64
	err := database.Postgres.QueryRowContext(ctx, `
		INSERT INTO seller_info
			(seller_id, store_name, description, contact_email, contact_phone,
			 business_registration_number, ayush_license, gst_number, profile_img, profile_img_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (seller_id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			description = EXCLUDED.description,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			business_registration_number = EXCLUDED.business_registration_number,
			ayush_license = EXCLUDED.ayush_license,
			gst_number = EXCLUDED.gst_number,
			profile_img = EXCLUDED.profile_img,
			profile_img_type = EXCLUDED.profile_img_type
		RETURNING seller_info_id`,
		sellerID, input.StoreName, input.Description, input.ContactEmail,
		input.ContactPhone, input.BusinessRegistrationNumber, input.AyushLicense,
		input.GstNumber, input.ProfileImg, input.ProfileImgType,
	).Scan(&infoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement fiche boutique"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sellerInfoId": infoID, "message": "Fiche boutique enregistrée"})
}

// GetSellerProducts liste les produits du vendeur connecté
func GetSellerProducts(c *gin.Context) {
	sellerID := c.GetString("sellerid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT product_id, seller_id, product_name, category, price, quantity,
		       description, ingredients, dosage_instructions, is_active, created_at, updated_at
		FROM products
		WHERE seller_id = $1
		ORDER BY created_at DESC`,
		sellerID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID, &p.SellerID, &p.ProductName, &p.Category,
			&p.Price, &p.Quantity, &p.Description, &p.Ingredients,
			&p.DosageInstructions, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
			return
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, products)
}
