package seller

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/cache"
	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
	services "prakritikart_back_end/internal/service"
	"prakritikart_back_end/internal/utils"
)

// AddProduct publie un produit. Refusé tant que la fiche boutique
// n'existe pas. Le produit est ensuite indexé dans Elasticsearch.
func AddProduct(c *gin.Context) {
	sellerID, err := strconv.ParseInt(c.GetString("sellerid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sellerid invalide"})
		return
	}

	var input models.AddProductRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var infoID int64
	err = database.Postgres.QueryRowContext(ctx,
		`SELECT seller_info_id FROM seller_info WHERE seller_id = $1`, sellerID,
	).Scan(&infoID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Fiche boutique requise avant de publier un produit"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fiche boutique"})
		return
	}

	var product models.Product
	err = database.Postgres.QueryRowContext(ctx, `
		INSERT INTO products
			(seller_id, product_name, category, price, quantity, description, ingredients, dosage_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING product_id, created_at, updated_at`,
		sellerID, input.ProductName, input.Category, input.Price, input.Quantity,
		input.Description, input.Ingredients, input.DosageInstructions,
	).Scan(&product.ProductID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	product.SellerID = sellerID
	product.ProductName = input.ProductName
	product.Category = input.Category
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Description = input.Description
	product.Ingredients = input.Ingredients
	product.DosageInstructions = input.DosageInstructions
	product.IsActive = true

	// Images déjà uploadées via /seller/upload/image
	for _, imgURL := range input.ImageURLs {
		database.Postgres.ExecContext(ctx,
			`INSERT INTO product_images (product_id, image_url) VALUES ($1, $2)`,
			product.ProductID, imgURL,
		)
	}

	go services.IndexProduct(product)
	cache.InvalidateHomeProducts()

	utils.LogAction(c, utils.ACTION_PRODUCT_CREATE, utils.RESOURCE_PRODUCT,
		strconv.FormatInt(product.ProductID, 10), gin.H{"productName": product.ProductName, "price": product.Price})

	c.JSON(http.StatusCreated, gin.H{"productId": product.ProductID, "message": "Produit publié"})
}

// UpdateProduct modifie un produit du vendeur connecté et réindexe
func UpdateProduct(c *gin.Context) {
	sellerID := c.GetString("sellerid")
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	var input models.AddProductRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var product models.Product
	err = database.Postgres.QueryRowContext(ctx, `
		UPDATE products
		SET product_name = $1, category = $2, price = $3, quantity = $4,
		    description = $5, ingredients = $6, dosage_instructions = $7, updated_at = NOW()
		WHERE product_id = $8 AND seller_id = $9
		RETURNING product_id, seller_id, product_name, category, price, quantity,
		          description, ingredients, dosage_instructions, is_active, created_at, updated_at`,
		input.ProductName, input.Category, input.Price, input.Quantity,
		input.Description, input.Ingredients, input.DosageInstructions,
		productID, sellerID,
	).Scan(&product.ProductID, &product.SellerID, &product.ProductName, &product.Category,
		&product.Price, &product.Quantity, &product.Description, &product.Ingredients,
		&product.DosageInstructions, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go services.IndexProduct(product)
	cache.InvalidateHomeProducts()
	cache.InvalidateProduct(productID)

	utils.LogAction(c, utils.ACTION_PRODUCT_UPDATE, utils.RESOURCE_PRODUCT,
		strconv.FormatInt(productID, 10), gin.H{"price": product.Price})

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour"})
}
