package customer

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/cache"
	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
	services "prakritikart_back_end/internal/service"
)

// GetHomeProducts retourne les produits de la page d'accueil,
// servis depuis Redis quand le cache est chaud.
func GetHomeProducts(c *gin.Context) {
	if products, _ := cache.GetHomeProducts(); products != nil {
		c.JSON(http.StatusOK, gin.H{"products": products, "cached": true})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT product_id, seller_id, product_name, category, price, quantity,
		       description, ingredients, dosage_instructions, is_active, created_at, updated_at
		FROM products
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 50`,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	attachImages(ctx, products)

	if err := cache.SetHomeProducts(products); err != nil {
		log.Printf("⚠️ Cache produits non rempli: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "cached": false})
}

// GetProduct retourne la fiche détaillée d'un produit avec le nom de
// la boutique et ses images.
func GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	if cached, _ := cache.GetProduct(productID); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var p models.ProductWithStore
	err = database.Postgres.QueryRowContext(ctx, `
		SELECT p.product_id, p.seller_id, p.product_name, p.category, p.price,
		       p.quantity, p.description, p.ingredients, p.dosage_instructions,
		       p.is_active, p.created_at, p.updated_at, COALESCE(si.store_name, '')
		FROM products p
		LEFT JOIN seller_info si ON si.seller_id = p.seller_id
		WHERE p.product_id = $1`,
		productID,
	).Scan(&p.ProductID, &p.SellerID, &p.ProductName, &p.Category, &p.Price,
		&p.Quantity, &p.Description, &p.Ingredients, &p.DosageInstructions,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.StoreName)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	single := []models.Product{p.Product}
	attachImages(ctx, single)
	p.Images = single[0].Images

	if err := cache.SetProduct(p); err != nil {
		log.Printf("⚠️ Cache produit non rempli: %v", err)
	}

	c.JSON(http.StatusOK, p)
}

// SearchProductsHandler interroge Elasticsearch, avec repli SQL ILIKE
// quand l'index est indisponible.
func SearchProductsHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}
	category := c.Query("category")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	products, total, err := services.SearchProducts(query, category, page, pageSize)
	if err != nil {
		log.Printf("⚠️ Recherche Elastic indisponible, repli SQL: %v", err)
		products, total, err = searchProductsSQL(query, category, page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
			return
		}
	}

	c.JSON(http.StatusOK, models.ProductSearchResult{
		Products:   products,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	})
}

func searchProductsSQL(query, category string, page, pageSize int) ([]models.Product, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pattern := "%" + query + "%"
	args := []interface{}{pattern}
	filter := ""
	if category != "" {
		filter = " AND category = $2"
		args = append(args, category)
	}

	var total int
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products
		WHERE is_active = TRUE
		  AND (product_name ILIKE $1 OR description ILIKE $1 OR ingredients ILIKE $1)`+filter,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	limitPos := len(args) - 1
	offsetPos := len(args)

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT product_id, seller_id, product_name, category, price, quantity,
		       description, ingredients, dosage_instructions, is_active, created_at, updated_at
		FROM products
		WHERE is_active = TRUE
		  AND (product_name ILIKE $1 OR description ILIKE $1 OR ingredients ILIKE $1)`+filter+`
		ORDER BY product_name
		LIMIT $`+strconv.Itoa(limitPos)+` OFFSET $`+strconv.Itoa(offsetPos),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	return products, total, err
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID, &p.SellerID, &p.ProductName, &p.Category,
			&p.Price, &p.Quantity, &p.Description, &p.Ingredients,
			&p.DosageInstructions, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// attachImages charge les images des produits en une seule requête
func attachImages(ctx context.Context, products []models.Product) {
	if len(products) == 0 {
		return
	}

	placeholders := make([]string, len(products))
	args := make([]interface{}, len(products))
	index := make(map[int64]int, len(products))
	for i := range products {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = products[i].ProductID
		index[products[i].ProductID] = i
	}

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT image_id, product_id, image_url, image_type, created_at
		FROM product_images
		WHERE product_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY image_id`,
		args...,
	)
	if err != nil {
		log.Printf("⚠️ Erreur chargement images: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ImageID, &img.ProductID, &img.ImageURL, &img.ImageType, &img.CreatedAt); err != nil {
			return
		}
		if i, ok := index[img.ProductID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
}
