package customer

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

func AddToCart(c *gin.Context) {
	customerID := c.GetString("customerid")

	var input models.AddToCartRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Ajout répété du même produit = cumul des quantités
	_, err := database.Postgres.ExecContext(ctx, `
		INSERT INTO cart (customer_id, product_id, seller_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity`,
		customerID, input.ProductID, input.SellerID, input.Quantity,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}

	publishCartUpdate(customerID)
	c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté au panier"})
}

func GetCart(c *gin.Context) {
	customerID := c.GetString("customerid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT cart_id, customer_id, product_id, seller_id, quantity
		FROM cart
		WHERE customer_id = $1
		ORDER BY cart_id`,
		customerID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.CartID, &item.CustomerID, &item.ProductID,
			&item.SellerID, &item.Quantity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, items)
}

// GetCartDetails retourne le panier enrichi (noms, prix catalogue,
// première image) pour la page panier.
func GetCartDetails(c *gin.Context) {
	customerID := c.GetString("customerid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT ct.cart_id, ct.product_id, ct.customer_id, ct.seller_id, ct.quantity,
		       p.product_name, p.price, COALESCE(pi.image_url, '')
		FROM cart ct
		JOIN products p ON p.product_id = ct.product_id
		LEFT JOIN LATERAL (
			SELECT image_url FROM product_images
			WHERE product_id = ct.product_id
			ORDER BY image_id
			LIMIT 1
		) pi ON TRUE
		WHERE ct.customer_id = $1
		ORDER BY ct.cart_id`,
		customerID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	defer rows.Close()

	items := []models.CartItemWithDetails{}
	var total float64
	for rows.Next() {
		var item models.CartItemWithDetails
		if err := rows.Scan(&item.CartID, &item.ProductID, &item.CustomerID,
			&item.SellerID, &item.Quantity, &item.ProductName, &item.Price,
			&item.ImageURL); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
			return
		}
		total += item.Price * float64(item.Quantity)
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "count": len(items)})
}

func RemoveFromCart(c *gin.Context) {
	customerID := c.GetString("customerid")
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := database.Postgres.ExecContext(ctx,
		`DELETE FROM cart WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression panier"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
		return
	}

	publishCartUpdate(customerID)
	c.JSON(http.StatusOK, gin.H{"message": "Produit retiré du panier"})
}

// clearCart vide le panier après une commande payée
func clearCart(customerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := database.Postgres.ExecContext(ctx,
		`DELETE FROM cart WHERE customer_id = $1`, customerID,
	); err != nil {
		log.Printf("⚠️ Erreur vidage panier client %d: %v", customerID, err)
		return
	}

	publishCartUpdate(strconv.FormatInt(customerID, 10))
}

// publishCartUpdate notifie les WebSockets du client via Redis
func publishCartUpdate(customerID string) {
	ctx := context.Background()
	if err := database.Redis.Publish(ctx, "cart:"+customerID, "updated").Err(); err != nil {
		log.Printf("⚠️ Erreur publication panier: %v", err)
	}
}
