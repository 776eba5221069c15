package customer

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket pousse le panier à jour à chaque modification,
// notifiée par Redis pub/sub.
func CartWebSocket(c *gin.Context) {
	customerID := c.GetString("customerid")
	if customerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, "cart:"+customerID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" {
				continue
			}

			items, total, err := loadCartDetails(ctx, customerID)
			if err != nil {
				log.Printf("❌ Erreur lecture panier WebSocket: %v", err)
				continue
			}

			response := map[string]interface{}{
				"type":  "cart_updated",
				"items": items,
				"total": total,
				"count": len(items),
			}
			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func loadCartDetails(ctx context.Context, customerID string) ([]models.CartItemWithDetails, float64, error) {
	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT ct.cart_id, ct.product_id, ct.customer_id, ct.seller_id, ct.quantity,
		       p.product_name, p.price
		FROM cart ct
		JOIN products p ON p.product_id = ct.product_id
		WHERE ct.customer_id = $1
		ORDER BY ct.cart_id`,
		customerID,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []models.CartItemWithDetails{}
	var total float64
	for rows.Next() {
		var item models.CartItemWithDetails
		if err := rows.Scan(&item.CartID, &item.ProductID, &item.CustomerID,
			&item.SellerID, &item.Quantity, &item.ProductName, &item.Price); err != nil {
			return nil, 0, err
		}
		total += item.Price * float64(item.Quantity)
		items = append(items, item)
	}
	return items, total, rows.Err()
}
