package customer

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
	services "prakritikart_back_end/internal/service"
	"prakritikart_back_end/internal/utils"
)

// Payments est injecté au démarrage (voir routes.SetupRouter)
var Payments *services.PaymentService

// CreateOrder crée la commande côté Razorpay et enregistre un paiement
// Pending. Le front ouvre ensuite le widget Razorpay avec l'orderId.
func CreateOrder(c *gin.Context) {
	customerID, ok := contextCustomerID(c)
	if !ok {
		return
	}

	var input models.CreateOrderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	transactionID, paymentID, err := Payments.CreateRazorpayOrder(ctx, customerID, input.Amount)
	if err != nil {
		log.Printf("❌ Erreur création commande Razorpay: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur initialisation du paiement"})
		return
	}

	utils.LogAction(c, utils.ACTION_PAYMENT_INIT, utils.RESOURCE_PAYMENT, transactionID, gin.H{"amount": input.Amount})

	c.JSON(http.StatusOK, gin.H{
		"orderId":   transactionID,
		"paymentId": paymentID,
		"amount":    input.Amount,
		"currency":  "INR",
		"keyId":     os.Getenv("RAZORPAY_KEY_ID"),
	})
}

// VerifyPayment vérifie la signature Razorpay puis matérialise la
// commande. Les effets de bord (e-mail, facture, panier, audit) partent
// en tâche de fond après le commit.
func VerifyPayment(c *gin.Context) {
	customerID, ok := contextCustomerID(c)
	if !ok {
		return
	}

	var input models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	verified, orderID, err := Payments.VerifyPayment(ctx, customerID, input)
	if errors.Is(err, services.ErrNoMatchingProducts) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Aucun produit du panier n'existe dans le catalogue",
		})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur vérification paiement %s: %v", input.RazorpayOrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification du paiement"})
		return
	}

	if !verified {
		utils.LogFailedAction(c, utils.ACTION_PAYMENT_FAILED, utils.RESOURCE_PAYMENT,
			input.RazorpayOrderID, "signature invalide")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Signature invalide, paiement refusé",
		})
		return
	}

	// orderID == 0 : rejeu d'une vérification déjà finalisée
	if orderID != 0 {
		utils.LogAction(c, utils.ACTION_ORDER_CREATE, utils.RESOURCE_ORDER,
			strconv.FormatInt(orderID, 10), gin.H{"transactionId": input.RazorpayOrderID})

		go clearCart(customerID)
		go publishOrderUpdate(customerID, orderID)
		go sendOrderConfirmation(c.GetString("email"), orderID, input.RazorpayOrderID)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orderId": orderID})
}

// GetOrderItems retourne l'historique de commandes du client connecté
func GetOrderItems(c *gin.Context) {
	customerID, ok := contextCustomerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	items, err := Payments.GetOrderItems(ctx, customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}
	if items == nil {
		items = []models.OrderItemDetails{}
	}

	c.JSON(http.StatusOK, items)
}

// OrderWebSocket notifie le client quand une de ses commandes change
func OrderWebSocket(c *gin.Context) {
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

	pubsub := database.Redis.Subscribe(ctx, "orders:"+customerID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Suivi de commandes activé",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(map[string]interface{}{
				"type":    "order_updated",
				"orderId": msg.Payload,
			}); err != nil {
				return
			}
		case <-time.After(30 * time.Second):
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// --- Effets de bord post-commit ---

func publishOrderUpdate(customerID, orderID int64) {
	ctx := context.Background()
	channel := "orders:" + strconv.FormatInt(customerID, 10)
	if err := database.Redis.Publish(ctx, channel, strconv.FormatInt(orderID, 10)).Err(); err != nil {
		log.Printf("⚠️ Erreur publication commande: %v", err)
	}
}

func sendOrderConfirmation(email string, orderID int64, transactionID string) {
	if email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, total, err := Payments.GetOrderItemsForOrder(ctx, orderID)
	if err != nil {
		log.Printf("⚠️ Erreur lecture commande %d pour e-mail: %v", orderID, err)
		return
	}

	var pdf []byte
	if pdf, err = utils.GenerateInvoicePDF(orderID, transactionID, items, total); err != nil {
		log.Printf("⚠️ Erreur génération facture PDF: %v", err)
		pdf = nil
	}

	html := utils.GenerateOrderConfirmationHTML(orderID, items, total)
	if err := utils.SendConfirmationEmail(email, "Confirmation de votre commande PrakritiKart", html, pdf); err != nil {
		log.Printf("⚠️ Erreur envoi e-mail de confirmation: %v", err)
	}
}

func contextCustomerID(c *gin.Context) (int64, bool) {
	customerID, err := strconv.ParseInt(c.GetString("customerid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "customerid invalide"})
		return 0, false
	}
	return customerID, true
}
