package payment

import (
	"fmt"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway crée les commandes côté prestataire de paiement.
// Abstrait pour pouvoir brancher un faux client dans les tests.
type Gateway interface {
	CreateOrder(amountPaise int64, currency, receipt string) (string, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway construit le client à partir des variables
// d'environnement RAZORPAY_KEY_ID et RAZORPAY_KEY_SECRET.
func NewRazorpayGateway() (Gateway, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID ou RAZORPAY_KEY_SECRET non configuré")
	}

	client := razorpay.NewClient(keyID, keySecret)
	client.SetTimeout(10)

	return &razorpayGateway{client: client}, nil
}

// CreateOrder crée une commande Razorpay et retourne son identifiant
// (le transaction_id côté base).
func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("erreur création commande Razorpay: %v", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("réponse Razorpay sans identifiant de commande")
	}

	return orderID, nil
}
