package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"prakritikart_back_end/internal/models"
	"prakritikart_back_end/internal/payment"
	"prakritikart_back_end/internal/utils"
)

// ErrNoMatchingProducts : aucun identifiant produit du panier n'existe
// en base, la commande serait vide.
var ErrNoMatchingProducts = errors.New("aucun produit du panier n'existe dans le catalogue")

// PaymentService porte le workflow paiement : initialisation côté
// Razorpay puis vérification de signature et matérialisation de la
// commande dans une transaction unique.
type PaymentService struct {
	DB              *sql.DB
	Gateway         payment.Gateway
	SignatureSecret string
}

func NewPaymentService(db *sql.DB, gateway payment.Gateway, secret string) *PaymentService {
	return &PaymentService{DB: db, Gateway: gateway, SignatureSecret: secret}
}

// CreateRazorpayOrder crée la commande côté Razorpay puis enregistre un
// paiement Pending. Le montant arrive en roupies, Razorpay veut des paise.
// Retourne l'identifiant Razorpay et l'identifiant interne du paiement.
func (s *PaymentService) CreateRazorpayOrder(ctx context.Context, customerID int64, amount float64) (string, int64, error) {
	amountPaise := int64(math.Round(amount * 100))
	receipt := uuid.NewString()

	transactionID, err := s.Gateway.CreateOrder(amountPaise, "INR", receipt)
	if err != nil {
		return "", 0, err
	}

	var paymentID int64
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO payment_details (customer_id, amount, payment_status, payment_method, transaction_id)
		VALUES ($1, $2, 'Pending', 'Razorpay', $3)
		RETURNING payment_id`,
		customerID, amount, transactionID,
	).Scan(&paymentID)
	if err != nil {
		return "", 0, fmt.Errorf("erreur enregistrement paiement: %w", err)
	}

	return transactionID, paymentID, nil
}

// VerifyPayment vérifie la signature Razorpay puis finalise la commande.
//
// Signature invalide : le paiement passe à Failed (hors transaction, un
// seul UPDATE) et on retourne (false, 0, nil). Signature valide : dans
// une même transaction le paiement passe de Pending à Complete, la
// commande et ses lignes sont créées avec les prix du catalogue. Un
// paiement déjà Complete est un rejeu : on retourne (true, 0, nil) sans
// rien récrire.
func (s *PaymentService) VerifyPayment(ctx context.Context, customerID int64, req models.VerifyPaymentRequest) (bool, int64, error) {
	if !utils.VerifyRazorpaySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.SignatureSecret) {
		// Jamais Complete -> Failed, même si la vérification rejoue
		_, err := s.DB.ExecContext(ctx, `
			UPDATE payment_details
			SET payment_status = 'Failed', updated_at = NOW()
			WHERE transaction_id = $1 AND payment_status <> 'Complete'`,
			req.RazorpayOrderID,
		)
		if err != nil {
			return false, 0, fmt.Errorf("erreur passage en Failed: %w", err)
		}
		return false, 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	// La condition Pending sérialise les vérifications concurrentes :
	// une seule transaction voit une ligne affectée.
	res, err := tx.ExecContext(ctx, `
		UPDATE payment_details
		SET payment_status = 'Complete', updated_at = NOW()
		WHERE transaction_id = $1 AND payment_status = 'Pending'`,
		req.RazorpayOrderID,
	)
	if err != nil {
		return false, 0, fmt.Errorf("erreur passage en Complete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	if affected == 0 {
		// Paiement inconnu, déjà finalisé, ou déjà en échec
		var status string
		err := s.DB.QueryRowContext(ctx,
			`SELECT payment_status FROM payment_details WHERE transaction_id = $1`,
			req.RazorpayOrderID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, nil
		}
		if err != nil {
			return false, 0, err
		}
		return status == models.PaymentComplete, 0, nil
	}

	var orderID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, status)
		VALUES ($1, 'Processing')
		RETURNING order_id`,
		customerID,
	).Scan(&orderID)
	if err != nil {
		return false, 0, fmt.Errorf("erreur création commande: %w", err)
	}

	prices, err := s.resolvePrices(ctx, tx, req.Products)
	if err != nil {
		return false, 0, err
	}
	if len(prices) == 0 {
		return false, 0, ErrNoMatchingProducts
	}

	for _, p := range req.Products {
		resolved, ok := prices[p.ProductID]
		if !ok {
			// Produit retiré du catalogue entre le panier et le paiement
			continue
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, seller_id, customer_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, p.ProductID, resolved.sellerID, customerID, p.Quantity,
			resolved.unitPrice*float64(p.Quantity),
		)
		if err != nil {
			return false, 0, fmt.Errorf("erreur insertion ligne commande: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}

	return true, orderID, nil
}

type resolvedProduct struct {
	sellerID  int64
	unitPrice float64
}

// resolvePrices relit les prix en base. Les prix envoyés par le client
// ne sont jamais utilisés.
func (s *PaymentService) resolvePrices(ctx context.Context, tx *sql.Tx, products []models.ProductOrder) (map[int64]resolvedProduct, error) {
	placeholders := make([]string, len(products))
	args := make([]interface{}, len(products))
	for i, p := range products {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = p.ProductID
	}

	query := fmt.Sprintf(`
		SELECT product_id, seller_id, price
		FROM products
		WHERE product_id IN (%s) AND is_active`,
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erreur résolution prix: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]resolvedProduct, len(products))
	for rows.Next() {
		var productID int64
		var rp resolvedProduct
		if err := rows.Scan(&productID, &rp.sellerID, &rp.unitPrice); err != nil {
			return nil, err
		}
		prices[productID] = rp
	}
	return prices, rows.Err()
}

// GetOrderItems retourne l'historique de commandes d'un client,
// jointure produits et images incluse.
func (s *PaymentService) GetOrderItems(ctx context.Context, customerID int64) ([]models.OrderItemDetails, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT oi.order_item_id, oi.order_id, oi.customer_id, oi.seller_id,
		       oi.product_id, p.product_name, oi.quantity, oi.price,
		       o.status, COALESCE(pi.image_url, ''), oi.created_at
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		LEFT JOIN LATERAL (
			SELECT image_url FROM product_images
			WHERE product_id = oi.product_id
			ORDER BY image_id
			LIMIT 1
		) pi ON TRUE
		WHERE oi.customer_id = $1
		ORDER BY oi.created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItemDetails
	for rows.Next() {
		var item models.OrderItemDetails
		if err := rows.Scan(
			&item.OrderItemID, &item.OrderID, &item.CustomerID, &item.SellerID,
			&item.ProductID, &item.ProductName, &item.Quantity, &item.Price,
			&item.Status, &item.ProductImage, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetOrderItemsForOrder retourne les lignes d'une commande précise
// (e-mail de confirmation et facture).
func (s *PaymentService) GetOrderItemsForOrder(ctx context.Context, orderID int64) ([]models.OrderItemDetails, float64, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT oi.order_item_id, oi.order_id, oi.customer_id, oi.seller_id,
		       oi.product_id, p.product_name, oi.quantity, oi.price,
		       o.status, oi.created_at
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		WHERE oi.order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.OrderItemDetails
	var total float64
	for rows.Next() {
		var item models.OrderItemDetails
		if err := rows.Scan(
			&item.OrderItemID, &item.OrderID, &item.CustomerID, &item.SellerID,
			&item.ProductID, &item.ProductName, &item.Quantity, &item.Price,
			&item.Status, &item.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		total += item.Price
		items = append(items, item)
	}
	return items, total, rows.Err()
}
