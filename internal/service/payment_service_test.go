package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

const testSecret = "test_razorpay_secret"

// fakeGateway évite tout appel réseau vers Razorpay dans les tests
type fakeGateway struct {
	nextOrderID string
}

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	return g.nextOrderID, nil
}

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	require.NoError(t, database.RunMigrations(db))

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}

// seedCatalog crée un client, un vendeur et un produit à 100 roupies.
// Retourne (customerID, productID).
func seedCatalog(t *testing.T, db *sql.DB) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	var customerID int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO customers (first_name, email)
		VALUES ('Asha', 'asha@example.com')
		RETURNING customer_id`,
	).Scan(&customerID)
	require.NoError(t, err)

	var sellerID int64
	err = db.QueryRowContext(ctx, `
		INSERT INTO sellers (first_name, email, password_hash)
		VALUES ('Ravi', 'ravi@example.com', 'x')
		RETURNING seller_id`,
	).Scan(&sellerID)
	require.NoError(t, err)

	var productID int64
	err = db.QueryRowContext(ctx, `
		INSERT INTO products (seller_id, product_name, category, price, quantity)
		VALUES ($1, 'Ashwagandha 500mg', 'Suppléments', 100, 50)
		RETURNING product_id`,
		sellerID,
	).Scan(&productID)
	require.NoError(t, err)

	return customerID, productID
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyRequest(transactionID string, products []models.ProductOrder) models.VerifyPaymentRequest {
	return models.VerifyPaymentRequest{
		RazorpayOrderID:   transactionID,
		RazorpayPaymentID: "pay_001",
		RazorpaySignature: sign(transactionID, "pay_001"),
		Products:          products,
	}
}

func paymentStatus(t *testing.T, db *sql.DB, transactionID string) string {
	t.Helper()
	var status string
	err := db.QueryRow(
		`SELECT payment_status FROM payment_details WHERE transaction_id = $1`, transactionID,
	).Scan(&status)
	require.NoError(t, err)
	return status
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestCreateRazorpayOrder_RecordsPendingPayment(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, _ := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_created"}, testSecret)

	transactionID, paymentID, err := svc.CreateRazorpayOrder(context.Background(), customerID, 199.50)
	require.NoError(t, err)
	assert.Equal(t, "order_created", transactionID)
	require.NotZero(t, paymentID)

	// L'identifiant retourné est bien celui de la ligne insérée : le
	// front en a besoin pour suivre le paiement côté PrakritiKart.
	var storedPaymentID int64
	var amount float64
	var status string
	err = db.QueryRow(
		`SELECT payment_id, amount, payment_status FROM payment_details WHERE transaction_id = $1`, transactionID,
	).Scan(&storedPaymentID, &amount, &status)
	require.NoError(t, err)
	assert.Equal(t, storedPaymentID, paymentID)
	assert.Equal(t, 199.50, amount)
	assert.Equal(t, models.PaymentPending, status)
}

func TestVerifyPayment_Success(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_ok"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 200)
	require.NoError(t, err)

	req := verifyRequest("order_ok", []models.ProductOrder{{ProductID: productID, Quantity: 2}})
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.True(t, verified)
	require.NotZero(t, orderID)

	assert.Equal(t, models.PaymentComplete, paymentStatus(t, db, "order_ok"))

	// Le prix de la ligne vient du catalogue : 100 x 2, jamais du client
	var quantity int
	var price float64
	err = db.QueryRow(
		`SELECT quantity, price FROM order_items WHERE order_id = $1`, orderID,
	).Scan(&quantity, &price)
	require.NoError(t, err)
	assert.Equal(t, 2, quantity)
	assert.Equal(t, 200.0, price)

	var status string
	err = db.QueryRow(`SELECT status FROM orders WHERE order_id = $1`, orderID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, status)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_bad"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := models.VerifyPaymentRequest{
		RazorpayOrderID:   "order_bad",
		RazorpayPaymentID: "pay_001",
		RazorpaySignature: "0000000000000000000000000000000000000000000000000000000000000000",
		Products:          []models.ProductOrder{{ProductID: productID, Quantity: 1}},
	}
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Zero(t, orderID)

	assert.Equal(t, models.PaymentFailed, paymentStatus(t, db, "order_bad"))
	assert.Zero(t, countRows(t, db, "orders"))
	assert.Zero(t, countRows(t, db, "order_items"))
}

func TestVerifyPayment_BadSignatureNeverDowngradesComplete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_done"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := verifyRequest("order_done", []models.ProductOrder{{ProductID: productID, Quantity: 1}})
	verified, _, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	require.True(t, verified)

	// Rejeu avec une signature invalide : Complete reste Complete
	req.RazorpaySignature = "deadbeef"
	verified, _, err = svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Equal(t, models.PaymentComplete, paymentStatus(t, db, "order_done"))
}

func TestVerifyPayment_IdempotentReplay(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_replay"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := verifyRequest("order_replay", []models.ProductOrder{{ProductID: productID, Quantity: 1}})

	verified, firstOrderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	require.True(t, verified)
	require.NotZero(t, firstOrderID)

	// Deuxième vérification : succès sans nouvelle commande
	verified, replayOrderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Zero(t, replayOrderID)

	assert.Equal(t, 1, countRows(t, db, "orders"))
	assert.Equal(t, 1, countRows(t, db, "order_items"))
}

func TestVerifyPayment_Concurrent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_race"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := verifyRequest("order_race", []models.ProductOrder{{ProductID: productID, Quantity: 1}})

	const workers = 8
	var wg sync.WaitGroup
	results := make([]int64, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
			errs[i] = err
			if verified {
				results[i] = orderID
			}
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i] != 0 {
			created++
		}
	}

	// Une seule goroutine a matérialisé la commande
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, countRows(t, db, "orders"))
	assert.Equal(t, models.PaymentComplete, paymentStatus(t, db, "order_race"))
}

func TestVerifyPayment_UnknownTransaction(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{}, testSecret)

	req := verifyRequest("order_missing", []models.ProductOrder{{ProductID: productID, Quantity: 1}})
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Zero(t, orderID)
	assert.Zero(t, countRows(t, db, "orders"))
}

func TestVerifyPayment_NoMatchingProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, _ := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_empty"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := verifyRequest("order_empty", []models.ProductOrder{{ProductID: 999999, Quantity: 1}})
	_, _, err = svc.VerifyPayment(context.Background(), customerID, req)
	assert.ErrorIs(t, err, ErrNoMatchingProducts)

	// Transaction annulée : le paiement reste Pending, aucune commande
	assert.Equal(t, models.PaymentPending, paymentStatus(t, db, "order_empty"))
	assert.Zero(t, countRows(t, db, "orders"))
	assert.Zero(t, countRows(t, db, "order_items"))
}

func TestVerifyPayment_SkipsUnknownProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_partial"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := verifyRequest("order_partial", []models.ProductOrder{
		{ProductID: productID, Quantity: 1},
		{ProductID: 999999, Quantity: 3},
	})
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.True(t, verified)
	require.NotZero(t, orderID)

	// Le produit inconnu est ignoré, la ligne valide est conservée
	assert.Equal(t, 1, countRows(t, db, "order_items"))
}

// seedInactiveProduct ajoute un produit désactivé au même vendeur
func seedInactiveProduct(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var productID int64
	err := db.QueryRow(`
		INSERT INTO products (seller_id, product_name, category, price, quantity, is_active)
		SELECT seller_id, 'Brahmi retiré', 'Suppléments', 80, 10, FALSE
		FROM sellers LIMIT 1
		RETURNING product_id`,
	).Scan(&productID)
	require.NoError(t, err)
	return productID
}

func TestVerifyPayment_IgnoresInactiveProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	inactiveID := seedInactiveProduct(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_inactive"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	req := verifyRequest("order_inactive", []models.ProductOrder{
		{ProductID: productID, Quantity: 1},
		{ProductID: inactiveID, Quantity: 2},
	})
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.True(t, verified)
	require.NotZero(t, orderID)

	// Le produit désactivé ne donne aucune ligne de commande
	assert.Equal(t, 1, countRows(t, db, "order_items"))
	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM order_items WHERE product_id = $1`, inactiveID,
	).Scan(&n))
	assert.Zero(t, n)
}

func TestVerifyPayment_OnlyInactiveProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, _ := seedCatalog(t, db)
	inactiveID := seedInactiveProduct(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_all_inactive"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	// Un panier composé uniquement de produits désactivés équivaut à un
	// panier vide : la transaction est annulée, le paiement reste Pending
	req := verifyRequest("order_all_inactive", []models.ProductOrder{{ProductID: inactiveID, Quantity: 1}})
	_, _, err = svc.VerifyPayment(context.Background(), customerID, req)
	assert.ErrorIs(t, err, ErrNoMatchingProducts)

	assert.Equal(t, models.PaymentPending, paymentStatus(t, db, "order_all_inactive"))
	assert.Zero(t, countRows(t, db, "orders"))
	assert.Zero(t, countRows(t, db, "order_items"))
}

func TestVerifyPayment_RollbackOnLineFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_rollback"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	// La deuxième ligne viole la contrainte quantity > 0 en plein milieu
	// des insertions : toute la transaction doit être annulée, y compris
	// le passage du paiement en Complete et la première ligne déjà insérée
	req := verifyRequest("order_rollback", []models.ProductOrder{
		{ProductID: productID, Quantity: 1},
		{ProductID: productID, Quantity: 0},
	})
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.Error(t, err)
	assert.False(t, verified)
	assert.Zero(t, orderID)

	assert.Equal(t, models.PaymentPending, paymentStatus(t, db, "order_rollback"))
	assert.Zero(t, countRows(t, db, "orders"))
	assert.Zero(t, countRows(t, db, "order_items"))
}

func TestGetOrderItems(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, productID := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{nextOrderID: "order_hist"}, testSecret)

	_, _, err := svc.CreateRazorpayOrder(context.Background(), customerID, 300)
	require.NoError(t, err)

	req := verifyRequest("order_hist", []models.ProductOrder{{ProductID: productID, Quantity: 3}})
	verified, orderID, err := svc.VerifyPayment(context.Background(), customerID, req)
	require.NoError(t, err)
	require.True(t, verified)

	items, err := svc.GetOrderItems(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, orderID, items[0].OrderID)
	assert.Equal(t, "Ashwagandha 500mg", items[0].ProductName)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 300.0, items[0].Price)
	assert.Equal(t, models.OrderProcessing, items[0].Status)

	itemsForOrder, total, err := svc.GetOrderItemsForOrder(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, itemsForOrder, 1)
	assert.Equal(t, 300.0, total)
}

func TestGetOrderItems_EmptyHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customerID, _ := seedCatalog(t, db)
	svc := NewPaymentService(db, &fakeGateway{}, testSecret)

	items, err := svc.GetOrderItems(context.Background(), customerID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
