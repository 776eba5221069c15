package customer

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"prakritikart_back_end/internal/database"
	services "prakritikart_back_end/internal/service"
)

// stubGateway évite tout appel réseau vers Razorpay dans les tests
type stubGateway struct {
	orderID string
}

func (g stubGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	return g.orderID, nil
}

func setupOrderHandler(t *testing.T, gatewayOrderID string) (*sql.DB, int64, func()) {
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

	var customerID int64
	err = db.QueryRowContext(ctx, `
		INSERT INTO customers (first_name, email)
		VALUES ('Asha', 'asha@example.com')
		RETURNING customer_id`,
	).Scan(&customerID)
	require.NoError(t, err)

	Payments = services.NewPaymentService(db, stubGateway{orderID: gatewayOrderID}, "test_razorpay_secret")

	cleanup := func() {
		Payments = nil
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, customerID, cleanup
}

func postJSON(handler gin.HandlerFunc, customerID int64, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("customerid", strconv.FormatInt(customerID, 10))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler(c)
	return w
}

func TestCreateOrder_ResponseCarriesPaymentID(t *testing.T) {
	db, customerID, cleanup := setupOrderHandler(t, "order_http")
	defer cleanup()

	w := postJSON(CreateOrder, customerID, `{"amount": 250}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "order_http", body["orderId"])

	// Le front reçoit l'identifiant interne du paiement, pas seulement
	// l'identifiant de commande Razorpay
	paymentID, ok := body["paymentId"].(float64)
	require.True(t, ok)
	require.NotZero(t, paymentID)

	var storedPaymentID int64
	err := db.QueryRow(
		`SELECT payment_id FROM payment_details WHERE transaction_id = 'order_http'`,
	).Scan(&storedPaymentID)
	require.NoError(t, err)
	assert.Equal(t, storedPaymentID, int64(paymentID))
}

func TestVerifyPayment_InvalidSignatureIsBadRequest(t *testing.T) {
	db, customerID, cleanup := setupOrderHandler(t, "order_http_bad")
	defer cleanup()

	_, _, err := Payments.CreateRazorpayOrder(context.Background(), customerID, 100)
	require.NoError(t, err)

	w := postJSON(VerifyPayment, customerID, `{
		"razorpayOrderId": "order_http_bad",
		"razorpayPaymentId": "pay_001",
		"razorpaySignature": "0000000000000000000000000000000000000000000000000000000000000000",
		"products": [{"productId": 1, "quantity": 1}]
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])

	var status string
	err = db.QueryRow(
		`SELECT payment_status FROM payment_details WHERE transaction_id = 'order_http_bad'`,
	).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "Failed", status)
}
