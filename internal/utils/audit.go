package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

// LogAction enregistre une action dans les logs d'audit
func LogAction(c *gin.Context, action, resource, resourceID string, newValue interface{}) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, newValue, true, ""); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// LogFailedAction enregistre une action échouée dans les logs d'audit
func LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, nil, false, errorMsg); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// logActionAsync enregistre de façon asynchrone
func logActionAsync(c *gin.Context, action, resource, resourceID string, newValue interface{}, success bool, errorMsg string) error {
	session := database.GetAuditSession()
	if session == nil {
		// Audit désactivé, rien à faire
		return nil
	}

	userID := c.GetString("userid")
	userEmail := c.GetString("email")

	var newValueStr string
	if newValue != nil {
		if newBytes, err := json.Marshal(newValue); err == nil {
			newValueStr = string(newBytes)
		}
	}

	auditLog := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     userID,
		UserEmail:  userEmail,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		NewValue:   newValueStr,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    success,
		ErrorMsg:   errorMsg,
		Timestamp:  time.Now(),
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, user_email, action, resource, resource_id,
			new_value, ip_address, user_agent, success, error_msg, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return session.Query(query,
		auditLog.ID, auditLog.UserID, auditLog.UserEmail, auditLog.Action,
		auditLog.Resource, auditLog.ResourceID, auditLog.NewValue,
		auditLog.IPAddress, auditLog.UserAgent, auditLog.Success,
		auditLog.ErrorMsg, auditLog.Timestamp,
	).Exec()
}

// Actions d'audit prédéfinies
const (
	// Actions produits
	ACTION_PRODUCT_CREATE = "product.create"
	ACTION_PRODUCT_UPDATE = "product.update"

	// Actions paiements et commandes
	ACTION_PAYMENT_INIT     = "payment.init"
	ACTION_PAYMENT_COMPLETE = "payment.complete"
	ACTION_PAYMENT_FAILED   = "payment.failed"
	ACTION_ORDER_CREATE     = "order.create"

	// Actions comptes
	ACTION_CUSTOMER_CREATE = "customer.create"
	ACTION_SELLER_CREATE   = "seller.create"
	ACTION_LOGIN_SUCCESS   = "auth.login_success"
	ACTION_LOGIN_FAILED    = "auth.login_failed"
)

// Resources d'audit
const (
	RESOURCE_PRODUCT  = "product"
	RESOURCE_ORDER    = "order"
	RESOURCE_PAYMENT  = "payment"
	RESOURCE_CUSTOMER = "customer"
	RESOURCE_SELLER   = "seller"
	RESOURCE_AUTH     = "auth"
)
