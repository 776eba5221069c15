package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/utils"
)

// CustomerAuthRequired exige un token avec le rôle customer et pose
// customerid/email dans le contexte Gin.
func CustomerAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}

		if role, _ := claims["role"].(string); role != "customer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Accès réservé aux clients"})
			c.Abort()
			return
		}

		customerID, ok := claims["customerid"].(string)
		if !ok || customerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "customerid manquant"})
			c.Abort()
			return
		}

		c.Set("customerid", customerID)
		c.Set("userid", customerID)
		c.Set("email", claims["email"])
		c.Next()
	}
}

// SellerAuthRequired exige un token avec le rôle seller et pose
// sellerid/email dans le contexte Gin.
func SellerAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}

		if role, _ := claims["role"].(string); role != "seller" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Accès réservé aux vendeurs"})
			c.Abort()
			return
		}

		sellerID, ok := claims["sellerid"].(string)
		if !ok || sellerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sellerid manquant"})
			c.Abort()
			return
		}

		c.Set("sellerid", sellerID)
		c.Set("userid", sellerID)
		c.Set("email", claims["email"])
		c.Next()
	}
}

func parseBearer(c *gin.Context) (map[string]interface{}, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
		c.Abort()
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
		c.Abort()
		return nil, false
	}

	claims, err := utils.ParseJWT(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
		c.Abort()
		return nil, false
	}

	return claims, true
}
