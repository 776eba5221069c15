package seller

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
	"prakritikart_back_end/internal/utils"
)

func SignUp(c *gin.Context) {
	var input models.SignUpRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existingID int64
	err := database.Postgres.QueryRowContext(ctx,
		`SELECT seller_id FROM sellers WHERE email = $1`, input.Email,
	).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte vendeur avec cet email existe déjà"})
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	var sellerID int64
	err = database.Postgres.QueryRowContext(ctx, `
		INSERT INTO sellers (first_name, last_name, email, password_hash, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seller_id`,
		input.FirstName, input.LastName, input.Email, hashedPassword, input.PhoneNumber,
	).Scan(&sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	token, err := utils.GenerateSellerJWT(sellerID, input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_SELLER_CREATE, utils.RESOURCE_SELLER, input.Email, nil)

	c.JSON(http.StatusCreated, gin.H{
		"token":     token,
		"sellerId":  sellerID,
		"email":     input.Email,
		"firstName": input.FirstName,
		"role":      "seller",
	})
}

func Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seller models.Seller
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT seller_id, first_name, email, password_hash
		FROM sellers
		WHERE email = $1`,
		input.Email,
	).Scan(&seller.SellerID, &seller.FirstName, &seller.Email, &seller.PasswordHash)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, seller.PasswordHash)
	if err != nil || !ok {
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, input.Email, "mot de passe incorrect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateSellerJWT(seller.SellerID, seller.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, seller.Email, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"sellerId":  seller.SellerID,
		"email":     seller.Email,
		"firstName": seller.FirstName,
		"role":      "seller",
	})
}
