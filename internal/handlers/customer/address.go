package customer

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

type addressInput struct {
	FullName     string `json:"fullName" binding:"required"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	ZipCode      string `json:"zipCode" binding:"required"`
	Country      string `json:"country"`
}

func AddAddress(c *gin.Context) {
	customerID := c.GetString("customerid")

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Country == "" {
		input.Country = "India"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var addressID int64
	err := database.Postgres.QueryRowContext(ctx, `
		INSERT INTO customer_addresses
			(customer_id, full_name, phone_number, address_line1, address_line2, city, state, zip_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING address_id`,
		customerID, input.FullName, input.PhoneNumber, input.AddressLine1,
		input.AddressLine2, input.City, input.State, input.ZipCode, input.Country,
	).Scan(&addressID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement adresse"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"addressId": addressID, "message": "Adresse ajoutée"})
}

func GetAddresses(c *gin.Context) {
	customerID := c.GetString("customerid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT address_id, customer_id, full_name, phone_number, address_line1,
		       address_line2, city, state, zip_code, country
		FROM customer_addresses
		WHERE customer_id = $1
		ORDER BY address_id`,
		customerID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresses"})
		return
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.AddressID, &a.CustomerID, &a.FullName, &a.PhoneNumber,
			&a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.ZipCode, &a.Country); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresses"})
			return
		}
		addresses = append(addresses, a)
	}

	c.JSON(http.StatusOK, addresses)
}

func UpdateAddress(c *gin.Context) {
	customerID := c.GetString("customerid")
	addressID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant adresse invalide"})
		return
	}

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Country == "" {
		input.Country = "India"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Le WHERE customer_id empêche de modifier l'adresse d'un autre client
	res, err := database.Postgres.ExecContext(ctx, `
		UPDATE customer_addresses
		SET full_name = $1, phone_number = $2, address_line1 = $3, address_line2 = $4,
		    city = $5, state = $6, zip_code = $7, country = $8
		WHERE address_id = $9 AND customer_id = $10`,
		input.FullName, input.PhoneNumber, input.AddressLine1, input.AddressLine2,
		input.City, input.State, input.ZipCode, input.Country, addressID, customerID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour adresse"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Adresse introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Adresse mise à jour"})
}

func DeleteAddress(c *gin.Context) {
	customerID := c.GetString("customerid")
	addressID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant adresse invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := database.Postgres.ExecContext(ctx,
		`DELETE FROM customer_addresses WHERE address_id = $1 AND customer_id = $2`,
		addressID, customerID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression adresse"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Adresse introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Adresse supprimée"})
}
