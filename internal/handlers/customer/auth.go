package customer

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
	"prakritikart_back_end/internal/utils"
)

// ================== AUTH LOCALE ==================

func SignUp(c *gin.Context) {
	var input models.SignUpRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// email déjà pris ?
	var existingID int64
	err := database.Postgres.QueryRowContext(ctx,
		`SELECT customer_id FROM customers WHERE email = $1`, input.Email,
	).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
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

	var customerID int64
	err = database.Postgres.QueryRowContext(ctx, `
		INSERT INTO customers (first_name, last_name, email, password_hash, phone_number, provider)
		VALUES ($1, $2, $3, $4, $5, 'local')
		RETURNING customer_id`,
		input.FirstName, input.LastName, input.Email, hashedPassword, input.PhoneNumber,
	).Scan(&customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	token, err := utils.GenerateCustomerJWT(customerID, input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_CUSTOMER_CREATE, utils.RESOURCE_CUSTOMER, input.Email, nil)

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"customerId": customerID,
		"email":      input.Email,
		"firstName":  input.FirstName,
		"role":       "customer",
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

	var customer models.Customer
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT customer_id, first_name, email, password_hash
		FROM customers
		WHERE email = $1`,
		input.Email,
	).Scan(&customer.CustomerID, &customer.FirstName, &customer.Email, &customer.PasswordHash)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, customer.PasswordHash)
	if err != nil || !ok {
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, input.Email, "mot de passe incorrect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	// Re-hash transparent des comptes migrés de l'ancienne plateforme
	if !utils.IsArgon2Hash(customer.PasswordHash) {
		if newHash, err := utils.HashPassword(input.Password); err == nil {
			database.Postgres.ExecContext(ctx,
				`UPDATE customers SET password_hash = $1, updated_at = NOW() WHERE customer_id = $2`,
				newHash, customer.CustomerID,
			)
		}
	}

	token, err := utils.GenerateCustomerJWT(customer.CustomerID, customer.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, customer.Email, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"customerId": customer.CustomerID,
		"email":      customer.Email,
		"firstName":  customer.FirstName,
		"role":       "customer",
	})
}

func Me(c *gin.Context) {
	customerID := c.GetString("customerid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var customer models.Customer
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT customer_id, first_name, last_name, email, phone_number, email_verified
		FROM customers
		WHERE customer_id = $1`,
		customerID,
	).Scan(&customer.CustomerID, &customer.FirstName, &customer.LastName,
		&customer.Email, &customer.PhoneNumber, &customer.EmailVerified)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customerId":    customer.CustomerID,
		"firstName":     customer.FirstName,
		"lastName":      customer.LastName,
		"email":         customer.Email,
		"phoneNumber":   customer.PhoneNumber,
		"emailVerified": customer.EmailVerified,
	})
}

// ================== AUTH SOCIALE ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	redirectURL := c.Query("redirect_url")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	callbackURL := baseURL + "/api/auth/" + provider + "/callback"

	switch provider {
	case "google":
		goth.UseProviders(google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			callbackURL,
		))
	case "facebook":
		goth.UseProviders(facebook.New(
			os.Getenv("FACEBOOK_CLIENT_ID"),
			os.Getenv("FACEBOOK_CLIENT_SECRET"),
			callbackURL,
		))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	ctx := context.Background()
	state := generateRandomState()
	if redirectURL != "" {
		_ = database.Redis.Set(ctx, "oauth_redirect:"+state, redirectURL, 10*time.Minute).Err()
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")
	if provider == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	var providerID, email, name string

	switch provider {
	case "google":
		data := url.Values{}
		data.Set("code", code)
		data.Set("client_id", os.Getenv("GOOGLE_CLIENT_ID"))
		data.Set("client_secret", os.Getenv("GOOGLE_CLIENT_SECRET"))
		data.Set("redirect_uri", baseURL+"/api/auth/google/callback")
		data.Set("grant_type", "authorization_code")

		resp, err := http.PostForm("https://oauth2.googleapis.com/token", data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur échange token Google"})
			return
		}
		defer resp.Body.Close()
		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		json.NewDecoder(resp.Body).Decode(&tokenResp)

		userResp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + tokenResp.AccessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur profil Google"})
			return
		}
		defer userResp.Body.Close()
		var gu struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		json.NewDecoder(userResp.Body).Decode(&gu)
		providerID, email, name = gu.ID, gu.Email, gu.Name

	case "facebook":
		tokenURL := "https://graph.facebook.com/v12.0/oauth/access_token?client_id=" +
			os.Getenv("FACEBOOK_CLIENT_ID") +
			"&redirect_uri=" + url.QueryEscape(baseURL+"/api/auth/facebook/callback") +
			"&client_secret=" + os.Getenv("FACEBOOK_CLIENT_SECRET") +
			"&code=" + code
		resp, err := http.Get(tokenURL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur échange token Facebook"})
			return
		}
		defer resp.Body.Close()
		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		json.NewDecoder(resp.Body).Decode(&tokenResp)

		userResp, err := http.Get("https://graph.facebook.com/me?fields=id,name,email&access_token=" + tokenResp.AccessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur profil Facebook"})
			return
		}
		defer userResp.Body.Close()
		var fb struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		json.NewDecoder(userResp.Body).Decode(&fb)
		providerID, email, name = fb.ID, fb.Email, fb.Name

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profil OAuth sans email"})
		return
	}

	customer, err := findOrCreateOAuthCustomer(provider, providerID, email, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte OAuth"})
		return
	}

	token, err := utils.GenerateCustomerJWT(customer.CustomerID, customer.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	redirectToFrontend(c, state, token)
}

// ================== UTILITAIRES ==================

func findOrCreateOAuthCustomer(provider, providerID, email, name string) (models.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var customer models.Customer

	// 1️⃣ Recherche par provider_id
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT customer_id, first_name, email
		FROM customers
		WHERE provider = $1 AND provider_id = $2`,
		provider, providerID,
	).Scan(&customer.CustomerID, &customer.FirstName, &customer.Email)
	if err == nil {
		log.Printf("✅ Client OAuth existant trouvé : %s", email)
		return customer, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return customer, err
	}

	// 2️⃣ Sinon, recherche par email
	err = database.Postgres.QueryRowContext(ctx, `
		SELECT customer_id, first_name, email
		FROM customers
		WHERE email = $1`,
		email,
	).Scan(&customer.CustomerID, &customer.FirstName, &customer.Email)
	if err == nil {
		// 3️⃣ Compte existant -> fusion avec le provider
		_, err = database.Postgres.ExecContext(ctx, `
			UPDATE customers
			SET provider = $1, provider_id = $2, email_verified = TRUE, updated_at = NOW()
			WHERE customer_id = $3`,
			provider, providerID, customer.CustomerID,
		)
		log.Printf("🔄 Compte existant fusionné avec provider %s : %s", provider, email)
		return customer, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return customer, err
	}

	// 4️⃣ Création d'un nouveau client OAuth
	firstName := name
	lastName := ""
	if parts := strings.SplitN(name, " ", 2); len(parts) == 2 {
		firstName, lastName = parts[0], parts[1]
	}

	err = database.Postgres.QueryRowContext(ctx, `
		INSERT INTO customers (first_name, last_name, email, email_verified, provider, provider_id)
		VALUES ($1, $2, $3, TRUE, $4, $5)
		RETURNING customer_id`,
		firstName, lastName, email, provider, providerID,
	).Scan(&customer.CustomerID)
	if err != nil {
		return customer, err
	}

	customer.FirstName = firstName
	customer.Email = email
	log.Printf("🆕 Client OAuth créé (%s) : %s", provider, email)
	return customer, nil
}

func redirectToFrontend(c *gin.Context, state, token string) {
	ctx := context.Background()

	redirectURI, _ := database.Redis.Get(ctx, "oauth_redirect:"+state).Result()
	_, _ = database.Redis.Del(ctx, "oauth_redirect:"+state).Result()

	if redirectURI == "" {
		redirectURI = os.Getenv("FRONTEND_URL")
		if redirectURI == "" {
			redirectURI = "http://localhost:5173"
		}
	}

	allowed := strings.Split(os.Getenv("ALLOWED_REDIRECT_ORIGINS"), ",")
	allowed = append(allowed, "http://localhost:5173", "http://localhost:3000")
	valid := false
	for _, o := range allowed {
		if o != "" && strings.HasPrefix(redirectURI, o) {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redirect url non autorisé"})
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+sep+"token="+url.QueryEscape(token))
}
