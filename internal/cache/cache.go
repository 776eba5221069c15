package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prakritikart_back_end/internal/database"
	"prakritikart_back_end/internal/models"
)

var ctx = context.Background()

const (
	HomeProductsKey = "home_products"
	HomeProductsTTL = 5 * time.Minute

	productKeyFmt = "product:%d"
	productTTL    = 10 * time.Minute
)

// --- Cache produits page d'accueil ---

// SetHomeProducts met en cache la liste des produits de la page d'accueil
func SetHomeProducts(products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return database.Redis.Set(ctx, HomeProductsKey, data, HomeProductsTTL).Err()
}

// GetHomeProducts récupère la liste en cache, (nil, nil) si absente
func GetHomeProducts() ([]models.Product, error) {
	data, err := database.Redis.Get(ctx, HomeProductsKey).Bytes()
	if err != nil {
		return nil, nil
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// InvalidateHomeProducts vide le cache après ajout ou modification produit
func InvalidateHomeProducts() {
	database.Redis.Del(ctx, HomeProductsKey)
}

// --- Cache fiche produit ---

func SetProduct(product models.ProductWithStore) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(productKeyFmt, product.ProductID)
	return database.Redis.Set(ctx, key, data, productTTL).Err()
}

func GetProduct(productID int64) (*models.ProductWithStore, error) {
	key := fmt.Sprintf(productKeyFmt, productID)
	data, err := database.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil
	}

	var product models.ProductWithStore
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func InvalidateProduct(productID int64) {
	database.Redis.Del(ctx, fmt.Sprintf(productKeyFmt, productID))
}
