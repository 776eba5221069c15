package seller

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"prakritikart_back_end/internal/database"
)

// UploadImage reçoit une image produit ou boutique et l'envoie dans
// MinIO. Retourne l'URL publique à référencer dans /add/product.
func UploadImage(c *gin.Context) {
	sellerID := c.GetString("sellerid")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun fichier reçu"})
		return
	}

	if fileHeader.Size > 5<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier trop volumineux (max 5 Mo)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ouverture fichier"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "prakritikart"
	}

	// Nom unique du fichier
	objectName := fmt.Sprintf("sellers/%s/%s%s", sellerID, uuid.NewString(), filepath.Ext(fileHeader.Filename))

	_, err = database.MinIO.PutObject(
		ctx,
		bucket,
		objectName,
		file,
		fileHeader.Size,
		minio.PutObjectOptions{ContentType: fileHeader.Header.Get("Content-Type")},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload MinIO", "details": err.Error()})
		return
	}

	// URL publique (à adapter selon ton reverse proxy)
	publicBase := os.Getenv("MINIO_PUBLIC_URL")
	if publicBase == "" {
		publicBase = fmt.Sprintf("http://%s", os.Getenv("MINIO_ENDPOINT"))
	}
	publicURL := fmt.Sprintf("%s/%s/%s", publicBase, bucket, objectName)

	c.JSON(http.StatusCreated, gin.H{"url": publicURL})
}
