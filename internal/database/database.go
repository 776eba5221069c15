package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// --- Variables Globales ---
var (
	Postgres *sql.DB
	Redis    *redis.Client
	Elastic  *elasticsearch.Client
	MinIO    *minio.Client

	scyllaSession *gocql.Session
	scyllaMu      sync.Mutex
)

// --- Initialisation ---
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. PostgreSQL (source de vérité : clients, catalogue, paniers, commandes)
	connectPostgres(ctx)

	// 2. Redis (cache, rate limiting, pub/sub commandes)
	connectRedis(ctx)

	// 3. Elasticsearch (recherche produits)
	connectElastic()

	// 4. MinIO (images produits et vendeurs)
	connectMinIO(ctx)

	// 5. ScyllaDB (journal d'audit, optionnel)
	if err := connectScylla(); err != nil {
		log.Printf("⚠️ Audit ScyllaDB désactivé : %v", err)
	}

	log.Println("✅ Toutes les bases de données sont connectées")
}

// =============================================
// POSTGRESQL
// =============================================

func connectPostgres(ctx context.Context) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
		sslMode(),
	)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatal("❌ Erreur ouverture PostgreSQL:", err)
	}

	// Pool partagé par toutes les requêtes, une transaction par checkout
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("❌ Erreur connexion PostgreSQL:", err)
	}

	Postgres = db
	log.Println("✅ Connecté à PostgreSQL")

	if err := RunMigrations(db); err != nil {
		log.Fatal("❌ Erreur migrations PostgreSQL:", err)
	}
}

func sslMode() string {
	if mode := os.Getenv("POSTGRES_SSLMODE"); mode != "" {
		return mode
	}
	return "disable"
}

// =============================================
// REDIS
// =============================================

func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic() {
	cfg := elasticsearch.Config{
		Addresses: []string{os.Getenv("ELASTIC_URL")},
		Username:  os.Getenv("ELASTIC_USER"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Fatal("❌ Erreur création client Elasticsearch:", err)
	}

	res, err := client.Info()
	if err != nil {
		// La recherche retombe sur SQL si Elastic est absent
		log.Printf("⚠️ Elasticsearch injoignable, recherche SQL seule : %v", err)
		return
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Fatal("❌ Erreur connexion MinIO:", err)
	}

	bucketName := os.Getenv("MINIO_BUCKET")
	if bucketName == "" {
		bucketName = "prakritikart"
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("❌ Erreur vérification bucket MinIO:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("❌ Erreur création bucket MinIO:", err)
		}
		log.Println("🪣 Bucket créé :", bucketName)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", bucketName)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", endpoint)
}

// =============================================
// SCYLLA DB (journal d'audit)
// =============================================

func connectScylla() error {
	hosts := os.Getenv("SCYLLA_HOSTS")
	keyspace := os.Getenv("SCYLLA_AUDIT_KEYSPACE")
	if hosts == "" || keyspace == "" {
		return fmt.Errorf("SCYLLA_HOSTS ou SCYLLA_AUDIT_KEYSPACE non configuré")
	}

	cluster := gocql.NewCluster(strings.Split(hosts, ",")...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.ReconnectInterval = 1 * time.Second
	if user := os.Getenv("SCYLLA_AUDIT_ROLE"); user != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: user,
			Password: os.Getenv("SCYLLA_AUDIT_PASSWORD"),
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("erreur création session pour %s: %v", keyspace, err)
	}

	scyllaMu.Lock()
	scyllaSession = session
	scyllaMu.Unlock()

	log.Printf("✅ Session ScyllaDB ouverte pour keyspace '%s'", keyspace)
	return nil
}

// GetAuditSession retourne la session ScyllaDB d'audit, ou nil si désactivée.
// Note: les tables doivent être créées via scripts/scylladb_init.cql
func GetAuditSession() *gocql.Session {
	scyllaMu.Lock()
	defer scyllaMu.Unlock()
	return scyllaSession
}

// CloseDatabases ferme proprement toutes les connexions
func CloseDatabases() {
	if Postgres != nil {
		Postgres.Close()
	}
	if Redis != nil {
		Redis.Close()
	}
	scyllaMu.Lock()
	if scyllaSession != nil {
		scyllaSession.Close()
		log.Println("🔌 Session ScyllaDB fermée")
	}
	scyllaMu.Unlock()
}
