package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendScylla = "scylla"
	BackendMemory = "memory"
)

type ScyllaConfig struct {
	Hosts            []string
	UsersKeyspace    string
	UsersRole        string
	UsersPassword    string
	ProductsKeyspace string
	ProductsRole     string
	ProductsPassword string
	OrdersKeyspace   string
	OrdersRole       string
	OrdersPassword   string
	SSLEnabled       bool
	CACertPath       string
	AutoMigrate      bool
}

type RedisConfig struct {
	Host     string
	Password string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	URLExpiry time.Duration
}

type Config struct {
	Env            string
	Port           string
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	StoreBackend   string
	CORSOrigins    []string

	Scylla ScyllaConfig
	Redis  RedisConfig
	MinIO  MinIOConfig
}

// Load charge le .env (s'il existe) puis lit la configuration depuis l'environnement.
func Load() (*Config, error) {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv lit la configuration sans toucher au .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "prod"),
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       getDuration("TOKEN_TTL", 365*24*time.Hour),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendScylla)),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		Scylla: ScyllaConfig{
			Hosts:            splitList(os.Getenv("SCYLLA_HOSTS")),
			UsersKeyspace:    os.Getenv("SCYLLA_KS_USERS_KEYSPACE"),
			UsersRole:        os.Getenv("SCYLLA_KS_USERS_ROLE"),
			UsersPassword:    os.Getenv("SCYLLA_KS_USERS_PASSWORD"),
			ProductsKeyspace: os.Getenv("SCYLLA_KS_PRODUCTS_KEYSPACE"),
			ProductsRole:     os.Getenv("SCYLLA_KS_PRODUCTS_ROLE"),
			ProductsPassword: os.Getenv("SCYLLA_KS_PRODUCTS_PASSWORD"),
			OrdersKeyspace:   os.Getenv("SCYLLA_KS_ORDERS_KEYSPACE"),
			OrdersRole:       os.Getenv("SCYLLA_KS_ORDERS_ROLE"),
			OrdersPassword:   os.Getenv("SCYLLA_KS_ORDERS_PASSWORD"),
			SSLEnabled:       getBool("SCYLLA_SSL_ENABLED"),
			CACertPath:       os.Getenv("SCYLLA_SSL_CA_PATH"),
			AutoMigrate:      getBool("SCYLLA_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			Region:    os.Getenv("MINIO_REGION"),
			UseSSL:    getBool("MINIO_USE_SSL"),
			URLExpiry: getDuration("MINIO_URL_EXPIRY", 24*time.Hour),
		},
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, errors.New("JWT_SECRET manquant")
		}
		cfg.JWTSecret = "dev_secret"
		log.Println("⚠️ JWT_SECRET absent, secret de développement utilisé")
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendScylla:
		if len(cfg.Scylla.Hosts) == 0 {
			return nil, errors.New("SCYLLA_HOSTS manquant")
		}
		if cfg.Scylla.UsersKeyspace == "" || cfg.Scylla.ProductsKeyspace == "" || cfg.Scylla.OrdersKeyspace == "" {
			return nil, errors.New("keyspaces ScyllaDB incomplets (users, products, orders)")
		}
	default:
		return nil, errors.New("STORE_BACKEND inconnu: " + cfg.StoreBackend)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Valeur entière = secondes
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("⚠️ %s invalide (%q), valeur par défaut %s", key, v, def)
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
