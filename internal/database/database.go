package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"kle_back_end/internal/config"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
}

// Connections regroupe les clients ouverts au démarrage. Redis et MinIO sont optionnels (nil).
type Connections struct {
	Scylla *ScyllaManager
	Redis  *redis.Client
	MinIO  *minio.Client
	Bucket string

	UsersKeyspace    string
	ProductsKeyspace string
	OrdersKeyspace   string
}

// --- Initialisation ---
func Connect(ctx context.Context, cfg *config.Config) (*Connections, error) {
	conns := &Connections{Bucket: cfg.MinIO.Bucket}

	// 1. ScyllaDB (multi-keyspaces)
	if cfg.StoreBackend == config.BackendScylla {
		scylla, err := NewScyllaManager(cfg.Scylla)
		if err != nil {
			return nil, fmt.Errorf("initialisation ScyllaDB: %w", err)
		}
		conns.Scylla = scylla
		conns.UsersKeyspace = cfg.Scylla.UsersKeyspace
		conns.ProductsKeyspace = cfg.Scylla.ProductsKeyspace
		conns.OrdersKeyspace = cfg.Scylla.OrdersKeyspace

		if cfg.Scylla.AutoMigrate {
			if err := conns.EnsureSchema(); err != nil {
				conns.Close()
				return nil, err
			}
		}
	}

	// 2. Redis
	if cfg.Redis.Host != "" {
		client, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			conns.Close()
			return nil, err
		}
		conns.Redis = client
	} else {
		log.Println("⚠️ REDIS_HOST absent, cache et rate limiting désactivés")
	}

	// 3. MinIO
	if cfg.MinIO.Endpoint != "" {
		client, err := connectMinIO(ctx, cfg.MinIO)
		if err != nil {
			conns.Close()
			return nil, err
		}
		conns.MinIO = client
	}

	log.Println("✅ Toutes les bases de données sont connectées")
	return conns, nil
}

// Close ferme toutes les connexions ouvertes.
func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️ Erreur fermeture Redis: %v", err)
		}
	}
}

// Ping vérifie chaque backend configuré (utilisé par /health).
func (c *Connections) Ping(ctx context.Context) map[string]string {
	status := map[string]string{}

	if c.Scylla != nil {
		status["scylla"] = "ok"
		for _, ks := range []string{c.UsersKeyspace, c.ProductsKeyspace, c.OrdersKeyspace} {
			session, err := c.Scylla.GetSession(ks)
			if err == nil {
				err = session.Query("SELECT now() FROM system.local").WithContext(ctx).Exec()
			}
			if err != nil {
				status["scylla"] = err.Error()
				break
			}
		}
	}
	if c.Redis != nil {
		status["redis"] = "ok"
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
		}
	}
	if c.MinIO != nil {
		status["minio"] = "ok"
		if _, err := c.MinIO.BucketExists(ctx, c.Bucket); err != nil {
			status["minio"] = err.Error()
		}
	}
	return status
}

// =============================================
// SCYLLA DB (Multi-Keyspaces avec SSL & Rôles)
// =============================================

// NewScyllaManager ouvre une session par keyspace configuré.
func NewScyllaManager(cfg config.ScyllaConfig) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  keyspaceConfigs(cfg),
	}

	for keyspace := range sm.configs {
		if _, err := sm.GetSession(keyspace); err != nil {
			sm.Close()
			return nil, fmt.Errorf("échec initialisation keyspace %s: %w", keyspace, err)
		}
	}
	return sm, nil
}

func keyspaceConfigs(cfg config.ScyllaConfig) map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	add := func(ks, role, password string) {
		if ks == "" {
			return
		}
		configs[ks] = ScyllaKeyspaceConfig{
			Hosts:       cfg.Hosts,
			Keyspace:    ks,
			Username:    role,
			Password:    password,
			SSLEnabled:  cfg.SSLEnabled,
			CACertPath:  cfg.CACertPath,
			Timeout:     5 * time.Second,
			NumConns:    20,
			Consistency: gocql.Quorum,
		}
	}

	add(cfg.UsersKeyspace, cfg.UsersRole, cfg.UsersPassword)
	add(cfg.ProductsKeyspace, cfg.ProductsRole, cfg.ProductsPassword)
	add(cfg.OrdersKeyspace, cfg.OrdersRole, cfg.OrdersPassword)
	return configs
}

// createScyllaCluster crée une configuration de cluster pour un keyspace
func createScyllaCluster(ksCfg ScyllaKeyspaceConfig) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(ksCfg.Hosts...)
	cluster.Keyspace = ksCfg.Keyspace
	cluster.Consistency = ksCfg.Consistency
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.Timeout = ksCfg.Timeout
	cluster.NumConns = ksCfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second

	if ksCfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: ksCfg.Username,
			Password: ksCfg.Password,
		}
	}

	if ksCfg.SSLEnabled {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if ksCfg.CACertPath != "" {
			caCert, err := os.ReadFile(ksCfg.CACertPath)
			if err != nil {
				return nil, fmt.Errorf("impossible de lire le certificat CA: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("impossible de parser le certificat CA")
			}
			tlsConfig.RootCAs = caCertPool
		}
		cluster.SslOpts = &gocql.SslOptions{Config: tlsConfig, EnableHostVerification: true}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster, nil
}

// GetSession retourne une session pour un keyspace donné
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ksCfg, exists := sm.configs[keyspace]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, exists := sm.sessions[keyspace]; exists && !session.Closed() {
		return session, nil
	}

	cluster, err := createScyllaCluster(ksCfg)
	if err != nil {
		return nil, fmt.Errorf("erreur configuration cluster pour %s: %w", keyspace, err)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	log.Printf("✅ Nouvelle session ScyllaDB pour keyspace '%s' (utilisateur: %s)", keyspace, ksCfg.Username)
	return session, nil
}

// Close ferme toutes les sessions ScyllaDB
func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		delete(sm.sessions, keyspace)
		log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", keyspace)
	}
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host,
		Password:     cfg.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connexion Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")
	return client, nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket MinIO: %w", err)
		}
		log.Println("🪣 Bucket créé :", cfg.Bucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.Bucket)
	}

	log.Println("✅ Connecté à MinIO :", cfg.Endpoint)
	return client, nil
}
