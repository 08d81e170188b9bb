package database

import (
	"testing"

	"github.com/gocql/gocql"

	"kle_back_end/internal/config"
)

func TestKeyspaceConfigsSkipsEmptyKeyspaces(t *testing.T) {
	configs := keyspaceConfigs(config.ScyllaConfig{
		Hosts:          []string{"127.0.0.1"},
		UsersKeyspace:  "kle_users",
		UsersRole:      "users_rw",
		OrdersKeyspace: "kle_orders",
	})

	if len(configs) != 2 {
		t.Fatalf("expected 2 keyspaces, got %d", len(configs))
	}
	users := configs["kle_users"]
	if users.Username != "users_rw" {
		t.Errorf("expected role users_rw, got %q", users.Username)
	}
	if users.Consistency != gocql.Quorum {
		t.Errorf("expected quorum consistency, got %v", users.Consistency)
	}
}

func TestCreateScyllaClusterWithoutCredentials(t *testing.T) {
	cluster, err := createScyllaCluster(ScyllaKeyspaceConfig{
		Hosts:    []string{"127.0.0.1"},
		Keyspace: "kle_products",
		NumConns: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cluster.Authenticator != nil {
		t.Errorf("expected no authenticator without username")
	}
	if cluster.Keyspace != "kle_products" {
		t.Errorf("unexpected keyspace %q", cluster.Keyspace)
	}
}

func TestCreateScyllaClusterBadCA(t *testing.T) {
	_, err := createScyllaCluster(ScyllaKeyspaceConfig{
		Hosts:      []string{"127.0.0.1"},
		SSLEnabled: true,
		CACertPath: "/does/not/exist.pem",
	})
	if err == nil {
		t.Errorf("expected an error for a missing CA file")
	}
}

func TestSchemaCoversEveryKeyspaceGroup(t *testing.T) {
	for _, group := range []string{"users", "products", "orders"} {
		if len(schema[group]) == 0 {
			t.Errorf("no tables declared for %s", group)
		}
	}
}
