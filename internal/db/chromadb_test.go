package db

import (
	"testing"
	"time"
)

// TestNewChromaDBClient tests client initialization
func TestNewChromaDBClient(t *testing.T) {
	tests := []struct {
		name   string
		config ChromaDBConfig
	}{
		{
			name: "default tenant and database",
			config: ChromaDBConfig{
				Host: "localhost",
				Port: 8000,
			},
		},
		{
			name: "custom config",
			config: ChromaDBConfig{
				Host:     "chromadb.example.com",
				Port:     9000,
				Tenant:   "custom_tenant",
				Database: "custom_db",
				Timeout:  60 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewChromaDBClient(tt.config)

			if client == nil {
				t.Fatal("Expected non-nil client")
			}
			if client.httpClient == nil {
				t.Error("Expected non-nil HTTP client")
			}
			if client.tenant == "" {
				t.Error("Expected tenant to be set")
			}
			if client.database == "" {
				t.Error("Expected database to be set")
			}
		})
	}
}

// TestChromaDBClient_BaseURL verifies the v2 API path layout
func TestChromaDBClient_BaseURL(t *testing.T) {
	client := NewChromaDBClient(ChromaDBConfig{
		Host: "localhost",
		Port: 8000,
	})

	expected := "http://localhost:8000/api/v2/tenants/default_tenant/databases/default_database"
	if client.baseURL != expected {
		t.Errorf("Expected base URL %q, got %q", expected, client.baseURL)
	}
}

// TestDefaultRedisConfig verifies Redis defaults
func TestDefaultRedisConfig(t *testing.T) {
	config := DefaultRedisConfig()

	if config.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", config.Host)
	}
	if config.Port != 6379 {
		t.Errorf("Expected port 6379, got %d", config.Port)
	}
	if config.PoolSize != 10 {
		t.Errorf("Expected pool size 10, got %d", config.PoolSize)
	}
}
