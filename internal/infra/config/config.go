// internal/infra/config/config.go
package config

import "os"

// Config holds every environment-driven setting of the service.
type Config struct {
	Port               string
	GCPCreds           string
	FirestoreProjectID string

	// Firebase Auth project (usually the same GCP project)
	FirebaseProjectID string

	// Read-only catalog database
	CatalogDBHost     string
	CatalogDBPort     string
	CatalogDBUser     string
	CatalogDBPassword string
	CatalogDBName     string
	// Secret Manager resource name; when set it overrides CatalogDBPassword.
	// e.g. projects/<project>/secrets/catalog-db-password/versions/latest
	CatalogDBPasswordSecret string

	CORSAllowedOrigin string
}

// Load reads the environment and returns a Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "storefront-development")

	return &Config{
		Port:               getenvDefault("PORT", "8080"),
		GCPCreds:           os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID: getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirebaseProjectID:  getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		CatalogDBHost:           getenvDefault("CATALOG_DB_HOST", "localhost"),
		CatalogDBPort:           getenvDefault("CATALOG_DB_PORT", "5432"),
		CatalogDBUser:           getenvDefault("CATALOG_DB_USER", "storefront"),
		CatalogDBPassword:       os.Getenv("CATALOG_DB_PASSWORD"),
		CatalogDBName:           getenvDefault("CATALOG_DB_NAME", "catalog"),
		CatalogDBPasswordSecret: os.Getenv("CATALOG_DB_PASSWORD_SECRET"),

		CORSAllowedOrigin: getenvDefault("CORS_ALLOWED_ORIGIN", "*"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
