// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	httpin "storefront/internal/adapters/in/http"
	dbadapter "storefront/internal/adapters/out/db"
	fsadapter "storefront/internal/adapters/out/firestore"
	"storefront/internal/application/query"
	"storefront/internal/application/usecase"
	catalogdom "storefront/internal/domain/catalog"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
)

// Container is the shared runtime infrastructure.
// - owns external clients (Firestore/FirebaseAuth/SecretManager/Postgres)
// - owns the usecases and read models the router mounts
//
// Firestore is strict (hard error). FirebaseAuth, SecretManager and the
// catalog database are best-effort: the service still takes cart and order
// writes when they are down, and the affected read endpoints answer 500.
type Container struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	CatalogDB     *database.DB

	CartUC  *usecase.CartUsecase
	OrderUC *usecase.OrderUsecase

	CartQuery  *query.CartQuery
	OrderQuery *query.OrderQuery
}

// NewContainer wires the whole service.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	c := &Container{
		Config:    cfg,
		ProjectID: cfg.FirestoreProjectID,
	}
	if c.ProjectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	// Credentials file (optional; mainly for local dev)
	var clientOpts []option.ClientOption
	if cred := strings.TrimSpace(cfg.GCPCreds); cred != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cred))
		log.Printf("[di] Using credentials file for GCP clients")
	} else {
		log.Printf("[di] Using Application Default Credentials")
	}

	// 1) Firestore (strict)
	{
		fsClient, err := firestore.NewClient(ctx, c.ProjectID, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("di: firestore.NewClient failed (project=%s): %w", c.ProjectID, err)
		}
		c.Firestore = fsClient
		log.Printf("[di] Firestore connected project=%s", c.ProjectID)
	}

	// 2) Firebase App/Auth (best-effort)
	{
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: firebase app init failed: %v", err)
		} else {
			c.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di] WARN: firebase auth init failed: %v", err)
			} else {
				c.FirebaseAuth = authClient
				log.Printf("[di] Firebase Auth initialized")
			}
		}
	}

	// 3) Secret Manager (best-effort; only needed to resolve the DB password)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: secretmanager.NewClient failed: %v", err)
			sm = nil
		}
		c.SecretManager = sm
	}

	// 4) Catalog database (best-effort)
	{
		password := cfg.CatalogDBPassword
		if secretName := strings.TrimSpace(cfg.CatalogDBPasswordSecret); secretName != "" {
			if resolved, err := c.accessSecret(ctx, secretName); err != nil {
				log.Printf("[di] WARN: catalog DB password secret unavailable: %v", err)
			} else {
				password = resolved
			}
		}

		dbConn, err := database.NewConnection(
			cfg.CatalogDBHost, cfg.CatalogDBPort, cfg.CatalogDBUser, password, cfg.CatalogDBName,
		)
		if err != nil {
			log.Printf("[di] WARN: catalog DB unavailable: %v (catalog-joined reads disabled)", err)
		} else {
			c.CatalogDB = dbConn
		}
	}

	// 5) Repositories, usecases, read models
	cartRepo := fsadapter.NewCartRepositoryFS(c.Firestore)
	orderRepo := fsadapter.NewOrderRepositoryFS(c.Firestore)

	// nil interface when the catalog DB is down: joined reads and the
	// category purge answer 500, cart and order writes keep working
	var catalogRepo catalogdom.Repository
	if c.CatalogDB != nil {
		catalogRepo = dbadapter.NewProductRepositoryPG(c.CatalogDB.Client)
	}

	c.CartUC = usecase.NewCartUsecase(cartRepo)
	c.OrderUC = usecase.NewOrderUsecase(orderRepo, catalogRepo)

	if c.CatalogDB != nil {
		userRepo := dbadapter.NewUserRepositoryPG(c.CatalogDB.Client)

		c.CartQuery = query.NewCartQuery(cartRepo, catalogRepo)
		c.OrderQuery = query.NewOrderQuery(orderRepo, catalogRepo, userRepo)
	}

	return c, nil
}

// accessSecret reads one Secret Manager payload as a string.
func (c *Container) accessSecret(ctx context.Context, name string) (string, error) {
	if c.SecretManager == nil {
		return "", errors.New("secret manager client is nil")
	}
	res, err := c.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.GetPayload().GetData())), nil
}

// RouterDeps exposes the wired components to the HTTP layer.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		CartUC:       c.CartUC,
		OrderUC:      c.OrderUC,
		CartQuery:    c.CartQuery,
		OrderQuery:   c.OrderQuery,
		FirebaseAuth: c.FirebaseAuth,
	}
}

// Close releases every owned client. Safe to call on a half-built container.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.SecretManager != nil {
		if err := c.SecretManager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.CatalogDB != nil {
		if err := c.CatalogDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
