// Package app assembles the service out of its parts so the HTTP server
// and the Lambda entrypoint share one wiring.
package app

import (
	"context"
	"errors"
	"os"

	"github.com/labstack/echo/v4"
	adaptermw "institute-admin/internal/adapters/http/middleware"
	"institute-admin/internal/application"
	"institute-admin/internal/infrastructure/auth"
	"institute-admin/internal/infrastructure/dynamodb"
	"institute-admin/internal/infrastructure/localstore"
	"institute-admin/internal/infrastructure/seed"
	httpiface "institute-admin/internal/interfaces/http"
	"institute-admin/internal/ports"
)

type Config struct {
	Port           string
	TableName      string
	Region         string
	AuthMode       adaptermw.Mode
	JWKSURL        string
	AdminAPIToken  string
	ClaimsEndpoint string
	RolePermsFile  string
	SeedFile       string
	OwnerEmail     string
	LimitedEmail   string
}

func LoadConfig() (Config, error) {
	authMode, err := adaptermw.ParseAuthMode()
	if err != nil {
		return Config{}, err
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	rolePermsFile := os.Getenv("ROLE_PERMS_FILE")
	if rolePermsFile == "" {
		rolePermsFile = "data/role-perms.json"
	}
	cfg := Config{
		Port:           port,
		TableName:      os.Getenv("TABLE_NAME"),
		Region:         os.Getenv("AWS_REGION"),
		AuthMode:       authMode,
		JWKSURL:        os.Getenv("JWKS_URL"),
		AdminAPIToken:  os.Getenv("ADMIN_API_TOKEN"),
		ClaimsEndpoint: os.Getenv("CLAIMS_ENDPOINT"),
		RolePermsFile:  rolePermsFile,
		SeedFile:       os.Getenv("ROLES_SEED_FILE"),
		OwnerEmail:     os.Getenv("OWNER_EMAIL"),
		LimitedEmail:   os.Getenv("LIMITED_EMAIL"),
	}
	if cfg.TableName == "" || cfg.Region == "" {
		return Config{}, errors.New("missing required environment variables")
	}
	if cfg.AuthMode == adaptermw.ModeJWT && cfg.JWKSURL == "" {
		return Config{}, errors.New("JWKS_URL is required for jwt auth mode")
	}
	return cfg, nil
}

func Build(ctx context.Context, cfg Config, logger ports.Logger) (*echo.Echo, error) {
	seedData, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	registry := application.NewRoleRegistry(seedData.Roles)

	ddbClient, err := dynamodb.NewClient(ctx, cfg.Region, cfg.TableName)
	if err != nil {
		return nil, err
	}
	remote := dynamodb.NewRolePermsRepository(ddbClient)
	auditRepo := dynamodb.NewAuditRepository(ddbClient)
	local := localstore.New(cfg.RolePermsFile)

	resolver := application.NewResolver(registry, logger,
		application.NewStoreProvider("remote", remote),
		application.NewStoreProvider("local", local),
	)
	editor := application.NewEditor(registry, local, remote, auditRepo, cfg.AdminAPIToken, logger)
	claimsClient := auth.NewClaimsClient(cfg.ClaimsEndpoint)
	userSvc := application.NewUserService(seedData.Users, registry, claimsClient, auditRepo, logger)

	var jwtHandler echo.MiddlewareFunc
	if cfg.AuthMode == adaptermw.ModeJWT {
		jwtHandler = auth.NewTokenMiddleware(cfg.JWKSURL, cfg.OwnerEmail, cfg.LimitedEmail).Handler
	}
	authMiddleware, err := adaptermw.AuthMiddleware(jwtHandler)
	if err != nil {
		return nil, err
	}

	gates := adaptermw.NewGates(resolver)
	mw := httpiface.Middleware{
		Auth:          authMiddleware,
		XRay:          adaptermw.XRayMiddleware("institute-admin-http"),
		RequestLogger: adaptermw.RequestLogger(logger),
	}
	e := httpiface.NewMainRouter(
		httpiface.NewRolePermsHandler(remote, cfg.AdminAPIToken, logger),
		httpiface.NewRolesHandler(registry, editor, logger),
		httpiface.NewUsersHandler(userSvc),
		httpiface.NewAuditHandler(auditRepo),
		httpiface.NewClaimsAdminHandler(claimsClient, claimsClient.Configured(), logger),
		httpiface.NewPagesHandler(),
		gates,
		mw,
	)
	return e, nil
}
