// Package setup wires the dependency graph once so main and the tests
// build the same stack.
package setup

import (
	"github.com/unigate-dev/unigate/internal/config"
	"github.com/unigate-dev/unigate/internal/email"
	"github.com/unigate-dev/unigate/internal/handler"
	"github.com/unigate-dev/unigate/internal/jwt"
	"github.com/unigate-dev/unigate/internal/middleware"
	"github.com/unigate-dev/unigate/internal/revocation"
	"github.com/unigate-dev/unigate/internal/service"
	"github.com/unigate-dev/unigate/internal/storage/pg"
)

type Dependencies struct {
	Config          *config.Config
	Storage         *pg.Storage
	Handler         *handler.Handler
	AuthMiddleware  *middleware.Auth
	RevocationCache *revocation.Cache
	Audit           *service.Audit
}

func New(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	mailer := email.New(&cfg.Private.Smtp)
	jwtService := jwt.New(cfg.Private.JwtKey, cfg.Public.JwtTTL)
	cache := revocation.NewCache(storage, cfg.Public.JwtTTL)

	gate := service.NewGate(storage, mailer, jwtService, cfg, cache)
	departments := service.NewDepartments(storage)
	audit := service.NewAudit(storage, cfg.Public.AuditRetentionDays, cfg.Public.AuditSweepInterval)

	return &Dependencies{
		Config:          cfg,
		Storage:         storage,
		Handler:         handler.New(gate, departments, audit, cfg),
		AuthMiddleware:  middleware.NewAuth(jwtService, cache, cfg.Public.SecureCookies),
		RevocationCache: cache,
		Audit:           audit,
	}, nil
}
