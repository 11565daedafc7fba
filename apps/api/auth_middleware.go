package main

import (
	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/platform/go/auth"
	"github.com/concoro/concoro-platform/platform/go/gcp"
)

// buildVerifier selects the token verifier for AUTH_PROVIDER.
func buildVerifier(cfg config, clients *gcp.Clients, logger *zap.Logger) auth.VerifyFunc {
	switch cfg.AuthProvider {
	case "firebase":
		return auth.FirebaseTokenVerifier(clients.Auth)
	case "dev":
		logger.Warn("using unsigned dev tokens; do not use in production")
		return auth.UnsignedTokenVerifier()
	default:
		logger.Fatal("unsupported auth provider", zap.String("provider", cfg.AuthProvider))
		return nil
	}
}
