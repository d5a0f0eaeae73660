package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"

	"staffdocs/internal/config"
	"staffdocs/internal/logger"
	jwtsvc "staffdocs/internal/pkg/jwt"
)

// Mints a bearer token from the configured JWT_SECRET, for operators and
// service-to-service callers. After a secret rotation every outstanding
// token is invalid and must be reissued here.
func main() {
	subject := flag.String("subject", "", "principal the token identifies (required)")
	role := flag.String("role", "service", "role claim")
	flag.Parse()

	if *subject == "" {
		logger.Fatalf("-subject is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(*subject, *role)
	if err != nil {
		logger.Fatalf("token generation failed: %v", err)
	}

	fmt.Println(token)
}
