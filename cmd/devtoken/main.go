// Command devtoken prints an HS256 bearer token accepted by the API when
// JWT_SECRET is set and no OIDC issuer is configured.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/xmoure/blog-api-server/internal/tokens"
	"github.com/xmoure/blog-api-server/pkg/logger"
)

func main() {
	sub := flag.String("sub", "", "external user id (the identity provider subject)")
	role := flag.String("role", "", "role claim, e.g. admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	_ = godotenv.Load()

	if *sub == "" {
		logger.Fatalf("-sub is required")
	}
	iss, err := tokens.NewIssuer(os.Getenv("JWT_SECRET"))
	if err != nil {
		logger.Fatalf("JWT_SECRET: %v", err)
	}
	tok, err := iss.Issue(*sub, *role, *ttl)
	if err != nil {
		logger.Fatalf("issue token: %v", err)
	}
	fmt.Println(tok)
}
