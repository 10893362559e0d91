// Command staff_token mints a staff JWT for the class creation endpoint.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"fitnessbooking/internal/config"
	"fitnessbooking/internal/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "front-desk", "name recorded in the token")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.StaffAuthEnabled() {
		log.Fatal("STAFF_JWT_SECRET is required")
	}

	token, err := jwt.New(cfg.StaffJWTSecret, cfg.StaffTokenTTL).GenerateToken(*subject, jwt.RoleStaff)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
