package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/config"
)

// issue-token signs an access token without a users row. Operators use it to
// bootstrap the first administrator or to script calls against the API.
func main() {
	var (
		userID       string
		role         string
		email        string
		departmentID string
		formationID  string
		professorID  string
		ttl          time.Duration
	)

	flag.StringVar(&userID, "user", "operator", "Subject user id")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "ADMIN, VICE_DEAN, DEPARTMENT_HEAD, PROFESSOR or STUDENT")
	flag.StringVar(&email, "email", "", "Email recorded in the token")
	flag.StringVar(&departmentID, "department", "", "Department scope (DEPARTMENT_HEAD)")
	flag.StringVar(&formationID, "formation", "", "Formation scope (STUDENT)")
	flag.StringVar(&professorID, "professor", "", "Professor scope (PROFESSOR)")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to JWT_EXPIRATION")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	expiry := cfg.JWT.Expiration
	if ttl > 0 {
		expiry = ttl
	}

	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: expiry,
		Issuer:            cfg.JWT.Issuer,
	})

	token, issuedAt, err := auth.IssueToken(models.JWTClaims{
		UserID:       userID,
		Role:         models.UserRole(role),
		Email:        email,
		DepartmentID: departmentID,
		FormationID:  formationID,
		ProfessorID:  professorID,
	})
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Fprintln(os.Stdout, token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", issuedAt.Add(expiry).Format(time.RFC3339))
}
