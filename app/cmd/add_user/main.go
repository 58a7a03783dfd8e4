package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gerarddekkers/builder-backend/logger"
)

// Creates a builder user from the command line, for bootstrapping accounts
// without going through the admin API.
func main() {
	username := flag.String("username", "", "login name (required)")
	password := flag.String("password", "", "initial password, minimum 6 characters (required)")
	displayName := flag.String("display-name", "", "display name shown in the UI")
	role := flag.String("role", models.RoleBuilder, "ADMIN or BUILDER")
	allAccess := flag.Bool("all-access", false, "grant access to every environment")
	flag.Parse()

	if *username == "" || len(*password) < 6 {
		flag.Usage()
		os.Exit(2)
	}
	if *role != models.RoleAdmin && *role != models.RoleBuilder {
		fmt.Fprintf(os.Stderr, "invalid role %q, use ADMIN or BUILDER\n", *role)
		os.Exit(2)
	}

	logger.InitLogger()
	config.Init()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "Metro database is not configured, set BUILDER_METRO_ENABLED=true")
		os.Exit(1)
	}
	if err := database.EnsureUsersTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "could not ensure builder_users table: %v\n", err)
		os.Exit(1)
	}

	user, err := database.CreateUser(db, models.CreateUserRequest{
		Username:             *username,
		Password:             *password,
		DisplayName:          *displayName,
		Role:                 *role,
		AccessAssessmentTest: *allAccess,
		AccessAssessmentProd: *allAccess,
		AccessJourneysTest:   *allAccess,
		AccessJourneysProd:   *allAccess,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("user created: %s (%s, id %d)\n", user.Username, user.Role, user.ID)
}
