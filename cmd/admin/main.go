// Command admin manages administrator accounts and roles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"newsletter/internal/config"
	"newsletter/internal/database"
	"newsletter/internal/repository"
	"newsletter/internal/service"
)

const usageText = `Usage:
  admin create-superuser -username <name> -email <email> [-password <pw>]
  admin promote <username>            - Grant admin rights
  admin demote <username>             - Revoke admin rights
  admin set-role <username> <role>    - Assign a role (President, Manager, ...)
  admin list-admins                   - List all admins

The superuser password falls back to ADMIN_PASSWORD.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := repository.NewUserRepository(db)
	a := &admin{
		auth:  service.NewAuthService(users, service.NewTokenService(cfg)),
		users: service.NewUserService(users),
	}

	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type admin struct {
	auth  *service.AuthService
	users *service.UserService
}

func (a *admin) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create-superuser":
		return a.createSuperuser(ctx, args)
	case "promote", "demote":
		if len(args) < 1 {
			return fmt.Errorf("usage: admin %s <username>", command)
		}
		user, err := a.users.SetAdmin(ctx, args[0], command == "promote")
		if err != nil {
			return err
		}
		fmt.Printf("%s (ID: %d) admin=%t\n", user.Username, user.ID, user.IsAdmin)
	case "set-role":
		if len(args) < 2 {
			return fmt.Errorf("usage: admin set-role <username> <role>")
		}
		user, err := a.users.AssignRole(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (ID: %d) is now %s\n", user.Username, user.ID, user.Role)
	case "list-admins":
		admins, err := a.users.ListAdmins(ctx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Println("No admins found")
			return nil
		}
		for _, u := range admins {
			fmt.Printf("ID: %d | Username: %s | Email: %s | Role: %s\n", u.ID, u.Username, u.Email, u.Role)
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usageText)
	}
	return nil
}

func (a *admin) createSuperuser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-superuser", flag.ContinueOnError)
	username := fs.String("username", "admin", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, created, err := a.auth.EnsureSuperuser(ctx, service.SuperuserInput{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created superuser %s (ID: %d)\n", user.Username, user.ID)
	} else {
		fmt.Printf("Promoted existing account %s (ID: %d) to admin\n", user.Username, user.ID)
	}
	return nil
}
