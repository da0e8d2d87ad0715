// Command staffctl runs schema migrations and creates accounts.
//
//	staffctl migrate up|down|status
//	staffctl user create -email a@b.c -name Anna -password secret -role manager [-pin 1234]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/config"
	"github.com/MKabaja/SHIFTFlow/internal/database"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	config.LoadDotEnv()
	cfg := config.LoadDB()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	switch os.Args[1] {
	case "migrate":
		cmd := "up"
		if len(os.Args) > 2 {
			cmd = os.Args[2]
		}
		if err := database.Migrate(ctx, db, cmd); err != nil {
			logrus.WithError(err).Fatal("migrate")
		}
	case "user":
		if len(os.Args) < 3 || os.Args[2] != "create" {
			usage()
		}
		nu, err := parseUser(os.Args[3:])
		if err != nil {
			logrus.WithError(err).Fatal("user create")
		}
		id, err := repository.NewUserRepo(db).Create(ctx, nu, cfg.BcryptCost)
		if err != nil {
			logrus.WithError(err).Fatal("user create")
		}
		logrus.WithFields(logrus.Fields{"id": id, "email": nu.Email, "role": nu.Role}).Info("user created")
	default:
		usage()
	}
}

// parseUser reads the flags of "user create".
func parseUser(args []string) (repository.NewUser, error) {
	fs := flag.NewFlagSet("user create", flag.ContinueOnError)
	email := fs.String("email", "", "login email (required)")
	name := fs.String("name", "", "display name (required)")
	password := fs.String("password", "", "password (required)")
	role := fs.String("role", string(model.RoleEmployee), "employee, manager or admin")
	pin := fs.String("pin", "", "optional PIN for terminal login")
	positions := fs.String("positions", "", "comma separated post codes")
	rate := fs.String("rate", "", "hourly rate")
	contract := fs.String("contract", string(model.ContractUOP), "contract type")
	if err := fs.Parse(args); err != nil {
		return repository.NewUser{}, err
	}

	if *email == "" || *name == "" || *password == "" {
		return repository.NewUser{}, fmt.Errorf("-email, -name and -password are required")
	}
	r, ok := model.ParseRole(*role)
	if !ok {
		return repository.NewUser{}, fmt.Errorf("unknown role %q", *role)
	}
	var posts []string
	for _, p := range strings.Split(*positions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			posts = append(posts, p)
		}
	}
	return repository.NewUser{
		Name:         *name,
		Email:        *email,
		Password:     *password,
		Pin:          *pin,
		Role:         r,
		Positions:    posts,
		HourlyRate:   *rate,
		ContractType: model.ContractType(*contract),
	}, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: staffctl migrate up|down|status")
	fmt.Fprintln(os.Stderr, "       staffctl user create -email E -name N -password P [-role R] [-pin PIN]")
	os.Exit(2)
}
