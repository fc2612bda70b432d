package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/database"
	"github.com/stemsi/exstem-online/internal/logger"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/repository"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userService := service.NewUserService(cfg, repository.NewUserRepository(pool))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Account ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}

	req := &model.RegisterRequest{Name: name, Email: email, Password: string(bytePassword)}
	if fields := validator.Struct(req); len(fields) > 0 {
		for field, msg := range fields {
			fmt.Printf("Error: %s: %s\n", field, msg)
		}
		os.Exit(1)
	}

	user, err := userService.Register(ctx, req)
	if errors.Is(err, service.ErrEmailTaken) {
		fmt.Printf("Error: an account for %s already exists\n", req.Email)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	fmt.Printf("\nSuccess! Account '%s' (%s) created with ID: %d\n", user.Name, user.Email, user.ID)
}
