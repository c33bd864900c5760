// pmtoolkit serves the PM document toolkit API and manages user accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"pmtoolkit/pkg/auth"
	"pmtoolkit/pkg/config"
	"pmtoolkit/pkg/llm/factory"
	"pmtoolkit/pkg/llm/middleware"
	"pmtoolkit/pkg/logx"
	"pmtoolkit/pkg/prompts"
	"pmtoolkit/pkg/session"
	"pmtoolkit/pkg/store"
	"pmtoolkit/pkg/toolkit"
	"pmtoolkit/pkg/web"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "useradd":
		err = runUseradd(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\nusage: pmtoolkit [serve|useradd] [flags]\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pmtoolkit %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("PMTOOLKIT_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (default: PMTOOLKIT_CONFIG or built-in defaults)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logx.NewLogger("pmtoolkit")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	catalog, err := prompts.Load()
	if err != nil {
		return err
	}

	recorder := middleware.NewRecorder(nil)
	engines, err := factory.BuildEngines(cfg, logx.NewLogger("llm"), recorder)
	if err != nil {
		return err
	}

	sessions := session.NewManager(cfg.TrailCap)
	authn := auth.New(st, sessions)
	tk := toolkit.New(catalog, engines, st)
	srv := web.NewServer(cfg.ListenAddr, tk, authn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runUseradd(args []string) error {
	fs := flag.NewFlagSet("useradd", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	email := fs.String("email", "", "email address for the new account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := st.CreateUser(*email, hash); err != nil {
		return err
	}
	fmt.Printf("created user %s\n", *email)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(first), nil
}
