// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strmrider/SDTP/ca"
	"github.com/strmrider/SDTP/config"
	"github.com/strmrider/SDTP/health"
	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/metrics"
	"github.com/strmrider/SDTP/primitives"
)

var (
	serveConfigPath string
	serveEnvFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the certificate enrollment listener",
	Long: `serve loads configuration, provisions (or loads) the CA's RSA key
pair, selects an in-memory or Postgres-backed client table, and runs the
enrollment listener until interrupted.

When metrics.enabled is set, a debug HTTP server is mounted alongside
it serving Prometheus metrics at /metrics and a liveness probe at
/healthz, on the address named by the metrics section of the config
file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "Path to config file")
	serveCmd.Flags().StringVarP(&serveEnvFile, "env-file", "e", ".env", "Path to .env file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigPath: serveConfigPath, EnvFile: serveEnvFile})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ValidateConfiguration(cfg); err != nil {
		return err
	}

	log := logger.GetDefaultLogger()

	caKey, err := loadOrCreateCAKey(cfg)
	if err != nil {
		return fmt.Errorf("ca key: %w", err)
	}
	log.Info("ca key ready", logger.String("fingerprint", caKey.ID()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checker := health.NewHealthChecker(0)
	checker.RegisterCheck("ca-key", health.KeyPairHealthCheck(func() error { return nil }))

	store, closeStore, err := buildClientStore(ctx, cfg, checker)
	if err != nil {
		return fmt.Errorf("client store: %w", err)
	}
	defer closeStore()

	if cfg.CA.SnapshotPath != "" {
		if db, ok := store.(*ca.Database); ok {
			if err := db.LoadSnapshot(cfg.CA.SnapshotPath); err != nil && !os.IsNotExist(err) {
				log.Warn("failed to load snapshot", logger.Error(err))
			}
		}
	}

	srv := ca.NewServer(store, caKey)
	srv.Log = log

	listener, err := net.Listen("tcp", cfg.CA.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.CA.ListenAddr, err)
	}

	if cfg.Metrics.Enabled {
		go serveDebugHTTP(cfg.Metrics.Addr, checker, log)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		if cfg.CA.SnapshotPath != "" {
			if db, ok := store.(*ca.Database); ok {
				if err := db.SaveSnapshot(cfg.CA.SnapshotPath); err != nil {
					log.Warn("failed to save snapshot", logger.Error(err))
				}
			}
		}
		cancel()
	}()

	log.Info("ca-server listening", logger.String("addr", cfg.CA.ListenAddr))
	return srv.Serve(ctx, listener)
}

// buildClientStore picks Database or PostgresDatabase per
// Config.PostgresDSN, registering a health check for Postgres-backed
// deployments, and returns a cleanup function.
func buildClientStore(ctx context.Context, cfg *config.Config, checker *health.HealthChecker) (ca.ClientStore, func(), error) {
	dsn, err := cfg.PostgresDSN()
	if err != nil {
		return nil, nil, err
	}
	if dsn == "" {
		return ca.NewDatabase(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	checker.RegisterCheck("client-store", health.DatabaseHealthCheck(pool.Ping))
	return ca.NewPostgresDatabase(pool), pool.Close, nil
}

func serveDebugHTTP(addr string, checker *health.HealthChecker, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/healthz", checker.Handler())
	log.Info("debug http listening", logger.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("debug http server stopped", logger.Error(err))
	}
}

// loadOrCreateCAKey loads the CA's private key from CAConfig.KeyPath,
// generating and persisting a fresh one on first run. A non-empty
// KeyPassphraseEnv protects the file at rest; prompted interactively if
// the named variable is unset.
func loadOrCreateCAKey(cfg *config.Config) (*primitives.KeyPair, error) {
	passphrase, err := resolvePassphrase(cfg.CA.KeyPassphraseEnv, "CA key passphrase (leave empty for none): ")
	if err != nil {
		return nil, err
	}

	if cfg.CA.KeyPath == "" {
		return primitives.GenerateKeyPair(primitives.KeyOptions{Bits: cfg.CA.KeyBits})
	}
	if _, err := os.Stat(cfg.CA.KeyPath); err == nil {
		return primitives.LoadPrivateKeyPEM(cfg.CA.KeyPath, passphrase)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: cfg.CA.KeyBits})
	if err != nil {
		return nil, err
	}
	if err := primitives.SavePrivateKeyPEM(cfg.CA.KeyPath, key, passphrase); err != nil {
		return nil, err
	}
	return key, nil
}

// resolvePassphrase reads a passphrase from the named environment
// variable, or prompts on the terminal if it is unset and stdin is a
// terminal; otherwise returns nil (no passphrase).
func resolvePassphrase(envVar, prompt string) ([]byte, error) {
	if envVar == "" {
		return nil, nil
	}
	if v, ok := os.LookupEnv(envVar); ok {
		return []byte(v), nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	return pass, nil
}
