package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"moodtrack/internal/auth"
	"moodtrack/internal/cache"
	"moodtrack/internal/client"
	"moodtrack/internal/config"
	"moodtrack/internal/db"
	"moodtrack/internal/detect"
	"moodtrack/internal/handlers"
	"moodtrack/internal/logging"
	"moodtrack/internal/models"
	"moodtrack/internal/server"
	"moodtrack/internal/tally"
	"moodtrack/internal/web"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "moodtrack",
	Short: "Personal mood tracker",
}

// openDB loads the config and opens the database. The caller must close it.
func openDB() (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, database, nil
}

// jwtSecret returns the configured secret or generates an ephemeral one.
func jwtSecret(cfg *config.Config) (string, error) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	slog.Warn("JWT_SECRET not set, sessions will not survive a restart")
	return hex.EncodeToString(secret), nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		logging.New(cfg.Log)

		secret, err := jwtSecret(cfg)
		if err != nil {
			return err
		}

		t, err := tally.New(database)
		if err != nil {
			return fmt.Errorf("loading mood tally: %w", err)
		}

		a := auth.New(database, secret)
		detector := detect.New(cfg.Detector.URL, cfg.Detector.Timeout)
		h := handlers.New(database, t, cache.New(), detector, a, cfg.Auth.Required)

		pages, err := web.New(client.New(cfg.APIBase()))
		if err != nil {
			return err
		}

		srv := server.New(cfg.Server, h, pages, a)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting mood tracker", "addr", cfg.Server.Addr(), "detector", detector.Enabled())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var loginLinkCmd = &cobra.Command{
	Use:   "login-link",
	Short: "Generate a single-use writer login link",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		secret, err := jwtSecret(cfg)
		if err != nil {
			return err
		}

		baseURL := cfg.Auth.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}

		link, err := auth.New(database, secret).GenerateLoginLink(baseURL)
		if err != nil {
			return fmt.Errorf("generating login link: %w", err)
		}

		fmt.Printf("\n=== Writer login link (single use, valid for 24 hours) ===\n%s\n\n", link)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download mood entries from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if format != "csv" && format != "json" {
			return fmt.Errorf("unsupported format %q (want csv or json)", format)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		data, filename, err := client.New(cfg.APIBase()).Export(cmd.Context(), format)
		if err != nil {
			return err
		}

		if output == "" {
			output = filename
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		fmt.Printf("Wrote %d bytes to %s\n", len(data), output)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add MOOD",
	Short: "Record a mood via a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		token, _ := cmd.Flags().GetString("token")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		api := client.New(cfg.APIBase())
		if token != "" {
			api = api.WithToken(token)
		}

		entry, err := api.CreateMood(cmd.Context(), models.MoodCreate{
			Mood: args[0],
			Note: note,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Recorded %s (%s)\n", entry.Mood, entry.ID)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "csv", "Export format (csv or json)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (defaults to the server-chosen name)")
	addCmd.Flags().StringP("note", "n", "", "Optional note")
	addCmd.Flags().StringP("token", "t", "", "Writer JWT when the server requires auth")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginLinkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(addCmd)
}
