package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"finease/internal/models"
	"finease/internal/repository"
	"finease/internal/service"
	"finease/pkg/auth"
	"finease/pkg/config"
	"finease/pkg/logger"
	"finease/pkg/mongodb"
	"finease/pkg/postgres"
	"finease/pkg/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sampleCategories = []string{"food", "transport", "utilities", "shopping", "entertainment", "salary"}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Development helpers for the FinEase server",
		SilenceUsage: true,
	}
	root.AddCommand(newTransactionsCmd(), newTokenCmd())
	return root
}

func newTransactionsCmd() *cobra.Command {
	var email string
	var count int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Insert sample transactions owned by an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(cfg.Logger.Level); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()
			appLogger := logger.Get()

			gateway, repo := openStore(cfg, appLogger)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Store.ConnectTimeout+cfg.Store.OpTimeout)
			defer cancel()
			defer gateway.Close(context.Background())

			if err := gateway.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}

			svc := service.NewTransactionService(repo, appLogger)
			owner := &auth.Identity{Email: email}

			appLogger.Info("Seeding transactions", zap.String("email", email), zap.Int("count", count))
			for _, doc := range sampleTransactions(count, time.Now()) {
				id, err := svc.Create(ctx, owner, doc)
				if err != nil {
					return fmt.Errorf("failed to insert transaction: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
			}

			appLogger.Info("Seeding completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "owner email for the sample transactions")
	cmd.Flags().IntVar(&count, "count", 10, "number of transactions to insert")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var email, uid string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development identity token (IDENTITY_PROVIDER=jwt)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Identity.Provider != config.IdentityProviderJWT {
				return fmt.Errorf("token minting needs IDENTITY_PROVIDER=jwt, got %q", cfg.Identity.Provider)
			}

			manager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Expiration)
			token, err := manager.GenerateToken(uid, email)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&uid, "uid", "", "subject claim (random when empty)")
	return cmd
}

func openStore(cfg *config.Config, appLogger *zap.Logger) (store.Gateway, repository.TransactionRepository) {
	if cfg.Store.Driver == config.StoreDriverPostgres {
		gw := postgres.NewGateway(&cfg.Postgres, &cfg.Store, appLogger)
		return gw, repository.NewPostgresTransactionRepository(gw, appLogger)
	}
	gw := mongodb.NewGateway(&cfg.Mongo, &cfg.Store, appLogger)
	return gw, repository.NewMongoTransactionRepository(gw, appLogger)
}

// sampleTransactions spreads count records over the days before now.
func sampleTransactions(count int, now time.Time) []models.Transaction {
	rng := rand.New(rand.NewSource(now.UnixNano()))
	docs := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		category := sampleCategories[rng.Intn(len(sampleCategories))]
		kind := "expense"
		if category == "salary" {
			kind = "income"
		}
		docs = append(docs, models.Transaction{
			"type":        kind,
			"category":    category,
			"amount":      float64(rng.Intn(50000)) / 100,
			"description": fmt.Sprintf("Sample %s transaction #%d", category, i+1),
			"date":        now.AddDate(0, 0, -i).UTC().Format(time.RFC3339),
		})
	}
	return docs
}
