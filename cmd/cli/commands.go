package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/cardledger/internal/infrastructure/auth"
	"github.com/iho/cardledger/internal/infrastructure/logger"
	"github.com/iho/cardledger/internal/infrastructure/postgres"
)

type globalOptions struct {
	baseURL string
	token   string
	timeout time.Duration
}

func (o *globalOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "cardledger-cli",
		Short:         "Cardledger CLI tool",
		Long:          `A command line interface for the cardledger purchase ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the cardledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token for authenticated servers")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newCardsCmd(opts),
		newPurchasesCmd(opts),
		newFXCmd(opts),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

func newCardsCmd(opts *globalOptions) *cobra.Command {
	cardsCmd := &cobra.Command{Use: "cards", Short: "Card operations"}

	var number, limit string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/cards", nil, map[string]string{
				"cardNumber":  number,
				"creditLimit": limit,
			}, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	createCmd.Flags().StringVar(&number, "number", "", "16 digit card number")
	createCmd.Flags().StringVar(&limit, "limit", "", "Credit limit in USD")
	_ = createCmd.MarkFlagRequired("number")
	_ = createCmd.MarkFlagRequired("limit")

	getCmd := &cobra.Command{
		Use:   "get CARD_ID",
		Short: "Show a card",
		Args:  cobra.ExactArgs(1),
		RunE:  getJSON(opts, func(args []string) string { return "/api/v1/cards/" + url.PathEscape(args[0]) }, nil),
	}

	totalCmd := &cobra.Command{
		Use:   "total-spend CARD_ID",
		Short: "Show the card's total spend in USD",
		Args:  cobra.ExactArgs(1),
		RunE: getJSON(opts, func(args []string) string {
			return "/api/v1/cards/" + url.PathEscape(args[0]) + "/total-spend"
		}, nil),
	}

	var currency string
	balanceCmd := &cobra.Command{
		Use:   "balance CARD_ID",
		Short: "Show the available balance, optionally converted",
		Args:  cobra.ExactArgs(1),
		RunE: getJSON(opts, func(args []string) string {
			return "/api/v1/cards/" + url.PathEscape(args[0]) + "/available-balance"
		}, func() url.Values { return currencyQuery(currency) }),
	}
	balanceCmd.Flags().StringVar(&currency, "currency", "", "Target currency code")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile CARD_ID",
		Short: "Compare the spend projection with the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: getJSON(opts, func(args []string) string {
			return "/api/v1/cards/" + url.PathEscape(args[0]) + "/reconcile"
		}, nil),
	}

	cardsCmd.AddCommand(createCmd, getCmd, totalCmd, balanceCmd, reconcileCmd)
	return cardsCmd
}

func newPurchasesCmd(opts *globalOptions) *cobra.Command {
	purchasesCmd := &cobra.Command{Use: "purchases", Short: "Purchase operations"}

	var description, date, amount, currency, key string
	createCmd := &cobra.Command{
		Use:   "create CARD_ID",
		Short: "Record a purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = uuid.NewString()
			}
			raw, err := opts.client().do(cmd.Context(), http.MethodPost,
				"/api/v1/cards/"+url.PathEscape(args[0])+"/purchases", nil,
				map[string]string{
					"description":     description,
					"transactionDate": date,
					"amount":          amount,
					"currencyCode":    currency,
				},
				map[string]string{"Idempotency-Key": key})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	createCmd.Flags().StringVar(&description, "description", "", "Purchase description")
	createCmd.Flags().StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "Transaction date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&amount, "amount", "", "Amount in the purchase currency")
	createCmd.Flags().StringVar(&currency, "currency", "USD", "Purchase currency code")
	createCmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key; a fresh UUID when empty")
	_ = createCmd.MarkFlagRequired("description")
	_ = createCmd.MarkFlagRequired("amount")

	var target string
	getCmd := &cobra.Command{
		Use:   "get PURCHASE_ID",
		Short: "Show a purchase, optionally converted",
		Args:  cobra.ExactArgs(1),
		RunE: getJSON(opts, func(args []string) string {
			return "/api/v1/purchases/" + url.PathEscape(args[0])
		}, func() url.Values { return currencyQuery(target) }),
	}
	getCmd.Flags().StringVar(&target, "currency", "", "Target currency code")

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list CARD_ID",
		Short: "List a card's purchases",
		Args:  cobra.ExactArgs(1),
		RunE: getJSON(opts, func(args []string) string {
			return "/api/v1/cards/" + url.PathEscape(args[0]) + "/purchases"
		}, func() url.Values {
			return url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}}
		}),
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	purchasesCmd.AddCommand(createCmd, getCmd, listCmd)
	return purchasesCmd
}

func newFXCmd(opts *globalOptions) *cobra.Command {
	var currency string
	fxCmd := &cobra.Command{
		Use:   "fx",
		Short: "List the loaded exchange rates",
		Args:  cobra.NoArgs,
		RunE: getJSON(opts, func([]string) string { return "/api/v1/fx-rates" },
			func() url.Values { return currencyQuery(currency) }),
	}
	fxCmd.Flags().StringVar(&currency, "currency", "", "Only show this currency")
	return fxCmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, path string
	migrateCmd := &cobra.Command{Use: "migrate", Short: "Apply or roll back database migrations"}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string")
	migrateCmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")
	_ = migrateCmd.MarkPersistentFlagRequired("database-url")

	l := func(cmd *cobra.Command) zerolog.Logger {
		return logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, cmd.ErrOrStderr())
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return postgres.RunMigrations(databaseURL, path, l(cmd))
		},
	}
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return postgres.RunMigrationsDown(databaseURL, path, l(cmd))
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

func newTokenCmd() *cobra.Command {
	var secret, subject, role string
	var ttl time.Duration

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for an authenticated server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := auth.ParseRole(role)
			if err != nil {
				return err
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(subject, r)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	tokenCmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (JWT_SECRET on the server)")
	tokenCmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	tokenCmd.Flags().StringVar(&role, "role", string(auth.RoleOperator), "operator or viewer")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("secret")
	return tokenCmd
}

func getJSON(opts *globalOptions, path func(args []string) string, query func() url.Values) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var q url.Values
		if query != nil {
			q = query()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		raw, err := opts.client().get(ctx, path(args), q)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), raw)
	}
}

func currencyQuery(code string) url.Values {
	if code == "" {
		return nil
	}
	return url.Values{"currency": {code}}
}
