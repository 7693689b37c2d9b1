package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/adapter/repository"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/auth"
	"github.com/iho/pocketledger/internal/infrastructure/config"
	"github.com/iho/pocketledger/internal/infrastructure/logger"
	"github.com/iho/pocketledger/internal/infrastructure/postgres"
	"github.com/iho/pocketledger/internal/usecase"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

func registerCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var user dto.UserResponse
			err := newClient().do(cmd.Context(), http.MethodPost, "/api/v1/auth/register",
				dto.CredentialsRequest{Username: args[0], Password: password}, &user)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and save the bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.LoginResponse
			err := newClient().do(cmd.Context(), http.MethodPost, "/api/v1/auth/login",
				dto.CredentialsRequest{Username: args[0], Password: password}, &resp)
			if err != nil {
				return err
			}

			if err := saveToken(resp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", resp.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func addCmd() *cobra.Command {
	var (
		description string
		amount      string
		txnType     string
		date        string
		category    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := domain.ParseAmount(amount)
			if err != nil {
				return err
			}
			if date == "" {
				date = time.Now().Format(domain.DateLayout)
			}

			client, err := newClient().authenticated()
			if err != nil {
				return err
			}

			var txn dto.TransactionResponse
			err = client.do(cmd.Context(), http.MethodPost, "/api/v1/transactions", dto.TransactionRequest{
				Description: description,
				Amount:      &parsed,
				Type:        txnType,
				Date:        date,
				Category:    category,
			}, &txn)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s on %s (%s)\n",
				txn.Type, txn.Amount.StringFixed(2), txn.Description, txn.Date, txn.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, always positive")
	cmd.Flags().StringVarP(&txnType, "type", "t", string(domain.TransactionTypeExpense), "income or expense")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient().authenticated()
			if err != nil {
				return err
			}

			var ledger dto.LedgerResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/transactions", nil, &ledger); err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), ledger)
			}
			printTransactions(cmd.OutOrStdout(), ledger.Transactions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func summaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, categories and recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient().authenticated()
			if err != nil {
				return err
			}

			var summary dto.SummaryResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/summary", nil, &summary); err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			printSummary(cmd.OutOrStdout(), &summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func calendarCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of day indicators",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient().authenticated()
			if err != nil {
				return err
			}

			path := "/api/v1/calendar"
			if month != "" {
				path += "?month=" + url.QueryEscape(month)
			}

			var cal dto.CalendarResponse
			if err := client.do(cmd.Context(), http.MethodGet, path, nil, &cal); err != nil {
				return err
			}

			return printCalendar(cmd.OutOrStdout(), &cal)
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default current month)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a legacy browser export into the configured storage",
		Long: `Reads a local-storage export of the browser client, registers every user
with a hashed password and stores their transactions. Storage is selected by
the same environment variables the server uses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			export, err := usecase.ReadLegacyExport(f)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())
			result, err := runImport(cmd.Context(), cfg, export, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d users and %d transactions\n", result.UsersImported, result.TransactionsImported)
			for _, name := range result.ResumedUsers {
				fmt.Fprintf(out, "Resumed existing user %s\n", name)
			}
			for _, name := range result.SkippedUsers {
				fmt.Fprintf(out, "Skipped existing user %s\n", name)
			}
			for _, name := range result.OrphanedBudgets {
				fmt.Fprintf(out, "Skipped budget of unknown user %s\n", name)
			}
			return nil
		},
	}
}

func runImport(ctx context.Context, cfg *config.Config, export *usecase.LegacyExport, log zerolog.Logger) (*usecase.ImportResult, error) {
	backend, err := repository.NewFactory(log).Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	idGen := repository.NewULIDGenerator()
	credentials := usecase.NewCredentialUseCase(usecase.CredentialDeps{
		UserRepo: backend.Users,
		Hasher:   auth.NewBcryptHasher(cfg.BcryptCost),
		IDGen:    idGen,
		Logger:   log,
	})
	ledgers := usecase.NewLedgerUseCase(backend.Ledgers, idGen, nil, nil, nil, log)

	return usecase.NewImportUseCase(credentials, ledgers, log).Import(ctx, export)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL schema migrations",
	}

	run := func(apply func(databaseURL string, log zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())
			return apply(cfg.DatabaseURL, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run(postgres.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE:  run(postgres.RunMigrationsDown),
		},
	)

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidatePassword(args[0]); err != nil {
				return err
			}

			hash, err := bcryptGenerate([]byte(args[0]), cost)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTransactions(w io.Writer, txns []dto.TransactionResponse) {
	if len(txns) == 0 {
		fmt.Fprintln(w, "No transactions")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tTYPE\tAMOUNT")
	for _, t := range txns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Date, truncate(t.Description, 32), t.Category, t.Type, signed(t.Type, t.Amount))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s *dto.SummaryResponse) {
	fmt.Fprintf(w, "Transactions: %d\n", s.TransactionCount)
	fmt.Fprintf(w, "Income:       %s\n", s.Totals.Income.StringFixed(2))
	fmt.Fprintf(w, "Expenses:     %s\n", s.Totals.Expense.StringFixed(2))
	fmt.Fprintf(w, "Balance:      %s\n", s.NetBalance.StringFixed(2))

	if len(s.Categories) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
		for _, c := range s.Categories {
			fmt.Fprintf(tw, "%s\t%s\t%s%%\n", c.Category, c.Amount.StringFixed(2), c.Percent.StringFixed(1))
		}
		tw.Flush()
	}

	if len(s.Recent) > 0 {
		fmt.Fprintln(w, "\nRecent:")
		printTransactions(w, s.Recent)
	}
}

// indicatorMarks are the one-character calendar cell marks.
var indicatorMarks = map[string]string{
	"none":             " ",
	"income-only":      "+",
	"expense-only":     "-",
	"expense-dominant": "!",
	"mixed":            "~",
}

func printCalendar(w io.Writer, cal *dto.CalendarResponse) error {
	first, err := time.Parse("2006-01", cal.Month)
	if err != nil {
		return fmt.Errorf("server returned bad month %q", cal.Month)
	}

	fmt.Fprintf(w, "%s\n", first.Format("January 2006"))
	fmt.Fprintln(w, " Mo   Tu   We   Th   Fr   Sa   Su")

	// Monday-first column of the 1st.
	col := (int(first.Weekday()) + 6) % 7
	for i := 0; i < col; i++ {
		fmt.Fprint(w, "     ")
	}

	for i, day := range cal.Days {
		mark, ok := indicatorMarks[day.Indicator]
		if !ok {
			mark = "?"
		}
		fmt.Fprintf(w, " %2d%s ", i+1, mark)
		col++
		if col == 7 {
			fmt.Fprintln(w)
			col = 0
		}
	}
	if col != 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "\n+ income  - expense  ! expenses exceed income  ~ mixed")
	return nil
}

func signed(txnType string, amount decimal.Decimal) string {
	if txnType == string(domain.TransactionTypeExpense) {
		return "-" + amount.StringFixed(2)
	}
	return amount.StringFixed(2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
