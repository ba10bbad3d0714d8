package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/whiteelite/registry/internal/application/bank"
	"github.com/whiteelite/registry/internal/ctxlog"
	"github.com/whiteelite/registry/internal/domain/entities"
	"github.com/whiteelite/registry/internal/infrastructure/fixtures"
	"github.com/whiteelite/registry/internal/infrastructure/memory"
)

type bankOptions struct {
	seed     string
	account  int64
	deposit  string
	withdraw string
}

func (a *app) newBankCmd() *cobra.Command {
	var opts bankOptions

	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Run the bank scenario",
		Long: `Open the seeded accounts, deposit into and withdraw from one of them and
print the accounts report. A refused withdrawal is logged and the report is
still printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBank(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.seed, "seed", "", "fixtures file (defaults to the built-in demo data)")
	cmd.Flags().Int64Var(&opts.account, "account", 1001, "account number to operate on")
	cmd.Flags().StringVar(&opts.deposit, "deposit", "2500", "amount to deposit, empty to skip")
	cmd.Flags().StringVar(&opts.withdraw, "withdraw", "500", "amount to withdraw, empty to skip")
	return cmd
}

func (a *app) runBank(cmd *cobra.Command, opts bankOptions) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	deposit, err := parseAmount("deposit", opts.deposit)
	if err != nil {
		return err
	}
	withdraw, err := parseAmount("withdraw", opts.withdraw)
	if err != nil {
		return err
	}

	f, err := loadFixtures(opts.seed)
	if err != nil {
		return err
	}

	regOpts, closeSink, err := a.registryOptions(ctx)
	if err != nil {
		return err
	}
	defer closeSink()

	// A name from a seed file wins over the configured one.
	name := a.cfg.Bank.Name
	if opts.seed != "" && f.Bank.Name != "" {
		name = f.Bank.Name
	}

	b := bank.New(bank.Config{Name: name, Strict: a.cfg.Strict, Logger: logger}, memory.New[entities.Account](regOpts...))
	if err := fixtures.SeedBank(b, f); err != nil {
		return fmt.Errorf("seeding accounts: %w", err)
	}

	number := entities.AccountNumber(opts.account)
	if deposit != nil {
		if err := b.Deposit(number, *deposit); err != nil {
			return err
		}
	}
	if withdraw != nil {
		if err := b.Withdraw(number, *withdraw); err != nil && !errors.Is(err, bank.ErrInsufficientFunds) {
			return err
		}
	}

	report := b.Report()
	if a.cfg.Output == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return renderReport(cmd.OutOrStdout(), report)
}

// parseAmount returns nil for an empty value.
func parseAmount(flag, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s amount %q: %w", flag, value, err)
	}
	return &d, nil
}
