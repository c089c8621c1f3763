package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/billing"
)

var account *billing.Account

func init() {
	SubscriptionCommand.AddCommand(&SubscriptionPlansCommand)
	SubscriptionCommand.AddCommand(&SubscriptionChangeCommand)
	SubscriptionCommand.AddCommand(&SubscriptionTopUpCommand)

	inheritPersistentPreRun(&SubscriptionCommand)

	RootCmd.AddCommand(&SubscriptionCommand)
}

var SubscriptionCommand = cobra.Command{
	Use:   "subscription",
	Short: "Show your subscription",
	Long:  "Show your plan and token balance, change plan or buy tokens",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(cmd, args); err != nil {
			return err
		}

		var err error
		account, err = billing.NewAccount(
			subscriptionClient,
			billing.WithCapacity(config.Billing.Capacity),
			billing.WithLogger(logger.WithField("component", "billing")),
		)
		if err != nil {
			return err
		}
		return account.Load(context.Background())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		sub := account.Subscription()

		price := "Free"
		if sub.Amount > 0 {
			amount := sub.Amount
			price = billing.FormatCurrency(&amount, sub.Currency) + " / month"
		}
		fmt.Fprintf(out, "Plan:   %s (%s)\n", sub.Plan, price)
		fmt.Fprintf(out, "Tokens: %s / %s (%s)\n",
			humanize.Comma(sub.Tokens),
			humanize.Comma(account.Capacity()),
			gauge(account.Usage()),
		)

		if account.OutOfTokens() {
			fmt.Fprintln(out, "You've run out of tokens! Run `atelier subscription topup` to buy more.")
		}
		return nil
	},
}

// gauge draws a percentage as a 20 cells bar.
func gauge(pct float64) string {
	filled := int(pct / 5)
	return fmt.Sprintf("[%s%s] %.0f%%", strings.Repeat("#", filled), strings.Repeat(".", 20-filled), pct)
}

var SubscriptionPlansCommand = cobra.Command{
	Use:   "plans",
	Short: "List the plans",
	Long:  "List the plans, the current one is marked with a *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, ok := account.CurrentPlan()
		return printPlans(cmd.OutOrStdout(), account.Plans(), current, ok)
	},
}

// printPlans lists plans, marking current when ok.
func printPlans(out io.Writer, plans []atelier.Plan, current atelier.Plan, ok bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tPRICE\tTOKENS\tFEATURES")
	for _, p := range plans {
		mark := ""
		if ok && p.ID == current.ID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, p.ID, p.Name,
			billing.FormatCurrency(p.Price, p.Currency),
			billing.FormatTokens(p.Tokens),
			strings.Join(p.Features, ", "),
		)
	}
	return w.Flush()
}

var SubscriptionChangeCommand = cobra.Command{
	Use:   "change <plan>",
	Short: "Change plan",
	Long:  "Move your subscription to another plan",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var planID string
		if len(args) > 0 {
			planID = args[0]
		}

		msg, err := account.ChangePlan(context.Background(), planID)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var SubscriptionTopUpCommand = cobra.Command{
	Use:   "topup [package]",
	Short: "Buy tokens",
	Long:  "List the token packages, or buy one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTOKENS\tPRICE")
			for _, pkg := range account.Packages() {
				price := pkg.Price
				tokens := pkg.Tokens
				fmt.Fprintf(w, "%s\t%s\t%s\n", pkg.ID, billing.FormatTokens(&tokens), billing.FormatCurrency(&price, pkg.Currency))
			}
			return w.Flush()
		}

		msg, err := account.PurchaseTopUp(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(out, msg)
		fmt.Fprintf(out, "Tokens: %s\n", humanize.Comma(account.Subscription().Tokens))
		return nil
	},
}
