package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [campaign]",
	Short: "Check the payment status of the donation stored for a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var clearCmd = &cobra.Command{
	Use:   "clear [campaign]",
	Short: "Forget the stored donation for a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "List stored donation references and their last known status",
	RunE:  runRefs,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	t, err := a.session.Mount(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	t, err := a.session.Mount(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := t.ClearHistory(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Payment history cleared for campaign %s\n", args[0])
	return nil
}

func runRefs(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	rows, err := a.store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No stored donations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAMPAIGN\tDONATION\tSTATUS\tTRACKING\tCODE\tCHECKED")
	for _, r := range rows {
		code, checked := "-", "-"
		if r.TransactionCode != nil {
			code = *r.TransactionCode
		}
		if r.CheckedAt != nil {
			checked = r.CheckedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n", r.CampaignID, r.DonationID, r.Status, r.Tracking, code, checked)
	}
	return w.Flush()
}
