package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brayohmurithidev/donatehub-landing/models"
	"github.com/brayohmurithidev/donatehub-landing/tracker"
)

var donateFlags struct {
	campaign  string
	tenant    string
	amount    float64
	name      string
	email     string
	phone     string
	method    string
	message   string
	anonymous bool
}

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Submit a donation and follow its payment status",
	Long: `Submit a donation and follow the M-Pesa payment until it settles.

Examples:
  donatehub donate --campaign 9c1f --amount 1000 --phone 0712345678 --anonymous
  donatehub donate --campaign 9c1f --amount 500 --name "Achieng O." --email a@example.com --phone 0712345678`,
	RunE: runDonate,
}

func init() {
	f := donateCmd.Flags()
	f.StringVar(&donateFlags.campaign, "campaign", "", "campaign id")
	f.StringVar(&donateFlags.tenant, "tenant", "", "tenant id (looked up from the campaign when empty)")
	f.Float64Var(&donateFlags.amount, "amount", 0, "amount in KES")
	f.StringVar(&donateFlags.name, "name", "", "donor name")
	f.StringVar(&donateFlags.email, "email", "", "donor email")
	f.StringVar(&donateFlags.phone, "phone", "", "M-Pesa phone number")
	f.StringVar(&donateFlags.method, "method", "mpesa", "payment method (mpesa or card)")
	f.StringVar(&donateFlags.message, "message", "", "message to the campaign")
	f.BoolVar(&donateFlags.anonymous, "anonymous", false, "donate anonymously")
	_ = donateCmd.MarkFlagRequired("campaign")
}

func runDonate(cmd *cobra.Command, args []string) error {
	method, ok := models.ParsePaymentMethod(donateFlags.method)
	if !ok {
		return fmt.Errorf("unknown payment method %q", donateFlags.method)
	}

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := models.DonationRequest{
		CampaignID:  donateFlags.campaign,
		TenantID:    donateFlags.tenant,
		Amount:      donateFlags.amount,
		DonorName:   donateFlags.name,
		DonorEmail:  donateFlags.email,
		DonorPhone:  donateFlags.phone,
		Message:     donateFlags.message,
		Method:      method,
		IsAnonymous: donateFlags.anonymous,
	}
	// Submit validates again; this check keeps a bad form from reaching
	// the campaign lookup below.
	if err := req.Validate(); err != nil {
		return err
	}
	if req.TenantID == "" {
		campaign, err := a.client.GetCampaign(ctx, req.CampaignID)
		if err != nil {
			return fmt.Errorf("looking up campaign: %w", err)
		}
		req.TenantID = campaign.Tenant.ID
	}

	t, err := a.session.Mount(ctx, req.CampaignID)
	if err != nil {
		return err
	}
	res, err := t.Submit(ctx, req)
	if err != nil {
		return err
	}
	printNotice(t.Snapshot())
	if res.RequiresCardPayment {
		fmt.Printf("Donation %s created. Card payments are completed in the browser checkout.\n", res.DonationID)
		return nil
	}
	if !res.Tracking {
		return nil
	}
	return follow(ctx, t)
}

// follow prints status changes until tracking ends or ctx is cancelled. An
// interrupted run keeps the reference, so `status` picks it up again.
func follow(ctx context.Context, t *tracker.Tracker) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last tracker.Snapshot
	for {
		snap := t.Snapshot()
		if snap.State != last.State || snap.Status != last.Status {
			fmt.Printf("[%s] %s status=%s polls=%d\n", time.Now().Format(time.TimeOnly), snap.State, snap.Status, snap.Polls)
			last = snap
		}
		if snap.State != tracker.StateTracking {
			printNotice(snap)
			return nil
		}
		select {
		case <-ctx.Done():
			fmt.Println("Stopped following; the payment will be checked again next time.")
			return nil
		case <-ticker.C:
		}
	}
}

func printNotice(snap tracker.Snapshot) {
	if snap.Notice != nil {
		fmt.Printf("%s: %s\n", snap.Notice.Kind, snap.Notice.Text)
	}
}
