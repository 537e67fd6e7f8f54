package main

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var confirmOperator string

// confirmPaymentCmd is the operator path for QRIS transfers that never
// produced a gateway callback.
var confirmPaymentCmd = &cobra.Command{
	Use:   "confirm-payment <report-id>",
	Short: "Mark a report paid after manual QRIS reconciliation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid report id %q: %w", args[0], err)
		}

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close()

		reportStore := store.NewReportStore(database.DB)
		reportService := services.NewReportService(reportStore, nil, services.WithPaymentSettings(paymentSettings(cfg)))
		paymentService := services.NewPaymentService(reportService, reportStore, store.NewPaymentEventStore(database.DB), cfg.PaymentWebhookSecret)

		report, err := paymentService.ConfirmByOperator(cmd.Context(), reportID, confirmOperator)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report %s status=%s paid_at=%s\n",
			report.ID, report.Status(), report.PaidAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	confirmPaymentCmd.Flags().StringVar(&confirmOperator, "operator", "", "name or email of the staff member confirming the payment (required)")
	_ = confirmPaymentCmd.MarkFlagRequired("operator")
}
