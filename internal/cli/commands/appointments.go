package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/medverse/portal/internal/backend"
)

// NewAppointmentsCmd creates the appointments command group
func NewAppointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "List and book appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListAppointments()
		},
	}

	cmd.AddCommand(newBookAppointmentCmd())

	return cmd
}

func runListAppointments() error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	appointments, err := client.Appointments(context.Background(), "")
	if err != nil {
		return err
	}

	if len(appointments) == 0 {
		fmt.Println("No appointments found.")
		fmt.Println("\nBook one with: medverse appointments book --doctor <name> --date <date> --time <time>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tDOCTOR\tHOSPITAL\tSTATUS")
	fmt.Fprintln(w, "────\t────\t──────\t────────\t──────")

	for _, a := range appointments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.Date,
			a.Time,
			a.DoctorName,
			a.Hospital,
			a.Status,
		)
	}

	w.Flush()

	return nil
}

func newBookAppointmentCmd() *cobra.Command {
	var req backend.BookAppointmentRequest

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a new appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookAppointment(req)
		},
	}

	cmd.Flags().StringVar(&req.DoctorName, "doctor", "", "Doctor name (required)")
	cmd.Flags().StringVar(&req.Hospital, "hospital", "", "Hospital name")
	cmd.Flags().StringVar(&req.Department, "department", "", "Department")
	cmd.Flags().StringVar(&req.Date, "date", "", "Appointment date, e.g. 2026-09-15 (required)")
	cmd.Flags().StringVar(&req.Time, "time", "", "Appointment time, e.g. 14:30 (required)")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Notes for the doctor")
	cmd.MarkFlagRequired("doctor")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("time")

	return cmd
}

func runBookAppointment(req backend.BookAppointmentRequest) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	appointment, err := client.BookAppointment(context.Background(), "", req)
	if err != nil {
		return err
	}

	fmt.Println("✓ Appointment booked!")
	fmt.Printf("  Doctor: %s\n", appointment.DoctorName)
	fmt.Printf("  When:   %s %s\n", appointment.Date, appointment.Time)
	if appointment.Status != "" {
		fmt.Printf("  Status: %s\n", appointment.Status)
	}

	return nil
}
