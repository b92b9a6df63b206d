package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewDoctorsCmd creates the doctors directory command
func NewDoctorsCmd() *cobra.Command {
	var specialization string

	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Browse the doctor directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListDoctors(specialization)
		},
	}

	cmd.Flags().StringVar(&specialization, "specialization", "", "Filter by specialization")

	return cmd
}

func runListDoctors(specialization string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	doctors, err := client.Doctors(context.Background(), "", specialization)
	if err != nil {
		return err
	}

	if len(doctors) == 0 {
		fmt.Println("No doctors found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSPECIALIZATION\tHOSPITAL\tFEE")
	fmt.Fprintln(w, "────\t──────────────\t────────\t───")

	for _, d := range doctors {
		fee := ""
		if d.ConsultationFee > 0 {
			fee = fmt.Sprintf("%.2f", d.ConsultationFee)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.Name,
			d.Specialization,
			d.Hospital,
			fee,
		)
	}

	w.Flush()

	return nil
}
