package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewRecordsCmd creates the records command
func NewRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List medical records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRecords()
		},
	}
}

func runListRecords() error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	records, err := client.MedicalRecords(context.Background(), "")
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No medical records found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tDOCTOR\tDESCRIPTION")
	fmt.Fprintln(w, "────\t────\t──────\t───────────")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.Date,
			r.Type,
			r.DoctorName,
			r.Description,
		)
	}

	w.Flush()

	return nil
}
