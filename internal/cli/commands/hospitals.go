package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewHospitalsCmd creates the hospitals directory command
func NewHospitalsCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "Browse the hospital directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListHospitals(city)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "Filter by city")

	return cmd
}

func runListHospitals(city string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	hospitals, err := client.Hospitals(context.Background(), "", city)
	if err != nil {
		return err
	}

	if len(hospitals) == 0 {
		fmt.Println("No hospitals found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCITY\tPHONE\tADDRESS")
	fmt.Fprintln(w, "────\t────\t─────\t───────")

	for _, h := range hospitals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			h.Name,
			h.City,
			h.Phone,
			h.Address,
		)
	}

	w.Flush()

	return nil
}
