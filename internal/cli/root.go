package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medverse/portal/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "medverse",
	Short: "MedVerse - Healthcare portal from the terminal",
	Long: `MedVerse CLI - Browse hospitals and doctors, manage appointments and
medical records against a MedVerse backend without opening the portal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("medverse version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewSwitchRoleCmd())
	rootCmd.AddCommand(commands.NewAppointmentsCmd())
	rootCmd.AddCommand(commands.NewRecordsCmd())
	rootCmd.AddCommand(commands.NewDoctorsCmd())
	rootCmd.AddCommand(commands.NewHospitalsCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
