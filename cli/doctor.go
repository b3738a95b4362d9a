package cli

import (
	"github.com/mobile-next/wintest/commands"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Performs system diagnostics for better troubleshooting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.DoctorCommand(GetVersion())
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
