package cli

import (
	"github.com/mobile-next/wintest/commands"
	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage applications",
	Long:  `Launch, terminate, and list applications.`,
}

var appsLaunchCmd = &cobra.Command{
	Use:   "launch [path] [args...]",
	Short: "Launch an application",
	Long:  `Starts an application and waits for it to come up. The new window is not activated.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.AppLaunchRequest{AppPath: args[0], Args: args[1:]}
		if cmd.Flags().Changed("wait") {
			req.WaitTime = &waitTime
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.AppLaunch(cmd.Context(), req)
		})
	},
}

var appsTerminateCmd = &cobra.Command{
	Use:   "terminate [process]",
	Short: "Terminate an application",
	Long:  `Terminates the first running process whose name contains the given fragment.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.AppTerminateRequest{ProcessName: args[0]}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.AppTerminate(cmd.Context(), req)
		})
	},
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List running applications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.AppListRequest{Filter: appsFilter}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.AppListRunning(cmd.Context(), req)
		})
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)

	appsCmd.AddCommand(appsLaunchCmd)
	appsCmd.AddCommand(appsTerminateCmd)
	appsCmd.AddCommand(appsListCmd)

	appsLaunchCmd.Flags().Float64Var(&waitTime, "wait", 1, "Seconds to wait for the application to start")
	appsListCmd.Flags().StringVar(&appsFilter, "filter", "", "Only list processes whose name contains this fragment")
}
