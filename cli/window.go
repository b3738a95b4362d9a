package cli

import (
	"github.com/mobile-next/wintest/commands"
	"github.com/spf13/cobra"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Window commands",
	Long:  `Activate, locate and capture application windows by process name.`,
}

var windowActivateCmd = &cobra.Command{
	Use:   "activate [process]",
	Short: "Bring a window to the foreground",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.WindowActivateRequest{ProcessName: args[0]}
		if cmd.Flags().Changed("wait") {
			req.WaitTime = &waitTime
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.WindowActivate(cmd.Context(), req)
		})
	},
}

var windowRectCmd = &cobra.Command{
	Use:   "rect [process]",
	Short: "Print a window's position and size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.WindowRequest{ProcessName: args[0]}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.WindowGetRect(cmd.Context(), req)
		})
	},
}

var windowCaptureCmd = &cobra.Command{
	Use:   "capture [process]",
	Short: "Capture a window",
	Long:  `Captures a window in the background. With --foreground the window is activated first and its screen area captured.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.WindowCaptureRequest{
			ProcessName: args[0],
			Filename:    screenshotFilename,
			Format:      screenshotFormat,
			Quality:     screenshotJpegQuality,
		}
		if cmd.Flags().Changed("wait") {
			req.WaitTime = &waitTime
		}

		e, err := newExecutor()
		if err != nil {
			return failed(err)
		}
		if captureFront {
			return printImageResponse(e.WindowCaptureForeground(cmd.Context(), req))
		}
		return printImageResponse(e.WindowCaptureBackground(cmd.Context(), req))
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)

	windowCmd.AddCommand(windowActivateCmd)
	windowCmd.AddCommand(windowRectCmd)
	windowCmd.AddCommand(windowCaptureCmd)

	windowActivateCmd.Flags().Float64Var(&waitTime, "wait", 0.5, "Seconds to wait after activation")

	addImageFlags(windowCaptureCmd)
	windowCaptureCmd.Flags().BoolVar(&captureFront, "foreground", false, "Activate the window and capture its screen area")
	windowCaptureCmd.Flags().Float64Var(&waitTime, "wait", 0.5, "Seconds to wait after activation (with --foreground)")
}
