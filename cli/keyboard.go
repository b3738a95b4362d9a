package cli

import (
	"github.com/mobile-next/wintest/commands"
	"github.com/spf13/cobra"
)

var keyboardCmd = &cobra.Command{
	Use:   "keyboard",
	Short: "Keyboard input",
	Long:  `Send key presses and text to a window. The window named by --process is activated first.`,
}

var keyboardPressCmd = &cobra.Command{
	Use:   "press [key]",
	Short: "Press and release a key",
	Long:  `Activates the target window, then presses and releases a key (e.g. "enter", "f5", "a").`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.KeyboardPressRequest{
			ProcessName: processName,
			Key:         args[0],
			Presses:     keyPresses,
			Interval:    keyInterval,
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.KeyboardPress(cmd.Context(), req)
		})
	},
}

var keyboardDownCmd = &cobra.Command{
	Use:   "down [key]",
	Short: "Hold a key down",
	Long:  `Activates the target window, then holds a key down until "keyboard up" releases it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.KeyboardToggleRequest{ProcessName: processName, Key: args[0]}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.KeyboardDown(cmd.Context(), req)
		})
	},
}

var keyboardUpCmd = &cobra.Command{
	Use:   "up [key]",
	Short: "Release a held key",
	Long:  `Activates the target window, then releases a key.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.KeyboardToggleRequest{ProcessName: processName, Key: args[0]}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.KeyboardUp(cmd.Context(), req)
		})
	},
}

var keyboardTypeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text",
	Long:  `Activates the target window, then types the given text character by character.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.KeyboardTypeRequest{ProcessName: processName, Text: args[0]}
		if cmd.Flags().Changed("interval") {
			req.Interval = &typeInterval
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.KeyboardType(cmd.Context(), req)
		})
	},
}

func init() {
	rootCmd.AddCommand(keyboardCmd)

	keyboardCmd.AddCommand(keyboardPressCmd)
	keyboardCmd.AddCommand(keyboardDownCmd)
	keyboardCmd.AddCommand(keyboardUpCmd)
	keyboardCmd.AddCommand(keyboardTypeCmd)

	keyboardCmd.PersistentFlags().StringVarP(&processName, "process", "p", "", "Process name fragment of the window to activate (e.g. notepad)")

	keyboardPressCmd.Flags().IntVar(&keyPresses, "presses", 1, "Number of presses")
	keyboardPressCmd.Flags().Float64Var(&keyInterval, "interval", 0, "Seconds between presses")
	keyboardTypeCmd.Flags().Float64Var(&typeInterval, "interval", 0.01, "Seconds between characters")
}
