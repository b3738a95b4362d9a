package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mobile-next/wintest/commands"
	"github.com/spf13/cobra"
)

// parseCoords parses a "x,y" style argument holding n integers.
func parseCoords(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected %d comma separated integers, got '%s'", n, s)
	}

	values := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value '%s': must be an integer", part)
		}
		values[i] = v
	}
	return values, nil
}

// optionalPoint parses the optional "x,y" argument of click, down and up.
func optionalPoint(args []string) (*int, *int, error) {
	if len(args) == 0 {
		return nil, nil, nil
	}
	xy, err := parseCoords(args[0], 2)
	if err != nil {
		return nil, nil, err
	}
	return &xy[0], &xy[1], nil
}

// failed prints err as a command response and returns it.
func failed(err error) error {
	printJson(commands.NewErrorResponse(err))
	return err
}

var mouseCmd = &cobra.Command{
	Use:   "mouse",
	Short: "Mouse input",
	Long:  `Move, click and scroll. Coordinates are absolute screen pixels. The window named by --process is activated first.`,
}

var mouseMoveCmd = &cobra.Command{
	Use:   "move [x,y]",
	Short: "Move the cursor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xy, err := parseCoords(args[0], 2)
		if err != nil {
			return failed(err)
		}

		req := commands.MouseMoveRequest{
			ProcessName: processName,
			X:           xy[0],
			Y:           xy[1],
			Duration:    mouseDuration,
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.MouseMove(cmd.Context(), req)
		})
	},
}

var mouseClickCmd = &cobra.Command{
	Use:   "click [x,y]",
	Short: "Click at a point or at the cursor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := optionalPoint(args)
		if err != nil {
			return failed(err)
		}

		req := commands.MouseClickRequest{
			ProcessName: processName,
			X:           x,
			Y:           y,
			Button:      mouseButton,
			Clicks:      mouseClicks,
			Interval:    mouseInterval,
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.MouseClick(cmd.Context(), req)
		})
	},
}

var mouseDownCmd = &cobra.Command{
	Use:   "down [x,y]",
	Short: "Press and hold a mouse button",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := optionalPoint(args)
		if err != nil {
			return failed(err)
		}

		req := commands.MouseButtonRequest{ProcessName: processName, X: x, Y: y, Button: mouseButton}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.MouseDown(cmd.Context(), req)
		})
	},
}

var mouseUpCmd = &cobra.Command{
	Use:   "up [x,y]",
	Short: "Release a mouse button",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := optionalPoint(args)
		if err != nil {
			return failed(err)
		}

		req := commands.MouseButtonRequest{ProcessName: processName, X: x, Y: y, Button: mouseButton}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.MouseUp(cmd.Context(), req)
		})
	},
}

var mouseScrollCmd = &cobra.Command{
	Use:   "scroll [clicks]",
	Short: "Scroll the wheel; positive scrolls up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clicks, err := strconv.Atoi(args[0])
		if err != nil {
			return failed(fmt.Errorf("invalid clicks '%s': must be an integer", args[0]))
		}

		req := commands.MouseScrollRequest{ProcessName: processName, Clicks: clicks}
		if scrollAt != "" {
			xy, err := parseCoords(scrollAt, 2)
			if err != nil {
				return failed(err)
			}
			req.X, req.Y = &xy[0], &xy[1]
		}
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.MouseScroll(cmd.Context(), req)
		})
	},
}

var mousePositionCmd = &cobra.Command{
	Use:   "position",
	Short: "Print the cursor position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.MouseGetPosition(cmd.Context(), commands.MousePositionRequest{})
		})
	},
}

func init() {
	rootCmd.AddCommand(mouseCmd)

	mouseCmd.AddCommand(mouseMoveCmd)
	mouseCmd.AddCommand(mouseClickCmd)
	mouseCmd.AddCommand(mouseDownCmd)
	mouseCmd.AddCommand(mouseUpCmd)
	mouseCmd.AddCommand(mouseScrollCmd)
	mouseCmd.AddCommand(mousePositionCmd)

	mouseCmd.PersistentFlags().StringVarP(&processName, "process", "p", "", "Process name fragment of the window to activate (e.g. notepad)")

	mouseMoveCmd.Flags().Float64Var(&mouseDuration, "duration", 0, "Seconds the move should take")
	for _, c := range []*cobra.Command{mouseClickCmd, mouseDownCmd, mouseUpCmd} {
		c.Flags().StringVarP(&mouseButton, "button", "b", "left", "Button: left, right, middle, mouse4 or mouse5")
	}
	mouseClickCmd.Flags().IntVar(&mouseClicks, "clicks", 1, "Number of clicks")
	mouseClickCmd.Flags().Float64Var(&mouseInterval, "interval", 0, "Seconds between clicks")
	mouseScrollCmd.Flags().StringVar(&scrollAt, "at", "", "Move to x,y before scrolling")
}
