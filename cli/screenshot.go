package cli

import (
	"fmt"
	"os"

	"github.com/mobile-next/wintest/commands"
	"github.com/spf13/cobra"
)

// printImageResponse writes the image to stdout for "-o -", to a file for
// any other -o value, and prints JSON otherwise.
func printImageResponse(response *commands.CommandResponse) error {
	shot, ok := response.Data.(commands.ScreenshotResponse)
	if !ok || response.Status != "ok" {
		return printResponse(response)
	}

	if screenshotOutputPath == "-" {
		if _, err := os.Stdout.Write(shot.Image); err != nil {
			return fmt.Errorf("failed to write to stdout: %v", err)
		}
		return nil
	}

	if screenshotOutputPath != "" {
		if err := os.WriteFile(screenshotOutputPath, shot.Image, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %v", screenshotOutputPath, err)
		}
		shot.FilePath = screenshotOutputPath
	}

	if shot.FilePath != "" {
		// the file already holds the image
		shot.Data = ""
		response.Data = shot
	}
	return printResponse(response)
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the screen or a region of it",
	Long:  `Captures the whole screen, or the rectangle given by --region x,y,width,height. Never changes window focus.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newExecutor()
		if err != nil {
			return failed(err)
		}

		if screenshotRegion == "" {
			return printImageResponse(e.ScreenshotCapture(cmd.Context(), commands.ScreenshotRequest{
				Filename: screenshotFilename,
				Format:   screenshotFormat,
				Quality:  screenshotJpegQuality,
			}))
		}

		r, err := parseCoords(screenshotRegion, 4)
		if err != nil {
			return failed(err)
		}
		return printImageResponse(e.ScreenshotRegion(cmd.Context(), commands.ScreenshotRegionRequest{
			X:        r[0],
			Y:        r[1],
			Width:    r[2],
			Height:   r[3],
			Filename: screenshotFilename,
			Format:   screenshotFormat,
			Quality:  screenshotJpegQuality,
		}))
	},
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen information",
}

var screenSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the screen size in pixels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExecutor(func(e *commands.Executor) *commands.CommandResponse {
			return e.GetScreenSize(cmd.Context(), commands.ScreenSizeRequest{})
		})
	},
}

func addImageFlags(c *cobra.Command) {
	c.Flags().StringVarP(&screenshotOutputPath, "output", "o", "", "Output file path for the image (e.g., screen.png, or '-' for stdout)")
	c.Flags().StringVar(&screenshotFilename, "filename", "", "Save the image under this name in the configured output directory")
	c.Flags().StringVarP(&screenshotFormat, "format", "f", "", "Image format (png or jpeg, default from config)")
	c.Flags().IntVarP(&screenshotJpegQuality, "quality", "q", 0, "JPEG quality (1-100, only applies if format is jpeg)")
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	rootCmd.AddCommand(screenCmd)
	screenCmd.AddCommand(screenSizeCmd)

	addImageFlags(screenshotCmd)
	screenshotCmd.Flags().StringVar(&screenshotRegion, "region", "", "Capture only x,y,width,height")
}
