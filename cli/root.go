package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/wintest/commands"
	"github.com/mobile-next/wintest/config"
	"github.com/mobile-next/wintest/desktop"
	"github.com/mobile-next/wintest/utils"
	"github.com/spf13/cobra"
)

var version = "dev"

// shutdownHook collects cleanup work for main to run on exit.
var shutdownHook = desktop.NewShutdownHook()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wintest",
	Short: "Windows desktop automation for test agents",
	Long: `Drives Windows desktop applications for automated tests: screenshots,
keyboard and mouse input, window and application control. Every keyboard and
mouse action activates its target window first.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
}

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

// SetShutdownHook replaces the hook that receives cleanup work.
func SetShutdownHook(h *desktop.ShutdownHook) {
	shutdownHook = h
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.ExecuteContext(ctx)
}

// newExecutor loads the configuration and binds an executor to this desktop.
func newExecutor() (*commands.Executor, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		utils.Verbose("Loaded config from %s", cfg.Path)
	}

	launches, err := desktop.NewLaunchRegistry(desktop.DefaultLaunchRegistrySize)
	if err != nil {
		return nil, err
	}

	d := desktop.New()
	if cfg.Apps.TerminateLaunchedOnExit {
		shutdownHook.Register("terminate launched applications", func(ctx context.Context) error {
			return launches.CleanupAll(d.Processes)
		})
	}

	return commands.NewExecutor(d, cfg, commands.WithLaunchRegistry(launches))
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints response and turns a failed command into an error.
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

// withExecutor runs fn with a fresh executor and prints its response.
func withExecutor(fn func(e *commands.Executor) *commands.CommandResponse) error {
	e, err := newExecutor()
	if err != nil {
		response := commands.NewErrorResponse(err)
		printJson(response)
		return err
	}
	return printResponse(fn(e))
}
