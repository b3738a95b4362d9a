package cli

import (
	"fmt"

	"github.com/mobile-next/wintest/config"
	"github.com/mobile-next/wintest/daemon"
	"github.com/mobile-next/wintest/mcpserver"
	"github.com/mobile-next/wintest/server"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the wintest server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the wintest server",
	Long:  `Starts the JSON-RPC server on /rpc and /ws, with the MCP streamable HTTP endpoint on /mcp.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newExecutor()
		if err != nil {
			return err
		}
		cfg := e.Config()

		addr := listenAddr
		if addr == "" {
			addr = cfg.Server.Listen
		}

		// GetBool cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		enableCORS = enableCORS || cfg.Server.CORS
		isDaemon, _ := cmd.Flags().GetBool("daemon")

		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", addr)
			return nil
		}

		token, err := loadToken(serverToken)
		if err != nil {
			return err
		}

		s := server.New(e, server.Options{
			Listen:     addr,
			EnableCORS: enableCORS,
			Token:      token,
			MCP:        mcpserver.HTTPHandler(e, GetVersion()),
		})
		return s.ListenAndServe(cmd.Context())
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized wintest server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := listenAddr
		if addr == "" {
			addr = config.DefaultListenAddress
		}

		token, err := loadToken(serverToken)
		if err != nil {
			return err
		}

		if err := daemon.KillServer(addr, token); err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().StringVar(&listenAddr, "listen", "", fmt.Sprintf("Address to listen on (default from config, %s)", config.DefaultListenAddress))
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().StringVar(&serverToken, "token", "", "Bearer token clients must send (default: token stored by 'auth token generate')")

	// server kill flags
	serverKillCmd.Flags().StringVar(&listenAddr, "listen", "", fmt.Sprintf("Address of server to kill (default: %s)", config.DefaultListenAddress))
	serverKillCmd.Flags().StringVar(&serverToken, "token", "", "Bearer token of the server (default: stored token)")
}
