package cli

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mobile-next/wintest/mcpserver"
	"github.com/mobile-next/wintest/server"
	"github.com/spf13/cobra"
)

var mcpHTTPAddr string

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running wintest as an MCP server, exposing screenshot, keyboard, mouse, window and application tools to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio or streamable HTTP.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Start an MCP server on stdin/stdout, or on HTTP with --http.

Keyboard and mouse tools always activate the window of their process_name
before injecting input. Logs are written to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := newExecutor()
		if err != nil {
			return err
		}

		if mcpHTTPAddr == "" {
			err = mcpserver.Run(cmd.Context(), e, GetVersion(), &mcp.StdioTransport{})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		token, err := loadToken(serverToken)
		if err != nil {
			return err
		}

		s := server.New(e, server.Options{
			Listen: mcpHTTPAddr,
			Token:  token,
			MCP:    mcpserver.HTTPHandler(e, GetVersion()),
		})
		return s.ListenAndServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpServeCmd)

	mcpServeCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve streamable HTTP on this address (endpoint /mcp) instead of stdio")
	mcpServeCmd.Flags().StringVar(&serverToken, "token", "", "Bearer token HTTP clients must send (default: stored token)")
}
