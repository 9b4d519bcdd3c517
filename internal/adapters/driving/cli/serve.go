package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Hmv123/RAG-Application/internal/adapters/driving/mcp"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/ws"
	"github.com/Hmv123/RAG-Application/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose answering to other programs",
	Long:  `Commands that serve the answering pipeline over MCP or a websocket.`,
}

var serveMCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server offers two tools ("ask" and "retrieve") and an index stats
resource. By default it communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for desktop assistants)
  ragapp serve mcp

  # HTTP mode (for MCP Inspector, remote access)
  ragapp serve mcp --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ragapp": {
        "command": "/path/to/ragapp",
        "args": ["serve", "mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServeMCP,
}

var serveWSCmd = &cobra.Command{
	Use:   "ws",
	Short: "Start the websocket chat server",
	Long: `Serve a conversational websocket at /ws and a health check at /healthz.

Each connection is one conversation. Send {"type":"ask","question":"..."}
to ask and {"type":"reset"} to clear the conversation.`,
	Args: cobra.NoArgs,
	RunE: runServeWS,
}

func init() {
	serveMCPCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	serveWSCmd.Flags().String("addr", "127.0.0.1:8765", "listen address")
	serveWSCmd.Flags().StringSlice("allow-origin", nil, "allowed browser origins (host[:port]); same-origin only when empty")

	serveCmd.AddCommand(serveMCPCmd)
	serveCmd.AddCommand(serveWSCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := commandContext(cmd)
	pipeline, err := openPipeline(ctx, app.Needs{Answer: true}, nil)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Answer: pipeline.Answer,
		Index:  pipeline.Index,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s%s\n", addr, mcp.Endpoint)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

func runServeWS(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	origins, err := cmd.Flags().GetStringSlice("allow-origin")
	if err != nil {
		return fmt.Errorf("getting allow-origin flag: %w", err)
	}

	ctx := commandContext(cmd)
	pipeline, err := openPipeline(ctx, app.Needs{Answer: true}, nil)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	var opts []ws.Option
	if len(origins) > 0 {
		opts = append(opts, ws.WithCheckOrigin(originAllowed(origins)))
	}

	handler, err := ws.NewHandler(pipeline.Answer, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Websocket server listening on ws://%s/ws\n", addr)
	return ws.ListenAndServe(ctx, addr, handler)
}

// originAllowed accepts requests without an Origin header and those whose
// origin host is listed.
func originAllowed(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(allowed, u.Host)
	}
}
