package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcpserver "github.com/joseph-ayodele/doc-extractor/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC extraction service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.ServeGRPC(ctx, a.Config.Server.GRPCAddr)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve extraction tools over MCP on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return mcpserver.Serve(mcpserver.NewServer(mcpserver.ServerConfig{
			Version:   cmd.Root().Version,
			Reader:    a.Reader,
			Engine:    a.Engine,
			Documents: a.Documents,
			Results:   a.Results,
			RuleSets:  a.RuleSets,
			Logger:    a.Logger,
		}))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Int("workers", 0, "background processing workers")
	_ = viper.BindPFlag("server.grpc_addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.workers", serveCmd.Flags().Lookup("workers"))
}
