package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cypherast/pkg/mcp"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
	"github.com/Sumatoshi-tech/cypherast/pkg/version"
)

func newMCPCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol server over stdin/stdout.

Tools:
  cypher_parse  parse a query into its syntax forest (json or dump)
  cypher_find   list nodes matching a kind, role or span filter
  cypher_kinds  list node kinds with their parents and properties

Logs are written to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			obsCfg := opts.observability(cfg, observability.ModeMCP)
			obsCfg.LogJSON = true

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}

			defer func() {
				if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			deps, err := newAPIDeps(cfg, providers, providers.Logger)
			if err != nil {
				return err
			}

			server := mcp.NewServer(mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: deps.red,
				Tracer:  providers.Tracer,
				Engine:  deps.engine,
				Cache:   deps.cache,
				Version: version.Version,
			})

			providers.Logger.Info("cypherast mcp server starting", "tools", server.ListToolNames())

			return server.Run(cmd.Context())
		},
	}
}
