package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/lsp"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
	"github.com/Sumatoshi-tech/cypherast/pkg/version"
)

func newLSPCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Cypher language server on stdio",
		Long: `Start a Language Server Protocol server over stdin/stdout offering
syntax diagnostics, node hover and clause keyword completion for Cypher files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			providers, err := observability.Init(opts.observability(cfg, observability.ModeLSP))
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}

			defer func() {
				if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			// Diagnostics always recover so every bad statement is reported.
			engine := cypherast.NewEngine(
				cypherast.WithLogger(providers.Logger),
				cypherast.WithRecovery(),
				cypherast.WithMaxInputBytes(cfg.Parser.MaxQueryBytes),
			)

			server := lsp.NewServer(lsp.Deps{
				Engine:         engine,
				Logger:         providers.Logger,
				TracerProvider: otel.GetTracerProvider(),
				Version:        version.Version,
			})

			return server.Run()
		},
	}
}
