// Package cli is the atal command line.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/atal/internal/app"
	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/hybrid"
	"github.com/MrSnakeDoc/atal/internal/version"
)

// Application is what the commands drive. *app.App implements it.
type Application interface {
	Run() error
	Seed(ctx context.Context) (hybrid.Result[bool], error)
	Ideas(ctx context.Context, req domain.GenerateRequest) (hybrid.Result[[]domain.ProjectIdea], error)
	Status(ctx context.Context) hybrid.ConnectionStatus
	ResetLocal(ctx context.Context) error
	Close()
}

// Factory builds the application for one command run.
type Factory func(app.Options) (Application, error)

// DefaultFactory builds the real application.
func DefaultFactory(opts app.Options) (Application, error) {
	a, err := app.New(opts)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewRootCommand returns the atal command tree. Without a subcommand it serves.
func NewRootCommand(factory Factory) *cobra.Command {
	var opts app.Options

	rootCmd := &cobra.Command{
		Use:   "atal",
		Short: "Atal idea generator backend",
		Long: `Atal serves the component catalog, saved projects and project idea
generation over HTTP. Data lives in Redis when it is reachable and in a local
store otherwise.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(factory, opts)
		},
	}
	rootCmd.SetVersionTemplate("atal {{.Version}}\n")

	rootCmd.PersistentFlags().BoolVar(&opts.LocalOnly, "local-only", false, "never contact Redis")
	rootCmd.PersistentFlags().BoolVar(&opts.Ephemeral, "ephemeral", false, "keep local data in memory")

	rootCmd.AddCommand(
		newServeCommand(factory, &opts),
		newSeedCommand(factory, &opts),
		newIdeasCommand(factory, &opts),
		newStatusCommand(factory, &opts),
		newResetLocalCommand(factory, &opts),
	)
	return rootCmd
}

func serve(factory Factory, opts app.Options) error {
	a, err := factory(opts)
	if err != nil {
		return err
	}
	return a.Run()
}

func newServeCommand(factory Factory, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(factory, *opts)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
