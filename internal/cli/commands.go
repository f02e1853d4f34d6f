package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/atal/internal/app"
	"github.com/MrSnakeDoc/atal/internal/domain"
)

func newSeedCommand(factory Factory, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default component catalog if the store is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := factory(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Seed(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"seeded": res.Value,
				"source": res.Source,
			})
		},
	}
}

func newIdeasCommand(factory Factory, opts *app.Options) *cobra.Command {
	var req domain.GenerateRequest

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Print generated project ideas as JSON",
		Example: `  atal ideas --skill beginner --time 2-5h --category "Home Automation"
  atal ideas --component "Arduino Uno" --component "DHT22"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := factory(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Ideas(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Value)
		},
	}

	cmd.Flags().StringVar(&req.Skill, "skill", "", "beginner, intermediate or advanced")
	cmd.Flags().StringVar(&req.Time, "time", "", "lt-2h, 2-5h, 5-10h, 10h-plus or any")
	cmd.Flags().StringSliceVar(&req.Categories, "category", nil, "preferred categories (repeatable)")
	cmd.Flags().StringSliceVar(&req.Components, "component", nil, "components on hand (repeatable)")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	return cmd
}

func newStatusCommand(factory Factory, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe the remote store and print the connection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := factory(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return printJSON(cmd.OutOrStdout(), a.Status(cmd.Context()))
		},
	}
}

func newResetLocalCommand(factory Factory, opts *app.Options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-local",
		Short: "Delete every component, project and user kept in the local store",
		Long: `reset-local empties the local fallback store under ATAL_DATA_DIR.
Data held in Redis is not touched. Default components are installed again
on the next seed or the next read of an empty catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset-local deletes local data, pass --yes to confirm")
			}
			a, err := factory(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ResetLocal(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"cleared": true})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
