package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/charroom/internal/app"
	"github.com/nfrund/charroom/internal/characters"
	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "Manage character definitions",
}

var charactersImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import character definitions from a JSON file or directory",
	Long: `Import reads character definitions from a .json file, or every .json file
in a directory, and upserts them by name into the configured storage.

A file may hold a single definition object or an array of them:
  {"name": "Merlin", "systemPrompt": "You are a wizard.", "model": "default"}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.New(ctx, config.New(), app.WithModules())
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Shutdown(context.Background()); err != nil {
				slog.Warn("Shutdown failed", "error", err)
			}
		}()

		repo := do.MustInvoke[domain.CharacterRepository](a.Injector)
		res, err := characters.NewImporter(afero.NewOsFs(), repo).ImportPath(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, failed %d\n", res.Created, res.Updated, len(res.Failed))
		for _, f := range res.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(charactersCmd)
	charactersCmd.AddCommand(charactersImportCmd)
}
