package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"chefsnap/internal/app"
	"chefsnap/internal/recipe"
)

func init() {
	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored recipe",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runShow,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every stored recipe",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	saved := &cobra.Command{
		Use:   "saved",
		Short: "List saved recipes",
		Args:  cobra.NoArgs,
		RunE:  runSaved,
	}

	like := &cobra.Command{
		Use:   "like <name>",
		Short: "Toggle the like on a recipe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return interact(cmd, strings.Join(args, " "), (*app.App).Like)
		},
	}

	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Toggle whether a recipe is saved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return interact(cmd, strings.Join(args, " "), (*app.App).Save)
		},
	}

	comment := &cobra.Command{
		Use:   "comment <name> <text>",
		Short: "Comment on a recipe as the signed-in user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return interact(cmd, args[0], func(a *app.App, ctx context.Context, name string) (recipe.Recipe, error) {
				return a.Comment(ctx, name, text)
			})
		},
	}

	RootCmd.AddCommand(show, list, saved, like, save, comment)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	r, ok := s.Store.GetByName(strings.Join(args, " "))
	if !ok {
		return app.ErrRecipeNotFound
	}
	return printJSON(cmd, r)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	return printJSON(cmd, s.Store.List())
}

func runSaved(cmd *cobra.Command, args []string) error {
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	return printJSON(cmd, s.Saved())
}

func interact(cmd *cobra.Command, name string, fn func(*app.App, context.Context, string) (recipe.Recipe, error)) error {
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := fn(s.App, cmd.Context(), name)
	if err != nil {
		return err
	}
	return printJSON(cmd, r)
}
