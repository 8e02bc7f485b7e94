package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chefsnap/internal/app"
	"chefsnap/internal/imageutil"
	"chefsnap/internal/recipe"
)

func init() {
	extract := &cobra.Command{
		Use:   "extract <url>",
		Short: "Generate a recipe from a cooking video link",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extract.Flags().StringP("image", "i", "", "Screenshot from the video (.jpeg, .jpg or .png)")
	extract.Flags().String("details", "", "Extra hints, e.g. \"vegetarian version\"")

	ideas := &cobra.Command{
		Use:   "ideas [category]",
		Short: "List recipe ideas for a category",
		Long:  "List recipe ideas for a category. Without an argument the available categories are printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIdeas,
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for recipe ideas",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	sel := &cobra.Command{
		Use:   "select <name>",
		Short: "Open the recipe for an idea, generating it if needed",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSelect,
	}

	RootCmd.AddCommand(extract, ideas, search, sel)
}

func runExtract(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")
	details, _ := cmd.Flags().GetString("details")

	req := app.VideoRequest{URL: args[0], Details: details}
	if imagePath != "" {
		if !imageutil.AllowedExtension(imagePath) {
			return fmt.Errorf("invalid file type %q: only JPEG, JPG and PNG images are allowed", imagePath)
		}
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		req.Screenshot = data
	}

	s, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.GenerateFromURL(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd, r)
}

func runIdeas(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return printJSON(cmd, recipe.Categories)
	}

	s, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	ideas, err := s.BrowseCategory(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, ideas)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	ideas, err := s.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printJSON(cmd, ideas)
}

func runSelect(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	// A stored recipe needs no generator, so try without one first.
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	if r, ok := s.OpenRecipe(name); ok {
		s.Close()
		return printJSON(cmd, r)
	}
	s.Close()

	s, err = openApp(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	r, _, err := s.SelectIdea(cmd.Context(), name)
	if err != nil {
		return err
	}
	return printJSON(cmd, r)
}
