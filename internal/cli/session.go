package cli

import (
	"github.com/spf13/cobra"

	"chefsnap/internal/app"
)

func init() {
	signup := &cobra.Command{
		Use:   "signup",
		Short: "Sign in with a name, email and recipe language",
		Args:  cobra.NoArgs,
		RunE:  runSignup,
	}
	signup.Flags().StringP("name", "n", "", "Your name (required)")
	signup.Flags().StringP("email", "e", "", "Your email (required)")
	signup.Flags().StringP("language", "l", "en", "Language code for generated recipes")
	signup.MarkFlagRequired("name")
	signup.MarkFlagRequired("email")

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}

	RootCmd.AddCommand(signup, whoami, logout)
}

func runSignup(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	language, _ := cmd.Flags().GetString("language")

	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	u, err := s.Session.SignUp(cmd.Context(), name, email, language)
	if err != nil {
		return err
	}
	return printJSON(cmd, u)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	u, ok := s.Session.Current()
	if !ok {
		return app.ErrNotSignedIn
	}
	return printJSON(cmd, u)
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Session.Logout(cmd.Context())
}
