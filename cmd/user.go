package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/meetbot/meetbot"
)

var (
	userEmail string
	userName  string
)

// userCmd groups user commands
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage meeting bot service users",
}

var userCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Register a new user",
	Example: `  meetbot user create --email ada@example.com --name "Ada Lovelace"`,
	Args:    cobra.NoArgs,
	RunE:    runUserCreate,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address of the user")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name of the user")
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	user, err := client.CreateUser(commandContext(cmd), meetbot.CreateUserRequest{
		Email: userEmail,
		Name:  userName,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info().Str("user_id", user.ID).Msg("User created")
	return newFormatter(cmd.OutOrStdout(), cfg.Output).User(user)
}
