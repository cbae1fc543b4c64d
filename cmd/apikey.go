package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/meetbot/filter"
	"github.com/s0up4200/meetbot/meetbot"
)

var (
	keyUserID      string
	keyName        string
	keyExpiresAt   string
	keyPermissions []string
	keyFilter      string
)

// apikeyCmd groups API key commands
var apikeyCmd = &cobra.Command{
	Use:     "apikey",
	Aliases: []string{"key"},
	Short:   "Manage API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new API key for a user",
	Example: `  meetbot apikey create --user-id u1 --name ci
  meetbot apikey create --user-id u1 --name temp --expires-at 720h --permission bots:write`,
	Args: cobra.NoArgs,
	RunE: runAPIKeyCreate,
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the API keys of a user",
	Long: `List the API keys of a user, optionally narrowed with a filter expression.

Filter fields: id, name, userId, isActive, permissions, createdAt, expiresAt,
lastUsedAt, hasExpiry, expired, used. Helpers: hasPermission("p"), contains,
startsWith, endsWith, daysSince, daysAgo, parseDate.`,
	Example: `  meetbot apikey list --user-id u1 --filter 'isActive and not used'
  meetbot apikey list --user-id u1 --filter '@stale'`,
	Args: cobra.NoArgs,
	RunE: runAPIKeyList,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <keyId>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyListCmd, apikeyRevokeCmd)

	apikeyCreateCmd.Flags().StringVar(&keyUserID, "user-id", "", "owner of the key")
	apikeyCreateCmd.Flags().StringVar(&keyName, "name", "", "label for the key (max 100 characters)")
	apikeyCreateCmd.Flags().StringVar(&keyExpiresAt, "expires-at", "", "expiry as RFC 3339, date or duration from now")
	apikeyCreateCmd.Flags().StringSliceVar(&keyPermissions, "permission", nil, "permission to grant (repeatable)")

	apikeyListCmd.Flags().StringVar(&keyUserID, "user-id", "", "owner of the keys")
	apikeyListCmd.Flags().StringVarP(&keyFilter, "filter", "f", "", "filter expression or @name from config")
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	expiresAt, err := parseTimeFlag("expires-at", keyExpiresAt, time.Now())
	if err != nil {
		return err
	}

	key, err := client.CreateAPIKey(commandContext(cmd), meetbot.CreateAPIKeyRequest{
		UserID:      keyUserID,
		Name:        keyName,
		ExpiresAt:   expiresAt,
		Permissions: keyPermissions,
	})
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	logger.Info().Str("key_id", key.ID).Msg("API key created")
	return newFormatter(cmd.OutOrStdout(), cfg.Output).CreatedAPIKey(key)
}

func runAPIKeyList(cmd *cobra.Command, args []string) error {
	f, err := compileFilter(keyFilter)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	keys, err := client.ListAPIKeys(ctx, keyUserID)
	if err != nil {
		return fmt.Errorf("failed to list API keys: %w", err)
	}

	if f != nil {
		now := time.Now()
		keys, err = filter.Select(ctx, filter.NewEvaluator(), f, keys, func(k meetbot.APIKey) filter.Env {
			return filter.APIKeyEnv(k, now)
		})
		if err != nil {
			return fmt.Errorf("failed to filter API keys: %w", err)
		}
	}

	return newFormatter(cmd.OutOrStdout(), cfg.Output).APIKeys(keys)
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	ack, err := client.RevokeAPIKey(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	logger.Info().Str("key_id", args[0]).Msg("API key revoked")
	return newFormatter(cmd.OutOrStdout(), cfg.Output).Acknowledgement("API key revoked", ack)
}
