package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/meetbot/meetbot"
)

var (
	botName          string
	botMeetingURL    string
	botTitle         string
	botRecordingMode string
	botJoinAt        string
	botLeaveAt       string
	botMetadata      []string
)

// botCmd groups bot commands
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Send bots into meetings and manage them",
}

var botCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a bot that joins a meeting",
	Example: `  meetbot bot create --name Notetaker --meeting-url https://meet.google.com/abc-defg-hij
  meetbot bot create --name Notetaker --meeting-url https://zoom.us/j/123 \
    --recording-mode audio_only --join-at 10m --metadata team=sales --metadata priority=2`,
	Args: cobra.NoArgs,
	RunE: runBotCreate,
}

var botGetCmd = &cobra.Command{
	Use:   "get <botId>...",
	Short: "Show one or more bots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBotGet,
}

var botRemoveCmd = &cobra.Command{
	Use:     "remove <botId>...",
	Aliases: []string{"rm"},
	Short:   "Remove one or more bots from their meetings",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runBotRemove,
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.AddCommand(botCreateCmd, botGetCmd, botRemoveCmd)

	flags := botCreateCmd.Flags()
	flags.StringVar(&botName, "name", "", "display name of the bot in the meeting")
	flags.StringVar(&botMeetingURL, "meeting-url", "", "URL of the meeting to join")
	flags.StringVar(&botTitle, "title", "", "meeting title")
	flags.StringVar(&botRecordingMode, "recording-mode", "", "speaker_view, gallery_view or audio_only")
	flags.StringVar(&botJoinAt, "join-at", "", "when to join: RFC 3339, date or duration from now")
	flags.StringVar(&botLeaveAt, "leave-at", "", "when to leave: RFC 3339, date or duration from now")
	flags.StringArrayVar(&botMetadata, "metadata", nil, "key=value metadata (repeatable)")
}

func runBotCreate(cmd *cobra.Command, args []string) error {
	key, err := requireAPIKey()
	if err != nil {
		return err
	}

	req := meetbot.CreateBotRequest{
		Name:       botName,
		MeetingURL: botMeetingURL,
		Title:      botTitle,
	}

	if botRecordingMode != "" {
		if req.RecordingMode, err = meetbot.ParseRecordingMode(botRecordingMode); err != nil {
			return err
		}
	}

	now := time.Now()
	if req.JoinAt, err = parseTimeFlag("join-at", botJoinAt, now); err != nil {
		return err
	}
	if req.LeaveAt, err = parseTimeFlag("leave-at", botLeaveAt, now); err != nil {
		return err
	}
	if req.Metadata, err = parseMetadata(botMetadata); err != nil {
		return err
	}

	bot, err := client.CreateBot(commandContext(cmd), key, req)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info().Str("bot_id", bot.ID).Str("status", string(bot.Status)).Msg("Bot created")
	return newFormatter(cmd.OutOrStdout(), cfg.Output).Bot(bot)
}

func runBotGet(cmd *cobra.Command, args []string) error {
	key, err := requireAPIKey()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := newFormatter(cmd.OutOrStdout(), cfg.Output)

	if len(args) == 1 {
		bot, err := client.RetrieveBot(ctx, key, args[0])
		if err != nil {
			return fmt.Errorf("failed to retrieve bot: %w", err)
		}
		return out.Bot(bot)
	}

	result, err := client.RetrieveBots(ctx, key, args)
	if err != nil {
		return fmt.Errorf("failed to retrieve bots: %w", err)
	}
	if err := out.Bots(result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d bots could not be retrieved", len(result.Failed), result.Requested)
	}
	return nil
}

func runBotRemove(cmd *cobra.Command, args []string) error {
	key, err := requireAPIKey()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := newFormatter(cmd.OutOrStdout(), cfg.Output)

	if len(args) == 1 {
		ack, err := client.RemoveBot(ctx, key, args[0])
		if err != nil {
			return fmt.Errorf("failed to remove bot: %w", err)
		}
		logger.Info().Str("bot_id", args[0]).Msg("Bot removed")
		return out.Acknowledgement("Bot removed", ack)
	}

	result, err := client.RemoveBots(ctx, key, args)
	if err != nil {
		return fmt.Errorf("failed to remove bots: %w", err)
	}
	if err := out.RemovedBots(result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d bots could not be removed", len(result.Failed), result.Requested)
	}
	return nil
}
