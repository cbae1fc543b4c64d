package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/meetbot/filter"
	"github.com/s0up4200/meetbot/meetbot"
)

var (
	transcriptPage   int
	transcriptLimit  int
	transcriptFilter string
)

// transcriptCmd groups transcript commands
var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Read meeting transcripts",
}

var transcriptGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one page of a transcript",
	Long: `Show one page of a transcript, optionally narrowed with a filter expression.
The filter applies to the fetched page only.

Filter fields: id, speaker, text, startMs, endMs, durationMs.
Helpers: spokenBy("name"), says("phrase"), contains, startsWith, endsWith.`,
	Example: `  meetbot transcript get rec-1 --limit 50
  meetbot transcript get rec-1 --filter 'spokenBy("alice") and says("budget")'`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscriptGet,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(transcriptGetCmd)

	transcriptGetCmd.Flags().IntVar(&transcriptPage, "page", meetbot.DefaultTranscriptPage, "page number")
	transcriptGetCmd.Flags().IntVar(&transcriptLimit, "limit", meetbot.DefaultTranscriptLimit, "segments per page")
	transcriptGetCmd.Flags().StringVarP(&transcriptFilter, "filter", "f", "", "filter expression or @name from config")
}

func runTranscriptGet(cmd *cobra.Command, args []string) error {
	key, err := requireAPIKey()
	if err != nil {
		return err
	}

	f, err := compileFilter(transcriptFilter)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	transcript, err := client.RetrieveTranscript(ctx, key, args[0], meetbot.TranscriptOptions{
		Page:  transcriptPage,
		Limit: transcriptLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to retrieve transcript: %w", err)
	}

	segments := transcript.Segments
	if f != nil {
		segments, err = filter.Select(ctx, filter.NewEvaluator(), f, segments, filter.SegmentEnv)
		if err != nil {
			return fmt.Errorf("failed to filter transcript: %w", err)
		}
	}

	return newFormatter(cmd.OutOrStdout(), cfg.Output).Transcript(transcript, segments)
}
