package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/meetbot/config"
)

// releaseRepository is where release binaries are published
const releaseRepository = "s0up4200/meetbot"

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update meetbot to the latest release",
	Long: `Check GitHub for a newer meetbot release and replace the running binary with it.
Release checksums are verified before the binary is replaced.`,
	Args:               cobra.NoArgs,
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	RunE:               runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report whether an update is available")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	// Runs without a config file, so log to the console at info
	log := setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})

	current, err := parseVersion(version)
	if err != nil {
		return err
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Validator: &selfupdate.ChecksumValidator{UniqueFilename: "checksums.txt"},
	})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found in %s", releaseRepository)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(out, "✓ meetbot %s is up to date\n", current)
		return nil
	}

	if updateCheckOnly {
		fmt.Fprintf(out, "Update available: %s → %s\n", current, latest.Version())
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	log.Info().Str("from", current.String()).Str("to", latest.Version()).Msg("Updating meetbot")

	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(out, "✓ Updated meetbot to %s\n", latest.Version())
	return nil
}

// parseVersion rejects builds that carry no release version
func parseVersion(v string) (semver.Version, error) {
	parsed, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, fmt.Errorf("cannot update a development build (version %q): %w", v, err)
	}
	return parsed, nil
}
