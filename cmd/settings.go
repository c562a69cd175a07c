package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change timer settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsShowCmd.RunE(cmd, args)
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := app.settings.GetSettings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		return printSettings(cmd.OutOrStdout(), settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value> [<key> <value>...]",
	Short: "Change settings",
	Long: `Change one or more settings. Keys: work, break, long-break, sessions,
auto-breaks, notifications, sound, theme. Durations are minutes.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected key/value pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch domain.SettingsPatch
		for i := 0; i < len(args); i += 2 {
			if err := applySetting(&patch, args[i], args[i+1]); err != nil {
				return err
			}
		}
		settings, err := app.settings.UpdateSettings(cmd.Context(), patch)
		if err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
		return printSettings(cmd.OutOrStdout(), settings)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := app.settings.ResetSettings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		return printSettings(cmd.OutOrStdout(), settings)
	},
}

var settingsThemeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Switch to the next theme, or to the named one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var theme domain.Theme
		if len(args) == 1 {
			var patch domain.SettingsPatch
			if err := applySetting(&patch, "theme", args[0]); err != nil {
				return err
			}
			settings, err := app.settings.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return fmt.Errorf("failed to set theme: %w", err)
			}
			theme = settings.Theme
		} else {
			next, err := app.settings.CycleTheme(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to cycle theme: %w", err)
			}
			theme = next
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]string{"theme": string(theme)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🎨 Theme: %s\n", theme)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd, settingsThemeCmd)
	rootCmd.AddCommand(settingsCmd)
}

// applySetting parses one key/value pair into the patch.
func applySetting(patch *domain.SettingsPatch, key, value string) error {
	intValue := func() (*int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", key, value)
		}
		return &n, nil
	}
	boolValue := func() (*bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			switch strings.ToLower(value) {
			case "on", "yes":
				b = true
			case "off", "no":
				b = false
			default:
				return nil, fmt.Errorf("%s: %q is not on or off", key, value)
			}
		}
		return &b, nil
	}

	var err error
	switch strings.ToLower(key) {
	case "work", "work-duration":
		patch.WorkDuration, err = intValue()
	case "break", "break-duration":
		patch.BreakDuration, err = intValue()
	case "long-break", "long-break-duration":
		patch.LongBreakDuration, err = intValue()
	case "sessions", "sessions-per-set":
		patch.SessionsPerSet, err = intValue()
	case "auto-breaks", "auto-start-breaks":
		patch.AutoStartBreaks, err = boolValue()
	case "notifications":
		patch.NotificationsEnabled, err = boolValue()
	case "sound":
		patch.SoundEnabled, err = boolValue()
	case "theme":
		theme := domain.Theme(strings.ToLower(value))
		if !theme.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidTheme, value)
		}
		patch.Theme = &theme
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return err
}

func printSettings(w io.Writer, s domain.Settings) error {
	if jsonOutput {
		return writeJSON(w, s)
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	fmt.Fprintf(w, "  Work:           %dm\n", s.WorkDuration)
	fmt.Fprintf(w, "  Break:          %dm\n", s.BreakDuration)
	fmt.Fprintf(w, "  Long break:     %dm\n", s.LongBreakDuration)
	fmt.Fprintf(w, "  Sessions/set:   %d\n", s.SessionsPerSet)
	fmt.Fprintf(w, "  Auto breaks:    %s\n", onOff(s.AutoStartBreaks))
	fmt.Fprintf(w, "  Notifications:  %s\n", onOff(s.NotificationsEnabled))
	fmt.Fprintf(w, "  Sound:          %s\n", onOff(s.SoundEnabled))
	fmt.Fprintf(w, "  Theme:          %s\n", s.Theme)
	return nil
}
