package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/xvierd/royal-pomodoro/internal/services"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
	clearYes     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Back up settings, tasks, sessions and statistics",
	Long:  `Write every stored document to stdout or a file, as JSON or YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := services.FormatForPath(exportOut)
		if cmd.Flags().Changed("format") || exportOut == "" {
			f, err := services.ParseExportFormat(exportFormat)
			if err != nil {
				return err
			}
			format = f
		}

		doc, err := app.docs.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		data, err := services.EncodeExport(doc, format)
		if err != nil {
			return err
		}

		if exportOut == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "📦 Exported %d tasks and %d sessions to %s\n", len(doc.Tasks), len(doc.Sessions), exportOut)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore a backup",
	Long: `Restore documents from a JSON or YAML backup. Only the sections present in
the file are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := services.FormatForPath(path)
		if importFormat != "" {
			f, err := services.ParseExportFormat(importFormat)
			if err != nil {
				return err
			}
			format = f
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read import: %w", err)
		}
		doc, err := services.DecodeExport(data, format)
		if err != nil {
			return err
		}
		if err := app.docs.Import(cmd.Context(), doc); err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}
		if err := app.sessions.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reload sessions: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📥 Imported %s\n", path)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all data and restore defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			if !term.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("refusing to clear without --yes")
			}
			confirmed := false
			err := huh.NewConfirm().
				Title("Delete all tasks, sessions and statistics?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil || !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
				return nil
			}
		}

		if err := app.docs.ClearAll(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
		if err := app.sessions.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reload sessions: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "🧹 All data cleared.")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Format: json or yaml (default from --out extension)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Format: json or yaml (default from file extension)")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(exportCmd, importCmd, clearCmd)
}
