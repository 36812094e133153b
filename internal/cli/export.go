package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mvdberg/klusplan/internal/app"
	"github.com/mvdberg/klusplan/internal/domain"
)

// newExportCommand creates the export command.
func newExportCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <bestand.json|bestand.yaml>",
		Short: "Volledige staat exporteren",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle := c.Store.Export(c.Clock.Now())

			data, err := marshalBundle(bundle, args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Geëxporteerd: %d klussen, %d personen naar %s\n",
				len(bundle.Tasks), len(bundle.People), args[0])
			return nil
		},
	}
}

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bestand.json|bestand.yaml>",
		Short: "Eerder geëxporteerde staat inladen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			var bundle domain.Bundle
			if isYAMLFile(args[0]) {
				err = yaml.Unmarshal(data, &bundle)
			} else {
				err = json.Unmarshal(data, &bundle)
			}
			if err != nil {
				return fmt.Errorf("parse import: %w", err)
			}

			if err := c.Store.Import(&bundle); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Geïmporteerd: %d klussen, %d personen\n",
				len(c.Store.Tasks()), len(c.Store.People()))
			return nil
		},
	}
}

// newIcalCommand creates the ical command.
func newIcalCommand(c *app.Container) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ical",
		Short: "Kalenderfeed (.ics) genereren",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed := c.Feed.Render(c.Store.Tasks(), c.Store.People())
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(feed)
				return err
			}
			if err := os.WriteFile(output, feed, 0o600); err != nil {
				return fmt.Errorf("write feed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Geschreven: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "klusplan.ics", "Uitvoerbestand ('-' voor stdout)")
	return cmd
}

func marshalBundle(bundle *domain.Bundle, path string) ([]byte, error) {
	if isYAMLFile(path) {
		data, err := yaml.Marshal(bundle)
		if err != nil {
			return nil, fmt.Errorf("encode export: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
