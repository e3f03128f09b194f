package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/widget"
)

const (
	rootCommandUse              = "widgetgen"
	rootCommandShortDescription = "Generate booking widget scripts offline"
	flagNameShop                = "shop"
	flagNameShopsDirectory      = "shops-dir"
	flagNameTemplate            = "template"
	flagNameOutput              = "out"
	flagNameOutputDirectory     = "out-dir"
	flagUsageTemplate           = "widget template file (defaults to the embedded template)"
	readTemplateErrorMessage    = "read widget template"
	writeArtifactErrorMessage   = "write artifact"
	artifactDirectoryMode       = 0o755
	artifactFileMode            = 0o644
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           rootCommandUse,
		Short:         rootCommandShortDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCommand.AddCommand(newRenderCommand(), newRenderAllCommand(), newAuditCommand())
	return rootCommand
}

func loadTemplate(templatePath string) (*widget.Template, error) {
	if templatePath == "" {
		return widget.DefaultTemplate(), nil
	}
	templateSource, readErr := os.ReadFile(templatePath)
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w", readTemplateErrorMessage, readErr)
	}
	return widget.ParseTemplate(filepath.Base(templatePath), string(templateSource))
}

func writeArtifact(path string, artifact widget.Artifact) error {
	if mkdirErr := os.MkdirAll(filepath.Dir(path), artifactDirectoryMode); mkdirErr != nil {
		return fmt.Errorf("%s %s: %w", writeArtifactErrorMessage, path, mkdirErr)
	}
	if writeErr := os.WriteFile(path, artifact.Body, artifactFileMode); writeErr != nil {
		return fmt.Errorf("%s %s: %w", writeArtifactErrorMessage, path, writeErr)
	}
	return nil
}

func main() {
	if executeErr := newRootCommand().Execute(); executeErr != nil {
		os.Exit(1)
	}
}
