package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/widget"
)

type renderOptions struct {
	shopPath     string
	templatePath string
	outputPath   string
}

type renderAllOptions struct {
	shopsDirectory  string
	templatePath    string
	outputDirectory string
}

func newRenderCommand() *cobra.Command {
	options := renderOptions{}
	command := &cobra.Command{
		Use:   "render",
		Short: "Instantiate the widget for one shop file",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runRender(command.OutOrStdout(), options)
		},
	}
	commandFlags := command.Flags()
	commandFlags.StringVar(&options.shopPath, flagNameShop, "", "shop configuration file (JSON or YAML)")
	commandFlags.StringVar(&options.templatePath, flagNameTemplate, "", flagUsageTemplate)
	commandFlags.StringVar(&options.outputPath, flagNameOutput, "", "output file (defaults to stdout)")
	_ = command.MarkFlagRequired(flagNameShop)
	return command
}

func newRenderAllCommand() *cobra.Command {
	options := renderAllOptions{}
	command := &cobra.Command{
		Use:   "render-all",
		Short: "Instantiate the widget for every shop in a directory",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runRenderAll(command.OutOrStdout(), options)
		},
	}
	commandFlags := command.Flags()
	commandFlags.StringVar(&options.shopsDirectory, flagNameShopsDirectory, "", "directory holding one JSON or YAML file per shop")
	commandFlags.StringVar(&options.templatePath, flagNameTemplate, "", flagUsageTemplate)
	commandFlags.StringVar(&options.outputDirectory, flagNameOutputDirectory, "", "directory receiving <shop id>.js artifacts")
	_ = command.MarkFlagRequired(flagNameShopsDirectory)
	_ = command.MarkFlagRequired(flagNameOutputDirectory)
	return command
}

func runRender(output io.Writer, options renderOptions) error {
	widgetTemplate, templateErr := loadTemplate(options.templatePath)
	if templateErr != nil {
		return templateErr
	}
	configuration, loadErr := shop.LoadFile(options.shopPath)
	if loadErr != nil {
		return loadErr
	}
	artifact, instantiateErr := widgetTemplate.Instantiate(configuration)
	if instantiateErr != nil {
		return instantiateErr
	}

	if options.outputPath == "" {
		_, writeErr := output.Write(artifact.Body)
		return writeErr
	}
	if writeErr := writeArtifact(options.outputPath, artifact); writeErr != nil {
		return writeErr
	}
	_, _ = fmt.Fprintf(output, "%s %s\n", artifact.Digest, options.outputPath)
	return nil
}

// runRenderAll instantiates every shop before writing so a defect leaves the
// output directory untouched.
func runRenderAll(output io.Writer, options renderAllOptions) error {
	widgetTemplate, templateErr := loadTemplate(options.templatePath)
	if templateErr != nil {
		return templateErr
	}
	catalog, catalogErr := shop.LoadCatalog(options.shopsDirectory)
	if catalogErr != nil {
		return catalogErr
	}

	artifacts := make([]widget.Artifact, 0, catalog.Len())
	for _, configuration := range catalog.List() {
		artifact, instantiateErr := widgetTemplate.Instantiate(configuration)
		if instantiateErr != nil {
			return fmt.Errorf("shop %s: %w", configuration.ID, instantiateErr)
		}
		artifacts = append(artifacts, artifact)
	}

	for _, artifact := range artifacts {
		artifactPath := filepath.Join(options.outputDirectory, artifact.Name)
		if writeErr := writeArtifact(artifactPath, artifact); writeErr != nil {
			return writeErr
		}
		_, _ = fmt.Fprintf(output, "%s %s\n", artifact.Digest, artifactPath)
	}
	return nil
}
