package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/widget"
)

var errAuditFailed = errors.New("widget_audit_failed")

var scalarPlaceholders = []widget.Placeholder{
	widget.PlaceholderChatBaseURL,
	widget.PlaceholderShopName,
	widget.PlaceholderAccentColor,
}

type auditOptions struct {
	templatePath   string
	shopsDirectory string
}

type auditResult struct {
	errors   []string
	warnings []string
}

type auditManifest struct {
	Template     string         `yaml:"template"`
	Placeholders map[string]int `yaml:"placeholders"`
	Unknown      []string       `yaml:"unknown,omitempty"`
	Shops        []string       `yaml:"shops,omitempty"`
}

func (result *auditResult) addError(message string, arguments ...any) {
	result.errors = append(result.errors, fmt.Sprintf(message, arguments...))
}

func (result *auditResult) addWarning(message string, arguments ...any) {
	result.warnings = append(result.warnings, fmt.Sprintf(message, arguments...))
}

func (result auditResult) ok() bool {
	return len(result.errors) == 0
}

func newAuditCommand() *cobra.Command {
	options := auditOptions{}
	command := &cobra.Command{
		Use:   "audit",
		Short: "Report missing, duplicated and unknown template placeholders",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			manifest, result := runAudit(options)
			return reportAudit(command.OutOrStdout(), command.ErrOrStderr(), manifest, result)
		},
	}
	commandFlags := command.Flags()
	commandFlags.StringVar(&options.templatePath, flagNameTemplate, "", flagUsageTemplate)
	commandFlags.StringVar(&options.shopsDirectory, flagNameShopsDirectory, "", "also instantiate every shop in this directory")
	return command
}

func runAudit(options auditOptions) (auditManifest, auditResult) {
	var result auditResult

	templateName := widget.DefaultTemplateName
	templateSource := widget.DefaultTemplate().Source()
	if options.templatePath != "" {
		templateName = options.templatePath
		document, readErr := os.ReadFile(options.templatePath)
		if readErr != nil {
			result.addError("%s %s: %v", readTemplateErrorMessage, options.templatePath, readErr)
			return auditManifest{Template: templateName}, result
		}
		templateSource = string(document)
	}

	report := widget.AuditTemplate(templateSource)
	manifest := auditManifest{
		Template:     templateName,
		Placeholders: make(map[string]int, len(report.Counts)),
		Unknown:      report.Unknown,
	}
	for placeholder, occurrences := range report.Counts {
		manifest.Placeholders[string(placeholder)] = occurrences
	}

	if strings.TrimSpace(templateSource) == "" {
		result.addError("template %s is empty", templateName)
	}
	for _, placeholder := range report.Missing {
		result.addError("template %s: %s is missing", templateName, placeholder)
	}
	for _, placeholder := range report.Duplicated {
		result.addError("template %s: %s occurs %d times", templateName, placeholder, report.Counts[placeholder])
	}
	for _, token := range report.Unknown {
		result.addError("template %s: unknown placeholder %s", templateName, token)
	}
	checkPlaceholderQuoting(templateName, templateSource, &result)

	if options.shopsDirectory != "" {
		manifest.Shops = auditShops(options.shopsDirectory, templateName, templateSource, &result)
	}
	return manifest, result
}

// Scalar placeholders are bound as string literal bodies and the roster as an
// array literal, so the surrounding quotes decide whether the artifact parses.
func checkPlaceholderQuoting(templateName string, templateSource string, result *auditResult) {
	for _, placeholder := range scalarPlaceholders {
		if strings.Count(templateSource, string(placeholder)) != 1 {
			continue
		}
		if !quotedPlaceholderPattern(placeholder).MatchString(templateSource) {
			result.addWarning("template %s: %s is not enclosed in quotes", templateName, placeholder)
		}
	}
	if quotedPlaceholderPattern(widget.PlaceholderStaffRoster).MatchString(templateSource) {
		result.addWarning("template %s: %s is enclosed in quotes but is bound as an array literal", templateName, widget.PlaceholderStaffRoster)
	}
}

func quotedPlaceholderPattern(placeholder widget.Placeholder) *regexp.Regexp {
	quotedToken := regexp.QuoteMeta(string(placeholder))
	return regexp.MustCompile(`"` + quotedToken + `"|'` + quotedToken + `'`)
}

func auditShops(shopsDirectory string, templateName string, templateSource string, result *auditResult) []string {
	catalog, catalogErr := shop.LoadCatalog(shopsDirectory)
	if catalogErr != nil {
		result.addError("shops %s: %v", shopsDirectory, catalogErr)
		return nil
	}
	if catalog.Len() == 0 {
		result.addWarning("shops %s: no shop files found", shopsDirectory)
		return nil
	}

	widgetTemplate, parseErr := widget.ParseTemplate(templateName, templateSource)
	if parseErr != nil {
		return nil
	}
	shopIDs := make([]string, 0, catalog.Len())
	for _, configuration := range catalog.List() {
		shopIDs = append(shopIDs, configuration.ID)
		if _, instantiateErr := widgetTemplate.Instantiate(configuration); instantiateErr != nil {
			result.addError("shop %s: %v", configuration.ID, instantiateErr)
		}
	}
	return shopIDs
}

func reportAudit(output io.Writer, errorOutput io.Writer, manifest auditManifest, result auditResult) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(2)
	if encodeErr := encoder.Encode(manifest); encodeErr != nil {
		return encodeErr
	}
	if closeErr := encoder.Close(); closeErr != nil {
		return closeErr
	}

	sort.Strings(result.errors)
	sort.Strings(result.warnings)
	for _, warning := range result.warnings {
		_, _ = fmt.Fprintf(output, "WARN: %s\n", warning)
	}
	for _, errorMessage := range result.errors {
		_, _ = fmt.Fprintf(errorOutput, "ERROR: %s\n", errorMessage)
	}
	if !result.ok() {
		_, _ = fmt.Fprintf(errorOutput, "widget-audit failed\n")
		return errAuditFailed
	}
	_, _ = fmt.Fprintf(output, "widget-audit OK\n")
	return nil
}
