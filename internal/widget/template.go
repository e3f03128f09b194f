// Package widget instantiates booking-widget templates into per-shop scripts.
package widget

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Placeholder is a token replaced during instantiation.
type Placeholder string

const (
	PlaceholderStaffRoster Placeholder = "{{STAFF_LIST_JSON}}"
	PlaceholderChatBaseURL Placeholder = "{{CHAT_BASE_URL}}"
	PlaceholderShopName    Placeholder = "{{SHOP_NAME}}"
	PlaceholderAccentColor Placeholder = "{{PRIMARY_COLOR}}"

	// DefaultTemplateName names the embedded booking widget template.
	DefaultTemplateName = "booking_widget.js"

	errorMessageTemplateDefect = "widget: template defect"
	errorMessageEmptyTemplate  = "empty template"
)

// ErrTemplateDefect indicates a template with missing, duplicated or unknown placeholders.
var ErrTemplateDefect = errors.New(errorMessageTemplateDefect)

// Placeholders lists every recognized placeholder in binding order.
var Placeholders = []Placeholder{
	PlaceholderStaffRoster,
	PlaceholderChatBaseURL,
	PlaceholderShopName,
	PlaceholderAccentColor,
}

var placeholderTokenPattern = regexp.MustCompile(`\{\{[A-Z0-9_]+\}\}`)

//go:embed assets/booking_widget.js
var defaultTemplateSource string

var defaultTemplate = MustParseTemplate(DefaultTemplateName, defaultTemplateSource)

// Template is a parsed widget template. It is immutable and safe for concurrent use.
type Template struct {
	name   string
	source string
}

// PlaceholderReport describes the placeholder usage of a template source.
type PlaceholderReport struct {
	Counts     map[Placeholder]int `json:"counts"`
	Missing    []Placeholder       `json:"missing"`
	Duplicated []Placeholder       `json:"duplicated"`
	Unknown    []string            `json:"unknown"`
}

// AuditTemplate counts recognized placeholders and collects unknown tokens.
func AuditTemplate(source string) PlaceholderReport {
	report := PlaceholderReport{
		Counts:     make(map[Placeholder]int, len(Placeholders)),
		Missing:    []Placeholder{},
		Duplicated: []Placeholder{},
		Unknown:    []string{},
	}
	for _, placeholder := range Placeholders {
		occurrences := strings.Count(source, string(placeholder))
		report.Counts[placeholder] = occurrences
		switch {
		case occurrences == 0:
			report.Missing = append(report.Missing, placeholder)
		case occurrences > 1:
			report.Duplicated = append(report.Duplicated, placeholder)
		}
	}

	seenUnknown := make(map[string]struct{})
	for _, token := range placeholderTokenPattern.FindAllString(source, -1) {
		if isRecognizedPlaceholder(token) {
			continue
		}
		if _, seen := seenUnknown[token]; seen {
			continue
		}
		seenUnknown[token] = struct{}{}
		report.Unknown = append(report.Unknown, token)
	}
	sort.Strings(report.Unknown)
	return report
}

// Err returns ErrTemplateDefect describing every problem in the report, or nil.
func (report PlaceholderReport) Err() error {
	var problems []string
	for _, placeholder := range report.Missing {
		problems = append(problems, fmt.Sprintf("missing %s", placeholder))
	}
	for _, placeholder := range report.Duplicated {
		problems = append(problems, fmt.Sprintf("duplicated %s (%d occurrences)", placeholder, report.Counts[placeholder]))
	}
	for _, token := range report.Unknown {
		problems = append(problems, fmt.Sprintf("unknown %s", token))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTemplateDefect, strings.Join(problems, ", "))
}

// ParseTemplate checks that every recognized placeholder occurs exactly once
// and that no unknown placeholder token is present.
func ParseTemplate(name string, source string) (*Template, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrTemplateDefect, name, errorMessageEmptyTemplate)
	}
	if auditErr := AuditTemplate(source).Err(); auditErr != nil {
		return nil, fmt.Errorf("%s: %w", name, auditErr)
	}
	return &Template{name: name, source: source}, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(name string, source string) *Template {
	parsedTemplate, parseErr := ParseTemplate(name, source)
	if parseErr != nil {
		panic(parseErr)
	}
	return parsedTemplate
}

// DefaultTemplate returns the embedded booking widget template.
func DefaultTemplate() *Template {
	return defaultTemplate
}

func (template *Template) Name() string {
	return template.name
}

func (template *Template) Source() string {
	return template.source
}

func isRecognizedPlaceholder(token string) bool {
	for _, placeholder := range Placeholders {
		if token == string(placeholder) {
			return true
		}
	}
	return false
}
