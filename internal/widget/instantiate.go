package widget

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
)

const (
	artifactFileExtension       = ".js"
	errorMessageUnresolvedToken = "unresolved placeholder"
)

// Artifact is an instantiated, self-contained widget script.
type Artifact struct {
	Name   string
	Body   []byte
	Digest string
}

// ETag returns the strong entity tag derived from the artifact digest.
func (artifact Artifact) ETag() string {
	return `"` + artifact.Digest + `"`
}

// Instantiate binds the configuration into the template. The configuration is
// validated first; no partial artifact is returned on error. Identical inputs
// produce byte-identical artifacts.
func (template *Template) Instantiate(configuration shop.Configuration) (Artifact, error) {
	if validationErr := configuration.Validate(); validationErr != nil {
		return Artifact{}, validationErr
	}

	replacer := strings.NewReplacer(
		string(PlaceholderStaffRoster), SerializeRoster(configuration.Staff),
		string(PlaceholderChatBaseURL), EscapeStringLiteral(configuration.ChatBaseURL()),
		string(PlaceholderShopName), EscapeStringLiteral(configuration.ShopName),
		string(PlaceholderAccentColor), EscapeStringLiteral(strings.TrimSpace(configuration.AccentColor)),
	)
	body := replacer.Replace(template.source)

	if unresolvedToken := placeholderTokenPattern.FindString(body); unresolvedToken != "" {
		return Artifact{}, fmt.Errorf("%w: %s: %s %s", ErrTemplateDefect, template.name, errorMessageUnresolvedToken, unresolvedToken)
	}

	digest := sha256.Sum256([]byte(body))
	return Artifact{
		Name:   artifactName(configuration),
		Body:   []byte(body),
		Digest: hex.EncodeToString(digest[:]),
	}, nil
}

// Instantiate binds the configuration into the embedded default template.
func Instantiate(configuration shop.Configuration) (Artifact, error) {
	return defaultTemplate.Instantiate(configuration)
}

func artifactName(configuration shop.Configuration) string {
	if configuration.ID == "" {
		return DefaultTemplateName
	}
	return configuration.ID + artifactFileExtension
}
