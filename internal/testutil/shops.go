package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
)

const (
	StudioShopID          = "studio"
	StudioShopName        = "Studio"
	StudioAccentColor     = "#111"
	StudioChatAddress     = "https://chat.example/bot"
	StudioStaffName       = "Ann"
	StudioStaffHandle     = "@ann"
	StudioStaffPhotoURL   = "x.jpg"
	StudioStaffSpecialty  = "color"
	shopFileExtensionJSON = ".json"
	shopFilePermissions   = 0o600
)

type testingLogWriter struct {
	testingT *testing.T
}

func (writer testingLogWriter) Write(data []byte) (int, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed != "" {
		writer.testingT.Log(trimmed)
	}
	return len(data), nil
}

// NewTestLogger returns a zap logger that writes warnings and errors to the test log.
func NewTestLogger(testingT *testing.T) *zap.Logger {
	testingT.Helper()
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(testingLogWriter{testingT: testingT}),
		zapcore.WarnLevel,
	)
	return zap.New(core)
}

// StudioConfiguration returns a single-member configuration used across tests.
func StudioConfiguration() shop.Configuration {
	return shop.Configuration{
		ID:          StudioShopID,
		ShopName:    StudioShopName,
		AccentColor: StudioAccentColor,
		ChatAddress: StudioChatAddress,
		Staff: []shop.StaffMember{
			{
				Name:      StudioStaffName,
				Handle:    StudioStaffHandle,
				PhotoURL:  StudioStaffPhotoURL,
				Specialty: StudioStaffSpecialty,
			},
		},
	}
}

// WriteShopFile stores the configuration as JSON named after its ID and returns the path.
func WriteShopFile(testingT *testing.T, directory string, configuration shop.Configuration) string {
	testingT.Helper()
	encoded, encodeErr := json.MarshalIndent(configuration, "", "  ")
	if encodeErr != nil {
		testingT.Fatalf("encode shop configuration: %v", encodeErr)
	}
	shopFilePath := filepath.Join(directory, configuration.ID+shopFileExtensionJSON)
	if writeErr := os.WriteFile(shopFilePath, encoded, shopFilePermissions); writeErr != nil {
		testingT.Fatalf("write shop configuration: %v", writeErr)
	}
	return shopFilePath
}

// NewShopsDirectory creates a temporary catalog directory holding the configurations.
func NewShopsDirectory(testingT *testing.T, configurations ...shop.Configuration) string {
	testingT.Helper()
	directory := testingT.TempDir()
	for _, configuration := range configurations {
		WriteShopFile(testingT, directory, configuration)
	}
	return directory
}
