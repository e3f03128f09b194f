package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/httpapi"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/widget"
)

const (
	commandUseName                   = "server"
	commandShortDescription          = "Serve booking widgets"
	commandLongDescription           = "Serve instantiated booking widget scripts and booking pages for a catalog of shops"
	missingConfigurationMessage      = "missing required configuration"
	loggerCreationErrorMessage       = "logger"
	logEventListening                = "listening"
	logEventLoadCatalog              = "load_catalog"
	logEventLoadTemplate             = "load_template"
	logEventEnvironmentFile          = "load_env_file"
	logFieldAddress                  = "addr"
	logFieldServeMode                = "serve_mode"
	logFieldShops                    = "shops"
	logFieldTemplate                 = "template"
	flagNameApplicationAddress       = "app-addr"
	flagNameShopsDirectory           = "shops-dir"
	flagNameTemplatePath             = "template"
	flagNameServeMode                = "serve-mode"
	flagNamePublicBaseURL            = "public-base-url"
	flagUsageApplicationAddress      = "address for the HTTP server to listen on"
	flagUsageShopsDirectory          = "directory holding one JSON or YAML file per shop"
	flagUsageTemplatePath            = "widget template file (defaults to the embedded template)"
	flagUsageServeMode               = "route groups to serve: monolith, web or api"
	flagUsagePublicBaseURL           = "public base URL used in embed snippets and shop listings"
	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyShopsDirectory     = "SHOPS_DIR"
	environmentKeyTemplatePath       = "TEMPLATE_PATH"
	environmentKeyServeMode          = "SERVE_MODE"
	environmentKeyPublicBaseURL      = "PUBLIC_BASE_URL"
	environmentFileName              = ".env"
	defaultApplicationAddress        = ":8080"
	readHeaderTimeoutSeconds         = 5
	unexpectedArgumentsMessage       = "unexpected command arguments"
	commandInitializationFailure     = "failed to configure command"
	flagNotDefinedMessage            = "flag %s not defined"
	environmentConfigurationError    = "failed to apply environment configuration"
	readTemplateErrorMessage         = "read widget template"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress string
	ShopsDirectory     string
	TemplatePath       string
	ServeMode          ServeMode
	PublicBaseURL      string
}

// ServerRunner serves the configured HTTP server until it stops.
type ServerRunner func(*http.Server) error

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	serverRunner        ServerRunner
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		serverRunner:        listenAndServe,
	}
}

// WithServerRunner overrides how the HTTP server is run.
func (application *ServerApplication) WithServerRunner(serverRunner ServerRunner) *ServerApplication {
	application.serverRunner = serverRunner
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyShopsDirectory, "")
	application.configurationLoader.SetDefault(environmentKeyTemplatePath, "")
	application.configurationLoader.SetDefault(environmentKeyServeMode, string(ServeModeMonolith))
	application.configurationLoader.SetDefault(environmentKeyPublicBaseURL, "")
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress)
	commandFlags.String(flagNameShopsDirectory, "", flagUsageShopsDirectory)
	commandFlags.String(flagNameTemplatePath, "", flagUsageTemplatePath)
	commandFlags.String(flagNameServeMode, string(ServeModeMonolith), flagUsageServeMode)
	commandFlags.String(flagNamePublicBaseURL, "", flagUsagePublicBaseURL)

	flagBindings := []struct {
		environmentKey string
		flagName       string
	}{
		{environmentKey: environmentKeyApplicationAddress, flagName: flagNameApplicationAddress},
		{environmentKey: environmentKeyShopsDirectory, flagName: flagNameShopsDirectory},
		{environmentKey: environmentKeyTemplatePath, flagName: flagNameTemplatePath},
		{environmentKey: environmentKeyServeMode, flagName: flagNameServeMode},
		{environmentKey: environmentKeyPublicBaseURL, flagName: flagNamePublicBaseURL},
	}

	for _, flagBinding := range flagBindings {
		if bindErr := application.bindFlag(commandFlags, flagBinding.environmentKey, flagBinding.flagName); bindErr != nil {
			return bindErr
		}
	}

	for _, flagBinding := range flagBindings {
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, flagBinding.environmentKey, flagBinding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameShopsDirectory); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serveMode, serveModeErr := ParseServeMode(application.configurationLoader.GetString(environmentKeyServeMode))
	if serveModeErr != nil {
		return serveModeErr
	}

	serverConfig := ServerConfig{
		ApplicationAddress: application.configurationLoader.GetString(environmentKeyApplicationAddress),
		ShopsDirectory:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyShopsDirectory)),
		TemplatePath:       strings.TrimSpace(application.configurationLoader.GetString(environmentKeyTemplatePath)),
		ServeMode:          serveMode,
		PublicBaseURL:      strings.TrimSpace(application.configurationLoader.GetString(environmentKeyPublicBaseURL)),
	}

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	httpServer, buildErr := buildHTTPServer(serverConfig, logger)
	if buildErr != nil {
		return buildErr
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress), zap.String(logFieldServeMode, string(serverConfig.ServeMode)))
	return application.serverRunner(httpServer)
}

func buildHTTPServer(serverConfig ServerConfig, logger *zap.Logger) (*http.Server, error) {
	catalog, catalogErr := shop.LoadCatalog(serverConfig.ShopsDirectory)
	if catalogErr != nil {
		logger.Error(logEventLoadCatalog, zap.Error(catalogErr))
		return nil, catalogErr
	}
	logger.Info(logEventLoadCatalog, zap.Int(logFieldShops, catalog.Len()))

	widgetTemplate, templateErr := loadWidgetTemplate(serverConfig.TemplatePath)
	if templateErr != nil {
		logger.Error(logEventLoadTemplate, zap.Error(templateErr))
		return nil, templateErr
	}
	logger.Info(logEventLoadTemplate, zap.String(logFieldTemplate, widgetTemplate.Name()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestID())
	router.Use(httpapi.RequestLogger(logger))
	router.Use(publicCORS())

	widgetHandlers := httpapi.NewWidgetHandlers(catalog, widgetTemplate, logger, httpapi.NewWidgetMetrics(registry), serverConfig.PublicBaseURL)
	bookingPageHandlers := httpapi.NewBookingPageHandlers(catalog, logger, serverConfig.PublicBaseURL)

	router.GET(healthRoute, widgetHandlers.Health)
	if serverConfig.ServeMode.servesWeb() {
		registerFrontendRoutes(router, widgetHandlers, bookingPageHandlers)
	}
	if serverConfig.ServeMode.servesAPI() {
		registerBackendRoutes(router, widgetHandlers, registry)
	}

	return &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}, nil
}

func loadWidgetTemplate(templatePath string) (*widget.Template, error) {
	if templatePath == "" {
		return widget.DefaultTemplate(), nil
	}
	templateSource, readErr := os.ReadFile(templatePath)
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w", readTemplateErrorMessage, readErr)
	}
	return widget.ParseTemplate(filepath.Base(templatePath), string(templateSource))
}

func listenAndServe(httpServer *http.Server) error {
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.ShopsDirectory == "" {
		missingParameters = append(missingParameters, flagNameShopsDirectory)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func loadEnvironmentFile(path string) error {
	if loadErr := godotenv.Load(path); loadErr != nil && !errors.Is(loadErr, fs.ErrNotExist) {
		return loadErr
	}
	return nil
}

func main() {
	if environmentErr := loadEnvironmentFile(environmentFileName); environmentErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", logEventEnvironmentFile, environmentErr)
	}

	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
