package gateway

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/imbecility/dood-gateway/pkg/client"
	"github.com/imbecility/dood-gateway/pkg/downloader"
	"github.com/imbecility/dood-gateway/pkg/logger"
	"github.com/imbecility/dood-gateway/pkg/providers"
)

// Config represents the configuration for gateway initialization.
type Config struct {
	// OutputDir is the folder for saving files (defaults to ./downloads).
	OutputDir string
	// Debug enables verbose logging.
	Debug bool
	// ShowProgress enables the progress bar in the console (for CLI usage).
	ShowProgress bool
}

// New creates a ready-to-use Service instance with all necessary
// dependencies: one logger and one HTTP client, both constructed here and
// handed down explicitly to the resolver and the downloader.
func New(cfg Config) (*Service, error) {
	log := logger.New(cfg.Debug, false)

	if cfg.OutputDir == "" {
		cfg.OutputDir = "./downloads"
	}

	absOutDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("invalid output dir: %w", err)
	}
	if err := os.MkdirAll(absOutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	httpClient, err := client.NewHttpClient()
	if err != nil {
		return nil, fmt.Errorf("failed to init http client: %w", err)
	}

	resolver := &providers.DoodStream{Client: httpClient, Log: log}

	dl := &downloader.Downloader{
		Client:       httpClient,
		Fs:           afero.NewOsFs(),
		OutputDir:    absOutDir,
		ShowProgress: cfg.ShowProgress,
		Log:          log,
	}

	return NewService(resolver, dl, log), nil
}
