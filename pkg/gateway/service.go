package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/imbecility/dood-gateway/pkg/downloader"
	"github.com/imbecility/dood-gateway/pkg/models"
	"github.com/imbecility/dood-gateway/pkg/providers"
	"github.com/imbecility/dood-gateway/pkg/utils"
)

type Service struct {
	Resolver   providers.Provider
	Downloader *downloader.Downloader
	Log        *slog.Logger
}

func NewService(resolver providers.Provider, dl *downloader.Downloader, log *slog.Logger) *Service {
	return &Service{
		Resolver:   resolver,
		Downloader: dl,
		Log:        log,
	}
}

// ProcessVideo resolves one embed URL and streams the result to disk.
// outputPath may be empty (save into the output dir under the video title),
// an existing directory (save inside it) or an explicit file path.
func (s *Service) ProcessVideo(rawURL string, outputPath string) (*models.ResolveResult, string, error) {
	if !utils.IsDoodURL(rawURL) {
		return nil, "", fmt.Errorf("not a DoodStream URL: %s", rawURL)
	}

	res, err := s.Resolver.Resolve(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("resolve failed: %w", err)
	}

	finalPath := s.outputPathFor(res.Title, outputPath)
	s.Log.Info("Link acquired", "provider", s.Resolver.Name(), "title", res.Title, "path", finalPath)

	var onProgress downloader.ProgressFunc
	var console *downloader.ConsoleProgress
	if s.Downloader.ShowProgress {
		console = downloader.NewConsoleProgress(filepath.Base(finalPath))
		onProgress = console.Report
	}

	err = s.Downloader.Fetch(models.DownloadTarget{URL: res.DownloadURL, Path: finalPath}, onProgress)
	if console != nil {
		console.Finish()
	}
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}

	absPath, _ := filepath.Abs(finalPath)
	return res, absPath, nil
}

// ProcessBatch runs ProcessVideo over a list of URLs. Invalid URLs are
// skipped with a warning and per-item failures do not abort the rest; the
// batch only errors when nothing succeeded.
func (s *Service) ProcessBatch(urls []string, outputPath string) error {
	valid := make([]string, 0, len(urls))
	for _, u := range urls {
		if !utils.IsDoodURL(u) {
			s.Log.Warn("Invalid URL, skipping", "url", u)
			continue
		}
		valid = append(valid, u)
	}
	if len(valid) == 0 {
		return errors.New("no valid DoodStream URLs")
	}

	// An explicit file path only makes sense for a single item; for a batch
	// it is treated as a directory to fill.
	if len(valid) > 1 && outputPath != "" {
		if err := s.fs().MkdirAll(outputPath, 0755); err != nil {
			return fmt.Errorf("failed to create output dir %s: %w", outputPath, err)
		}
	}

	s.Log.Info("Starting batch", "count", len(valid))

	failed := 0
	for i, u := range valid {
		s.Log.Info("Processing video", "index", i+1, "total", len(valid), "url", u)
		_, path, err := s.ProcessVideo(u, outputPath)
		if err != nil {
			s.Log.Error("Failed to process video", "url", u, "err", err)
			failed++
			continue
		}
		s.Log.Info("Finished video", "index", i+1, "total", len(valid), "path", path)
	}

	if failed == len(valid) {
		return fmt.Errorf("all %d downloads failed", failed)
	}
	if failed > 0 {
		s.Log.Warn("Batch finished with failures", "failed", failed, "total", len(valid))
	} else {
		s.Log.Info("All videos successfully downloaded")
	}
	return nil
}

func (s *Service) outputPathFor(title string, outputPath string) string {
	filename := title + ".mp4"
	if outputPath == "" {
		return filepath.Join(s.Downloader.OutputDir, filename)
	}
	if isDir, _ := afero.DirExists(s.fs(), outputPath); isDir {
		return filepath.Join(outputPath, filename)
	}
	return outputPath
}

func (s *Service) fs() afero.Fs {
	if s.Downloader != nil && s.Downloader.Fs != nil {
		return s.Downloader.Fs
	}
	return afero.NewOsFs()
}
