package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imbecility/dood-gateway/pkg/downloader"
	"github.com/imbecility/dood-gateway/pkg/gateway"
	"github.com/imbecility/dood-gateway/pkg/models"
	"github.com/imbecility/dood-gateway/pkg/utils"
)

type Server struct {
	Port            int
	Gateway         *gateway.Service
	Downloader      *downloader.Downloader
	Host            string
	Log             *slog.Logger
	mu              sync.Mutex
	activeDownloads map[string]int
}

func (s *Server) Start(enableWeb bool) error {
	s.activeDownloads = make(map[string]int)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/resolve", s.handleAPIResolve)
	mux.HandleFunc("/api/download", s.handleAPIDownload)
	mux.HandleFunc("/files/", s.handleFileDownload)

	if enableWeb {
		mux.HandleFunc("/", s.handleWebIndex)
	}

	addr := fmt.Sprintf(":%d", s.Port)
	fullAddr := fmt.Sprintf("http://localhost:%d", s.Port)
	s.Log.Info("Starting API server", "addr", fullAddr, "web_ui", enableWeb)
	return http.ListenAndServe(addr, mux)
}

// handleAPIResolve turns an embed URL into the expiring direct link without
// downloading anything. The link is minted per request, so clients must use
// it promptly.
func (s *Server) handleAPIResolve(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}

	s.Log.Info("API resolve request", "url", rawURL, "remote", r.RemoteAddr)

	res, err := s.Gateway.Resolver.Resolve(rawURL)
	if err != nil {
		s.Log.Error("Resolve failed", "url", rawURL, "err", err)
		s.respondJSON(w, models.APIResponse{Success: false, Error: err.Error()})
		return
	}

	s.respondJSON(w, models.APIResponse{
		Success:   true,
		Title:     res.Title,
		DirectURL: res.DownloadURL,
	})
}

// handleAPIDownload resolves and downloads server-side, then hands back a
// /files/ link to the saved copy.
func (s *Server) handleAPIDownload(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}

	s.Log.Info("API download request", "url", rawURL, "remote", r.RemoteAddr)

	res, err := s.Gateway.Resolver.Resolve(rawURL)
	if err != nil {
		s.Log.Error("Resolve failed", "url", rawURL, "err", err)
		s.respondJSON(w, models.APIResponse{Success: false, Error: err.Error()})
		return
	}

	// uuid suffix keeps repeated requests for the same video from clobbering
	// each other's files.
	filename := fmt.Sprintf("%s_%s.mp4", res.Title, uuid.NewString()[:8])
	localPath := filepath.Join(s.Downloader.OutputDir, filename)

	s.trackFileStart(filename)
	err = s.Downloader.Fetch(models.DownloadTarget{URL: res.DownloadURL, Path: localPath}, nil)
	s.trackFileEnd(filename)
	if err != nil {
		s.Log.Error("Download failed", "url", rawURL, "err", err)
		s.respondJSON(w, models.APIResponse{Success: false, Error: err.Error()})
		return
	}

	absPath, _ := filepath.Abs(localPath)
	s.respondJSON(w, models.APIResponse{
		Success:   true,
		Title:     res.Title,
		StreamURL: fmt.Sprintf("%s/files/%s", s.Host, filename),
		LocalPath: absPath,
	})
}

func (s *Server) decodeURLRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}

	if !utils.IsDoodURL(req.URL) {
		s.respondJSON(w, models.APIResponse{Success: false, Error: "Invalid DoodStream URL"})
		return "", false
	}
	return req.URL, true
}

func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/files/")
	if filename == "" || strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.Downloader.OutputDir, filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		http.Error(w, "File not found or expired", http.StatusNotFound)
		return
	}

	s.trackFileStart(filename)
	defer s.trackFileEnd(filename)

	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "File access error", http.StatusInternalServerError)
		return
	}
	defer func(file *os.File) {
		cerr := file.Close()
		if cerr != nil {
			s.Log.Error("Error closing file", "err", cerr)
		}
	}(file)

	s.Log.Info("Serving file via API", "file", filename, "remote", r.RemoteAddr)

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	http.ServeContent(w, r, filename, time.Now(), file)
}

// BackgroundCleaner removes saved files older than ttl, skipping ones still
// being served or written.
func (s *Server) BackgroundCleaner(ttl time.Duration) {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		files, err := os.ReadDir(s.Downloader.OutputDir)
		if err != nil {
			s.Log.Error("Cleaner cant read dir", "err", err)
			continue
		}

		for _, f := range files {
			name := f.Name()

			if s.isFileBusy(name) {
				s.Log.Debug("Skipping busy file", "file", name)
				continue
			}

			info, _ := f.Info()
			if time.Since(info.ModTime()) > ttl {
				fullPath := filepath.Join(s.Downloader.OutputDir, name)
				err := os.Remove(fullPath)
				if err != nil {
					s.Log.Error("Failed to remove file", "err", err)
				} else {
					s.Log.Debug("Cleaned up old file", "file", name)
				}
			}
		}
	}
}

func (s *Server) trackFileStart(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeDownloads == nil {
		s.activeDownloads = make(map[string]int)
	}
	s.activeDownloads[filename]++
}

func (s *Server) trackFileEnd(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDownloads[filename]--
	if s.activeDownloads[filename] <= 0 {
		delete(s.activeDownloads, filename)
	}
}

func (s *Server) isFileBusy(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDownloads[filename] > 0
}

func (s *Server) handleWebIndex(w http.ResponseWriter, r *http.Request) {
	t, _ := template.New("index").Parse(tmpl)
	err := t.Execute(w, nil)
	if err != nil {
		s.Log.Error("Template execution failed", "error", err, "remote", r.RemoteAddr)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	jerr := json.NewEncoder(w).Encode(data)
	if jerr != nil {
		s.Log.Error("JSON encoding failed", "error", jerr)
	}
}
