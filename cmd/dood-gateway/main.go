package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/imbecility/dood-gateway/pkg/api"
	"github.com/imbecility/dood-gateway/pkg/gateway"
	"github.com/imbecility/dood-gateway/pkg/utils"
)

func main() {
	urlFlag := flag.String("url", "", "DoodStream URL(s), comma-separated")
	outDir := flag.String("out", "./downloads", "Output directory")
	outFile := flag.String("o", "", "Explicit output file path (single URL) or directory")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	noProgress := flag.Bool("no-progress", false, "Disable console progress bar")

	apiMode := flag.Bool("api", false, "Run in API Server mode")
	apiPort := flag.Int("port", 8080, "Port for API server")
	webMode := flag.Bool("onweb", false, "Enable simple Web UI")

	flag.Parse()

	gw, err := gateway.New(gateway.Config{
		OutputDir:    *outDir,
		Debug:        *debugFlag,
		ShowProgress: !*noProgress && !*apiMode,
	})

	if err != nil {
		fmt.Printf("Initialization failed: %v\n", err)
		os.Exit(1)
	}

	// API Server
	if *apiMode {
		srv := &api.Server{
			Port:       *apiPort,
			Gateway:    gw,
			Downloader: gw.Downloader,
			Host:       fmt.Sprintf("http://localhost:%d", *apiPort),
			Log:        gw.Log,
		}

		go srv.BackgroundCleaner(10 * time.Minute)

		if sterr := srv.Start(*webMode); sterr != nil {
			gw.Log.Error("Server crashed", "err", sterr)
			os.Exit(1)
		}
		return
	}

	// CLI
	if *urlFlag == "" {
		gw.Log.Error("Usage: -url <LINK[,LINK...]> or -api")
		os.Exit(1)
	}

	urls := utils.SplitURLList(*urlFlag)
	if err := gw.ProcessBatch(urls, *outFile); err != nil {
		gw.Log.Error("Batch failed", "err", err)
		os.Exit(1)
	}
}
