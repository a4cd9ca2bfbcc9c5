package main

import (
	"fmt"
	"os"
	"path/filepath"

	"clipcatch/internal/api"
	"clipcatch/internal/catalog"
	"clipcatch/internal/cli"
	"clipcatch/internal/config"
	"clipcatch/internal/convert"
	"clipcatch/internal/engine"
	"clipcatch/internal/extract"
	"clipcatch/internal/tools"
	"clipcatch/pkg/models"
)

const Version = "0.1.0"

func main() {
	// Create CLI instance
	cliApp := cli.NewCLI(Version)

	// Parse command-line arguments
	if len(os.Args) < 2 {
		cliApp.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	cmd, err := cliApp.ParseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cliApp.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	// Handle help and version commands
	if cmd.Type == cli.CommandHelp {
		cliApp.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	if cmd.Type == cli.CommandVersion {
		cliApp.PrintVersion(os.Stdout)
		os.Exit(0)
	}

	// Execute command
	exitCode := executeCommand(cmd)
	os.Exit(exitCode)
}

func executeCommand(cmd *cli.Command) int {
	switch cmd.Type {
	case cli.CommandServe:
		return runServe(cmd.Port)
	case cli.CommandGet:
		return runGet(cmd)
	case cli.CommandUpdate:
		return runUpdate(cmd.CheckOnly)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd.String())
		return 1
	}
}

// buildEngine wires the extractor backend, transcoder, and catalog into
// a ready engine. Shared by serve and get.
func buildEngine(cfg *models.Config, events engine.Events) (*engine.Engine, catalog.Store, int) {
	// Locate the extractor, installing it if allowed
	utilsDir := filepath.Join(config.GetDataDir(), "Utils")
	toolMgr := tools.NewManager(utilsDir)

	if cfg.ExtractorAutoInstall && !toolMgr.IsInstalled() {
		if _, err := toolMgr.FindExtractor(cfg.ExtractorPath); err != nil {
			if err := toolMgr.EnsureInstalled(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to install extractor: %v\n", err)
			}
		}
	}

	extractorPath, err := toolMgr.FindExtractor(cfg.ExtractorPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, 1
	}

	// The transcoder is optional; audio jobs fail cleanly without it
	ffmpegPath := cfg.FFmpegPath
	if found, err := tools.FindTranscoder(cfg.FFmpegPath); err == nil {
		ffmpegPath = found
	}

	backend := extract.NewCLIBackend(extractorPath, cfg.NoWatermarkArgs)
	converter := convert.NewConverter(ffmpegPath, cfg.AudioCodec, cfg.AudioQuality, cfg.AudioExt)

	catalogPath := cfg.CatalogPath
	if catalogPath == "" {
		catalogPath = config.GetDefaultCatalogPath()
	}
	store, err := catalog.OpenFileStore(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		return nil, nil, 1
	}

	return engine.New(cfg, backend, converter, store, events), store, 0
}

func loadConfig() (*models.Config, int) {
	configPath := config.GetDefaultConfigPath()
	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return nil, 1
	}

	cfg := cfgMgr.Get()
	if cfg.OutputDir == "" {
		cfg.OutputDir = config.GetDefaultOutputDir()
	}
	return cfg, 0
}

func runServe(port int) int {
	cfg, code := loadConfig()
	if code != 0 {
		return code
	}

	if port != 0 {
		cfg.WebServerPort = port
	}

	fmt.Printf("Starting ClipCatch server on port %d...\n", cfg.WebServerPort)

	eng, store, code := buildEngine(cfg, engine.Events{
		OnComplete: func(url string, success bool, pathOrReason string) {
			if success {
				fmt.Printf("Completed %s -> %s\n", url, pathOrReason)
			} else {
				fmt.Printf("Failed %s: %s\n", url, pathOrReason)
			}
		},
	})
	if code != 0 {
		return code
	}

	server := api.NewServer(cfg, eng, store)

	fmt.Printf("Server listening on %s\n", server.GetAddr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}

	// Keep server running (Start returns immediately)
	select {}
}

func runGet(cmd *cli.Command) int {
	cfg, code := loadConfig()
	if code != 0 {
		return code
	}

	failed := false
	eng, store, code := buildEngine(cfg, engine.Events{
		OnInfo: func(url string, meta models.MediaMetadata) {
			fmt.Printf("Fetched: %s", meta.Title)
			if meta.Creator != "" {
				fmt.Printf(" (by %s)", meta.Creator)
			}
			fmt.Println()
		},
		OnProgress: func(url string, percent float64, speed string) {
			fmt.Printf("\r[download] %5.1f%% at %s", percent, speed)
		},
		OnComplete: func(url string, success bool, pathOrReason string) {
			fmt.Println()
			if success {
				fmt.Printf("Saved to %s\n", pathOrReason)
			} else {
				fmt.Printf("Download failed: %s\n", pathOrReason)
				failed = true
			}
		},
	})
	if code != 0 {
		return code
	}

	if store.Exists(cmd.URL) && !cmd.Overwrite {
		fmt.Fprintln(os.Stderr, "URL already downloaded; use -overwrite to repeat")
		return 1
	}

	_, err := eng.Submit(models.JobRequest{
		URL:             cmd.URL,
		Quality:         cmd.Quality,
		AudioOnly:       cmd.AudioOnly,
		RemoveWatermark: cmd.NoWatermark,
		OutputTemplate:  cmd.Output,
		Overwrite:       cmd.Overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	eng.Wait()

	if failed {
		return 1
	}
	return 0
}

func runUpdate(checkOnly bool) int {
	if checkOnly {
		fmt.Println("Checking for extractor updates...")
	} else {
		fmt.Println("Updating extractor...")
	}

	utilsDir := filepath.Join(config.GetDataDir(), "Utils")
	toolMgr := tools.NewManager(utilsDir)

	latestVersion, hasUpdate, err := toolMgr.CheckForUpdate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking for updates: %v\n", err)
		return 1
	}

	if !hasUpdate {
		fmt.Println("Extractor is up to date")
		return 0
	}

	fmt.Printf("Update available: %s\n", latestVersion)

	if checkOnly {
		fmt.Println("Run 'clipcatch update' to install the update")
		return 0
	}

	if err := toolMgr.Download(); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating: %v\n", err)
		return 1
	}

	fmt.Printf("Extractor updated to %s\n", latestVersion)
	return 0
}
