// Package tools locates and installs the external programs the engine
// shells out to: the extractor binary and the ffmpeg transcoder.
package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	extractorReleaseAPI = "https://api.github.com/repos/yt-dlp/yt-dlp-nightly-builds/releases/latest"
)

// HTTPClient is the subset of http.Client the manager needs
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// Manager handles extractor installation and updates
type Manager struct {
	utilsDir       string
	client         HTTPClient
	currentVersion string
	lastCheckTime  time.Time
}

// GitHubRelease represents a GitHub release
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// NewManager creates a new extractor manager
func NewManager(utilsDir string) *Manager {
	return NewManagerWithClient(utilsDir, http.DefaultClient)
}

// NewManagerWithClient creates a manager with a custom HTTP client
func NewManagerWithClient(utilsDir string, client HTTPClient) *Manager {
	// Ensure utils directory exists
	os.MkdirAll(utilsDir, 0755)

	return &Manager{
		utilsDir: utilsDir,
		client:   client,
	}
}

// GetExtractorPath returns the path to the managed extractor executable
func (m *Manager) GetExtractorPath() string {
	filename := detectPlatform()
	return filepath.Join(m.utilsDir, filename)
}

// IsInstalled checks if the extractor is installed
func (m *Manager) IsInstalled() bool {
	_, err := os.Stat(m.GetExtractorPath())
	return err == nil
}

// GetCurrentVersion returns the currently installed version
func (m *Manager) GetCurrentVersion() string {
	return m.currentVersion
}

// CheckForUpdate checks if a newer version is available
func (m *Manager) CheckForUpdate() (string, bool, error) {
	// Get latest release from GitHub
	resp, err := m.client.Get(extractorReleaseAPI)
	if err != nil {
		return "", false, fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", false, fmt.Errorf("failed to parse release info: %w", err)
	}

	m.lastCheckTime = time.Now()

	// If not installed, any version is an update
	if !m.IsInstalled() {
		return release.TagName, true, nil
	}

	// Compare versions
	if m.currentVersion == "" || m.currentVersion != release.TagName {
		return release.TagName, true, nil
	}

	return release.TagName, false, nil
}

// Download downloads and installs the extractor
func (m *Manager) Download() error {
	// Get latest release info
	resp, err := m.client.Get(extractorReleaseAPI)
	if err != nil {
		return fmt.Errorf("failed to fetch release info: %w", err)
	}
	defer resp.Body.Close()

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return fmt.Errorf("failed to parse release info: %w", err)
	}

	// Find the correct asset for this platform
	platform := detectPlatform()
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == platform {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}

	if downloadURL == "" {
		return fmt.Errorf("no asset found for platform: %s", platform)
	}

	// Download the file
	fmt.Printf("Downloading extractor %s...\n", release.TagName)
	resp, err = m.client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	// Write to file
	extractorPath := m.GetExtractorPath()
	tmpPath := extractorPath + ".tmp"

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	// Make executable
	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to make executable: %w", err)
	}

	// Replace old file
	if m.IsInstalled() {
		if err := os.Remove(extractorPath); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to remove old file: %w", err)
		}
	}

	if err := os.Rename(tmpPath, extractorPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	// Update version
	m.currentVersion = release.TagName
	fmt.Printf("Extractor %s installed successfully\n", release.TagName)

	return nil
}

// EnsureInstalled ensures the extractor is installed, downloading if necessary
func (m *Manager) EnsureInstalled() error {
	if m.IsInstalled() {
		return nil
	}

	fmt.Println("Extractor not found, downloading...")
	return m.Download()
}

// AutoUpdate checks for and applies updates if available
func (m *Manager) AutoUpdate() error {
	latestVersion, hasUpdate, err := m.CheckForUpdate()
	if err != nil {
		return err
	}

	if !hasUpdate {
		fmt.Println("Extractor is up to date")
		return nil
	}

	fmt.Printf("Updating extractor to %s...\n", latestVersion)
	return m.Download()
}

// detectPlatform returns the appropriate extractor binary name for the current platform
func detectPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "yt-dlp.exe"
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "yt-dlp_linux_aarch64"
		}
		return "yt-dlp_linux"
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "yt-dlp_macos_arm64"
		}
		return "yt-dlp_macos"
	default:
		return "yt-dlp"
	}
}

// FindExtractor resolves the extractor to run: an explicit path wins if
// it exists, then PATH lookup, then a previously managed install.
func (m *Manager) FindExtractor(configured string) (string, error) {
	if strings.ContainsRune(configured, os.PathSeparator) {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("extractor not found at %s", configured)
	}

	if configured != "" {
		if path, err := exec.LookPath(configured); err == nil {
			return path, nil
		}
	}

	if m.IsInstalled() {
		return m.GetExtractorPath(), nil
	}

	return "", fmt.Errorf("extractor %q not found in PATH and not installed", configured)
}

// FindTranscoder resolves the ffmpeg binary to run. It is never
// auto-installed; a missing transcoder only blocks audio conversion.
func FindTranscoder(configured string) (string, error) {
	if configured == "" {
		configured = "ffmpeg"
	}

	if strings.ContainsRune(configured, os.PathSeparator) {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("transcoder not found at %s", configured)
	}

	path, err := exec.LookPath(configured)
	if err != nil {
		return "", fmt.Errorf("transcoder %q not found in PATH", configured)
	}
	return path, nil
}
