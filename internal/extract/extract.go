// Package extract drives the external extraction tool (yt-dlp) for
// metadata retrieval and stream downloads.
package extract

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipcatch/pkg/models"
)

// ProgressFunc receives per-chunk download progress
type ProgressFunc func(percent float64, speed string)

// DownloadRequest describes one retrieval operation for a resolved stream
type DownloadRequest struct {
	URL             string
	FormatID        string
	Ext             string // container of the resolved format
	OutputTemplate  string // may contain the %(ext)s placeholder
	Overwrite       bool
	RemoveWatermark bool
	Progress        ProgressFunc
}

// Backend is the extraction capability the engine drives. Implementations
// must be safe for use from multiple concurrent jobs.
type Backend interface {
	FetchMetadata(ctx context.Context, url string) (*models.MediaMetadata, error)
	Download(ctx context.Context, req DownloadRequest) (string, error)
}

// MetadataError carries the raw backend message for a failed info call.
type MetadataError struct {
	Message string
}

func (e *MetadataError) Error() string {
	return "metadata fetch failed: " + e.Message
}

// DownloadError carries the raw backend message for a failed retrieval.
type DownloadError struct {
	Message string
}

func (e *DownloadError) Error() string {
	return "download failed: " + e.Message
}

// CLIBackend invokes the yt-dlp binary as an external process
type CLIBackend struct {
	path            string
	noWatermarkArgs []string
}

// NewCLIBackend creates a backend around the given extractor binary.
// extraWatermarkArgs is a space-separated passthrough appended when a
// request asks for watermark removal.
func NewCLIBackend(path, extraWatermarkArgs string) *CLIBackend {
	return &CLIBackend{
		path:            path,
		noWatermarkArgs: strings.Fields(extraWatermarkArgs),
	}
}

// FetchMetadata runs the extractor's info operation (no download) and
// maps the result into MediaMetadata. The returned format list is never
// empty.
func (b *CLIBackend) FetchMetadata(ctx context.Context, url string) (*models.MediaMetadata, error) {
	cmd := exec.CommandContext(ctx, b.path, "-J", "--no-playlist", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &MetadataError{Message: backendMessage(stderr.String(), err)}
	}

	meta, err := mapMetadata(stdout.Bytes())
	if err != nil {
		return nil, &MetadataError{Message: err.Error()}
	}
	return meta, nil
}

// Download runs the extractor's retrieval operation for a resolved
// stream, relaying progress events, and returns the concrete produced
// file path with placeholder tokens resolved.
func (b *CLIBackend) Download(ctx context.Context, req DownloadRequest) (string, error) {
	outPath := ResolveOutputPath(req.OutputTemplate, req.Ext)

	args := []string{"--no-playlist", "--newline", "-f", req.FormatID, "-o", req.OutputTemplate}
	if req.Overwrite {
		// Remove any stale artifact first, then tell the backend to
		// overwrite whatever remains.
		os.Remove(outPath)
		args = append(args, "--force-overwrites")
	}
	if req.RemoveWatermark && len(b.noWatermarkArgs) > 0 {
		args = append(args, b.noWatermarkArgs...)
	}
	args = append(args, req.URL)

	cmd := exec.CommandContext(ctx, b.path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &DownloadError{Message: err.Error()}
	}
	if err := cmd.Start(); err != nil {
		return "", &DownloadError{Message: err.Error()}
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if percent, speed, ok := ParseProgressLine(scanner.Text()); ok && req.Progress != nil {
			req.Progress(percent, speed)
		}
	}

	if err := cmd.Wait(); err != nil {
		return "", &DownloadError{Message: backendMessage(stderr.String(), err)}
	}

	return locateOutput(outPath)
}

// ResolveOutputPath substitutes the extension placeholder in an output
// template with a concrete container extension.
func ResolveOutputPath(template, ext string) string {
	return strings.ReplaceAll(template, "%(ext)s", ext)
}

// locateOutput verifies the expected output file, falling back to a
// sibling-extension glob when the backend remuxed into another container.
func locateOutput(expected string) (string, error) {
	if fileExists(expected) {
		return expected, nil
	}

	base := strings.TrimSuffix(expected, filepath.Ext(expected))
	matches, _ := filepath.Glob(base + ".*")
	for _, m := range matches {
		if fileExists(m) {
			return m, nil
		}
	}
	return "", &DownloadError{Message: "backend produced no output file at " + expected}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// backendMessage prefers the tool's stderr over the process error, since
// yt-dlp reports extraction failures there.
func backendMessage(stderr string, err error) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		// Last line carries the actual error; earlier lines are warnings.
		lines := strings.Split(msg, "\n")
		return strings.TrimSpace(lines[len(lines)-1])
	}
	return err.Error()
}
