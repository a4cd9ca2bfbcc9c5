// Package convert turns a downloaded video artifact into an audio-only
// file by driving the external transcoding tool (ffmpeg).
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrTranscoderMissing includes remediation guidance; it is shown to
	// the user verbatim when an audio-only job cannot start converting.
	ErrTranscoderMissing = errors.New("transcoder not found: install ffmpeg and make sure it is on PATH, or set ffmpegPath in the config")
	ErrConversionFailed  = errors.New("audio conversion failed")
)

// Converter invokes the transcoding backend with a fixed argument
// template: strip video, encode audio at a fixed quality, overwrite.
type Converter struct {
	ffmpegPath string
	codec      string
	quality    string
	ext        string
}

// NewConverter creates a converter around the given ffmpeg binary
func NewConverter(ffmpegPath, codec, quality, ext string) *Converter {
	return &Converter{
		ffmpegPath: ffmpegPath,
		codec:      codec,
		quality:    quality,
		ext:        ext,
	}
}

// Ext returns the target audio extension without a leading dot.
func (c *Converter) Ext() string {
	return c.ext
}

// Available reports whether the transcoding backend is present and
// runnable.
func (c *Converter) Available() bool {
	if strings.ContainsRune(c.ffmpegPath, os.PathSeparator) {
		info, err := os.Stat(c.ffmpegPath)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath(c.ffmpegPath)
	return err == nil
}

// Convert extracts the audio stream of inputPath into a sibling file
// named after the title, verifies the result, and deletes the
// intermediate video artifact. It returns the final audio path.
func (c *Converter) Convert(ctx context.Context, inputPath, title string) (string, error) {
	if !c.Available() {
		return "", ErrTranscoderMissing
	}

	outPath := c.outputPath(inputPath, title)

	args := []string{"-y", "-i", inputPath, "-vn", "-acodec", c.codec, "-q:a", c.quality, outPath}
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %s", ErrConversionFailed, lastLine(output, err))
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outPath)
		return "", fmt.Errorf("%w: transcoder produced no output", ErrConversionFailed)
	}

	if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to remove intermediate file: %w", err)
	}

	return outPath, nil
}

// outputPath derives the audio filename next to the input. Titles that
// slugify to nothing, or whose slug already matches the input's base
// name, reuse that base name verbatim so repeated normalization cannot
// drift the name.
func (c *Converter) outputPath(inputPath, title string) string {
	inputBase := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	name := Slug(title)
	if name == "" || name == inputBase {
		name = inputBase
	}

	return filepath.Join(filepath.Dir(inputPath), name+"."+c.ext)
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	trailingDots = regexp.MustCompile(`\.+$`)
)

// Slug normalizes a media title into a filesystem-safe file name.
func Slug(title string) string {
	name := invalidChars.ReplaceAllString(title, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.Trim(name, " ")
}

func lastLine(output []byte, err error) string {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return err.Error()
	}
	lines := strings.Split(text, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
