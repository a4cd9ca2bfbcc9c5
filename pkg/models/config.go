package models

// Config represents the application configuration
type Config struct {
	WebServerPort        int    `json:"webServerPort"`
	ExtractorPath        string `json:"extractorPath"`
	ExtractorAutoInstall bool   `json:"extractorAutoInstall"`
	FFmpegPath           string `json:"ffmpegPath"`
	OutputDir            string `json:"outputDir"`
	OutputTemplate       string `json:"outputTemplate"`
	MaxConcurrent        int    `json:"maxConcurrent"`
	FetchTimeoutSec      int    `json:"fetchTimeoutSec"`
	DownloadTimeoutSec   int    `json:"downloadTimeoutSec"`
	ConvertTimeoutSec    int    `json:"convertTimeoutSec"`
	AudioCodec           string `json:"audioCodec"`
	AudioQuality         string `json:"audioQuality"`
	AudioExt             string `json:"audioExt"`
	NoWatermarkArgs      string `json:"noWatermarkArgs"`
	CatalogPath          string `json:"catalogPath"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		WebServerPort:        9727,
		ExtractorPath:        "yt-dlp",
		ExtractorAutoInstall: true,
		FFmpegPath:           "ffmpeg",
		OutputDir:            "",
		OutputTemplate:       "%(title)s.%(ext)s",
		MaxConcurrent:        2,
		FetchTimeoutSec:      60,
		DownloadTimeoutSec:   900,
		ConvertTimeoutSec:    300,
		AudioCodec:           "libmp3lame",
		AudioQuality:         "2",
		AudioExt:             "mp3",
		NoWatermarkArgs:      "",
		CatalogPath:          "",
	}
}
