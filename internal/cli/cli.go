package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// CommandType represents the type of CLI command
type CommandType int

const (
	CommandHelp CommandType = iota
	CommandVersion
	CommandServe
	CommandGet
	CommandUpdate
)

// Command represents a parsed CLI command
type Command struct {
	Type        CommandType
	Port        int
	URL         string
	Quality     string
	AudioOnly   bool
	NoWatermark bool
	Overwrite   bool
	Output      string
	CheckOnly   bool
}

// String returns a string representation of the command
func (c *Command) String() string {
	switch c.Type {
	case CommandHelp:
		return "help"
	case CommandVersion:
		return "version"
	case CommandServe:
		return fmt.Sprintf("serve (port: %d)", c.Port)
	case CommandGet:
		if c.AudioOnly {
			return fmt.Sprintf("get (url: %s, audio)", c.URL)
		}
		return fmt.Sprintf("get (url: %s)", c.URL)
	case CommandUpdate:
		if c.CheckOnly {
			return "update (check only)"
		}
		return "update"
	default:
		return "unknown"
	}
}

// CLI represents the command-line interface
type CLI struct {
	version string
}

// NewCLI creates a new CLI instance
func NewCLI(version string) *CLI {
	return &CLI{
		version: version,
	}
}

// ParseCommand parses command-line arguments and returns a Command
func (c *CLI) ParseCommand(args []string) (*Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command specified")
	}

	// Check for global flags first
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return &Command{Type: CommandHelp}, nil
	}

	if args[0] == "-v" || args[0] == "--version" || args[0] == "version" {
		return &Command{Type: CommandVersion}, nil
	}

	// Parse subcommands
	switch args[0] {
	case "serve":
		return c.parseServeCommand(args[1:])
	case "get":
		return c.parseGetCommand(args[1:])
	case "update":
		return c.parseUpdateCommand(args[1:])
	default:
		return nil, fmt.Errorf("unknown command: %s", args[0])
	}
}

// parseServeCommand parses the serve command
func (c *CLI) parseServeCommand(args []string) (*Command, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", 0, "Server port (0 uses the configured port)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &Command{
		Type: CommandServe,
		Port: *port,
	}, nil
}

// parseGetCommand parses the get command
func (c *CLI) parseGetCommand(args []string) (*Command, error) {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	quality := fs.String("quality", "", "Preferred quality label, e.g. 720p (best if empty)")
	audio := fs.Bool("audio", false, "Extract audio only")
	noWatermark := fs.Bool("no-watermark", false, "Request the watermark-free source if available")
	overwrite := fs.Bool("overwrite", false, "Replace an existing file for this URL")
	output := fs.String("out", "", "Output path template (config default if empty)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	url := fs.Arg(0)
	if url == "" {
		return nil, fmt.Errorf("get requires a URL argument")
	}

	return &Command{
		Type:        CommandGet,
		URL:         url,
		Quality:     *quality,
		AudioOnly:   *audio,
		NoWatermark: *noWatermark,
		Overwrite:   *overwrite,
		Output:      *output,
	}, nil
}

// parseUpdateCommand parses the update command
func (c *CLI) parseUpdateCommand(args []string) (*Command, error) {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	checkOnly := fs.Bool("check", false, "Only check for updates without installing")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &Command{
		Type:      CommandUpdate,
		CheckOnly: *checkOnly,
	}, nil
}

// PrintHelp prints the help message
func (c *CLI) PrintHelp(w io.Writer) {
	help := `ClipCatch - media downloader driven by yt-dlp

Usage:
  clipcatch [command] [flags]

Available Commands:
  serve       Start HTTP API server
  get         Download a single URL
  update      Update the extractor binary to the latest release
  version     Print version information
  help        Print this help message

Serve Flags:
  -port int   Server port (default: configured port)

Get Flags:
  -quality string   Preferred quality label, e.g. 720p (best if empty)
  -audio            Extract audio only
  -no-watermark     Request the watermark-free source if available
  -overwrite        Replace an existing file for this URL
  -out string       Output path template (config default if empty)

Update Flags:
  -check   Only check for updates without installing

Examples:
  clipcatch serve
  clipcatch serve -port 9000
  clipcatch get https://example.com/@user/video/123
  clipcatch get -quality 720p https://example.com/@user/video/123
  clipcatch get -audio https://example.com/@user/video/123
  clipcatch update -check
  clipcatch version
`
	fmt.Fprint(w, help)
}

// PrintVersion prints the version information
func (c *CLI) PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ClipCatch version %s\n", c.version)
}

// Run executes the CLI with the given arguments
func (c *CLI) Run(args []string) int {
	cmd, err := c.ParseCommand(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		c.PrintHelp(os.Stderr)
		return 1
	}

	switch cmd.Type {
	case CommandHelp:
		c.PrintHelp(os.Stdout)
		return 0
	case CommandVersion:
		c.PrintVersion(os.Stdout)
		return 0
	default:
		// Other commands will be handled by the main function
		return 0
	}
}
