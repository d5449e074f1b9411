package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hoplink/hoplink/pkg/fetch"
)

var options struct {
	accept  []string
	hops    int
	retries int
	timeout time.Duration
	output  string
	dest    string
	jobs    int
	sync    bool
	debug   bool
}

// Root command
var rootCmd = &cobra.Command{
	Use:   "hoplink",
	Short: "Fetch URLs with explicit redirect, retry, and pagination handling",
	Long: `hoplink is an HTTP fetch tool built on a request engine that resolves
redirects itself, retries transient failures, and follows Link header
pagination so multi-page resources read like a single download.`,
	Example: `  hoplink fetch https://api.example.com/items --accept=json
  hoplink download https://example.com/big.tar.gz --output=/tmp
  hoplink pages https://api.example.com/items?page=1`,
}

// Fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a URL and print the body",
	Long: `Fetch a single URL, resolving redirects and retrying failures according
to the configured policy, and print the response body to stdout or --output.`,
	Args: cobra.ExactArgs(1),
	Example: `  hoplink fetch https://example.com/data.json
  hoplink fetch https://example.com/feed --accept=application/atom+xml --retries=3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(args[0], options.output)
	},
}

// Head command
var headCmd = &cobra.Command{
	Use:   "head <url>",
	Short: "Probe a URL without reading the body",
	Long: `Issue a head-only request and report the final status code and selected
response headers. Redirects are still resolved; the chain is printed too.`,
	Args:    cobra.ExactArgs(1),
	Example: `  hoplink head https://example.com/big.iso`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHead(args[0])
	},
}

// Download command
var downloadCmd = &cobra.Command{
	Use:   "download <url>...",
	Short: "Download one or more URLs to files",
	Long: `Download each URL into --output, streaming all pages of a paginated
resource into one file. Content is written to a temporary file and renamed
into place only on success. With --sync, URLs whose target file already
exists are skipped.`,
	Args: cobra.MinimumNArgs(1),
	Example: `  hoplink download https://example.com/a.tar.gz https://example.com/b.tar.gz
  hoplink download https://example.com/a.tar.gz --output=/tmp --jobs=4 --sync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(args, options.dest, options.jobs, options.sync)
	},
}

// Pages command
var pagesCmd = &cobra.Command{
	Use:   "pages <url>",
	Short: "Walk a Link-header pagination chain",
	Long: `Follow rel="next" links starting at the given URL, printing each page's
body to stdout in order. Stops when a page advertises no next link.`,
	Args:    cobra.ExactArgs(1),
	Example: `  hoplink pages "https://api.github.com/repos/golang/go/issues?per_page=50"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPages(args[0])
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringSliceVar(&options.accept, "accept", nil,
		"Acceptable media types or short names (e.g. json), most preferred first")
	rootCmd.PersistentFlags().IntVar(&options.hops, "hops", 0,
		"Maximum redirect chain length (default from HOPLINK_MAX_HOPS or 5)")
	rootCmd.PersistentFlags().IntVar(&options.retries, "retries", 0,
		"Maximum attempts on failure statuses (default from HOPLINK_MAX_RETRIES or 1)")
	rootCmd.PersistentFlags().DurationVar(&options.timeout, "timeout", 0,
		"Per-attempt timeout (default from HOPLINK_TIMEOUT or 60s)")
	rootCmd.PersistentFlags().BoolVar(&options.debug, "debug", false,
		"Enable debug logging")

	// Command-specific flags
	fetchCmd.Flags().StringVarP(&options.output, "output", "o", "",
		"Write the body to this file instead of stdout")
	downloadCmd.Flags().StringVarP(&options.dest, "output", "o", ".",
		"Output directory or file path for downloads")
	downloadCmd.Flags().IntVarP(&options.jobs, "jobs", "j", 1,
		"Number of parallel downloads")
	downloadCmd.Flags().BoolVar(&options.sync, "sync", false,
		"Skip URLs whose target file already exists")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if options.debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
		return nil
	}

	// Add subcommands to root
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(headCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(pagesCmd)
}

// loadEngine builds an engine from environment defaults plus flags.
func loadEngine() (*fetch.Engine, error) {
	cfg, err := fetch.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	engine := fetch.New(cfg)
	engine.SetLogger(log.Logger)
	return engine, nil
}

// requestOptions maps global flags onto per-request options.
func requestOptions() *fetch.Options {
	o := &fetch.Options{
		Accept:     options.accept,
		MaxHops:    options.hops,
		MaxRetries: options.retries,
		Timeout:    options.timeout,
	}
	// A single entry may be a short name like "json"; the spec form handles
	// both that and a bare media type.
	if len(options.accept) == 1 {
		o.Accept = nil
		o.AcceptSpec = options.accept[0]
	}
	return o
}

func parseURL(arg string) (*url.URL, error) {
	u, err := url.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", arg, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("URL %q has no scheme", arg)
	}
	return u, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	})
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Msgf("%v", err)
	}
}
