package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/mverse/brandpulse/internal/scorecheck"
)

// Default configuration constants.
const (
	defaultWorkers    = 4
	defaultTimeout    = 2 * time.Minute
	defaultRunTimeout = 15 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "Base URL of the service")
		artists = flag.String("artists", "", "Comma-separated artist names to score")
		workers = flag.Int("workers", defaultWorkers, "Number of concurrent score requests")
		timeout = flag.Duration("timeout", defaultTimeout, "Per-request timeout")
		quick   = flag.Bool("quick", false, "Use the quick endpoint (score and grade only)")
		verbose = flag.Bool("verbose", false, "Print the grade distribution")
	)
	flag.Parse()

	var names []string
	for _, a := range strings.Split(*artists, ",") {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	names = append(names, flag.Args()...)

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &scorecheck.Config{
		BaseURL: *baseURL,
		Artists: names,
		Workers: *workers,
		Timeout: *timeout,
		Quick:   *quick,
		Verbose: *verbose,
	}

	if err := scorecheck.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("score check failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
