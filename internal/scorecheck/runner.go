package scorecheck

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mverse/brandpulse/internal/domain/types"
)

// Result is the outcome of scoring one artist.
type Result struct {
	Artist   string
	Score    float64
	Grade    string
	Warnings int
	Elapsed  time.Duration
	Err      error
}

// Run scores every configured artist with a bounded worker pool and prints a
// report. It returns an error when the service is unreachable or every
// request failed.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service not reachable at %s: %w", cfg.BaseURL, err)
	}

	results := runAll(ctx, client, cfg)
	report(results, cfg.Verbose)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d score requests failed", failed)
	}
	return nil
}

func runAll(ctx context.Context, client *Client, cfg *Config) []Result {
	jobs := make(chan int)
	results := make([]Result, len(cfg.Artists))

	var wg sync.WaitGroup
	workers := min(cfg.Workers, len(cfg.Artists))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = scoreOne(ctx, client, cfg.Artists[i], cfg.Quick)
			}
		}()
	}

	for i := range cfg.Artists {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func scoreOne(ctx context.Context, client *Client, artist string, quick bool) Result {
	start := time.Now()
	res := Result{Artist: artist}

	if quick {
		out, err := client.QuickScore(ctx, artist)
		res.Score, res.Grade, res.Err = out.Score, out.Grade, err
	} else {
		var out types.ArtistScoreResponse
		out, res.Err = client.Score(ctx, artist)
		res.Score, res.Grade = out.FinalScore, out.ScoreGrade
		res.Warnings = len(out.Warnings)
	}
	res.Elapsed = time.Since(start)
	return res
}

func report(results []Result, verbose bool) {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	fmt.Fprintln(os.Stdout, "artist                          score  grade  warnings  elapsed")
	for _, r := range sorted {
		if r.Err != nil {
			fmt.Fprintf(os.Stdout, "%-30s  FAILED: %v\n", r.Artist, r.Err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%-30s  %5.1f  %-5s  %8d  %s\n",
			r.Artist, r.Score, r.Grade, r.Warnings, r.Elapsed.Round(time.Millisecond))
	}

	if verbose {
		grades := map[string]int{}
		for _, r := range sorted {
			if r.Err == nil {
				grades[r.Grade]++
			}
		}
		fmt.Fprintf(os.Stdout, "\ngrade distribution: %v\n", grades)
	}
}
