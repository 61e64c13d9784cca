// Command sbstats prints how much time SponsorBlock skips have saved.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
	"github.com/llehouerou/mpv-sponsorblock/internal/stats"
)

func main() {
	dbPath := flag.String("db", "", "statistics database (default: XDG data directory)")
	flag.Parse()

	if err := run(*dbPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	if path == "" {
		var err error
		if path, err = stats.DefaultPath(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpOpenStats, err))
		}
	}

	store, err := stats.Open(path)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpOpenStats, path, err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sum, err := store.Summary(ctx)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpReadStats, err))
	}

	fmt.Println(render(sum, time.Now()))
	return nil
}
