// Command reset-db deletes every task and time entry. Users are kept.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"chrona/internal/app"
	"chrona/internal/config"
	"chrona/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config.yaml")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("[reset-db] ", err)
	}
	if !*yes && !confirm() {
		log.Println("[reset-db] aborted")
		return
	}

	st, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatal("[reset-db] ", err)
	}
	defer closeStore()

	g, ctx := errgroup.WithContext(context.Background())
	for _, collection := range []string{store.CollectionTimeEntries, store.CollectionTasks} {
		collection := collection
		g.Go(func() error {
			n, err := store.DeleteAll(ctx, st, collection)
			if err != nil {
				return fmt.Errorf("%s: deleted %d before error: %w", collection, n, err)
			}
			log.Printf("[reset-db] %s: deleted %d documents", collection, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[reset-db] %v", err)
		closeStore()
		os.Exit(1)
	}
}

func confirm() bool {
	fmt.Fprint(os.Stderr, "This deletes all tasks and time entries. Type 'yes' to continue: ")
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return answer == "yes"
}
