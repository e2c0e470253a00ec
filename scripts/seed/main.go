package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/odyssey-erp/procureflow/internal/app"
	"github.com/odyssey-erp/procureflow/internal/procurement"
)

func main() {
	force := flag.Bool("force", false, "overwrite an existing snapshot")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// Seeding never enqueues notifications.
	cfg.NotifyEnabled = false
	logger := app.NewLogger(cfg)

	ctx := context.Background()
	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open %s backend: %v", cfg.SnapshotBackend, err)
	}
	defer backend.Close()

	existing, err := backend.Snapshots.Load(ctx)
	if err != nil {
		log.Fatalf("load snapshot: %v", err)
	}
	if existing != nil && !*force {
		fmt.Println("→ Snapshot already present, use -force to overwrite")
		return
	}

	fmt.Println("→ Seeding default dataset...")
	payload, err := procurement.EncodeSnapshot(procurement.DefaultDataset())
	if err != nil {
		log.Fatalf("encode dataset: %v", err)
	}
	if err := backend.Snapshots.Save(ctx, payload); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}
