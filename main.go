package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"photo-index/internal/database"
	"photo-index/internal/library"
	"photo-index/internal/scanconfig"
	"photo-index/internal/scanner"
	"photo-index/internal/startup"
	"photo-index/internal/thumbs"
)

func main() {
	scanRoot := flag.String("scan", "", "directory to scan for images")
	showStats := flag.Bool("stats", false, "show index statistics")
	showDuplicates := flag.Bool("duplicates", false, "list duplicate photo groups")
	categorize := flag.Bool("categorize", false, "recategorize all indexed photos")
	flag.Parse()

	if *scanRoot == "" && !*showStats && !*showDuplicates && !*categorize {
		printUsage()
		os.Exit(1)
	}

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Cancel on interrupt so a multi-hour scan can be aborted cleanly;
	// the pipeline checks the context between files.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()

	gen, err := thumbs.New(config.ThumbnailDir)
	if err != nil {
		startup.LogFatal("Failed to initialize thumbnail directory: %v", err)
	}

	sc := scanner.New(db, gen, scanner.Options{BatchSize: config.BatchSize})
	lib := library.New(db, sc, gen)

	switch {
	case *scanRoot != "":
		cfg, err := scanconfig.Load(config.ScanConfigPath)
		if err != nil {
			startup.LogFatal("Failed to load scan config: %v", err)
		}
		runScan(ctx, lib, *scanRoot, cfg)
	case *categorize:
		runRecategorize(ctx, lib)
	case *showStats:
		runStats(ctx, lib)
	case *showDuplicates:
		runDuplicates(ctx, lib)
	}
}

func runScan(ctx context.Context, lib *library.Library, root string, cfg *scanconfig.Config) {
	summary, err := lib.Scan(ctx, root, cfg)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Printf("\nScan interrupted: found %d, indexed %d, %d duplicates\n",
				summary.Found, summary.Indexed, summary.Duplicates)
			return
		}
		startup.LogFatal("Scan failed: %v", err)
	}

	fmt.Println("Scan complete!")
	fmt.Printf("   Found:      %d images\n", summary.Found)
	fmt.Printf("   Indexed:    %d new photos\n", summary.Indexed)
	fmt.Printf("   Duplicates: %d\n", summary.Duplicates)
}

func runRecategorize(ctx context.Context, lib *library.Library) {
	fmt.Println("Categorizing all photos...")
	fmt.Println("   (Analyzing filename patterns, dimensions, and metadata)")

	counts, err := lib.RecategorizeAll(ctx)
	if err != nil {
		startup.LogFatal("Recategorization failed: %v", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("\nCategorized %d photos!\n\nCategory breakdown:\n", total)

	type entry struct {
		category string
		count    int
	}
	entries := make([]entry, 0, len(counts))
	for c, n := range counts {
		entries = append(entries, entry{c, n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	for _, e := range entries {
		fmt.Printf("   %s: %d photos\n", e.category, e.count)
	}
}

func runStats(ctx context.Context, lib *library.Library) {
	stats, err := lib.GetStats(ctx)
	if err != nil {
		startup.LogFatal("Failed to calculate stats: %v", err)
	}

	fmt.Println("Photo index statistics:")
	fmt.Printf("   Total photos:     %d\n", stats.TotalPhotos)
	fmt.Printf("   Total size:       %.2f GB\n", float64(stats.TotalBytes)/(1<<30))
	fmt.Printf("   Duplicate groups: %d\n", stats.DuplicateGroups)

	fmt.Println("\n   Storage locations:")
	for _, loc := range stats.Locations {
		fmt.Printf("      %s (%s): %d photos, %.2f GB\n",
			loc.Location, loc.Volume, loc.Count, float64(loc.Bytes)/(1<<30))
	}

	fmt.Println("\n   Formats:")
	for _, f := range stats.Formats {
		name := f.Format
		if name == "" {
			name = "(unknown)"
		}
		fmt.Printf("      %s: %d\n", name, f.Count)
	}
}

func runDuplicates(ctx context.Context, lib *library.Library) {
	groups, err := lib.ListDuplicateGroups(ctx)
	if err != nil {
		startup.LogFatal("Failed to list duplicates: %v", err)
	}

	fmt.Printf("Found %d duplicate groups:\n", len(groups))
	for _, g := range groups {
		fmt.Printf("\n   %d copies (%.1f MB each):\n", g.Count, float64(g.Size)/(1<<20))
		for _, p := range g.Photos {
			fmt.Printf("      - %s\n", p.Path)
		}
	}
}

func printUsage() {
	fmt.Println("photo-index - scan and index photos")
	fmt.Println("Usage:")
	fmt.Println("  photo-index -scan ~          Scan home directory")
	fmt.Println("  photo-index -stats           Show index statistics")
	fmt.Println("  photo-index -duplicates      List duplicate photos")
	fmt.Println("  photo-index -categorize      Recategorize all indexed photos")
}
