// Example drives the virtualization engine against a synthetic ranked
// collection, simulating a user scrolling from top to bottom with
// incremental pagination and scroll-position persistence.
//
// Usage:
//
//	go run ./example/ --count 100000 --viewport 600 --item-size 60
//	go run ./example/ --config sim.jsonc --verbose
//
// The optional config file is JWCC (JSON with comments and trailing
// commas); flags override it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/go-theft-auto/vlist"
)

// simConfig holds the simulation parameters, loadable from a JWCC file.
type simConfig struct {
	Count        int     `json:"count"`          // items available at the source
	InitialItems int     `json:"initial_items"`  // items present before the first page load
	PageSize     int     `json:"page_size"`      // items per fetched page
	Viewport     float32 `json:"viewport"`       // viewport extent in px
	ItemSize     float32 `json:"item_size"`      // fixed item extent in px
	Overscan     int     `json:"overscan"`       // extra items rendered per side
	ScrollStep   float32 `json:"scroll_step"`    // px per simulated scroll event
	PositionFile string  `json:"position_file"`  // where scroll positions persist
}

func defaultConfig() simConfig {
	return simConfig{
		Count:        100000,
		InitialItems: 50,
		PageSize:     50,
		Viewport:     600,
		ItemSize:     60,
		Overscan:     5,
		ScrollStep:   120,
		PositionFile: filepath.Join(os.TempDir(), "vlist-sim-positions.json"),
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := defaultConfig()

	configPath := flag.String("config", "", "JWCC config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.IntVar(&cfg.Count, "count", cfg.Count, "total items at the source")
	flag.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "items per page")
	flag.Float32Var(&cfg.Viewport, "viewport", cfg.Viewport, "viewport extent (px)")
	flag.Float32Var(&cfg.ItemSize, "item-size", cfg.ItemSize, "item extent (px)")
	flag.IntVar(&cfg.Overscan, "overscan", cfg.Overscan, "overscan per side")
	flag.Parse()

	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		// Re-apply flags so the command line wins over the file.
		flag.Parse()
	}
	vlist.SetVerbose(*verbose)

	return simulate(cfg)
}

// loadConfig reads a JWCC config file (comments and trailing commas
// allowed) on top of the defaults.
func loadConfig(path string) (simConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return simConfig{}, fmt.Errorf("reading config: %w", err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return simConfig{}, fmt.Errorf("invalid JWCC: %w", err)
	}
	cfg := defaultConfig()
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return simConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func simulate(cfg simConfig) error {
	store := vlist.NewPositionStore(vlist.WithBackend(vlist.NewFileBackend(cfg.PositionFile)))

	// Scroll events are simulated on a virtual 60fps clock so the run is
	// deterministic and does not need to sleep a frame per event. Atomic
	// because the pager reads the clock from its fetch goroutine.
	var simNanos atomic.Int64
	simNanos.Store(time.Now().UnixNano())
	clock := func() time.Time { return time.Unix(0, simNanos.Load()) }

	items := makeItems(0, cfg.InitialItems)
	list := vlist.NewList(items,
		vlist.WithViewport(cfg.Viewport),
		vlist.WithFixedSize(cfg.ItemSize),
		vlist.WithOverscan(cfg.Overscan),
		vlist.WithPositionStore(store),
		vlist.WithRestoreKey("sim:rankings"),
		vlist.WithClock(clock),
		vlist.WithPerfMonitoring(true),
		vlist.WithPerfCallback(printSnapshot),
	)

	// The "backend": serves pages of the synthetic collection.
	served := cfg.InitialItems
	list.SetLoadMore(context.Background(), func(ctx context.Context) (vlist.Page[string], error) {
		n := min(cfg.PageSize, cfg.Count-served)
		page := vlist.Page[string]{
			Items:   makeItems(served, n),
			HasMore: served+n < cfg.Count,
		}
		served += n
		return page, nil
	})

	if list.RestoreScrollPosition(vlist.RestoreOptions{
		OnRestore: func(rec vlist.Position) {
			fmt.Printf("restored previous session position: offset=%.0f\n", rec.Offset)
		},
		OnSkip: func(reason string) {
			fmt.Printf("no position to restore (%s)\n", reason)
		},
	}) {
		list.HandleScroll(0) // apply on the first tick, as a UI would on mount
	}

	// Simulated scroll session: one event per "frame" until the bottom.
	fmt.Printf("scrolling %d items (%.0fpx each) through a %.0fpx viewport\n",
		cfg.Count, cfg.ItemSize, cfg.Viewport)

	start := time.Now()
	events := 0
	for offset := list.Offset(); ; offset += cfg.ScrollStep {
		simNanos.Add(int64(16 * time.Millisecond))
		list.HandleScroll(offset)
		events++
		if offset >= list.TotalSize()-cfg.Viewport && list.Pager().State() == vlist.StateExhausted {
			break
		}
		if events > 8*cfg.Count { // safety valve, never expected
			return fmt.Errorf("simulation did not terminate")
		}
	}
	list.Flush()
	list.Close()

	rng := list.VisibleRange()
	fmt.Printf("done: %d scroll events in %v\n", events, time.Since(start).Round(time.Millisecond))
	fmt.Printf("final range [%d,%d] (%d rendered of %d items), offset %.0f/%.0f\n",
		rng.StartIdx, rng.EndIdx, rng.VisibleCount(), list.Count(), list.Offset(), list.TotalSize())
	fmt.Printf("pages loaded: %d (%d items)\n",
		list.Pager().PagesLoaded(), list.Pager().ItemsLoaded())
	fmt.Printf("position saved under %q in %s\n", "sim:rankings", cfg.PositionFile)
	return nil
}

func makeItems(from, n int) []vlist.Item[string] {
	items := make([]vlist.Item[string], 0, n)
	for i := 0; i < n; i++ {
		rank := from + i
		items = append(items, vlist.Item[string]{
			ID:   fmt.Sprintf("rank-%d", rank),
			Data: fmt.Sprintf("entry #%d", rank),
		})
	}
	return items
}

func printSnapshot(s vlist.PerfSnapshot) {
	// Sampled at the scroll tick cadence; keep the output readable by
	// reporting every ~5000px of travel.
	if int(s.ScrollOffset)%5000 < 120 {
		fmt.Printf("  offset=%-9.0f visible=%-3d rendered=%-3d fps=%.0f\n",
			s.ScrollOffset, s.VisibleCount, s.NodeCount, s.FPS)
	}
}
