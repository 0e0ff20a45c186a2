package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/cache"
	"github.com/dshills/codelens/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the response cache",
}

// openCacheDir opens the configured cache directory whether or not caching
// is switched on, so entries left by earlier runs can be inspected.
func openCacheDir(cfg config.Config) (*cache.Cache, error) {
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds, cfg.Cache.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached model response",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		c, err := openCacheDir(cfg)
		if err != nil {
			return err
		}
		n, err := c.Clear()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Removed %d cached responses from %s\n", n, c.Dir())
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show what the disk tier holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		c, err := openCacheDir(cfg)
		if err != nil {
			return err
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		if flagJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}
		writeCacheStats(os.Stdout, cfg.Cache, stats)
		return nil
	},
}

func writeCacheStats(w io.Writer, cc config.CacheConfig, s cache.Stats) {
	status := "disabled (enable with --cache or CODELENS_CACHE=true)"
	if cc.Enabled {
		status = "enabled"
	}
	ttl := "never"
	if cc.TTLSeconds > 0 {
		ttl = (time.Duration(cc.TTLSeconds) * time.Second).String()
	}
	fmt.Fprintf(w, "Status:       %s\n", status)
	fmt.Fprintf(w, "Directory:    %s\n", s.Dir)
	fmt.Fprintf(w, "Disk entries: %d (%d expired, %d bytes)\n", s.Entries, s.Expired, s.TotalBytes)
	fmt.Fprintf(w, "Expiry:       %s\n", ttl)
	fmt.Fprintf(w, "Memory tier:  up to %d entries per process\n", cc.MemoryEntries)
}

func init() {
	cacheShowCmd.Flags().BoolVar(&flagJSON, "json", false, "Print as JSON")

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
