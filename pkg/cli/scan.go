package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klanec/pic2pin/internal/config"
	"github.com/klanec/pic2pin/internal/geocode"
	"github.com/klanec/pic2pin/internal/locate"
	"github.com/klanec/pic2pin/internal/logger"
	"github.com/klanec/pic2pin/internal/progress"
	"github.com/klanec/pic2pin/internal/render"
	"github.com/klanec/pic2pin/internal/scanner"
	"github.com/klanec/pic2pin/pkg/common"
	"github.com/klanec/pic2pin/pkg/models"
	"github.com/klanec/pic2pin/pkg/s3client"
	"github.com/spf13/cobra"
)

func newScanCommand(cfg *config.Config, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [flags] <photo | directory>...",
		Short: "Extract GPS coordinates from photos and write a report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cmd, cfg, *configFile, args)
		},
	}

	// Scan options
	cmd.Flags().BoolVarP(&cfg.Scan.Recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().IntVar(&cfg.Scan.Concurrency, "concurrency", cfg.Scan.Concurrency, "Number of files processed in parallel")
	cmd.Flags().StringVarP(&cfg.Scan.Format, "format", "f", "plain", "Output format (plain, json, kml)")
	cmd.Flags().StringVarP(&cfg.Scan.Output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&cfg.Scan.NoProgress, "no-progress", false, "Disable the progress bar")

	// Geocoding options
	cmd.Flags().BoolVar(&cfg.Geocode.Enabled, "geocode", false, "Resolve coordinates to street addresses")
	cmd.Flags().StringVar(&cfg.Geocode.Endpoint, "geocode-endpoint", "", "Reverse-geocoding endpoint (defaults to the public Nominatim instance)")
	cmd.Flags().StringVar(&cfg.Geocode.Email, "geocode-email", "", "Contact email sent with geocoding requests")
	cmd.Flags().StringVar(&cfg.Geocode.CachePath, "geocode-cache", "", "Path to the geocode cache file")
	cmd.Flags().BoolVar(&cfg.Geocode.NoCache, "no-cache", false, "Disable the geocode cache")

	// Report publishing options
	cmd.Flags().StringVar(&cfg.S3.Endpoint, "s3-endpoint", "", "S3 endpoint URL for report publishing")
	cmd.Flags().StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region")
	cmd.Flags().StringVar(&cfg.S3.Bucket, "s3-bucket", "", "S3 bucket to publish the report to")
	cmd.Flags().StringVar(&cfg.S3.AccessKey, "s3-access-key", "", "S3 access key")
	cmd.Flags().StringVar(&cfg.S3.SecretKey, "s3-secret-key", "", "S3 secret key")
	cmd.Flags().StringVar(&cfg.S3.Prefix, "s3-prefix", "", "Prefix for published report keys")
	cmd.Flags().BoolVar(&cfg.S3.UseSSL, "s3-use-ssl", true, "Use SSL for the S3 connection")

	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, configFile string, args []string) error {
	if err := applyFileConfig(cmd, cfg, configFile); err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	format := render.Format(cfg.Scan.Format)
	renderer, err := render.New(format)
	if err != nil {
		return common.NewUsageError(err.Error())
	}
	output := reportPath(cfg, format)

	entries, err := locate.Files(ctx, args, cfg.Scan.Recursive)
	if err != nil {
		return err
	}

	reporter := progress.New(!cfg.Scan.NoProgress)
	outcomes := scanner.New(ctx, cfg.Scan.Concurrency, reporter).Scan(entries)

	if cfg.Geocode.Enabled {
		enrich(ctx, cfg, outcomes)
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := renderer.Render(out, outcomes); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	logSummary(outcomes)

	if cfg.S3.Bucket != "" {
		client, err := s3client.New(ctx, s3client.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return err
		}
		key, err := client.PublishReport(ctx, output)
		if err != nil {
			return err
		}
		logger.Info("Published report to s3://%s/%s", cfg.S3.Bucket, key)
	}

	return nil
}

// reportPath returns where the rendered report goes: the --output path,
// stdout when empty, except that publishing uploads a file, so requesting
// it without --output defaults to a temp file named for the format.
func reportPath(cfg *config.Config, format render.Format) string {
	if cfg.Scan.Output != "" || cfg.S3.Bucket == "" {
		return cfg.Scan.Output
	}
	return filepath.Join(os.TempDir(), "pic2pin-report"+format.Extension())
}

// enrich resolves addresses for all records in place. Failures are logged,
// never fatal: an unresolved address leaves the slot empty.
func enrich(ctx context.Context, cfg *config.Config, outcomes []models.Outcome) {
	geocoder := geocode.NewNominatim(cfg.Geocode.Endpoint, cfg.Geocode.Email, Version)

	var cache *geocode.Cache
	if !cfg.Geocode.NoCache {
		cache = geocode.NewCache(cfg.Geocode.CachePath)
		if err := cache.Load(); err != nil {
			logger.Warn("Could not load geocode cache: %v", err)
		}
	}

	resolved, failed := geocode.NewEnricher(geocoder, cache).Enrich(ctx, outcomes)
	logger.Info("Address enrichment: %d resolved, %d failed", resolved, failed)

	if cache != nil {
		if err := cache.Save(); err != nil {
			logger.Warn("Could not save geocode cache: %v", err)
		}
	}
}

// applyFileConfig overlays values from a config file for every setting not
// set explicitly on the command line.
func applyFileConfig(cmd *cobra.Command, cfg *config.Config, configFile string) error {
	if configFile == "" {
		return nil
	}
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !cmd.Root().PersistentFlags().Changed("log-level") {
		cfg.LogLevel = loaded.LogLevel
	}
	if !flags.Changed("recursive") {
		cfg.Scan.Recursive = loaded.Scan.Recursive
	}
	if !flags.Changed("concurrency") {
		cfg.Scan.Concurrency = loaded.Scan.Concurrency
	}
	if !flags.Changed("format") {
		cfg.Scan.Format = loaded.Scan.Format
	}
	if !flags.Changed("output") {
		cfg.Scan.Output = loaded.Scan.Output
	}
	if !flags.Changed("no-progress") {
		cfg.Scan.NoProgress = loaded.Scan.NoProgress
	}
	if !flags.Changed("geocode") {
		cfg.Geocode.Enabled = loaded.Geocode.Enabled
	}
	if !flags.Changed("no-cache") {
		cfg.Geocode.NoCache = loaded.Geocode.NoCache
	}
	if !flags.Changed("geocode-endpoint") {
		cfg.Geocode.Endpoint = loaded.Geocode.Endpoint
	}
	if !flags.Changed("geocode-email") {
		cfg.Geocode.Email = loaded.Geocode.Email
	}
	if !flags.Changed("geocode-cache") {
		cfg.Geocode.CachePath = loaded.Geocode.CachePath
	}
	if !flags.Changed("s3-endpoint") {
		cfg.S3.Endpoint = loaded.S3.Endpoint
	}
	if !flags.Changed("s3-region") {
		cfg.S3.Region = loaded.S3.Region
	}
	if !flags.Changed("s3-bucket") {
		cfg.S3.Bucket = loaded.S3.Bucket
	}
	if !flags.Changed("s3-access-key") {
		cfg.S3.AccessKey = loaded.S3.AccessKey
	}
	if !flags.Changed("s3-secret-key") {
		cfg.S3.SecretKey = loaded.S3.SecretKey
	}
	if !flags.Changed("s3-use-ssl") {
		cfg.S3.UseSSL = loaded.S3.UseSSL
	}
	if !flags.Changed("s3-prefix") {
		cfg.S3.Prefix = loaded.S3.Prefix
	}
	return nil
}

// logSummary reports per-reason skip counts so silence never hides data
// loss.
func logSummary(outcomes []models.Outcome) {
	counts := map[models.SkipReason]int{}
	records := 0
	for _, o := range outcomes {
		if o.Skipped() {
			counts[o.Skip]++
		} else {
			records++
		}
	}

	logger.Info("%d of %d files yielded coordinates", records, len(outcomes))
	for _, reason := range []models.SkipReason{
		models.SkipPathNotFound,
		models.SkipPathUnreadable,
		models.SkipNoMetadataContainer,
		models.SkipNoGPSGroup,
		models.SkipCorruptedMetadata,
		models.SkipInvalidReference,
		models.SkipCoordinateOutOfRange,
	} {
		if n := counts[reason]; n > 0 {
			logger.Info("  %s: %d", reason, n)
		}
	}
}
