// pkg/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/klanec/pic2pin/internal/config"
	"github.com/klanec/pic2pin/internal/logger"
	"github.com/spf13/cobra"
)

// Version is set by the build.
var Version = "dev"

func Execute(version string) {
	if version != "" {
		Version = version
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, finishing in-flight files...")
		cancel()
	}()

	var configFile string

	rootCmd := &cobra.Command{
		Use:   "pic2pin",
		Short: "Extract GPS coordinates from geo-tagged photos",
		Long: `pic2pin reads the embedded location metadata of photos and turns it into
geospatial reports: plain text, JSON, or a KML file mapping each photo as a
point. Coordinates can optionally be resolved to street addresses.`,
	}

	cfg := config.New()
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a configuration file")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newScanCommand(cfg, &configFile))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pic2pin", Version)
		},
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}
