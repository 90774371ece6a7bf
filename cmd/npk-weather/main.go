package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"npk-weather/config"
	"npk-weather/internal/api"
	"npk-weather/internal/barometer"
	"npk-weather/internal/collector"
	"npk-weather/internal/display"
	"npk-weather/internal/mqtt"
	"npk-weather/internal/weather"
)

var (
	configFile   string
	verbose      bool
	locationFlag string
	detailed     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "npk-weather",
		Short: "Console weather report",
		Long:  "Shows current conditions and a 3-hourly forecast for the current or configured location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&locationFlag, "location", "l", "", `location query such as "Porto,pt" (skips auto detection)`)
	rootCmd.PersistentFlags().BoolVarP(&detailed, "detailed", "d", false, "show night hours for every forecast day")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the weather report once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd)
		},
	}
}

func runReport(cmd *cobra.Command) error {
	cfg, logger, provider, err := setup()
	if err != nil {
		return err
	}
	builder, err := newBuilder(cfg, provider, logger)
	if err != nil {
		return err
	}

	console := display.NewConsole(cmd.OutOrStdout(), cfg.Display.Colors, cfg.Display.DarkMode)
	_, err = builder.Run(cmd.Context(), newResolver(cfg, logger), console, detailed || cfg.Display.Detailed)
	return err
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serve rendered reports over HTTP and, when MQTT is enabled, publish them on an interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, provider, err := setup()
			if err != nil {
				return err
			}

			limited := weather.NewRateLimited(provider, cfg.API.RateLimit, cfg.API.Burst)
			builder, err := newBuilder(cfg, limited, logger)
			if err != nil {
				return err
			}
			resolver := newResolver(cfg, logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var coll *collector.Collector
			if cfg.MQTT.Enabled {
				publisher, err := newPublisher(cfg, logger)
				if err != nil {
					logger.Warn("mqtt connection failed, collector disabled", "broker", cfg.MQTT.Broker, "error", err)
				} else {
					coll = collector.NewCollector(collector.CollectorConfig{
						Builder:   builder,
						Resolver:  resolver,
						Publisher: publisher,
						Interval:  cfg.MQTT.Interval,
						Detailed:  cfg.Display.Detailed,
						Logger:    logger,
					})
					go func() {
						if err := coll.Start(ctx); err != nil {
							logger.Error("collector error", "error", err)
						}
					}()
				}
			}

			server := api.NewServer(api.ServerConfig{
				Port:      cfg.API.Port,
				Builder:   builder,
				Resolver:  resolver,
				Collector: coll,
				Logger:    logger,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			logger.Info("npk-weather started, press Ctrl+C to stop", "provider", limited.Name())

			select {
			case <-ctx.Done():
			case err := <-errCh:
				return fmt.Errorf("api server: %w", err)
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if coll != nil {
				coll.Stop()
			}
			return server.Stop(shutdownCtx)
		},
	}
}

func publishCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish reports to MQTT",
		Long:  "Build a report on an interval and publish it to MQTT with Home Assistant discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, provider, err := setup()
			if err != nil {
				return err
			}
			builder, err := newBuilder(cfg, provider, logger)
			if err != nil {
				return err
			}

			publisher, err := newPublisher(cfg, logger)
			if err != nil {
				return fmt.Errorf("mqtt: %w", err)
			}

			coll := collector.NewCollector(collector.CollectorConfig{
				Builder:   builder,
				Resolver:  newResolver(cfg, logger),
				Publisher: publisher,
				Interval:  cfg.MQTT.Interval,
				Detailed:  detailed || cfg.Display.Detailed,
				Logger:    logger,
			})
			defer coll.Stop()

			if once {
				rep, err := coll.CollectOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published report for %s\n", rep.Location)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return coll.Start(ctx)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "publish a single report and exit")
	return cmd
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (*mqtt.Publisher, error) {
	return mqtt.NewPublisher(mqtt.PublisherConfig{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		Enabled:     true,
		Logger:      logger,
	})
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the weather provider and barometer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, provider, err := setup()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			location := newResolver(cfg, logger).Resolve(ctx)
			fmt.Fprintf(out, "Testing %s for %s...\n", provider.Name(), location)

			snap, err := provider.Current(ctx, location)
			if err != nil {
				fmt.Fprintf(out, "Provider FAILED: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "Provider SUCCESS!")
			fmt.Fprintf(out, "  Temperature: %.1f°\n", snap.Temperature)
			fmt.Fprintf(out, "  Conditions:  %s\n", snap.Description)
			fmt.Fprintf(out, "  Pressure:    %.0f hPa\n", snap.Pressure)

			reader := newBarometer(cfg)
			if reader == nil {
				fmt.Fprintln(out, "\nBarometer: not configured")
				return nil
			}
			fmt.Fprintf(out, "\nTesting barometer (%s)...\n", cfg.Barometer.Driver)
			hPa, err := barometer.Start(ctx, reader, cfg.Barometer.Timeout).Await()
			if err != nil {
				fmt.Fprintf(out, "Barometer FAILED: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "Barometer SUCCESS!")
			fmt.Fprintf(out, "  Pressure:    %.1f hPa\n", hPa)
			return nil
		},
	}
}
