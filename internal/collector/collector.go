package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"npk-weather/internal/report"
)

type Builder interface {
	Build(ctx context.Context, location string, detailed bool) (*report.Report, error)
}

type Publisher interface {
	Publish(rep *report.Report) error
	PublishHomeAssistantDiscovery(location string) error
	Close()
}

// Collector rebuilds the report on a fixed interval and hands it to the
// publisher.
type Collector struct {
	builder   Builder
	resolver  report.LocationResolver
	publisher Publisher
	interval  time.Duration
	detailed  bool
	logger    *slog.Logger

	mu           sync.RWMutex
	latest       *report.Report
	announced    map[string]bool
	isCollecting bool
}

type CollectorConfig struct {
	Builder   Builder
	Resolver  report.LocationResolver
	Publisher Publisher
	Interval  time.Duration
	Detailed  bool
	Logger    *slog.Logger
}

func NewCollector(cfg CollectorConfig) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Collector{
		builder:   cfg.Builder,
		resolver:  cfg.Resolver,
		publisher: cfg.Publisher,
		interval:  cfg.Interval,
		detailed:  cfg.Detailed,
		logger:    cfg.Logger,
		announced: map[string]bool{},
	}
}

// Start collects immediately and then on every tick until ctx is done.
// Failed rounds are logged and the loop carries on.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	c.isCollecting = true
	c.mu.Unlock()

	c.logger.Info("starting collector", "interval", c.interval)

	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("collector stopped")
			c.mu.Lock()
			c.isCollecting = false
			c.mu.Unlock()
			return nil
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

func (c *Collector) collect(ctx context.Context) {
	rep, err := c.CollectOnce(ctx)
	if err != nil {
		c.logger.Error("collection failed", "error", err)
		return
	}

	cur := rep.Current
	c.logger.Info("collected",
		"location", rep.Location,
		"temperature", cur.Temperature,
		"description", cur.Description,
		"pressure", cur.Pressure,
	)
}

// CollectOnce resolves the location, builds one report and publishes it.
// The report is kept as the latest even when publishing fails.
func (c *Collector) CollectOnce(ctx context.Context) (*report.Report, error) {
	if c.builder == nil || c.resolver == nil {
		return nil, fmt.Errorf("collector not initialized")
	}

	location := c.resolver.Resolve(ctx)
	rep, err := c.builder.Build(ctx, location, c.detailed)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.latest = rep
	announce := !c.announced[location]
	c.mu.Unlock()

	if c.publisher == nil {
		return rep, nil
	}

	if announce {
		if err := c.publisher.PublishHomeAssistantDiscovery(location); err != nil {
			c.logger.Warn("home assistant discovery failed", "error", err)
		} else {
			c.mu.Lock()
			c.announced[location] = true
			c.mu.Unlock()
		}
	}

	if err := c.publisher.Publish(rep); err != nil {
		return rep, fmt.Errorf("publish report: %w", err)
	}
	return rep, nil
}

func (c *Collector) GetLatest() *report.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

func (c *Collector) IsCollecting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isCollecting
}

func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != nil {
		c.publisher.Close()
	}
}
