package collector

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"npk-weather/internal/report"
	"npk-weather/internal/weather"
)

type fakeBuilder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (b *fakeBuilder) Build(_ context.Context, location string, detailed bool) (*report.Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &report.Report{Location: location, Current: &weather.Snapshot{Temperature: 20}}, nil
}

func (b *fakeBuilder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type fakePublisher struct {
	mu         sync.Mutex
	published  []*report.Report
	discovered []string
	err        error
	closed     bool
}

func (p *fakePublisher) Publish(rep *report.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, rep)
	return p.err
}

func (p *fakePublisher) PublishHomeAssistantDiscovery(location string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discovered = append(p.discovered, location)
	return nil
}

func (p *fakePublisher) Close() { p.closed = true }

type staticResolver string

func (r staticResolver) Resolve(context.Context) string { return string(r) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestCollectOnce(t *testing.T) {
	b := &fakeBuilder{}
	p := &fakePublisher{}
	c := NewCollector(CollectorConfig{Builder: b, Resolver: staticResolver("Braga,pt"), Publisher: p, Logger: quietLogger()})

	for i := 0; i < 2; i++ {
		rep, err := c.CollectOnce(context.Background())
		if err != nil {
			t.Fatalf("CollectOnce: %v", err)
		}
		if rep.Location != "Braga,pt" {
			t.Errorf("location=%q", rep.Location)
		}
	}

	if len(p.published) != 2 {
		t.Errorf("published=%d; want 2", len(p.published))
	}
	if len(p.discovered) != 1 {
		t.Errorf("discovery sent %d times; want once per location", len(p.discovered))
	}
	if c.GetLatest() == nil {
		t.Error("latest report not stored")
	}
}

func TestCollectOnce_errors(t *testing.T) {
	t.Run("build failure", func(t *testing.T) {
		b := &fakeBuilder{err: errors.New("upstream down")}
		p := &fakePublisher{}
		c := NewCollector(CollectorConfig{Builder: b, Resolver: staticResolver("x"), Publisher: p, Logger: quietLogger()})

		if _, err := c.CollectOnce(context.Background()); err == nil {
			t.Fatal("err=nil; want build error")
		}
		if len(p.published) != 0 || c.GetLatest() != nil {
			t.Error("failed build should publish and store nothing")
		}
	})

	t.Run("publish failure keeps report", func(t *testing.T) {
		p := &fakePublisher{err: errors.New("broker gone")}
		c := NewCollector(CollectorConfig{Builder: &fakeBuilder{}, Resolver: staticResolver("x"), Publisher: p, Logger: quietLogger()})

		if _, err := c.CollectOnce(context.Background()); err == nil {
			t.Fatal("err=nil; want publish error")
		}
		if c.GetLatest() == nil {
			t.Error("report should be kept")
		}
	})

	t.Run("not initialized", func(t *testing.T) {
		c := NewCollector(CollectorConfig{Logger: quietLogger()})
		if _, err := c.CollectOnce(context.Background()); err == nil {
			t.Fatal("err=nil; want error")
		}
	})
}

func TestStart(t *testing.T) {
	b := &fakeBuilder{}
	p := &fakePublisher{}
	c := NewCollector(CollectorConfig{
		Builder:   b,
		Resolver:  staticResolver("Braga,pt"),
		Publisher: p,
		Interval:  10 * time.Millisecond,
		Logger:    quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for b.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !c.IsCollecting() {
		t.Error("IsCollecting=false while running")
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if b.count() < 3 {
		t.Errorf("builds=%d; want at least 3", b.count())
	}
	if c.IsCollecting() {
		t.Error("IsCollecting=true after stop")
	}

	c.Stop()
	if !p.closed {
		t.Error("Stop did not close the publisher")
	}
}
