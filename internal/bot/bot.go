// Package bot runs the polling loop that drives the agent scan and the
// exchange settlement tick.
package bot

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crypto-alert-bot/internal/agent"
	"crypto-alert-bot/internal/events"
	"crypto-alert-bot/internal/exchange"
)

// Bot coordinates one scan-then-settle cycle per poll interval.
type Bot struct {
	agent        *agent.Agent
	exchange     *exchange.VirtualExchange
	bus          *events.Bus
	pollInterval time.Duration
	startedAt    time.Time
	running      bool
	mu           sync.Mutex
	stopChan     chan struct{}
	wg           sync.WaitGroup
	logger       zerolog.Logger
}

// New creates a bot. pollInterval must be positive.
func New(a *agent.Agent, ex *exchange.VirtualExchange, bus *events.Bus, pollInterval time.Duration, logger zerolog.Logger) *Bot {
	return &Bot{
		agent:        a,
		exchange:     ex,
		bus:          bus,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		logger:       logger.With().Str("component", "Bot").Logger(),
	}
}

// Start launches the polling loop. Calling Start twice is a no-op.
func (b *Bot) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.startedAt = time.Now().UTC()
	b.mu.Unlock()

	b.logger.Info().Dur("poll_interval", b.pollInterval).Msg("bot started")
	if b.bus != nil {
		b.bus.Publish(events.Event{Type: events.EventBotStarted})
	}

	b.wg.Add(1)
	go b.run()
}

func (b *Bot) run() {
	defer b.wg.Done()

	// First cycle runs immediately so a restart does not wait a full
	// interval before re-pricing open positions.
	b.cycle()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.cycle()
		case <-b.stopChan:
			return
		}
	}
}

// cycle scans for new signals first, then settles every open position.
func (b *Bot) cycle() {
	b.agent.Analyze()
	b.exchange.Tick()
}

// Stop halts the loop after the in-flight cycle completes.
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopChan)
	b.wg.Wait()

	if b.bus != nil {
		b.bus.Publish(events.Event{Type: events.EventBotStopped})
	}
	b.logger.Info().Msg("bot stopped")
}

// Running reports whether the loop is active.
func (b *Bot) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// StartedAt returns when the bot was started, zero if never started.
func (b *Bot) StartedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.startedAt
}
