package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// Publisher delivers messages produced outside the bubbletea loop without
// ever blocking the producer. Messages that do not fit are dropped and
// counted.
type Publisher struct {
	bus           chan<- BusMsg
	sent          atomic.Uint64
	dropped       atomic.Uint64
	logger        *zap.Logger
	statsInterval time.Duration
	stop          chan struct{}
	closeOnce     sync.Once
}

// NewPublisher creates a publisher writing to bus.
func NewPublisher(bus chan<- BusMsg, logger *zap.Logger) *Publisher {
	p := &Publisher{
		bus:           bus,
		logger:        logger.Named("bus"),
		statsInterval: 30 * time.Second,
		stop:          make(chan struct{}),
	}

	go p.logStats()

	return p
}

// Send publishes msg without blocking.
func (p *Publisher) Send(msg tea.Msg) {
	select {
	case p.bus <- BusMsg{Msg: msg}:
		p.sent.Add(1)
	default:
		p.dropped.Add(1)
	}
}

// Scheduled publishes the outcome of a background refresh. It matches the
// refresher's callback signature.
func (p *Publisher) Scheduled(snap *vault.Snapshot, err error) {
	p.Send(VaultsLoadedMsg{Snapshot: snap, Err: err})
}

// Stats returns the number of sent and dropped messages.
func (p *Publisher) Stats() (sent, dropped uint64) {
	return p.sent.Load(), p.dropped.Load()
}

func (p *Publisher) logStats() {
	ticker := time.NewTicker(p.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := p.Stats()
			if dropped > 0 {
				p.logger.Warn("UI bus dropped messages",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped))
			}
		case <-p.stop:
			return
		}
	}
}

// Close stops the statistics goroutine.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() { close(p.stop) })
}
