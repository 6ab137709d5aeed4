package discovery

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/hashicorp/mdns"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const mdnsDomain = "local"

// Browser periodically browses mDNS for network playback receivers and keeps
// the set of receivers seen within the TTL.
type Browser struct {
	logger   *zap.Logger
	stdLog   *log.Logger // hands hashicorp/mdns output to zap
	services []string
	interval time.Duration
	timeout  time.Duration
	ttl      time.Duration

	// query and now are replaced in tests
	query func(params *mdns.QueryParam) error
	now   func() time.Time

	mu              sync.RWMutex
	receivers       map[string]domain.Receiver // keyed by service and instance name
	running         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	events          chan domain.Notification
	lastDropWarning time.Time
}

// NewBrowser creates a receiver browser from the discovery settings
func NewBrowser(logger *zap.Logger, cfg *config.AppConfig) *Browser {
	return &Browser{
		logger:    logger,
		stdLog:    zap.NewStdLog(logger.Named("mdns")),
		services:  cfg.DiscoveryServices,
		interval:  cfg.DiscoveryInterval,
		timeout:   cfg.DiscoveryTimeout,
		ttl:       cfg.ReceiverTTL,
		query:     mdns.Query,
		now:       time.Now,
		receivers: make(map[string]domain.Receiver),
		events:    make(chan domain.Notification, 10),
	}
}

// Start browses until ctx is cancelled or Stop is called
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true

	browseCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.wg.Add(1)
	b.mu.Unlock()

	defer b.wg.Done()

	b.logger.Info("Receiver discovery started",
		zap.Strings("services", b.services),
		zap.Duration("interval", b.interval))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		b.browseOnce(browseCtx)

		select {
		case <-browseCtx.Done():
			b.logger.Info("Receiver discovery stopped")
			return browseCtx.Err()
		case <-ticker.C:
		}
	}
}

// Stop ends browsing and closes the events channel
func (b *Browser) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.running = false
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	close(b.events)
	return nil
}

// Events emits a notification whenever the set of visible receivers changes
func (b *Browser) Events() <-chan domain.Notification {
	return b.events
}

// Receivers returns the receivers seen within the TTL, sorted by name
func (b *Browser) Receivers() []domain.Receiver {
	b.mu.RLock()
	defer b.mu.RUnlock()

	receivers := lo.Values(b.receivers)
	sort.Slice(receivers, func(i, j int) bool {
		if receivers[i].Name == receivers[j].Name {
			return receivers[i].Service < receivers[j].Service
		}
		return receivers[i].Name < receivers[j].Name
	})
	return receivers
}

// browseOnce queries every service, merges answers and expires stale receivers
func (b *Browser) browseOnce(ctx context.Context) {
	var found []domain.Receiver
	for _, service := range b.services {
		if ctx.Err() != nil {
			return
		}
		found = append(found, b.browseService(service)...)
	}

	if b.merge(found) {
		b.emit()
	}
}

// browseService runs one mDNS query for a service type
func (b *Browser) browseService(service string) []domain.Receiver {
	entries := make(chan *mdns.ServiceEntry, 16)
	collected := make(chan []domain.Receiver, 1)

	go func() {
		var receivers []domain.Receiver
		for entry := range entries {
			if r, ok := b.toReceiver(service, entry); ok {
				receivers = append(receivers, r)
			}
		}
		collected <- receivers
	}()

	params := &mdns.QueryParam{
		Service: service,
		Domain:  mdnsDomain,
		Timeout: b.timeout,
		Entries: entries,
		Logger:  b.stdLog,
	}

	if err := b.query(params); err != nil {
		b.logger.Debug("mDNS query failed", zap.String("service", service), zap.Error(err))
	}
	close(entries)

	return <-collected
}

// toReceiver converts an mDNS answer, rejecting answers for other services
func (b *Browser) toReceiver(service string, entry *mdns.ServiceEntry) (domain.Receiver, bool) {
	if entry == nil {
		return domain.Receiver{}, false
	}

	suffix := "." + service + "." + mdnsDomain + "."
	if !strings.HasSuffix(entry.Name, suffix) {
		return domain.Receiver{}, false
	}
	name := strings.TrimSuffix(entry.Name, suffix)
	name = strings.ReplaceAll(name, `\ `, " ")

	host := entry.Host
	if entry.AddrV4 != nil {
		host = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		host = entry.AddrV6.String()
	}

	return domain.Receiver{
		Name:     name,
		Service:  service,
		Host:     host,
		Port:     entry.Port,
		LastSeen: b.now(),
	}, true
}

// merge records fresh receivers and drops expired ones.
// It reports whether the set of receivers changed.
func (b *Browser) merge(found []domain.Receiver) bool {
	now := b.now()
	found = lo.UniqBy(found, receiverKey)

	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false
	for _, r := range found {
		key := receiverKey(r)
		if _, ok := b.receivers[key]; !ok {
			changed = true
			b.logger.Info("Receiver discovered",
				zap.String("name", r.Name),
				zap.String("service", r.Service),
				zap.String("host", r.Host),
				zap.Int("port", r.Port))
		}
		b.receivers[key] = r
	}

	for key, r := range b.receivers {
		if now.Sub(r.LastSeen) > b.ttl {
			delete(b.receivers, key)
			changed = true
			b.logger.Info("Receiver expired",
				zap.String("name", r.Name),
				zap.String("service", r.Service))
		}
	}

	return changed
}

// emit sends a change notification without blocking the browse loop
func (b *Browser) emit() {
	n := domain.Notification{Source: "mdns", Name: "ReceiversChanged", At: b.now()}

	select {
	case b.events <- n:
	default:
		b.mu.Lock()
		defer b.mu.Unlock()
		const warningInterval = 5 * time.Second
		now := time.Now()
		if now.Sub(b.lastDropWarning) >= warningInterval {
			b.logger.Warn("Discovery events channel full, dropping notification")
			b.lastDropWarning = now
		}
	}
}

func receiverKey(r domain.Receiver) string {
	return r.Service + "/" + r.Name
}
