package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"marketdeck/internal/domain"
)

// AlertDispatcher forwards newly triggered alerts from the alerts analysis
// panel to the notification channels. Alerts are deduplicated by market and
// message so re-running the analysis does not re-send the same alert.
type AlertDispatcher struct {
	notifier *Notifier

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewAlertDispatcher creates an AlertDispatcher.
func NewAlertDispatcher(notifier *Notifier) *AlertDispatcher {
	return &AlertDispatcher{
		notifier: notifier,
		seen:     make(map[string]struct{}),
	}
}

// Dispatch sends a digest of the alerts not seen before. It returns the
// number of new alerts delivered.
func (d *AlertDispatcher) Dispatch(ctx context.Context, alerts []domain.Alert) (int, error) {
	fresh := d.filterNew(alerts)
	if len(fresh) == 0 {
		return 0, nil
	}

	var b strings.Builder
	for _, a := range fresh {
		if a.Severity != "" {
			fmt.Fprintf(&b, "[%s] ", strings.ToUpper(a.Severity))
		}
		fmt.Fprintf(&b, "%s (market %s)\n", a.Message, a.MarketID)
	}

	title := fmt.Sprintf("marketdeck: %d new alert(s)", len(fresh))
	if err := d.notifier.Notify(ctx, title, b.String()); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// filterNew records and returns alerts not dispatched before.
func (d *AlertDispatcher) filterNew(alerts []domain.Alert) []domain.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	var fresh []domain.Alert
	for _, a := range alerts {
		key := a.MarketID + "\x00" + a.Message
		if _, ok := d.seen[key]; ok {
			continue
		}
		d.seen[key] = struct{}{}
		fresh = append(fresh, a)
	}
	return fresh
}
