package eventbus

import (
	"context"

	"github.com/annel0/voxel-chunks/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus, l *logging.Logger) (Subscription, error) {
	if l == nil {
		l = logging.Default()
	}
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		l.Debug("[EventBus] %s %s src=%s prio=%d %s", ev.ID, ev.EventType, ev.Source, ev.Priority, ev.Payload)
	})
	if err != nil {
		return nil, err
	}
	l.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
