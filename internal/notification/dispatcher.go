package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/tastytrail-backend/internal/goroutine"
	"github.com/ignatzorin/tastytrail-backend/internal/metrics"
)

// ErrSenderDisabled возвращается отправителем, если доставка писем выключена.
var ErrSenderDisabled = errors.New("notification: отправка писем отключена")

// Статусы писем для метрик.
const (
	statusQueued  = "queued"
	statusSent    = "sent"
	statusFailed  = "failed"
	statusDropped = "dropped"
	statusSkipped = "skipped"
)

// DispatcherConfig параметры фоновой отправки.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher принимает письма в очередь и отправляет их в фоне.
// Enqueue никогда не блокирует вызывающего: при переполненной очереди письмо
// отбрасывается и логируется.
type Dispatcher struct {
	sender  Sender
	cfg     DispatcherConfig
	log     logrus.FieldLogger
	queue   chan Message
	group   *goroutine.Group
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher создаёт диспетчер писем.
func NewDispatcher(sender Sender, cfg DispatcherConfig, log logrus.FieldLogger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}

	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		log:    log,
		queue:  make(chan Message, cfg.QueueSize),
		group:  goroutine.NewRecoveryHandler(log).NewGroup(),
	}
}

// Start запускает воркеров. Они работают до закрытия очереди через Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.Workers; i++ {
		d.group.Go(ctx, "mail-worker", d.work)
	}
}

// Enqueue ставит письмо в очередь без ожидания результата.
func (d *Dispatcher) Enqueue(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		metrics.ObserveNotification(string(msg.Kind), statusDropped)
		d.log.WithField("kind", msg.Kind).Warn("диспетчер остановлен, письмо отброшено")
		return
	}

	select {
	case d.queue <- msg:
		metrics.ObserveNotification(string(msg.Kind), statusQueued)
	default:
		metrics.ObserveNotification(string(msg.Kind), statusDropped)
		d.log.WithField("kind", msg.Kind).Warn("очередь писем переполнена, письмо отброшено")
	}
}

// Stop закрывает очередь и ждёт, пока воркеры отправят уже принятые письма
// или пока не истечёт ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for msg := range d.queue {
		d.deliver(ctx, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	// Отправку не прерываем вместе с процессным контекстом: письма, принятые
	// до остановки, досылаются в пределах собственного таймаута.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.SendTimeout)
	defer cancel()

	fields := logrus.Fields{"kind": msg.Kind}

	err := d.sender.Send(sendCtx, msg)
	switch {
	case err == nil:
		metrics.ObserveNotification(string(msg.Kind), statusSent)
		d.log.WithFields(fields).Info("письмо отправлено")
	case errors.Is(err, ErrSenderDisabled):
		metrics.ObserveNotification(string(msg.Kind), statusSkipped)
	default:
		metrics.ObserveNotification(string(msg.Kind), statusFailed)
		d.log.WithFields(fields).WithError(err).Error("не удалось отправить письмо")
	}
}
