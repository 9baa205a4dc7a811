package goroutine

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/tastytrail-backend/internal/logger"
)

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	log logrus.FieldLogger
}

// NewRecoveryHandler создает новый обработчик. Если log == nil,
// используется глобальный логгер приложения.
func NewRecoveryHandler(log logrus.FieldLogger) *RecoveryHandler {
	return &RecoveryHandler{log: log}
}

func (rh *RecoveryHandler) logger() logrus.FieldLogger {
	if rh.log != nil {
		return rh.log
	}
	return logger.Get()
}

func (rh *RecoveryHandler) handlePanic(name string) {
	if r := recover(); r != nil {
		rh.logger().WithFields(logrus.Fields{
			"goroutine": name,
			"panic":     r,
			"stack":     string(debug.Stack()),
		}).Error("panic в горутине")
	}
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer rh.handlePanic(name)
		fn(ctx)
	}()
}

// Group запускает набор безопасных горутин и позволяет дождаться их завершения.
type Group struct {
	rh *RecoveryHandler
	wg sync.WaitGroup
}

// NewGroup создаёт группу горутин с общим обработчиком panic.
func (rh *RecoveryHandler) NewGroup() *Group {
	return &Group{rh: rh}
}

// Go запускает fn в группе. Panic внутри fn логируется и не роняет процесс.
func (g *Group) Go(ctx context.Context, name string, fn func(context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.rh.handlePanic(name)
		fn(ctx)
	}()
}

// Wait блокируется до завершения всех горутин группы.
func (g *Group) Wait() {
	g.wg.Wait()
}

// DefaultRecoveryHandler - глобальный обработчик, пишет в логгер приложения
var DefaultRecoveryHandler = NewRecoveryHandler(nil)

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, name, fn)
}
