package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"skybook/internal/logger"
)

// Expirer переводит просроченные брони в vencida и возвращает места в инвентарь
type Expirer interface {
	ExpireOverdue(ctx context.Context, limit int) (int, error)
}

// PoolMonitor сообщает о давлении на пул соединений
type PoolMonitor interface {
	LogPoolPressure()
}

// ExpirationJob периодически истекает брони, не оплаченные до дедлайна
type ExpirationJob struct {
	expirer   Expirer
	pool      PoolMonitor
	interval  time.Duration
	batchSize int
	log       *slog.Logger

	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewExpirationJob(expirer Expirer, pool PoolMonitor, interval time.Duration, batchSize int) *ExpirationJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirationJob{
		expirer:   expirer,
		pool:      pool,
		interval:  interval,
		batchSize: batchSize,
		log:       logger.WithFields("job", "reservation_expiration"),
		done:      make(chan struct{}),
	}
}

// Start запускает первый проход сразу, затем по тикеру
func (j *ExpirationJob) Start(ctx context.Context) {
	j.log.Info("Starting reservation expiration job", "interval", j.interval, "batch_size", j.batchSize)

	j.ticker = time.NewTicker(j.interval)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.Sweep(ctx)
		for {
			select {
			case <-j.ticker.C:
				j.Sweep(ctx)
			case <-ctx.Done():
				j.log.Info("Reservation expiration job stopped", "reason", ctx.Err())
				return
			case <-j.done:
				j.log.Info("Reservation expiration job stopped")
				return
			}
		}
	}()
}

// Stop останавливает тикер и ждет текущий проход
func (j *ExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
	j.wg.Wait()
}

// Sweep истекает брони пачками, пока пачка заполнена целиком
func (j *ExpirationJob) Sweep(ctx context.Context) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.pool != nil {
		j.pool.LogPoolPressure()
	}

	total := 0
	for ctx.Err() == nil {
		n, err := j.expirer.ExpireOverdue(ctx, j.batchSize)
		if err != nil {
			j.log.Error("Failed to expire overdue reservations", "error", err, "expired_so_far", total)
			break
		}
		total += n
		if n < j.batchSize {
			break
		}
	}

	if total > 0 {
		j.log.Info("Expired overdue reservations", "count", total)
	} else {
		j.log.Debug("No overdue reservations found")
	}
	return total
}
