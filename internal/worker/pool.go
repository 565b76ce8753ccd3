package worker

import (
	"context"
	"encoding/json"
	"time"

	"paucara/internal/dto"
	"paucara/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockRefresh = "jobs:stock_refresh"

	// StockCachePrefix + almacenID is the Redis key holding the cached
	// stock summary of one warehouse.
	StockCachePrefix = "cache:stock:"
	stockCacheTTL    = 5 * time.Minute

	maxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// StockRefreshPayload identifies the warehouse whose cached summary is stale.
type StockRefreshPayload struct {
	AlmacenID uuid.UUID `json:"almacen_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockRefresh schedules a recompute of one warehouse's cached stock
// summary. Callers fire it after any stock mutation and ignore the error;
// the cache self-heals on TTL expiry anyway.
func (d *Dispatcher) EnqueueStockRefresh(ctx context.Context, almacenID uuid.UUID) error {
	return d.enqueue(ctx, QueueStockRefresh, "stock_refresh", StockRefreshPayload{AlmacenID: almacenID})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the stock refresh
// queue. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, stockRepo repository.StockRepository, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, stockRepo, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, stockRepo repository.StockRepository, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueStockRefresh).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, stockRepo, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, stockRepo repository.StockRepository, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var payload StockRefreshPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("invalid stock_refresh payload")
		return
	}

	if err := RefreshStockCache(ctx, rdb, stockRepo, payload.AlmacenID); err != nil {
		job.Attempts++
		if job.Attempts >= maxJobAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		if encoded, merr := json.Marshal(job); merr == nil {
			_ = rdb.LPush(ctx, queue, encoded).Err()
		}
		log.Warn().
			Str("almacen_id", payload.AlmacenID.String()).
			Int("attempts", job.Attempts).
			Err(err).
			Msg("stock refresh failed, requeued")
	}
}

// RefreshStockCache recomputes the stock summary of one warehouse from the
// database and stores it in Redis. The DB rows stay authoritative; the cache
// only serves reads.
func RefreshStockCache(ctx context.Context, rdb *redis.Client, stockRepo repository.StockRepository, almacenID uuid.UUID) error {
	entries, err := stockRepo.List(ctx, dto.StockFilter{AlmacenID: almacenID.String()})
	if err != nil {
		return err
	}

	summary := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		item := dto.StockEntryResponse{
			AlmacenID:  e.AlmacenID.String(),
			ProductoID: e.ProductoID.String(),
			Cantidad:   e.Cantidad,
		}
		if e.Almacen != nil {
			item.Almacen = e.Almacen.Nombre
		}
		if e.Producto != nil {
			item.Producto = e.Producto.Nombre
		}
		summary = append(summary, item)
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, StockCachePrefix+almacenID.String(), data, stockCacheTTL).Err()
}
