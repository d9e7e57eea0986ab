package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"github.com/mklincoln/factorymap/internal/cache"
	"github.com/mklincoln/factorymap/internal/core/observability"
	"github.com/mklincoln/factorymap/internal/invalidation"
)

// Consumer applies directory-change events by bumping the cache generation,
// which orphans every cached search and map response at once. It runs beside
// the serve path and never blocks it.
type Consumer struct {
	cfg    Config
	logger *slog.Logger
	cache  cache.Interface
	dedupe *versionDedupe
}

func New(cfg Config, logger *slog.Logger, c cache.Interface) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		cache:  c,
		dedupe: newVersionDedupe(cfg.DedupeSize),
	}
}

// Start consumes until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil {
		return errors.New("kafkaconsumer: missing cache dependency")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.Error("consumer error", "err", err)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single change event message.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		// malformed payloads are logged and skipped, not redelivered forever
		observability.IncInvalidation("decode_error")
		c.logger.Error("invalidation decode failed",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		observability.IncInvalidation("invalid")
		c.logger.Warn("invalid invalidation event skipped",
			"topic", msg.Topic, "offset", msg.Offset, "err", err)
		return nil
	}

	if !c.dedupe.shouldApply("company:"+strconv.FormatInt(ev.CompanyID, 10), ev.Seq) {
		observability.IncInvalidation("duplicate")
		c.logger.Debug("stale invalidation event dropped",
			"company_id", ev.CompanyID, "seq", ev.Seq)
		return nil
	}

	gen, err := c.cache.BumpGeneration(ctx)
	if err != nil {
		observability.IncInvalidation("cache_error")
		return fmt.Errorf("bump generation: %w", err)
	}

	observability.IncInvalidation("applied")
	c.logger.Debug("cache generation bumped",
		"op", ev.Op, "company_id", ev.CompanyID, "seq", ev.Seq, "generation", gen)
	return nil
}
