package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/tonari-app/tonari/internal/core/model"
	obs "github.com/tonari-app/tonari/internal/core/observability"
	"github.com/tonari-app/tonari/internal/invalidation"
	mylog "github.com/tonari-app/tonari/internal/logger"
)

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	inv    invalidation.Invalidator
	dedupe *versionDedupe
	zlog   *zerolog.Logger
}

// New builds a consumer. zl receives the per-message audit log and may be nil.
func New(cfg Config, logger *slog.Logger, zl *zerolog.Logger, inv invalidation.Invalidator) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	if zl == nil {
		nop := zerolog.Nop()
		zl = &nop
	}
	child := zl.With().Str("component", "kafka_consumer").Logger()
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		inv:    inv,
		dedupe: newVersionDedupe(cfg.DedupeSize),
		zlog:   &child,
	}
}

// Start consumes facility change events until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.inv == nil {
		return errors.New("kafkaconsumer: missing invalidator")
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

	handler := &groupHandler{process: c.ProcessOne, logger: c.logger}

	c.logger.Info("kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				obs.IncKafkaConsumerError("consume")
				c.zlog.Error().Err(err).
					Strs("brokers", c.cfg.Brokers).
					Str("topic", c.cfg.Topic).
					Msg("kafka consumer error")
				select {
				case <-ctx.Done():
				case <-time.After(2 * time.Second):
				}
			}
		}
	}
}

// ProcessOne applies a single change event. Undecodable and invalid events
// are logged and skipped so they cannot block the partition.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		c.logMessageError(ctx, msg, "decode", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncKafkaConsumerError("invalid")
		c.logMessageError(ctx, msg, "invalid", err)
		return nil
	}

	key := model.IDToStr(ev.ID)
	if c.dedupe.stale(key, ev.Rev) {
		obs.IncKafkaEvent("consumer", "duplicate")
		c.logger.Debug("skipping stale change", "id", key, "rev", ev.Rev)
		return nil
	}

	n, err := c.inv.InvalidateAround(ctx, ev.Position)
	if err != nil {
		obs.IncKafkaConsumerError("invalidate")
		c.logMessageError(ctx, msg, "invalidate", err)
		return fmt.Errorf("invalidate: %w", err)
	}
	c.dedupe.applied(key, ev.Rev)
	obs.IncKafkaEvent("consumer", "applied")

	mylog.FromContext(ctx, c.zlog).Info().
		Str("event", "invalidation").
		Str("op", ev.Op).Str("id", key).
		Int("searches", n).
		Msg("invalidated searches")
	return nil
}

func (c *Consumer) logMessageError(ctx context.Context, msg *sarama.ConsumerMessage, kind string, err error) {
	mylog.FromContext(ctx, c.zlog).Error().Err(err).
		Str("kind", kind).
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("kafka error")
}
