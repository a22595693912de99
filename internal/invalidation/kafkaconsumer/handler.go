package kafkaconsumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

type messageProcessor func(context.Context, *sarama.ConsumerMessage) error

// groupHandler feeds each claimed partition through process in offset order.
type groupHandler struct {
	process messageProcessor
	logger  *slog.Logger
}

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	h.logger.Debug("invalidation claims assigned",
		"member", sess.MemberID(), "generation", sess.GenerationID(), "claims", sess.Claims())
	return nil
}

func (h *groupHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	h.logger.Debug("invalidation claims released", "generation", sess.GenerationID())
	return nil
}

// ConsumeClaim marks a change only after the cache dropped it; a failure ends
// the claim so the change is redelivered after the rebalance.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	applied := 0
	defer func() {
		h.logger.Debug("invalidation claim ended", "partition", claim.Partition(), "changes", applied)
	}()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("claim context done: %w", ctx.Err())
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.process(ctx, msg); err != nil {
				return fmt.Errorf("change at %s/%d@%d not applied: %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
			applied++
		}
	}
}
