package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ExpiredTokenSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ExpiredResetSweeper interface {
	ClearExpiredResets(ctx context.Context, now time.Time) (int64, error)
}

type Processor struct {
	tokens ExpiredTokenSweeper
	resets ExpiredResetSweeper
	logger zerolog.Logger
	now    func() time.Time
}

type TaskPayload struct {
	Type string `json:"type"`
}

func NewProcessor(tokens ExpiredTokenSweeper, resets ExpiredResetSweeper, logger zerolog.Logger) *Processor {
	return &Processor{
		tokens: tokens,
		resets: resets,
		logger: logger,
		now:    time.Now,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case "cleanup":
		return p.handleCleanup(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

// handleCleanup removes what the API would already treat as absent:
// expired refresh tokens and lapsed pending resets.
func (p *Processor) handleCleanup(ctx context.Context) error {
	now := p.now()

	tokens, err := p.tokens.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	resets, err := p.resets.ClearExpiredResets(ctx, now)
	if err != nil {
		return fmt.Errorf("clear expired resets: %w", err)
	}

	p.logger.Info().
		Int64("refresh_tokens", tokens).
		Int64("password_resets", resets).
		Msg("cleanup finished")
	return nil
}
