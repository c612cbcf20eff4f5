// Package notify delivers password-reset tokens out of band.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type PasswordResetMessage struct {
	UserID    string    `json:"userId"`
	To        string    `json:"to"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Notifier interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error
}

// LogNotifier records that a reset was requested. The token itself is never logged.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, msg PasswordResetMessage) error {
	n.log.Info().
		Str("user_id", msg.UserID).
		Time("expires_at", msg.ExpiresAt).
		Msg("password reset requested")
	return nil
}

type ObjectWriter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// ObjectOutbox drops each message as a JSON document into an object store
// bucket, where a mail relay picks it up.
type ObjectOutbox struct {
	store ObjectWriter
	now   func() time.Time
}

func NewObjectOutbox(store ObjectWriter) *ObjectOutbox {
	return &ObjectOutbox{store: store, now: time.Now}
}

func (o *ObjectOutbox) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode reset message: %w", err)
	}
	key := fmt.Sprintf("password-reset/%s/%d.json", msg.UserID, o.now().UnixNano())
	return o.store.PutObject(ctx, key, body, "application/json")
}
