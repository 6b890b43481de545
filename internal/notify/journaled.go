package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/infrastructure/journal"
)

// Journaled decorates a gateway so every delivery attempt, successful or
// not, lands in the journal. Journal write failures are logged and swallowed;
// they must not turn a delivered notification into an error.
type Journaled struct {
	inner   Gateway
	journal *journal.Journal
	kind    string
	logger  *zap.Logger
}

// NewJournaled wraps inner with delivery journaling under the given kind label.
func NewJournaled(inner Gateway, j *journal.Journal, kind string, logger *zap.Logger) *Journaled {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journaled{inner: inner, journal: j, kind: kind, logger: logger}
}

func (g *Journaled) Notify(ctx context.Context, recipientID int64, text string) error {
	err := g.inner.Notify(ctx, recipientID, text)

	entry := journal.Entry{
		Recipient: recipientID,
		Kind:      g.kind,
		Delivered: err == nil,
		Timestamp: time.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if g.journal != nil {
		if jErr := g.journal.Record(entry); jErr != nil {
			g.logger.Warn("failed to journal notification", zap.Error(jErr))
		}
	}
	return err
}
