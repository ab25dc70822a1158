// Package feedback closes the loop between a delivered analysis and the
// user's later yes/no reply, persisting the pairing best-effort.
package feedback

import (
	"context"
	"log/slog"

	"github.com/itsGabo22/GuardianDigitalBot/internal/contextstore"
)

const (
	thankYouReply = "¡Gracias por tu feedback! Me ayuda a mejorar. 😊"
	apologyReply  = "Lamento no haber sido de ayuda. Gracias por tu feedback, lo usaré para aprender. 👍"

	noPendingReply = "No tengo ningún análisis pendiente de tu parte. 🤔 " +
		"Reenvíame un mensaje, enlace o audio sospechoso y lo revisaré por ti."
)

// Recorder persists one closed feedback interaction.
type Recorder interface {
	Record(ctx context.Context, senderID, originalMessage, analysisSummary string, wasHelpful bool) error
}

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type Coordinator struct {
	contexts *contextstore.Store
	recorder Recorder
	sender   Sender
	logger   *slog.Logger
}

func NewCoordinator(contexts *contextstore.Store, recorder Recorder, sender Sender, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		contexts: contexts,
		recorder: recorder,
		sender:   sender,
		logger:   logger,
	}
}

// Record consumes the sender's pending context, forwards it to the recorder,
// and replies. A recorder failure is logged but never changes the reply:
// storage is best-effort from the user's perspective. Without a pending
// context the user gets a clarification instead.
func (c *Coordinator) Record(ctx context.Context, senderID string, wasHelpful bool) error {
	interaction, ok := c.contexts.Take(senderID)
	if !ok {
		c.logger.Debug("feedback_without_context", "sender", senderID)
		return c.sender.Send(ctx, senderID, noPendingReply)
	}

	if err := c.recorder.Record(ctx, senderID, interaction.OriginalMessage, interaction.AnalysisSummary, wasHelpful); err != nil {
		c.logger.Error("feedback_record_failed", "sender", senderID, "error", err.Error())
	}

	reply := thankYouReply
	if !wasHelpful {
		reply = apologyReply
	}
	return c.sender.Send(ctx, senderID, reply)
}
