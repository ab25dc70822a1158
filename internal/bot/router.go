// Package bot routes each inbound message to the right handler: synchronous
// replies for greetings, help, and feedback, or an acknowledgment plus a
// detached analysis pipeline for everything else.
package bot

import (
	"context"
	"log/slog"

	"github.com/itsGabo22/GuardianDigitalBot/internal/intent"
)

// IncomingMessage is created at the transport boundary and consumed once.
// Audio, when present, is the already-downloaded voice-note payload.
type IncomingMessage struct {
	SenderID string
	Text     string
	Audio    []byte
}

// Classifier labels message text. Failure is recovered by the router, which
// falls open to the analysis path.
type Classifier interface {
	Classify(ctx context.Context, text string) (intent.Intent, error)
}

// Pipeline launches the detached background analysis for one message. The
// router never waits for it.
type Pipeline interface {
	Launch(senderID, text string, audio []byte)
}

// FeedbackHandler closes the feedback loop for a yes/no reply, including
// sending the user-facing acknowledgment.
type FeedbackHandler interface {
	Record(ctx context.Context, senderID string, wasHelpful bool) error
}

// Sender delivers one outbound message.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type Router struct {
	classifier Classifier
	pipeline   Pipeline
	feedback   FeedbackHandler
	sender     Sender
	logger     *slog.Logger
}

func NewRouter(classifier Classifier, pipeline Pipeline, feedback FeedbackHandler, sender Sender, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		classifier: classifier,
		pipeline:   pipeline,
		feedback:   feedback,
		sender:     sender,
		logger:     logger,
	}
}

// Handle performs exactly one synchronous send (a direct reply or an
// acknowledgment) and, on the analysis path, one detached pipeline launch.
// All user-visible output goes through the sender; the return value only
// reports dispatch failure.
func (r *Router) Handle(ctx context.Context, msg IncomingMessage) error {
	// A voice note always means "analyze this": no intent judgment is
	// possible before transcription, so audio wins over text classification
	// and over any pending feedback prompt.
	if len(msg.Audio) > 0 {
		if err := r.sender.Send(ctx, msg.SenderID, audioAck); err != nil {
			r.logger.Error("router_ack_send_failed", "sender", msg.SenderID, "error", err.Error())
		}
		r.pipeline.Launch(msg.SenderID, msg.Text, msg.Audio)
		return nil
	}

	it := r.resolveIntent(ctx, msg.Text)
	r.logger.Debug("router_intent_resolved", "sender", msg.SenderID, "intent", string(it))

	switch it {
	case intent.Greeting:
		return r.reply(ctx, msg.SenderID, greetingReply)
	case intent.HelpRequest:
		return r.reply(ctx, msg.SenderID, helpReply)
	case intent.FeedbackPositive:
		return r.feedback.Record(ctx, msg.SenderID, true)
	case intent.FeedbackNegative:
		return r.feedback.Record(ctx, msg.SenderID, false)
	default:
		// ANALYSIS_REQUEST and UNKNOWN both analyze.
		if err := r.sender.Send(ctx, msg.SenderID, analysisAck); err != nil {
			r.logger.Error("router_ack_send_failed", "sender", msg.SenderID, "error", err.Error())
		}
		r.pipeline.Launch(msg.SenderID, msg.Text, nil)
		return nil
	}
}

// resolveIntent applies the hard-coded one-word feedback rules first, so the
// common "sí"/"no" reply never costs an external call and feedback closes
// even when the classifier is degraded.
func (r *Router) resolveIntent(ctx context.Context, text string) intent.Intent {
	if it, ok := intent.QuickRule(text); ok {
		return it
	}
	it, err := r.classifier.Classify(ctx, text)
	if err != nil {
		r.logger.Warn("router_classify_failed", "error", err.Error())
		return intent.AnalysisRequest
	}
	return it
}

func (r *Router) reply(ctx context.Context, senderID, body string) error {
	if err := r.sender.Send(ctx, senderID, body); err != nil {
		r.logger.Error("router_reply_send_failed", "sender", senderID, "error", err.Error())
		return err
	}
	return nil
}
