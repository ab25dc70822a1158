// Package pipeline runs the transcribe → analyze → compose → deliver sequence
// for one message as a detached unit of work, outside the synchronous request
// path. Every run terminates by sending a message; no failure escapes the
// pipeline boundary.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsGabo22/GuardianDigitalBot/internal/analysis"
	"github.com/itsGabo22/GuardianDigitalBot/internal/compose"
	"github.com/itsGabo22/GuardianDigitalBot/internal/contextstore"
)

const (
	defaultTaskTimeout       = 2 * time.Minute
	defaultTranscribeTimeout = 45 * time.Second

	audioTag = "[Audio transcrito] "

	feedbackPrompt = "*¿Te fue útil este análisis? Responde 'sí' o 'no'.*"

	audioTimeoutReply = "⏱️ Tu audio es demasiado largo y no pude transcribirlo a tiempo. " +
		"Intenta de nuevo con un audio más corto."
	audioFailedReply = "🎙️ No pude procesar tu audio. Intenta enviarlo de nuevo o escríbeme el texto."
	analysisFailedReply = "😔 No pude completar el análisis en este momento. " +
		"Por favor, intenta de nuevo más tarde."
)

// ErrTranscriptionTimeout marks a transcription abandoned at its deadline.
var ErrTranscriptionTimeout = errors.New("transcription deadline exceeded")

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Outcome, error)
}

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type Orchestrator struct {
	transcriber Transcriber
	analyzer    Analyzer
	sender      Sender
	contexts    *contextstore.Store
	logger      *slog.Logger

	taskTimeout       time.Duration
	transcribeTimeout time.Duration
	surveyURL         string

	wg sync.WaitGroup
}

type Option func(*Orchestrator)

// WithTaskTimeout bounds one whole pipeline run.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.taskTimeout = d
		}
	}
}

// WithTranscribeTimeout bounds the transcription step alone.
func WithTranscribeTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.transcribeTimeout = d
		}
	}
}

// WithSurveyURL appends a survey link to every analysis response.
func WithSurveyURL(url string) Option {
	return func(o *Orchestrator) {
		o.surveyURL = strings.TrimSpace(url)
	}
}

func NewOrchestrator(transcriber Transcriber, analyzer Analyzer, sender Sender, contexts *contextstore.Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		transcriber:       transcriber,
		analyzer:          analyzer,
		sender:            sender,
		contexts:          contexts,
		logger:            logger,
		taskTimeout:       defaultTaskTimeout,
		transcribeTimeout: defaultTranscribeTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Launch starts one detached run. The caller gets control back immediately;
// delivery of the final message happens later, as an independent outbound
// send.
func (o *Orchestrator) Launch(senderID, text string, audio []byte) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("pipeline_panic", "sender", senderID, "panic", r)
			}
		}()
		o.run(senderID, text, audio)
	}()
}

// Wait blocks until every launched run has finished. Used on shutdown and in
// tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(senderID, text string, audio []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), o.taskTimeout)
	defer cancel()

	logger := o.logger.With("pipeline_id", uuid.NewString(), "sender", senderID)

	content := text
	original := text
	if len(audio) > 0 {
		transcript, err := o.transcribeWithDeadline(ctx, audio)
		if err != nil {
			// Do not fall through to text analysis with empty content: a
			// voice note without a transcription has nothing to analyze.
			if errors.Is(err, ErrTranscriptionTimeout) {
				logger.Warn("pipeline_transcription_timeout", "timeout", o.transcribeTimeout.String())
				o.deliver(ctx, logger, senderID, audioTimeoutReply)
				return
			}
			logger.Error("pipeline_transcription_failed", "error", err.Error())
			o.deliver(ctx, logger, senderID, audioFailedReply)
			return
		}
		logger.Debug("pipeline_transcription_ok", "chars", len(transcript))
		content = transcript
		// Keep provenance: the feedback log must show the transcription, not
		// the (empty) caption of the voice note.
		original = audioTag + transcript
	}

	outcome, err := o.analyzer.Analyze(ctx, content)
	if err != nil {
		logger.Error("pipeline_analysis_failed", "error", err.Error())
		o.deliver(ctx, logger, senderID, analysisFailedReply)
		return
	}
	if strings.TrimSpace(outcome.Reason) == "" {
		// A well-formed result with no reason is a degraded collaborator;
		// treat it exactly like an explicit failure.
		logger.Error("pipeline_analysis_empty_reason")
		o.deliver(ctx, logger, senderID, analysisFailedReply)
		return
	}

	res := compose.Compose(outcome)

	// A new analysis supersedes any unanswered feedback prompt.
	o.contexts.Put(senderID, contextstore.InteractionContext{
		OriginalMessage: original,
		AnalysisSummary: res.AnalysisSummary,
	})

	body := res.ResponseText + "\n\n" + feedbackPrompt
	if o.surveyURL != "" {
		body += "\n📋 Ayúdanos a mejorar: " + o.surveyURL
	}
	logger.Info("pipeline_analysis_delivered", "summary", res.AnalysisSummary)
	o.deliver(ctx, logger, senderID, body)
}

// transcribeWithDeadline races the transcription call against its deadline.
// On expiry the in-flight call is abandoned, not cancelled; a late result is
// discarded via the buffered channel.
func (o *Orchestrator) transcribeWithDeadline(ctx context.Context, audio []byte) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := o.transcriber.Transcribe(ctx, audio)
		ch <- result{text: text, err: err}
	}()

	timer := time.NewTimer(o.transcribeTimeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-timer.C:
		return "", ErrTranscriptionTimeout
	case <-ctx.Done():
		return "", ErrTranscriptionTimeout
	}
}

func (o *Orchestrator) deliver(ctx context.Context, logger *slog.Logger, senderID, body string) {
	if err := o.sender.Send(ctx, senderID, body); err != nil {
		// Delivery is not retried; the failure only shows up in the logs.
		logger.Error("pipeline_delivery_failed", "error", err.Error())
	}
}
