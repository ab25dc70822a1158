package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/itsGabo22/GuardianDigitalBot/internal/contextstore"
)

type fakeRecorder struct {
	err   error
	calls []recordedCall
}

type recordedCall struct {
	senderID        string
	originalMessage string
	analysisSummary string
	wasHelpful      bool
}

func (f *fakeRecorder) Record(ctx context.Context, senderID, originalMessage, analysisSummary string, wasHelpful bool) error {
	f.calls = append(f.calls, recordedCall{senderID, originalMessage, analysisSummary, wasHelpful})
	return f.err
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, body)
	return f.err
}

func TestRecordPositiveConsumesContext(t *testing.T) {
	contexts := contextstore.New()
	contexts.Put("user", contextstore.InteractionContext{
		OriginalMessage: "Gana un premio haciendo click aquí",
		AnalysisSummary: "Estafa Detectada",
	})
	recorder := &fakeRecorder{}
	sender := &fakeSender{}
	c := NewCoordinator(contexts, recorder, sender, nil)

	if err := c.Record(context.Background(), "user", true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(recorder.calls) != 1 {
		t.Fatalf("recorder calls = %d", len(recorder.calls))
	}
	call := recorder.calls[0]
	if call.senderID != "user" || call.analysisSummary != "Estafa Detectada" || !call.wasHelpful {
		t.Fatalf("recorded call = %+v", call)
	}
	if len(sender.sent) != 1 || sender.sent[0] != thankYouReply {
		t.Fatalf("sent = %v", sender.sent)
	}
	if _, ok := contexts.Take("user"); ok {
		t.Fatalf("context not consumed")
	}
}

func TestRecordNegativeSendsApology(t *testing.T) {
	contexts := contextstore.New()
	contexts.Put("user", contextstore.InteractionContext{OriginalMessage: "msg", AnalysisSummary: "Mensaje Seguro"})
	recorder := &fakeRecorder{}
	sender := &fakeSender{}
	c := NewCoordinator(contexts, recorder, sender, nil)

	if err := c.Record(context.Background(), "user", false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(recorder.calls) != 1 || recorder.calls[0].wasHelpful {
		t.Fatalf("recorded calls = %+v", recorder.calls)
	}
	if len(sender.sent) != 1 || sender.sent[0] != apologyReply {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestRecordWithoutContextSendsClarification(t *testing.T) {
	recorder := &fakeRecorder{}
	sender := &fakeSender{}
	c := NewCoordinator(contextstore.New(), recorder, sender, nil)

	if err := c.Record(context.Background(), "user", false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("recorder must not be called without context, got %+v", recorder.calls)
	}
	if len(sender.sent) != 1 || sender.sent[0] != noPendingReply {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestRecorderFailureDoesNotChangeReply(t *testing.T) {
	contexts := contextstore.New()
	contexts.Put("user", contextstore.InteractionContext{OriginalMessage: "msg", AnalysisSummary: "Mensaje Seguro"})
	recorder := &fakeRecorder{err: errors.New("db down")}
	sender := &fakeSender{}
	c := NewCoordinator(contexts, recorder, sender, nil)

	if err := c.Record(context.Background(), "user", true); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != thankYouReply {
		t.Fatalf("sent = %v", sender.sent)
	}
}
