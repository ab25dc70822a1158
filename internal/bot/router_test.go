package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/itsGabo22/GuardianDigitalBot/internal/intent"
)

type fakeClassifier struct {
	result intent.Intent
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (intent.Intent, error) {
	f.calls++
	return f.result, f.err
}

type fakePipeline struct {
	mu       sync.Mutex
	launches []launch
}

type launch struct {
	senderID string
	text     string
	audio    []byte
}

func (f *fakePipeline) Launch(senderID, text string, audio []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launches = append(f.launches, launch{senderID, text, audio})
}

type fakeFeedback struct {
	calls []bool
}

func (f *fakeFeedback) Record(ctx context.Context, senderID string, wasHelpful bool) error {
	f.calls = append(f.calls, wasHelpful)
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, body)
	return f.err
}

func newTestRouter(classifier *fakeClassifier) (*Router, *fakePipeline, *fakeFeedback, *fakeSender) {
	pipeline := &fakePipeline{}
	feedback := &fakeFeedback{}
	sender := &fakeSender{}
	return NewRouter(classifier, pipeline, feedback, sender, nil), pipeline, feedback, sender
}

func TestHandleQuickFeedbackSkipsClassifier(t *testing.T) {
	cases := []struct {
		text        string
		wantHelpful bool
	}{
		{text: "sí", wantHelpful: true},
		{text: "si", wantHelpful: true},
		{text: "no", wantHelpful: false},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			classifier := &fakeClassifier{}
			r, pipeline, feedback, _ := newTestRouter(classifier)

			if err := r.Handle(context.Background(), IncomingMessage{SenderID: "user", Text: tc.text}); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if classifier.calls != 0 {
				t.Fatalf("classifier called %d times for quick rule", classifier.calls)
			}
			if len(feedback.calls) != 1 || feedback.calls[0] != tc.wantHelpful {
				t.Fatalf("feedback calls = %v", feedback.calls)
			}
			if len(pipeline.launches) != 0 {
				t.Fatalf("pipeline launched for feedback reply")
			}
		})
	}
}

func TestHandleGreeting(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Greeting}
	r, pipeline, _, sender := newTestRouter(classifier)

	if err := r.Handle(context.Background(), IncomingMessage{SenderID: "user", Text: "hola"}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if classifier.calls != 1 {
		t.Fatalf("classifier calls = %d", classifier.calls)
	}
	if len(sender.sent) != 1 || sender.sent[0] != greetingReply {
		t.Fatalf("sent = %v", sender.sent)
	}
	if len(pipeline.launches) != 0 {
		t.Fatalf("pipeline launched for greeting")
	}
}

func TestHandleHelp(t *testing.T) {
	classifier := &fakeClassifier{result: intent.HelpRequest}
	r, _, _, sender := newTestRouter(classifier)

	if err := r.Handle(context.Background(), IncomingMessage{SenderID: "user", Text: "ayuda"}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != helpReply {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestHandleAnalysisSendsAckAndLaunches(t *testing.T) {
	classifier := &fakeClassifier{result: intent.AnalysisRequest}
	r, pipeline, _, sender := newTestRouter(classifier)

	msg := IncomingMessage{SenderID: "user", Text: "Gana un premio haciendo click aquí: http://evil.example"}
	if err := r.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != analysisAck {
		t.Fatalf("sent = %v", sender.sent)
	}
	if len(pipeline.launches) != 1 {
		t.Fatalf("launches = %d", len(pipeline.launches))
	}
	if pipeline.launches[0].text != msg.Text || pipeline.launches[0].audio != nil {
		t.Fatalf("launch = %+v", pipeline.launches[0])
	}
}

func TestHandleUnknownIntentFallsOpenToAnalysis(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Unknown}
	r, pipeline, _, sender := newTestRouter(classifier)

	if err := r.Handle(context.Background(), IncomingMessage{SenderID: "user", Text: "???"}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(pipeline.launches) != 1 {
		t.Fatalf("unknown intent must launch analysis")
	}
	if len(sender.sent) != 1 || sender.sent[0] != analysisAck {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestHandleClassifierFailureFallsOpenToAnalysis(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("classifier down")}
	r, pipeline, _, _ := newTestRouter(classifier)

	if err := r.Handle(context.Background(), IncomingMessage{SenderID: "user", Text: "algo"}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(pipeline.launches) != 1 {
		t.Fatalf("classifier failure must fall open to analysis")
	}
}

func TestHandleAudioShortCircuitsClassification(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Greeting}
	r, pipeline, _, sender := newTestRouter(classifier)

	msg := IncomingMessage{SenderID: "user", Text: "", Audio: []byte("ogg")}
	if err := r.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if classifier.calls != 0 {
		t.Fatalf("classifier must not run for audio messages")
	}
	if len(sender.sent) != 1 || sender.sent[0] != audioAck {
		t.Fatalf("sent = %v", sender.sent)
	}
	if len(pipeline.launches) != 1 || len(pipeline.launches[0].audio) == 0 {
		t.Fatalf("launches = %+v", pipeline.launches)
	}
}

func TestHandleAudioWinsOverPendingFeedback(t *testing.T) {
	// A voice note sent right after a yes/no prompt still starts a fresh
	// analysis; the pending context is left for the overwrite in the store.
	classifier := &fakeClassifier{}
	r, pipeline, feedback, _ := newTestRouter(classifier)

	msg := IncomingMessage{SenderID: "user", Text: "sí", Audio: []byte("ogg")}
	if err := r.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(feedback.calls) != 0 {
		t.Fatalf("feedback handled despite audio payload")
	}
	if len(pipeline.launches) != 1 {
		t.Fatalf("pipeline not launched for audio")
	}
}

func TestHandleAckSendFailureStillLaunchesPipeline(t *testing.T) {
	classifier := &fakeClassifier{result: intent.AnalysisRequest}
	pipeline := &fakePipeline{}
	sender := &fakeSender{err: errors.New("provider 500")}
	r := NewRouter(classifier, pipeline, &fakeFeedback{}, sender, nil)

	if err := r.Handle(context.Background(), IncomingMessage{SenderID: "user", Text: "revisa esto"}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(pipeline.launches) != 1 {
		t.Fatalf("pipeline must launch even when the ack fails")
	}
}
