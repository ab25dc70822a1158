package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/itsGabo22/GuardianDigitalBot/internal/bot"
	"github.com/itsGabo22/GuardianDigitalBot/internal/dedup"
)

// emptyTwiML tells Twilio not to send its own reply; the bot answers through
// the REST sender instead.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// MessageHandler is the router entry point the webhook feeds.
type MessageHandler interface {
	Handle(ctx context.Context, msg bot.IncomingMessage) error
}

// MediaDownloader fetches a voice-note attachment from the provider.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

// Webhook receives Twilio WhatsApp callbacks and adapts them into the bot's
// message type. It acks immediately and processes in the background so the
// provider's delivery timeout is never at risk.
type Webhook struct {
	handler MessageHandler
	media   MediaDownloader
	filter  dedup.Filter
	logger  *slog.Logger
}

func NewWebhook(handler MessageHandler, media MediaDownloader, filter dedup.Filter, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	if filter == nil {
		filter = dedup.NewMemoryFilter()
	}
	return &Webhook{
		handler: handler,
		media:   media,
		filter:  filter,
		logger:  logger,
	}
}

// ServeMessage handles one inbound webhook POST. Twilio retries on slow or
// failed acks, so the 200 goes out before any processing starts.
func (h *Webhook) ServeMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("webhook_bad_form", "error", err.Error())
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	messageSID := strings.TrimSpace(r.PostFormValue("MessageSid"))
	if messageSID == "" {
		messageSID = uuid.NewString()
	}
	from := strings.TrimSpace(r.PostFormValue("From"))
	body := r.PostFormValue("Body")
	mediaURL, mediaType := firstAudioMedia(r)

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(emptyTwiML))

	if from == "" {
		h.logger.Warn("webhook_missing_sender", "message_sid", messageSID)
		return
	}

	go h.process(context.Background(), messageSID, from, body, mediaURL, mediaType)
}

func (h *Webhook) process(ctx context.Context, messageSID, from, body, mediaURL, mediaType string) {
	isNew, err := h.filter.IsNew(ctx, messageSID)
	if err != nil {
		h.logger.Warn("webhook_dedup_check_failed", "error", err.Error())
		// Proceed anyway; a lost message is worse than a duplicate ack.
	} else if !isNew {
		h.logger.Debug("webhook_duplicate_dropped", "message_sid", messageSID)
		return
	}

	msg := bot.IncomingMessage{SenderID: from, Text: body}
	if mediaURL != "" {
		audio, err := h.media.DownloadMedia(ctx, mediaURL)
		if err != nil {
			h.logger.Error("webhook_media_download_failed",
				"message_sid", messageSID,
				"media_type", mediaType,
				"error", err.Error(),
			)
			// Fall through with text only; the router will classify the
			// caption (possibly empty) instead of dropping the message.
		} else {
			msg.Audio = audio
		}
	}

	h.logger.Info("webhook_message_received",
		"message_sid", messageSID,
		"sender", from,
		"has_audio", len(msg.Audio) > 0,
	)
	if err := h.handler.Handle(ctx, msg); err != nil {
		h.logger.Error("webhook_handle_failed", "message_sid", messageSID, "error", err.Error())
	}
}

// firstAudioMedia returns the URL and content type of the first audio
// attachment, if any. WhatsApp voice notes arrive as audio/ogg.
func firstAudioMedia(r *http.Request) (string, string) {
	n, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("NumMedia")))
	if err != nil || n <= 0 {
		return "", ""
	}
	for i := 0; i < n; i++ {
		mediaType := r.PostFormValue(fmt.Sprintf("MediaContentType%d", i))
		if strings.HasPrefix(mediaType, "audio/") {
			return r.PostFormValue(fmt.Sprintf("MediaUrl%d", i)), mediaType
		}
	}
	return "", ""
}

// Serve starts the webhook HTTP server. It binds the port immediately and
// signals readiness via the returned channel before accepting connections.
func Serve(ctx context.Context, port int, webhook *Webhook, logger *slog.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/whatsapp", webhook.ServeMessage)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Handler: mux}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind webhook port %d: %w", port, err)
	}

	ready := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info("webhook_server_shutting_down")
		server.Close()
	}()

	go func() {
		logger.Info("webhook_server_listening", "port", port)
		close(ready)
		if err := server.Serve(ln); err != http.ErrServerClosed {
			logger.Error("webhook_server_error", "error", err.Error())
		}
	}()

	return ready, nil
}
