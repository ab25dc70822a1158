package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/itsGabo22/GuardianDigitalBot/internal/analysis"
	"github.com/itsGabo22/GuardianDigitalBot/internal/bot"
	"github.com/itsGabo22/GuardianDigitalBot/internal/contextstore"
	"github.com/itsGabo22/GuardianDigitalBot/internal/dedup"
	"github.com/itsGabo22/GuardianDigitalBot/internal/feedback"
	"github.com/itsGabo22/GuardianDigitalBot/internal/intent"
	"github.com/itsGabo22/GuardianDigitalBot/internal/logutil"
	"github.com/itsGabo22/GuardianDigitalBot/internal/pipeline"
	"github.com/itsGabo22/GuardianDigitalBot/internal/safebrowsing"
	"github.com/itsGabo22/GuardianDigitalBot/internal/transcribe"
	"github.com/itsGabo22/GuardianDigitalBot/internal/whatsapp"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the WhatsApp webhook server and analysis pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			apiKey := strings.TrimSpace(viper.GetString("openai.api_key"))
			if apiKey == "" {
				return fmt.Errorf("missing openai.api_key (set via GUARDIAN_DIGITAL_OPENAI_API_KEY)")
			}
			databaseURL := strings.TrimSpace(viper.GetString("database.url"))
			if databaseURL == "" {
				return fmt.Errorf("missing database.url (set via GUARDIAN_DIGITAL_DATABASE_URL)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			classifier, err := intent.NewClassifier(intent.ClassifierConfig{
				APIKey:  apiKey,
				BaseURL: viper.GetString("openai.base_url"),
				Model:   viper.GetString("openai.intent_model"),
			})
			if err != nil {
				return err
			}

			scamChecker, err := analysis.NewLLMChecker(analysis.LLMCheckerConfig{
				APIKey:  apiKey,
				BaseURL: viper.GetString("openai.base_url"),
				Model:   viper.GetString("openai.analysis_model"),
			})
			if err != nil {
				return err
			}

			var virusChecker analysis.VirusChecker
			if sbKey := strings.TrimSpace(viper.GetString("google.safebrowsing_api_key")); sbKey != "" {
				virusChecker = safebrowsing.New(sbKey)
			} else {
				logger.Warn("safebrowsing_disabled", "reason", "google.safebrowsing_api_key not set")
				virusChecker = nopVirusChecker{}
			}
			analyzer := analysis.NewAnalyzer(scamChecker, virusChecker)

			transcriber, err := transcribe.New(transcribe.Config{
				APIKey:  apiKey,
				BaseURL: viper.GetString("openai.base_url"),
			})
			if err != nil {
				return err
			}

			sender := whatsapp.NewSender(whatsapp.SenderConfig{
				AccountSID: viper.GetString("twilio.account_sid"),
				AuthToken:  viper.GetString("twilio.auth_token"),
				FromNumber: viper.GetString("twilio.from_number"),
			})
			if !sender.Configured() {
				logger.Warn("twilio_sender_unconfigured", "hint", "outbound sends will fail until twilio.* is set")
			}

			store, err := feedback.NewStore(ctx, databaseURL, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			var filter dedup.Filter = dedup.NewMemoryFilter()
			if redisURL := strings.TrimSpace(viper.GetString("redis.url")); redisURL != "" {
				opts, err := redis.ParseURL(redisURL)
				if err != nil {
					return fmt.Errorf("parse redis.url: %w", err)
				}
				filter = dedup.NewRedisFilter(redis.NewClient(opts))
			}

			contexts := contextstore.New()
			orchestrator := pipeline.NewOrchestrator(transcriber, analyzer, sender, contexts, logger,
				pipeline.WithTaskTimeout(viper.GetDuration("pipeline.task_timeout")),
				pipeline.WithTranscribeTimeout(viper.GetDuration("pipeline.transcribe_timeout")),
				pipeline.WithSurveyURL(viper.GetString("pipeline.survey_url")),
			)
			coordinator := feedback.NewCoordinator(contexts, store, sender, logger)
			router := bot.NewRouter(classifier, orchestrator, coordinator, sender, logger)
			webhook := whatsapp.NewWebhook(router, sender, filter, logger)

			ready, err := whatsapp.Serve(ctx, viper.GetInt("server.port"), webhook, logger)
			if err != nil {
				return err
			}
			<-ready
			logger.Info("guardianbot_ready", "port", viper.GetInt("server.port"))

			<-ctx.Done()
			logger.Info("guardianbot_draining_pipelines")
			orchestrator.Wait()
			return nil
		},
	}

	cmd.Flags().Int("port", 3000, "Webhook listen port (overrides server.port).")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

// nopVirusChecker keeps the analyzer functional when no Safe Browsing key is
// configured.
type nopVirusChecker struct{}

func (nopVirusChecker) Lookup(ctx context.Context, urls []string) (bool, error) {
	return false, nil
}
