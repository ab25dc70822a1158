package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("server.port", 3000)

	viper.SetDefault("openai.base_url", "")
	viper.SetDefault("openai.intent_model", "gpt-4o-mini")
	viper.SetDefault("openai.analysis_model", "gpt-4o-mini")

	viper.SetDefault("pipeline.task_timeout", 2*time.Minute)
	viper.SetDefault("pipeline.transcribe_timeout", 45*time.Second)
	viper.SetDefault("pipeline.survey_url", "")
}
