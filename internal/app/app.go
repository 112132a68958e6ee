package app

import (
	"log"

	"triagebot/internal/config"
	"triagebot/internal/httpx"
	"triagebot/internal/integrations/oracle"
	"triagebot/internal/notify"
	"triagebot/internal/reclassify"
	"triagebot/internal/storage/sqlite"
	"triagebot/internal/triage"
)

func Main() {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	logger := log.Default()
	log.Printf(
		"Config loaded. DB=%s OracleProvider=%s BatchSize=%d Timezone=%s ExternalHTTPTimeout=%s",
		cfg.DBPath, cfg.OracleProvider, cfg.BatchSize, cfg.Timezone, appliedHTTPTimeout,
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	rules := triage.DefaultRuleSet()
	if cfg.RulesPath != "" {
		loaded, err := triage.LoadRuleSet(cfg.RulesPath)
		if err != nil {
			log.Fatalf("invalid rules_path '%s': %v", cfg.RulesPath, err)
		}
		rules = loaded
		log.Printf("Rules loaded from %s", cfg.RulesPath)
	}

	model, err := triage.LoadModel(cfg.ModelPath)
	if err != nil {
		log.Printf("Model artifact unusable, statistical fallback disabled: %v", err)
		model = nil
	} else if model == nil {
		log.Printf("Model artifact not found at %s, statistical fallback disabled", cfg.ModelPath)
	} else {
		log.Printf("Model artifact loaded from %s", cfg.ModelPath)
	}

	analyzer := oracle.NewAnalyzer(
		cfg.OracleProvider, cfg.OracleModel,
		cfg.OpenAIAPIKey, cfg.GeminiAPIKey, cfg.AnthropicAPIKey,
		logger,
	)
	classifier := triage.NewClassifier(rules, model, analyzer, logger)

	var notifier reclassify.Notifier
	if cfg.SlackBotToken != "" && cfg.AlertChannelID != "" {
		notifier = notify.NewSlackAlerter(cfg.SlackBotToken, cfg.AlertChannelID, logger)
		log.Printf("Escalation alerts enabled for channel %s", cfg.AlertChannelID)
	}

	job := reclassify.NewJob(db, classifier, notifier, cfg.OracleProvider, cfg.BatchSize, logger)
	if err := reclassify.StartScheduler(job, cfg.Location, cfg.PendingSchedule, cfg.ResweepSchedule, logger); err != nil {
		log.Fatalf("Scheduler error: %v", err)
	}

	log.Println("Starting Feedback Triage Bot...")
	select {}
}
