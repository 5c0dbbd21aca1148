package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	"github.com/slack-go/slack"
)

func main() {
	inPath := flag.String("in", "", "path to input .csv, .json, or .xlsx")
	inColumn := flag.String("input-column", "", "column/key containing the free text (empty: first CSV column)")
	outPath := flag.String("out", "", "path to output .json or .csv")
	mode := flag.String("mode", "", "output mode: summary or records")
	model := flag.String("model", "", "model name override")
	flag.Parse()

	cfg := LoadConfig()
	if *inPath != "" {
		cfg.InputPath = *inPath
	}
	if *inColumn != "" {
		cfg.InputColumn = *inColumn
	}
	if *outPath != "" {
		cfg.OutputPath = *outPath
	}
	if *mode != "" {
		cfg.OutputMode = *mode
	}
	if *model != "" {
		cfg.LLMModel = *model
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	set := DefaultCategories()
	if cfg.CategoriesPath != "" {
		var err error
		set, err = LoadCategories(cfg.CategoriesPath)
		if err != nil {
			log.Fatalf("Failed to load categories: %v", err)
		}
	}

	var db *sql.DB
	if cfg.DBPath != "" {
		var err error
		db, err = InitDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to init database: %v", err)
		}
		defer db.Close()
	}

	var api *slack.Client
	if cfg.SlackBotToken != "" {
		api = slack.New(cfg.SlackBotToken)
	}

	if cfg.RunSchedule != "" {
		if err := RunScheduled(cfg, set, db, api); err != nil {
			log.Fatalf("Scheduler error: %v", err)
		}
		return
	}

	if err := runOnce(context.Background(), cfg, set, db, api); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

func runOnce(ctx context.Context, cfg Config, set *CategorySet, db *sql.DB, api *slack.Client) error {
	pipeline := NewPipeline(cfg, set, NewClassifier(cfg))
	out, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if err := WriteOutput(cfg.OutputPath, cfg.OutputMode, out); err != nil {
		return err
	}
	log.Printf("wrote %s mode=%s records=%d", cfg.OutputPath, cfg.OutputMode, len(out.Results))

	if db != nil {
		runID, err := SaveRun(db, cfg.InputPath, out)
		if err != nil {
			log.Printf("save run error: %v", err)
		} else {
			log.Printf("saved run id=%d", runID)
		}
	}

	if api != nil && cfg.SlackChannelID != "" {
		if err := PostRunSummary(api, cfg.SlackChannelID, out); err != nil {
			log.Printf("slack post error: %v", err)
		}
	}
	return nil
}
