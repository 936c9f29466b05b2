package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"countdown-tracker/internal/bot"
	"countdown-tracker/internal/config"
	"countdown-tracker/internal/engine"
	"countdown-tracker/internal/repository"
	"countdown-tracker/internal/service"
)

func main() {
	configPath := flag.String("config", "countdown_tracker.yaml", "path to the YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	eventRepo := repository.NewEventRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	recurrenceRepo := repository.NewRecurrenceRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)

	recurrenceEngine := engine.RecurrenceEngine{
		Holidays: engine.FixedHolidays(cfg.HolidaySet()),
	}

	eventSvc := service.NewEventService(eventRepo, milestoneRepo, recurrenceRepo, recurrenceEngine)
	milestoneSvc := service.NewMilestoneService(eventRepo, milestoneRepo, engine.MilestoneEvaluator{})
	recurrenceSvc := service.NewRecurrenceService(eventRepo, recurrenceRepo, recurrenceEngine)

	var telegramBot *bot.Bot
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.New(cfg.TelegramToken, subscriberRepo, eventSvc, &cfg)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}
	} else {
		log.Println("[info] no telegram token, running headless")
	}

	scheduler := service.NewSchedulerService(cfg.Location())

	// One evaluation tick: capture the reference instant once, run both
	// passes against it, then push results out.
	tick := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ref := time.Now()

		achievements, err := milestoneSvc.EvaluatePass(jobCtx, ref)
		if err != nil {
			log.Printf("milestone pass: %v", err)
		}
		advances, err := recurrenceSvc.AdvancePass(jobCtx, ref)
		if err != nil {
			log.Printf("recurrence pass: %v", err)
		}

		if telegramBot != nil {
			if err := telegramBot.NotifyAchievements(jobCtx, achievements); err != nil {
				log.Printf("notify achievements: %v", err)
			}
			if err := telegramBot.NotifyAdvances(jobCtx, advances); err != nil {
				log.Printf("notify advances: %v", err)
			}
			return
		}
		for _, a := range achievements {
			log.Printf("[info] milestone achieved event=%d milestone=%s", a.Event.ID, a.Milestone.ID)
		}
		for _, adv := range advances {
			log.Printf("[info] occurrence advanced rule=%d ended=%t", adv.Rule.ID, adv.Ended)
		}
	}

	if _, err := scheduler.ScheduleInterval(cfg.EvalInterval(), tick); err != nil {
		log.Fatalf("schedule evaluation: %v", err)
	}

	if telegramBot != nil && cfg.SummaryTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.SummaryTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailySummaries(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("daily summary: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule summaries: %v", err)
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Countdown tracker started.")
	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("bot stopped with error: %v", err)
		}
	} else {
		<-ctx.Done()
	}
	log.Println("Shutdown complete.")
}
