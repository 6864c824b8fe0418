package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanoskov/staff_bot/internal/bot"
	"github.com/ivanoskov/staff_bot/internal/config"
	"github.com/ivanoskov/staff_bot/internal/repository"
	"github.com/ivanoskov/staff_bot/internal/service"
	"github.com/ivanoskov/staff_bot/internal/sheets"
	"github.com/ivanoskov/staff_bot/internal/state"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	tables := sheets.NewClient(cfg.SheetsBaseURL, cfg.SpreadsheetID, cfg.SheetsToken)

	blobs, err := repository.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		log.Fatal(err)
	}

	states := state.New(tables, state.Config{
		SyncEnabled:     cfg.StateSync,
		SyncInterval:    cfg.SyncInterval,
		ExpiryThreshold: cfg.StateExpiry,
		FreshnessWindow: cfg.StateFresh,
	})
	states.Start()

	registration := service.NewRegistrationFlow(states, tables)
	claim := service.NewClaimFlow(states, tables, blobs)
	dayoff := service.NewDayOffFlow(states, tables)
	reporter := service.NewClaimReporter(tables)

	telegramBot, err := bot.NewBot(cfg.TelegramToken, bot.Deps{
		States:       states,
		Registration: registration,
		Claim:        claim,
		DayOff:       dayoff,
		Reporter:     reporter,
		AdminChatID:  cfg.AdminChatID,
	})
	if err != nil {
		log.Fatal(err)
	}

	// периодическая проверка памяти: при превышении лимита
	// хранилище вытесняет старые состояния
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if state.MemoryPressure(cfg.MemoryLimitMB) {
				states.ReclaimMemory()
			}
		}
	}()

	go func() {
		if err := telegramBot.Start(); err != nil {
			log.Fatalf("failed to start bot: %v", err)
		}
	}()
	log.Println("bot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down...")
	states.Stop()
	log.Println("state sync stopped")
}
