package main

import (
	"context"

	"github.com/ivanoskov/staff_bot/internal/bot"
	"github.com/ivanoskov/staff_bot/internal/config"
	"github.com/ivanoskov/staff_bot/internal/repository"
	"github.com/ivanoskov/staff_bot/internal/service"
	"github.com/ivanoskov/staff_bot/internal/sheets"
	"github.com/ivanoskov/staff_bot/internal/state"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}

	// Инициализация клиентов внешних сервисов
	tables := sheets.NewClient(cfg.SheetsBaseURL, cfg.SpreadsheetID, cfg.SheetsToken)
	blobs, err := repository.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		return errorResponse(err)
	}

	// Хранилище состояний: в serverless-режиме каждый вызов
	// поднимает состояния из зеркала заново
	states := state.New(tables, state.Config{
		SyncEnabled:     cfg.StateSync,
		SyncInterval:    cfg.SyncInterval,
		ExpiryThreshold: cfg.StateExpiry,
		FreshnessWindow: cfg.StateFresh,
	})

	// Инициализация сценариев
	registration := service.NewRegistrationFlow(states, tables)
	claim := service.NewClaimFlow(states, tables, blobs)
	dayoff := service.NewDayOffFlow(states, tables)
	reporter := service.NewClaimReporter(tables)

	// Инициализация бота
	telegramBot, err := bot.NewBot(cfg.TelegramToken, bot.Deps{
		States:       states,
		Registration: registration,
		Claim:        claim,
		DayOff:       dayoff,
		Reporter:     reporter,
		AdminChatID:  cfg.AdminChatID,
	})
	if err != nil {
		return errorResponse(err)
	}

	// Обработка webhook-обновления
	if err := telegramBot.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
