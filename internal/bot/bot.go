package bot

import (
	"encoding/json"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/staff_bot/internal/charts"
	"github.com/ivanoskov/staff_bot/internal/model"
	"github.com/ivanoskov/staff_bot/internal/service"
	"github.com/ivanoskov/staff_bot/internal/state"
)

// Bot маршрутизирует входящие сообщения Telegram в оркестраторы
// сценариев. Собственного состояния диалога у бота нет: где находится
// пользователь, знает только хранилище состояний.
type Bot struct {
	api          *tgbotapi.BotAPI
	states       *state.Store
	registration *service.RegistrationFlow
	claim        *service.ClaimFlow
	dayoff       *service.DayOffFlow
	reporter     *service.ClaimReporter
	charts       *charts.ChartGenerator
	adminChatID  int64
}

// Deps — зависимости бота, собираемые точкой входа.
type Deps struct {
	States       *state.Store
	Registration *service.RegistrationFlow
	Claim        *service.ClaimFlow
	DayOff       *service.DayOffFlow
	Reporter     *service.ClaimReporter
	AdminChatID  int64
}

// NewBot создает бота поверх Telegram Bot API.
func NewBot(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:          api,
		states:       deps.States,
		registration: deps.Registration,
		claim:        deps.Claim,
		dayoff:       deps.DayOff,
		reporter:     deps.Reporter,
		charts:       charts.NewChartGenerator(),
		adminChatID:  deps.AdminChatID,
	}, nil
}

// Start запускает бота в режиме long polling
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if err := b.handleUpdate(update); err != nil {
			// Логируем ошибку, но продолжаем работу
			log.Printf("bot: error handling update: %v", err)
		}
	}

	return nil
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	return b.handleUpdate(update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	if update.Message != nil && update.Message.IsCommand() {
		return b.handleCommand(update.Message)
	}

	if update.CallbackQuery != nil {
		return b.handleCallback(update.CallbackQuery)
	}

	return b.handleMessage(update.Message)
}

// reply отправляет результат шага, подбирая клавиатуру под
// следующий шаг сценария.
func (b *Bot) reply(chatID int64, res service.StepResult) {
	msg := tgbotapi.NewMessage(chatID, res.Message)
	switch res.NextStep {
	case model.StepRegisterRole:
		msg.ReplyMarkup = rolesKeyboard()
	case model.StepClaimCategory:
		msg.ReplyMarkup = categoriesKeyboard()
	case model.StepClaimConfirm, model.StepDayOffConfirm:
		msg.ReplyMarkup = confirmKeyboard()
	case model.StepIdle:
		msg.ReplyMarkup = mainKeyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("bot: failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("bot: failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendText(chatID, fmt.Sprintf("⚠️ %s", text))
}
