package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/staff_bot/internal/model"
	"github.com/ivanoskov/staff_bot/internal/service"
)

func (b *Bot) handleCommand(message *tgbotapi.Message) error {
	ctx := context.Background()

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "register":
		b.reply(message.Chat.ID, b.registration.Start(ctx, message.From.ID))
	case "claim":
		b.reply(message.Chat.ID, b.claim.Start(ctx, message.From.ID))
	case "dayoff":
		b.reply(message.Chat.ID, b.dayoff.Start(ctx, message.From.ID))
	case "report":
		b.handleReport(message)
	case "cancel":
		b.handleCancel(message)
	case "status":
		b.handleStatus(message)
	}

	return nil
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Привет! Я бот для сотрудников. 👋\n\n"+
			"Вот что я умею:\n"+
			"• Регистрировать новых сотрудников\n"+
			"• Принимать заявки на возмещение расходов\n"+
			"• Оформлять запросы отгулов\n"+
			"• Показывать отчёт по заявкам\n\n"+
			"Выберите действие:")
	msg.ReplyMarkup = mainKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		return
	}
}

// handleMessage маршрутизирует свободный ввод по текущей фазе
// пользователя. Фазу определяет хранилище состояний — в том числе
// после рестарта процесса, когда состояние поднимается из зеркала.
func (b *Bot) handleMessage(message *tgbotapi.Message) error {
	ctx := context.Background()
	userID := message.From.ID

	if len(message.Photo) > 0 {
		return b.handlePhoto(message)
	}

	// кнопки главного меню
	switch message.Text {
	case buttonRegister:
		b.reply(message.Chat.ID, b.registration.Start(ctx, userID))
		return nil
	case buttonClaim:
		b.reply(message.Chat.ID, b.claim.Start(ctx, userID))
		return nil
	case buttonDayOff:
		b.reply(message.Chat.ID, b.dayoff.Start(ctx, userID))
		return nil
	case buttonReport:
		b.handleReport(message)
		return nil
	}

	step, _ := b.states.GetState(ctx, userID)
	switch model.StepPhase(step) {
	case model.PhaseRegistering:
		b.reply(message.Chat.ID, b.registration.ProcessStep(ctx, userID, step, message.Text))
	case model.PhaseClaiming:
		b.reply(message.Chat.ID, b.claim.ProcessStep(ctx, userID, step, message.Text))
	case model.PhaseDayOff:
		b.reply(message.Chat.ID, b.dayoff.ProcessStep(ctx, userID, step, message.Text))
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Выберите действие:")
		msg.ReplyMarkup = mainKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// handlePhoto скачивает фото чека и передает его сценарию заявки.
func (b *Bot) handlePhoto(message *tgbotapi.Message) error {
	ctx := context.Background()
	userID := message.From.ID

	if !b.states.IsClaiming(ctx, userID) {
		b.sendText(message.Chat.ID, "Фото сейчас не ожидается.")
		return nil
	}

	// берем самый крупный вариант фото
	photo := message.Photo[len(message.Photo)-1]
	data, err := b.downloadFile(photo.FileID)
	if err != nil {
		b.sendErrorMessage(message.Chat.ID, "Не удалось скачать фото, попробуйте еще раз.")
		return fmt.Errorf("failed to download photo: %w", err)
	}

	b.reply(message.Chat.ID, b.claim.ProcessPhoto(ctx, userID, data))
	return nil
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) error {
	ctx := context.Background()
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	// убираем "часики" на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(callback.Data, "role_"):
		role := strings.TrimPrefix(callback.Data, "role_")
		b.reply(chatID, b.registration.ProcessStep(ctx, userID, model.StepRegisterRole, role))
	case strings.HasPrefix(callback.Data, "category_"):
		category := strings.TrimPrefix(callback.Data, "category_")
		b.reply(chatID, b.claim.ProcessStep(ctx, userID, model.StepClaimCategory, category))
	case strings.HasPrefix(callback.Data, "confirm_"):
		answer := "нет"
		if callback.Data == "confirm_yes" {
			answer = "да"
		}
		b.handleConfirm(ctx, chatID, userID, answer)
	}
	return nil
}

// handleConfirm доставляет ответ подтверждения тому сценарию,
// в котором пользователь находится.
func (b *Bot) handleConfirm(ctx context.Context, chatID, userID int64, answer string) {
	step, _ := b.states.GetState(ctx, userID)
	switch step {
	case model.StepClaimConfirm:
		b.reply(chatID, b.claim.ProcessStep(ctx, userID, step, answer))
	case model.StepDayOffConfirm:
		b.reply(chatID, b.dayoff.ProcessStep(ctx, userID, step, answer))
	default:
		b.sendText(chatID, "Подтверждать сейчас нечего.")
	}
}

func (b *Bot) handleCancel(message *tgbotapi.Message) {
	ctx := context.Background()
	userID := message.From.ID

	var res service.StepResult
	switch {
	case b.states.IsRegistering(ctx, userID):
		res = b.registration.Cancel(ctx, userID)
	case b.states.IsClaiming(ctx, userID):
		res = b.claim.Cancel(ctx, userID)
	case b.states.IsRequestingDayOff(ctx, userID):
		res = b.dayoff.Cancel(ctx, userID)
	default:
		b.sendText(message.Chat.ID, "Сейчас нечего отменять.")
		return
	}
	b.reply(message.Chat.ID, res)
}

func (b *Bot) handleReport(message *tgbotapi.Message) {
	ctx := context.Background()

	// администратор видит заявки всех пользователей
	userID := message.From.ID
	if b.adminChatID != 0 && message.From.ID == b.adminChatID {
		userID = 0
	}

	report, err := b.reporter.MonthlyReport(ctx, userID)
	if err != nil {
		b.sendErrorMessage(message.Chat.ID, "Не удалось построить отчет.")
		return
	}
	b.sendText(message.Chat.ID, report.Text)

	b.sendChart(message.Chat.ID, "claims.png", report, b.charts.GenerateCategoryChart)
	b.sendChart(message.Chat.ID, "trend.png", report, b.charts.GenerateTrendChart)
}

// sendChart отправляет график отчета; при нехватке данных генератор
// возвращает nil, и отправлять нечего.
func (b *Bot) sendChart(chatID int64, name string, report *service.ClaimsReport, render func(*service.ClaimsReport) ([]byte, error)) {
	png, err := render(report)
	if err != nil {
		log.Printf("bot: failed to render %s: %v", name, err)
		return
	}
	if png == nil {
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: png,
	})
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("bot: failed to send %s to %d: %v", name, chatID, err)
	}
}

// handleStatus показывает администратору состояние синхронизации.
func (b *Bot) handleStatus(message *tgbotapi.Message) {
	if b.adminChatID == 0 || message.From.ID != b.adminChatID {
		b.sendText(message.Chat.ID, "Команда доступна только администратору.")
		return
	}

	status := b.states.SyncStatus()
	lastSync := "еще не было"
	if !status.LastSyncTime.IsZero() {
		lastSync = status.LastSyncTime.Format("02.01.2006 15:04:05")
	}
	b.sendText(message.Chat.ID, fmt.Sprintf(
		"Синхронизация: %v\nСостояний в памяти: %d\nАктивных пользователей: %d\nПоследняя синхронизация: %s\nИнтервал: %s",
		status.Enabled, b.states.TotalUserCount(), b.states.ActiveUserCount(), lastSync, status.Interval))
}
