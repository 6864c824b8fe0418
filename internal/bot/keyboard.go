package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/staff_bot/internal/model"
)

const (
	buttonRegister = "📝 Регистрация"
	buttonClaim    = "🧾 Новая заявка"
	buttonDayOff   = "🏖 Отгул"
	buttonReport   = "📊 Отчёт"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonRegister),
			tgbotapi.NewKeyboardButton(buttonClaim),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonDayOff),
			tgbotapi.NewKeyboardButton(buttonReport),
		),
	)
}

func rolesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, role := range model.Roles {
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(role.Title, "role_"+role.ID),
		})
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func categoriesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, category := range model.ClaimCategories {
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(category.Title, "category_"+category.ID),
		})
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да", "confirm_yes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет", "confirm_no"),
		),
	)
}
