package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	startText = "🐔 Бот для учета яйценоскости кур!\n\n" +
		"Основные команды:\n" +
		"▪ /add — добавить запись\n" +
		"▪ /stats [дни] — статистика\n" +
		"▪ /graph [дни] — график\n" +
		"▪ /analytics [дни] — расширенная аналитика\n\n" +
		"Управление записями:\n" +
		"▪ /edit <ID> <количество> [дата] [комментарий] — изменить запись\n" +
		"▪ /delete <ID> — удалить запись\n\n" +
		"Экспорт данных:\n" +
		"▪ /export [дни] — выгрузить данные в Excel\n\n" +
		"▪ /help — список всех команд с кратким описанием\n\n" +
		"Управление напоминаниями:\n" +
		"▪ /reminders — управлять напоминаниями 🔔\n\n" +
		"Используйте кнопки ниже или введите команду вручную."

	addPromptText = "Введите данные в формате:\n" +
		"<количество яиц> [дата] [комментарий]\n\n" +
		"Примеры:\n" +
		"12 — добавить 12 яиц на сегодня\n" +
		"12 2023-12-15 — добавить 12 яиц на 15 декабря 2023\n" +
		"12 сегодня Корм поменяли — добавить 12 яиц на сегодня с комментарием"

	entryFormatErrText = "❌ Ошибка формата! Примеры:\n" +
		"12 — добавить 12 яиц на сегодня\n" +
		"12 2023-12-15 — добавить 12 яиц на 15 декабря 2023\n" +
		"12 сегодня Корм поменяли — добавить 12 яиц на сегодня с комментарием"

	badDateText      = "❌ Неверный формат даты! Используйте ГГГГ-ММ-ДД."
	recordDeniedText = "❌ Запись не найдена или недоступна."

	remindersUsageText = "Доступные команды:\n" +
		"/reminders - статус напоминаний\n" +
		"/reminders on - включить\n" +
		"/reminders off - выключить\n" +
		"/reminders time ЧЧ:ММ - установить время\n" +
		"/reminders tz ±ЧЧ:ММ - установить часовой пояс\n\n" +
		"Примеры:\n" +
		"/reminders time 19:00 - напоминание в 19:00\n" +
		"/reminders tz +05:00 - часовой пояс UTC+5"

	helpText = "🐔 Бот для учёта яйценоскости кур!\n\n" +
		"Список команд:\n" +
		"▪ /add — добавить запись\n" +
		"▪ /stats — статистика\n" +
		"▪ /graph — график\n" +
		"▪ /analytics — аналитика\n" +
		"▪ /edit — изменить запись\n" +
		"▪ /delete — удалить запись\n" +
		"▪ /export — экспорт\n" +
		"▪ /help — справка\n" +
		"▪ /myid — показать ваш Telegram ID\n" +
		"▪ /reminders — управление напоминаниями\n" +
		"▪ /donate — поддержать проект\n\n" +
		"Подробности по каждой команде смотрите через '/help <название команды>'"
)

// helpTopics holds the detailed /help <команда> descriptions.
var helpTopics = map[string]string{
	"add": "📝 Добавление записи:\n" +
		"Используйте команду /add или введите данные в формате:\n" +
		"<количество яиц> [дата] [комментарий]",
	"stats": "📊 Статистика:\n" +
		"Используйте команду /stats [дни], чтобы увидеть статистику за указанное количество дней.\n\n" +
		"Примеры:\n/stats — статистика за 7 дней\n/stats 14 — статистика за 14 дней",
	"graph": "📈 График:\n" +
		"Используйте команду /graph [дни], чтобы построить график яйценоскости.\n\n" +
		"Примеры:\n/graph — график за 7 дней\n/graph 30 — график за 30 дней",
	"analytics": "📈 Аналитика:\n" +
		"Используйте команду /analytics [дни], чтобы получить аналитику за указанное количество дней.",
	"edit": "✏️ Редактирование записи:\n" +
		"Используйте команду /edit <ID> <количество> [дата] [комментарий], чтобы изменить запись.",
	"delete": "❌ Удаление записи:\n" +
		"Используйте команду /delete <ID>, чтобы удалить запись.",
	"export": "⬇️ Экспорт в Excel:\n" +
		"Используйте команду /export [дни], чтобы получить файл со статистикой.\n\n" +
		"Примеры:\n/export 5 — статистика за 5 дней\n" +
		"/export 2025-01-23 2025-02-06 — статистика за указанный период",
	"reminders": "🔔 Управление напоминаниями:\n" +
		"Используйте команду /reminders для настройки ежедневных напоминаний.\n\n" +
		"Примеры:\n/reminders on — включить\n/reminders off — отключить\n" +
		"/reminders time ЧЧ:ММ — задать время напоминания",
}

// Admin reply-keyboard button labels.
const (
	btnGeneralStats = "📊 Общая статистика"
	btnUserList     = "👥 Список пользователей"
	btnBroadcast    = "📢 Рассылка"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/add"),
			tgbotapi.NewKeyboardButton("/edit"),
			tgbotapi.NewKeyboardButton("/delete"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/stats"),
			tgbotapi.NewKeyboardButton("/graph"),
			tgbotapi.NewKeyboardButton("/analytics"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/export"),
			tgbotapi.NewKeyboardButton("/myid"),
			tgbotapi.NewKeyboardButton("/help"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/reminders"),
			tgbotapi.NewKeyboardButton("/donate ☕"),
		),
	)
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGeneralStats),
			tgbotapi.NewKeyboardButton(btnUserList),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBroadcast),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}
