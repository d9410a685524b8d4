package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/chart"
	"github.com/cirodil/tenhens/internal/domain"
	"github.com/cirodil/tenhens/internal/export"
	"github.com/cirodil/tenhens/internal/service"
)

const defaultWindowDays = 7

var (
	errBadEntryFormat = errors.New("bad entry format")
	errBadEntryDate   = errors.New("bad entry date")
)

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) handleHelp(ctx context.Context, chatID int64, args string) {
	if args == "" {
		r.sendText(chatID, helpText)
		return
	}
	topic := strings.ToLower(strings.Fields(args)[0])
	if text, ok := helpTopics[strings.TrimPrefix(topic, "/")]; ok {
		r.sendText(chatID, text)
		return
	}
	r.sendText(chatID, fmt.Sprintf("❌ Команда '%s' не найдена. Используйте /help для списка команд.", topic))
}

func (r *Router) handleMyID(ctx context.Context, chatID, userID int64) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🆔 Ваш Telegram ID: `%d`", userID))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) handleDonate(ctx context.Context, chatID int64) {
	if r.donateURL == "" {
		r.sendText(chatID, "☕ Спасибо, что пользуетесь ботом!")
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"☕ Если вам нравится этот бот, вы можете поддержать его разработку!\n\n"+
			"👉 [Оплатить чашку кофе](%s)", r.donateURL,
	))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// --- Record entry ---

// handleEntry parses free-form text as "<count> [date|сегодня] [notes]" and
// stores a new record.
func (r *Router) handleEntry(ctx context.Context, chatID, userID int64, text string) {
	count, date, notes, err := parseEntry(text)
	switch {
	case errors.Is(err, errBadEntryDate):
		r.sendText(chatID, badDateText)
		return
	case err != nil:
		r.sendText(chatID, entryFormatErrText)
		return
	}

	id, err := r.svc.AddRecord(ctx, userID, date, count, notes)
	if err != nil {
		r.log.Error("add record failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, entryFormatErrText)
		return
	}
	if date == "" {
		date = domain.Today(time.Now().UTC())
	}
	r.sendText(chatID, fmt.Sprintf(
		"✅ Добавлено: %d яиц\nДата: %s\nЗаметка: %s\nID записи: %d",
		count, date, notes, id,
	))
}

// parseEntry splits "<count> [date|сегодня] [notes]". Notes keep their
// internal spacing; "сегодня" (or no date) means today.
func parseEntry(text string) (count int, date, notes string, err error) {
	parts := splitMax(text, 3)
	if len(parts) == 0 {
		return 0, "", "", errBadEntryFormat
	}
	count, err = strconv.Atoi(parts[0])
	if err != nil || count < 0 {
		return 0, "", "", errBadEntryFormat
	}
	if len(parts) > 1 && strings.ToLower(parts[1]) != "сегодня" {
		if !domain.ValidDate(parts[1]) {
			return 0, "", "", errBadEntryDate
		}
		date = parts[1]
	}
	if len(parts) > 2 {
		notes = parts[2]
	}
	return count, date, notes, nil
}

// splitMax splits s on whitespace into at most n parts; the last part keeps
// the remaining text verbatim.
func splitMax(s string, n int) []string {
	var out []string
	s = strings.TrimSpace(s)
	for len(out) < n-1 {
		idx := strings.IndexAny(s, " \t")
		if idx < 0 {
			break
		}
		out = append(out, s[:idx])
		s = strings.TrimLeft(s[idx:], " \t")
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// --- Edit / delete ---

func (r *Router) handleEdit(ctx context.Context, chatID, userID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		r.sendText(chatID, "Используйте: /edit <ID записи> <новое количество> [дата] [комментарий]\n"+
			"Пример: /edit 1 15 2023-12-20 Новый корм")
		return
	}
	id, err1 := strconv.ParseInt(fields[0], 10, 64)
	count, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		r.sendText(chatID, "❌ ID и количество должны быть числами.")
		return
	}

	upd := domain.RecordUpdate{Count: &count}
	rest := fields[2:]
	if len(rest) > 0 && domain.ValidDate(rest[0]) {
		upd.Date = &rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		notes := strings.Join(rest, " ")
		upd.Notes = &notes
	}

	switch err := r.svc.EditRecord(ctx, userID, id, upd); {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotOwner):
		r.sendText(chatID, recordDeniedText)
	case errors.Is(err, domain.ErrInvalidCount):
		r.sendText(chatID, "❌ Количество должно быть неотрицательным.")
	case err != nil:
		r.log.Error("edit record failed", zap.Error(err), zap.Int64("recordID", id))
		r.sendText(chatID, "❌ Не удалось обновить запись. Попробуйте позже.")
	default:
		r.sendText(chatID, "✅ Запись успешно обновлена!")
	}
}

func (r *Router) handleDelete(ctx context.Context, chatID, userID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		r.sendText(chatID, "Используйте: /delete <ID записи>")
		return
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		r.sendText(chatID, "❌ ID должен быть числом.")
		return
	}

	switch err := r.svc.DeleteRecord(ctx, userID, id); {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotOwner):
		r.sendText(chatID, recordDeniedText)
	case err != nil:
		r.log.Error("delete record failed", zap.Error(err), zap.Int64("recordID", id))
		r.sendText(chatID, "❌ Не удалось удалить запись. Попробуйте позже.")
	default:
		r.sendText(chatID, "✅ Запись успешно удалена!")
	}
}

// --- Stats / analytics / graph / export ---

func (r *Router) handleStats(ctx context.Context, chatID, userID int64, args string) {
	days := parseDays(args, defaultWindowDays)
	stats, err := r.svc.Stats(ctx, userID, days)
	if err != nil {
		r.log.Error("stats failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, "❌ Не удалось получить статистику.")
		return
	}
	if len(stats) == 0 {
		r.sendText(chatID, "❌ Нет данных за указанный период.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Ваша статистика за %d дней:\n", days)
	total := 0
	for _, day := range stats {
		fmt.Fprintf(&b, "📅 %s: %d яиц\n", day.Date, day.Total)
		fmt.Fprintf(&b, "   ID записей: %s\n", joinIDs(day.IDs))
		total += day.Total
	}
	fmt.Fprintf(&b, "\nВсего: %d яиц\nСреднее: %.1f яиц/день", total, float64(total)/float64(len(stats)))
	r.sendText(chatID, b.String())
}

func (r *Router) handleAnalytics(ctx context.Context, chatID, userID int64, args string) {
	days := parseDays(args, defaultWindowDays)
	report, err := r.svc.Analytics(ctx, userID, days)
	if err != nil {
		r.log.Error("analytics failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, "❌ Не удалось получить аналитику.")
		return
	}
	if report == nil {
		r.sendText(chatID, "❌ Недостаточно данных для анализа")
		return
	}

	arrow := "↓"
	if report.Trend > 0 {
		arrow = "↑"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Ваша аналитика за %d дней:\n\n", days)
	fmt.Fprintf(&b, "▪ Среднее: %.1f яиц/день\n", report.CurrentAvg)
	fmt.Fprintf(&b, "▪ Тренд: %s %.1f яиц за период\n", arrow, abs(report.Trend))
	fmt.Fprintf(&b, "▪ Рекорд: %d яиц (%s)\n", report.MaxDay.Total, report.MaxDay.Date)
	fmt.Fprintf(&b, "▪ Минимум: %d яиц (%s)\n", report.MinDay.Total, report.MinDay.Date)
	if report.HasComparison() {
		fmt.Fprintf(&b, "\n🔄 Изменение к прошлому периоду: %+.1f%%\n", report.ChangePercent())
	}
	if len(report.TopWords) > 0 {
		b.WriteString("\n🔍 Частые упоминания:\n")
		for _, w := range report.TopWords {
			fmt.Fprintf(&b, "- %s (%d раз)\n", w.Word, w.Count)
		}
	}
	r.sendText(chatID, b.String())
}

func (r *Router) handleGraph(ctx context.Context, chatID, userID int64, args string) {
	days := parseDays(args, defaultWindowDays)
	totals, err := r.svc.DailyTotalsWindow(ctx, userID, days)
	if err != nil {
		r.log.Error("graph data failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, "❌ Не удалось построить график.")
		return
	}

	png, err := chart.LinePNG(totals, days)
	if err != nil {
		r.log.Error("render chart failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, "❌ Не удалось построить график.")
		return
	}
	if png == nil {
		r.sendText(chatID, "❌ Нет данных для построения графика")
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("egg_stats_%d_%ddays.png", userID, days),
		Bytes: png,
	})
	photo.Caption = fmt.Sprintf("📈 График яйценоскости за %d дней", days)
	if _, err := r.bot.Send(photo); err != nil {
		r.log.Error("send photo failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) handleExport(ctx context.Context, chatID, userID int64, args string) {
	from, to, err := exportRange(args, time.Now().UTC())
	if err != nil {
		r.sendText(chatID, badDateText)
		return
	}

	stats, err := r.svc.StatsRange(ctx, userID, from, to)
	if err != nil {
		r.log.Error("export query failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, "❌ Не удалось выгрузить данные.")
		return
	}

	data, err := export.Excel(stats)
	if err != nil {
		r.log.Error("export build failed", zap.Error(err), zap.Int64("userID", userID))
		r.sendText(chatID, "❌ Не удалось выгрузить данные.")
		return
	}
	if data == nil {
		r.sendText(chatID, "❌ Нет данных для выгрузки.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.Filename(userID, from, to),
		Bytes: data,
	})
	doc.Caption = "Можете скачать файл с таблицей"
	if _, err := r.bot.Send(doc); err != nil {
		r.log.Error("send document failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// --- Reminders ---

func (r *Router) handleReminders(ctx context.Context, chatID, userID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		s, err := r.svc.Settings(ctx, userID)
		if err != nil {
			r.log.Error("settings failed", zap.Error(err), zap.Int64("userID", userID))
			r.sendText(chatID, "❌ Не удалось получить настройки.")
			return
		}
		status := "выключены"
		if s.Enabled {
			status = "включены"
		}
		r.sendText(chatID, fmt.Sprintf(
			"🔔 Текущие настройки напоминаний:\nСтатус: %s\nВремя: %s (по вашему времени UTC%s)\n\n%s",
			status, s.ReminderTime, domain.FormatOffset(s.OffsetMin), remindersUsageText,
		))
		return
	}

	switch strings.ToLower(fields[0]) {
	case "on":
		if err := r.svc.SetRemindersEnabled(ctx, userID, true); err != nil {
			r.reportSettingsError(chatID, userID, err)
			return
		}
		r.sendText(chatID, "🔔 Напоминания включены!")
	case "off":
		if err := r.svc.SetRemindersEnabled(ctx, userID, false); err != nil {
			r.reportSettingsError(chatID, userID, err)
			return
		}
		r.sendText(chatID, "🔕 Напоминания выключены!")
	case "time":
		if len(fields) < 2 {
			r.sendText(chatID, "❌ Укажите время: /reminders time ЧЧ:ММ")
			return
		}
		if err := r.svc.SetReminderTime(ctx, userID, fields[1]); err != nil {
			if errors.Is(err, domain.ErrInvalidClock) {
				r.sendText(chatID, "❌ Неверный формат времени! Используйте ЧЧ:ММ")
				return
			}
			r.reportSettingsError(chatID, userID, err)
			return
		}
		r.sendText(chatID, fmt.Sprintf("⏰ Время напоминания установлено на %s", fields[1]))
	case "tz":
		if len(fields) < 2 {
			r.sendText(chatID, "❌ Укажите часовой пояс: /reminders tz ±ЧЧ:ММ")
			return
		}
		if err := r.svc.SetTimezone(ctx, userID, fields[1]); err != nil {
			if errors.Is(err, domain.ErrInvalidOffset) {
				r.sendText(chatID, "❌ Неверный формат часового пояса! Используйте ±ЧЧ:ММ (например +03:00 или -05:00)")
				return
			}
			r.reportSettingsError(chatID, userID, err)
			return
		}
		r.sendText(chatID, fmt.Sprintf("🌍 Часовой пояс установлен на UTC%s", fields[1]))
	default:
		r.sendText(chatID, "❌ Неверная команда!")
	}
}

func (r *Router) reportSettingsError(chatID, userID int64, err error) {
	r.log.Error("update settings failed", zap.Error(err), zap.Int64("userID", userID))
	r.sendText(chatID, "❌ Не удалось сохранить настройки. Попробуйте позже.")
}

// --- Helpers ---

func parseDays(args string, def int) int {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return def
	}
	if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
		return n
	}
	return def
}

// exportRange resolves /export arguments into an inclusive date range:
// no args → last 7 days, one numeric arg → last N days, two args → explicit dates.
func exportRange(args string, now time.Time) (from, to string, err error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 2:
		if !domain.ValidDate(fields[0]) || !domain.ValidDate(fields[1]) {
			return "", "", domain.ErrInvalidDate
		}
		return fields[0], fields[1], nil
	case 1:
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			return now.AddDate(0, 0, -n).Format(domain.DateLayout), domain.Today(now), nil
		}
		return "", "", domain.ErrInvalidDate
	default:
		return now.AddDate(0, 0, -defaultWindowDays).Format(domain.DateLayout), domain.Today(now), nil
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
