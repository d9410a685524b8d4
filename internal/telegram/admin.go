package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (r *Router) handleAdminPanel(ctx context.Context, chatID, userID int64) {
	if !r.isAdmin(userID) {
		r.sendText(chatID, "❌ Доступ запрещён.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "⚙️ Панель администратора")
	msg.ReplyMarkup = adminKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) handleGeneralStats(ctx context.Context, chatID int64) {
	gs, err := r.repo.GeneralStats(ctx)
	if err != nil {
		r.log.Error("general stats failed", zap.Error(err))
		r.sendText(chatID, "❌ Не удалось получить статистику.")
		return
	}
	r.sendText(chatID, fmt.Sprintf(
		"📊 Общая статистика:\n\n"+
			"👥 Пользователей: %d\n"+
			"📝 Записей: %d\n"+
			"🥚 Всего яиц: %d\n"+
			"🟢 Активны за 7 дней: %d",
		gs.TotalUsers, gs.TotalRecords, gs.TotalEggs, gs.ActiveUsers,
	))
}

func (r *Router) handleUserList(ctx context.Context, chatID int64) {
	users, err := r.repo.ListUserActivity(ctx)
	if err != nil {
		r.log.Error("user list failed", zap.Error(err))
		r.sendText(chatID, "❌ Не удалось получить список пользователей.")
		return
	}
	if len(users) == 0 {
		r.sendText(chatID, "Пока нет ни одного пользователя.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Пользователи (%d):\n\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&b, "▪ %d — записей: %d\n", u.UserID, u.Records)
	}
	r.sendText(chatID, b.String())
}

// handleBroadcast sends text to every known user and reports the tally.
// Per-user send failures are logged and counted, never abort the loop.
func (r *Router) handleBroadcast(ctx context.Context, chatID int64, text string) {
	ids, err := r.repo.ListKnownUserIDs(ctx)
	if err != nil {
		r.log.Error("broadcast recipients failed", zap.Error(err))
		r.sendText(chatID, "❌ Не удалось получить список получателей.")
		return
	}

	sent, failed := 0, 0
	for _, id := range ids {
		if err := r.SendMessage(id, text); err != nil {
			r.log.Warn("broadcast send failed", zap.Error(err), zap.Int64("userID", id))
			failed++
			continue
		}
		sent++
	}
	r.sendText(chatID, fmt.Sprintf("📢 Рассылка завершена.\nОтправлено: %d\nОшибок: %d", sent, failed))
}
