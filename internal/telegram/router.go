package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/service"
	"github.com/cirodil/tenhens/internal/store"
)

// Pending state keys used in conversational flows.
const pendingBroadcast = "await_broadcast_text"

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	svc       *service.Service
	repo      store.Repo
	admins    map[int64]bool
	donateURL string

	state map[int64]string // chatID -> pending state
	mu    sync.RWMutex
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, svc *service.Service, repo store.Repo, adminIDs []int64, donateURL string) *Router {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Router{
		bot:       bot,
		log:       log,
		svc:       svc,
		repo:      repo,
		admins:    admins,
		donateURL: donateURL,
		state:     make(map[int64]string),
	}
}

func (r *Router) isAdmin(userID int64) bool { return r.admins[userID] }

// setPending sets a pending state for a chat (non-persistent, in-memory).
func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// getPending returns current pending state for a chat.
func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

// clearPending clears a pending state for a chat.
func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		args := strings.TrimSpace(msg.CommandArguments())
		switch msg.Command() {
		case "start":
			r.handleStart(ctx, chatID)
		case "help":
			r.handleHelp(ctx, chatID, args)
		case "add":
			r.sendText(chatID, addPromptText)
		case "edit":
			r.handleEdit(ctx, chatID, userID, args)
		case "delete":
			r.handleDelete(ctx, chatID, userID, args)
		case "stats":
			r.handleStats(ctx, chatID, userID, args)
		case "graph":
			r.handleGraph(ctx, chatID, userID, args)
		case "analytics":
			r.handleAnalytics(ctx, chatID, userID, args)
		case "export":
			r.handleExport(ctx, chatID, userID, args)
		case "reminders":
			r.handleReminders(ctx, chatID, userID, args)
		case "myid":
			r.handleMyID(ctx, chatID, userID)
		case "donate":
			r.handleDonate(ctx, chatID)
		case "cancel":
			r.clearPending(chatID)
			r.sendText(chatID, "❌ Действие отменено")
		case "admin":
			r.handleAdminPanel(ctx, chatID, userID)
		default:
			r.sendText(chatID, "❌ Неизвестная команда. Используйте /help.")
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	// Pending broadcast input takes priority over everything else.
	if r.getPending(chatID) == pendingBroadcast && r.isAdmin(userID) {
		r.clearPending(chatID)
		r.handleBroadcast(ctx, chatID, text)
		return
	}

	// Admin reply-keyboard buttons.
	if r.isAdmin(userID) {
		switch text {
		case btnGeneralStats:
			r.handleGeneralStats(ctx, chatID)
			return
		case btnUserList:
			r.handleUserList(ctx, chatID)
			return
		case btnBroadcast:
			r.setPending(chatID, pendingBroadcast)
			r.sendText(chatID, "Введите сообщение для рассылки (или /cancel):")
			return
		}
	}

	// Free-form text is an egg record entry: "<count> [date|сегодня] [notes]".
	r.handleEntry(ctx, chatID, userID, text)
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}
