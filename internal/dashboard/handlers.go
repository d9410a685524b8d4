package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/chart"
	"github.com/cirodil/tenhens/internal/domain"
	"github.com/cirodil/tenhens/internal/export"
	"github.com/cirodil/tenhens/internal/service"
)

// --- Auth pages ---

func (s *Server) loginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]any{
		"Error": c.QueryParam("error"),
	})
}

func (s *Server) login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	u, err := s.auth.Login(c.Request().Context(), username, password)
	if errors.Is(err, ErrBadCredentials) {
		return c.Render(http.StatusUnauthorized, "login.html", map[string]any{
			"Error": "Неверное имя пользователя или пароль.",
		})
	}
	if err != nil {
		s.log.Error("login failed", zap.Error(err))
		return c.Render(http.StatusInternalServerError, "login.html", map[string]any{
			"Error": "Внутренняя ошибка. Попробуйте позже.",
		})
	}

	sess := s.sessions.Create(u.Username, u.TelegramID)
	s.setSessionCookie(c, sess)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) registerPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", map[string]any{})
}

func (s *Server) register(c echo.Context) error {
	telegramID, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("telegram_id")), 10, 64)
	if err != nil {
		return c.Render(http.StatusBadRequest, "register.html", map[string]any{
			"Error": "Telegram ID должен быть числом (узнать его можно командой /myid в боте).",
		})
	}

	err = s.auth.Register(c.Request().Context(),
		c.FormValue("username"), c.FormValue("password"),
		telegramID,
		c.FormValue("question"), c.FormValue("answer"))
	switch {
	case errors.Is(err, ErrUserExists):
		return c.Render(http.StatusConflict, "register.html", map[string]any{
			"Error": "Такое имя пользователя или Telegram ID уже зарегистрированы.",
		})
	case errors.Is(err, ErrBadCredentials):
		return c.Render(http.StatusBadRequest, "register.html", map[string]any{
			"Error": "Заполните все поля.",
		})
	case err != nil:
		s.log.Error("register failed", zap.Error(err))
		return c.Render(http.StatusInternalServerError, "register.html", map[string]any{
			"Error": "Внутренняя ошибка. Попробуйте позже.",
		})
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) resetPage(c echo.Context) error {
	data := map[string]any{}
	if username := c.QueryParam("username"); username != "" {
		question, err := s.auth.SecurityQuestion(c.Request().Context(), username)
		if err == nil {
			data["Username"] = username
			data["Question"] = question
		} else {
			data["Error"] = "Пользователь не найден."
		}
	}
	return c.Render(http.StatusOK, "reset.html", data)
}

func (s *Server) reset(c echo.Context) error {
	username := c.FormValue("username")

	// First step: look up the security question for the entered username.
	if c.FormValue("answer") == "" && c.FormValue("new_password") == "" {
		return c.Redirect(http.StatusSeeOther, "/reset?username="+username)
	}

	err := s.auth.ResetPassword(c.Request().Context(), username,
		c.FormValue("answer"), c.FormValue("new_password"))
	if errors.Is(err, ErrBadAnswer) || errors.Is(err, ErrBadCredentials) {
		question, _ := s.auth.SecurityQuestion(c.Request().Context(), username)
		return c.Render(http.StatusUnauthorized, "reset.html", map[string]any{
			"Username": username,
			"Question": question,
			"Error":    "Неверный ответ на контрольный вопрос.",
		})
	}
	if err != nil {
		s.log.Error("password reset failed", zap.Error(err))
		return c.Render(http.StatusInternalServerError, "reset.html", map[string]any{
			"Error": "Внутренняя ошибка. Попробуйте позже.",
		})
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.Redirect(http.StatusSeeOther, "/login")
}

// --- Records and analytics ---

func (s *Server) overview(c echo.Context) error {
	sess := s.session(c)
	ctx := c.Request().Context()
	days := queryDays(c, 7)

	stats, err := s.svc.Stats(ctx, sess.TelegramID, days)
	if err != nil {
		s.log.Error("dashboard stats failed", zap.Error(err), zap.Int64("userID", sess.TelegramID))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	records, err := s.svc.History(ctx, sess.TelegramID)
	if err != nil {
		s.log.Error("dashboard history failed", zap.Error(err), zap.Int64("userID", sess.TelegramID))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	total := 0
	for _, d := range stats {
		total += d.Total
	}
	return c.Render(http.StatusOK, "index.html", map[string]any{
		"Session": sess,
		"Days":    days,
		"Stats":   stats,
		"Records": records,
		"Total":   total,
		"Error":   c.QueryParam("error"),
	})
}

func (s *Server) addRecord(c echo.Context) error {
	sess := s.session(c)
	count, err := strconv.Atoi(c.FormValue("count"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/?error=Количество должно быть числом")
	}

	_, err = s.svc.AddRecord(c.Request().Context(), sess.TelegramID,
		c.FormValue("date"), count, c.FormValue("notes"))
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		return c.Redirect(http.StatusSeeOther, "/?error=Неверный формат даты")
	case errors.Is(err, domain.ErrInvalidCount):
		return c.Redirect(http.StatusSeeOther, "/?error=Количество должно быть неотрицательным")
	case err != nil:
		s.log.Error("dashboard add failed", zap.Error(err), zap.Int64("userID", sess.TelegramID))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) updateRecord(c echo.Context) error {
	sess := s.session(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	var upd domain.RecordUpdate
	if v := c.FormValue("count"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			return c.Redirect(http.StatusSeeOther, "/?error=Количество должно быть числом")
		}
		upd.Count = &count
	}
	if v := c.FormValue("date"); v != "" {
		upd.Date = &v
	}
	if v := c.FormValue("notes"); v != "" {
		upd.Notes = &v
	}

	err = s.svc.EditRecord(c.Request().Context(), sess.TelegramID, id, upd)
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotOwner):
		return c.Redirect(http.StatusSeeOther, "/?error=Запись не найдена")
	case errors.Is(err, domain.ErrInvalidDate):
		return c.Redirect(http.StatusSeeOther, "/?error=Неверный формат даты")
	case err != nil:
		s.log.Error("dashboard edit failed", zap.Error(err), zap.Int64("recordID", id))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) deleteRecord(c echo.Context) error {
	sess := s.session(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	if err := s.svc.DeleteRecord(c.Request().Context(), sess.TelegramID, id); err != nil &&
		!errors.Is(err, service.ErrNotFound) && !errors.Is(err, service.ErrNotOwner) {
		s.log.Error("dashboard delete failed", zap.Error(err), zap.Int64("recordID", id))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) analyticsPage(c echo.Context) error {
	sess := s.session(c)
	days := queryDays(c, 7)

	report, err := s.svc.Analytics(c.Request().Context(), sess.TelegramID, days)
	if err != nil {
		s.log.Error("dashboard analytics failed", zap.Error(err), zap.Int64("userID", sess.TelegramID))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.Render(http.StatusOK, "analytics.html", map[string]any{
		"Session": sess,
		"Days":    days,
		"Report":  report,
	})
}

// --- Downloads ---

func (s *Server) chartPNG(c echo.Context) error {
	sess := s.session(c)
	days := queryDays(c, 7)

	totals, err := s.svc.DailyTotalsWindow(c.Request().Context(), sess.TelegramID, days)
	if err != nil {
		s.log.Error("dashboard chart data failed", zap.Error(err), zap.Int64("userID", sess.TelegramID))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	png, err := chart.LinePNG(totals, days)
	if err != nil {
		s.log.Error("dashboard chart render failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	if png == nil {
		return echo.NewHTTPError(http.StatusNotFound, "недостаточно данных для графика")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) exportXLSX(c echo.Context) error {
	sess := s.session(c)
	ctx := c.Request().Context()

	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from == "" || to == "" {
		now := time.Now().UTC()
		from = now.AddDate(0, 0, -queryDays(c, 7)).Format(domain.DateLayout)
		to = domain.Today(now)
	}
	if !domain.ValidDate(from) || !domain.ValidDate(to) {
		return echo.NewHTTPError(http.StatusBadRequest, "неверный формат даты")
	}

	stats, err := s.svc.StatsRange(ctx, sess.TelegramID, from, to)
	if err != nil {
		s.log.Error("dashboard export failed", zap.Error(err), zap.Int64("userID", sess.TelegramID))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	data, err := export.Excel(stats)
	if err != nil {
		s.log.Error("dashboard export build failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	if data == nil {
		return echo.NewHTTPError(http.StatusNotFound, "нет данных для выгрузки")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, export.Filename(sess.TelegramID, from, to)))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func queryDays(c echo.Context, def int) int {
	if n, err := strconv.Atoi(c.QueryParam("days")); err == nil && n > 0 {
		return n
	}
	return def
}
