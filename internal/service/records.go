// Package service holds the application operations shared by the telegram
// bot and the web dashboard: record CRUD with ownership checks, period
// statistics and analytics over stored records.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/cirodil/tenhens/internal/analytics"
	"github.com/cirodil/tenhens/internal/domain"
	"github.com/cirodil/tenhens/internal/store"
)

var (
	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotOwner: the record belongs to another user. Rejections are
	// idempotent and never mutate state.
	ErrNotOwner = errors.New("record is owned by another user")
)

// DayStat is one row of the /stats report: a day's total plus the ids of
// the records contributing to it.
type DayStat struct {
	Date  string
	Total int
	IDs   []int64
}

// Service implements record operations on top of the store.
type Service struct {
	repo store.Repo
	now  func() time.Time
}

// New creates a Service. The clock is time.Now; tests may override it.
func New(repo store.Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// AddRecord validates and inserts a new record. An empty date means today
// (UTC). Returns the assigned record id.
func (s *Service) AddRecord(ctx context.Context, userID int64, date string, count int, notes string) (int64, error) {
	if count < 0 {
		return 0, domain.ErrInvalidCount
	}
	if date == "" {
		date = domain.Today(s.now())
	} else if !domain.ValidDate(date) {
		return 0, domain.ErrInvalidDate
	}
	return s.repo.AddRecord(ctx, userID, date, count, notes)
}

// EditRecord applies a partial update to a record owned by userID.
// Returns ErrNotFound for an absent id and ErrNotOwner when the record
// belongs to someone else; the record is never touched in either case.
func (s *Service) EditRecord(ctx context.Context, userID, id int64, upd domain.RecordUpdate) error {
	if upd.Count != nil && *upd.Count < 0 {
		return domain.ErrInvalidCount
	}
	if upd.Date != nil && !domain.ValidDate(*upd.Date) {
		return domain.ErrInvalidDate
	}
	if err := s.checkOwnership(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.UpdateRecord(ctx, id, upd)
}

// DeleteRecord removes a record owned by userID, with the same rejection
// semantics as EditRecord.
func (s *Service) DeleteRecord(ctx context.Context, userID, id int64) error {
	if err := s.checkOwnership(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteRecord(ctx, id)
}

func (s *Service) checkOwnership(ctx context.Context, userID, id int64) error {
	rec, err := s.repo.GetRecord(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// Stats returns per-day totals with contributing record ids for the last
// `days` days, chronological.
func (s *Service) Stats(ctx context.Context, userID int64, days int) ([]DayStat, error) {
	now := s.now().UTC()
	from := now.AddDate(0, 0, -days).Format(domain.DateLayout)
	return s.StatsRange(ctx, userID, from, domain.Today(now))
}

// StatsRange returns per-day totals with contributing record ids for an
// inclusive date range.
func (s *Service) StatsRange(ctx context.Context, userID int64, from, to string) ([]DayStat, error) {
	records, err := s.repo.ListRecords(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var res []DayStat
	for _, rec := range records {
		if n := len(res); n > 0 && res[n-1].Date == rec.Date {
			res[n-1].Total += rec.Count
			res[n-1].IDs = append(res[n-1].IDs, rec.ID)
			continue
		}
		res = append(res, DayStat{Date: rec.Date, Total: rec.Count, IDs: []int64{rec.ID}})
	}
	return res, nil
}

// History returns every record of a user, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]domain.EggRecord, error) {
	return s.repo.ListAllRecords(ctx, userID)
}

// Analytics computes the trend report for the requested window. A nil
// report (with nil error) means fewer than two aggregated days exist.
func (s *Service) Analytics(ctx context.Context, userID int64, windowDays int) (*analytics.Report, error) {
	totals, err := s.repo.DailyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := analytics.Compute(totals, windowDays)
	if report == nil {
		return nil, nil
	}

	// Note mining covers only the current period's date range.
	notes, err := s.repo.ListNotes(ctx, userID, report.FromDate, report.ToDate)
	if err != nil {
		return nil, err
	}
	report.TopWords = analytics.TopWords(notes, 3)
	return report, nil
}

// DailyTotalsWindow returns the last `days` aggregated days, for charts.
func (s *Service) DailyTotalsWindow(ctx context.Context, userID int64, days int) ([]domain.DayTotal, error) {
	totals, err := s.repo.DailyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if days > 0 && len(totals) > days {
		totals = totals[len(totals)-days:]
	}
	return totals, nil
}
