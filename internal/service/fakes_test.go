package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"meterhub/internal/models"
	"meterhub/internal/repository"
)

// Shared in-memory fakes for the pipeline stores.

type fakeReadingStore struct {
	sessions []*models.ReadingSession
	nextID   int64

	createErr error
}

func (f *fakeReadingStore) add(session *models.ReadingSession) {
	f.sessions = append(f.sessions, session)
}

func (f *fakeReadingStore) HasSessionAfter(_ context.Context, meterID int64, at time.Time) (bool, error) {
	for _, s := range f.sessions {
		if s.MeterID == meterID && s.TakenAt.After(at) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReadingStore) LatestSessionBefore(_ context.Context, meterID int64, at time.Time) (*models.ReadingSession, error) {
	var best *models.ReadingSession
	for _, s := range f.sessions {
		if s.MeterID != meterID || s.TakenAt.After(at) {
			continue
		}
		if best == nil || s.TakenAt.After(best.TakenAt) {
			best = s
		}
	}
	return best, nil
}

func (f *fakeReadingStore) LatestSession(_ context.Context, meterID int64) (*models.ReadingSession, error) {
	var best *models.ReadingSession
	for _, s := range f.sessions {
		if s.MeterID != meterID {
			continue
		}
		if best == nil || s.TakenAt.After(best.TakenAt) {
			best = s
		}
	}
	return best, nil
}

func (f *fakeReadingStore) CreateSession(_ context.Context, session *models.ReadingSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	session.ID = f.nextID
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeReadingStore) ReadingValue(_ context.Context, meterID int64, day time.Time, readingTypeID int64) (decimal.Decimal, bool, error) {
	var best *models.ReadingSession
	for _, s := range f.sessions {
		if s.MeterID != meterID || !s.SessionDate.Equal(day) {
			continue
		}
		if best == nil || s.TakenAt.After(best.TakenAt) {
			best = s
		}
	}
	if best == nil {
		return decimal.Decimal{}, false, nil
	}
	if d := best.DetailFor(readingTypeID); d != nil {
		return d.Value, true, nil
	}
	return decimal.Decimal{}, false, nil
}

type fakeSummaryStore struct {
	nextID    int64
	summaries map[string]*models.DailySummary
	details   map[string]decimal.Decimal
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{
		summaries: make(map[string]*models.DailySummary),
		details:   make(map[string]decimal.Decimal),
	}
}

func summaryKey(meterID int64, day time.Time) string {
	return fmt.Sprintf("%d|%s", meterID, day.Format("2006-01-02"))
}

func (f *fakeSummaryStore) UpsertSummary(_ context.Context, summary *models.DailySummary) error {
	key := summaryKey(summary.MeterID, summary.Date)
	if existing, ok := f.summaries[key]; ok {
		summary.ID = existing.ID
	} else {
		f.nextID++
		summary.ID = f.nextID
	}
	copied := *summary
	f.summaries[key] = &copied
	return nil
}

func (f *fakeSummaryStore) UpsertSummaryDetail(_ context.Context, summaryID int64, metricName string, value decimal.Decimal) error {
	f.details[fmt.Sprintf("%d|%s", summaryID, metricName)] = value
	return nil
}

func (f *fakeSummaryStore) PruneSummaryDetails(_ context.Context, summaryID int64, keep []string) error {
	keepSet := make(map[string]bool, len(keep))
	for _, name := range keep {
		keepSet[name] = true
	}
	prefix := fmt.Sprintf("%d|", summaryID)
	for key := range f.details {
		if strings.HasPrefix(key, prefix) && !keepSet[strings.TrimPrefix(key, prefix)] {
			delete(f.details, key)
		}
	}
	return nil
}

func (f *fakeSummaryStore) SummaryFor(_ context.Context, meterID int64, day time.Time) (*models.DailySummary, error) {
	s, ok := f.summaries[summaryKey(meterID, day)]
	if !ok {
		return nil, nil
	}
	return s, nil
}

type fakeTargetStore struct {
	target *models.EfficiencyTarget
}

func (f *fakeTargetStore) ActiveTarget(_ context.Context, meterID int64, day time.Time) (*models.EfficiencyTarget, error) {
	t := f.target
	if t == nil || t.MeterID != meterID {
		return nil, nil
	}
	if day.Before(t.StartDate) || day.After(t.EndDate) {
		return nil, nil
	}
	return t, nil
}

type fakeNotificationStore struct {
	created []*models.Notification
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	n.ID = int64(len(f.created) + 1)
	f.created = append(f.created, n)
	return nil
}

type fakeMeterStore struct {
	contexts map[string]*models.MeterContext
}

func (f *fakeMeterStore) ContextByCode(_ context.Context, code string) (*models.MeterContext, error) {
	mctx, ok := f.contexts[code]
	if !ok {
		return nil, repository.ErrMeterNotFound
	}
	return mctx, nil
}

func (f *fakeMeterStore) ListActive(_ context.Context) ([]models.Meter, error) {
	var meters []models.Meter
	for _, mctx := range f.contexts {
		if mctx.Meter.Status == models.MeterStatusActive {
			meters = append(meters, mctx.Meter)
		}
	}
	return meters, nil
}

type fakeTemplateStore struct {
	defs   map[int64]*models.FormulaDefinition
	nextID int64
}

func newFakeTemplateStore() *fakeTemplateStore {
	return &fakeTemplateStore{defs: make(map[int64]*models.FormulaDefinition)}
}

func (f *fakeTemplateStore) DefinitionByID(_ context.Context, id int64) (*models.FormulaDefinition, error) {
	def, ok := f.defs[id]
	if !ok {
		return nil, repository.ErrDefinitionNotFound
	}
	return def, nil
}

func (f *fakeTemplateStore) CreateDefinition(_ context.Context, def *models.FormulaDefinition) error {
	f.nextID++
	def.ID = f.nextID
	copied := *def
	f.defs[def.ID] = &copied
	return nil
}

func (f *fakeTemplateStore) DemoteMain(_ context.Context, templateID, exceptID int64) error {
	for _, def := range f.defs {
		if def.TemplateID == templateID && def.ID != exceptID {
			def.IsMain = false
		}
	}
	return nil
}

func (f *fakeTemplateStore) PromoteMain(_ context.Context, definitionID int64) error {
	def, ok := f.defs[definitionID]
	if !ok {
		return repository.ErrDefinitionNotFound
	}
	def.IsMain = true
	return nil
}

func (f *fakeTemplateStore) MeterCodesForTemplate(_ context.Context, _ int64) ([]string, error) {
	return nil, nil
}

func (f *fakeTemplateStore) mainCount(templateID int64) int {
	count := 0
	for _, def := range f.defs {
		if def.TemplateID == templateID && def.IsMain {
			count++
		}
	}
	return count
}

// fakeTxRunner hands the same store bundle to every call. It cannot undo
// writes on rollback; tests assert on the returned error instead.
type fakeTxRunner struct {
	stores   Stores
	beginErr error
}

func (f *fakeTxRunner) WithinTx(_ context.Context, fn func(stores Stores) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(f.stores)
}

var errBoom = errors.New("boom")
