package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"meterhub/internal/models"
	"meterhub/internal/repository"
)

// Store interfaces consumed by the pipeline. The SQL repositories satisfy
// them; tests substitute fakes.

// MeterStore reads meter configuration.
type MeterStore interface {
	ContextByCode(ctx context.Context, code string) (*models.MeterContext, error)
	ListActive(ctx context.Context) ([]models.Meter, error)
}

// ReadingStore reads session history and persists new sessions.
type ReadingStore interface {
	HasSessionAfter(ctx context.Context, meterID int64, at time.Time) (bool, error)
	LatestSessionBefore(ctx context.Context, meterID int64, at time.Time) (*models.ReadingSession, error)
	LatestSession(ctx context.Context, meterID int64) (*models.ReadingSession, error)
	CreateSession(ctx context.Context, session *models.ReadingSession) error
	ReadingValue(ctx context.Context, meterID int64, day time.Time, readingTypeID int64) (decimal.Decimal, bool, error)
}

// SummaryStore persists and reads derived daily summaries.
type SummaryStore interface {
	UpsertSummary(ctx context.Context, summary *models.DailySummary) error
	UpsertSummaryDetail(ctx context.Context, summaryID int64, metricName string, value decimal.Decimal) error
	PruneSummaryDetails(ctx context.Context, summaryID int64, keep []string) error
	SummaryFor(ctx context.Context, meterID int64, day time.Time) (*models.DailySummary, error)
}

// TargetStore reads efficiency targets.
type TargetStore interface {
	ActiveTarget(ctx context.Context, meterID int64, day time.Time) (*models.EfficiencyTarget, error)
}

// NotificationStore is the create-only notification sink.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// TemplateStore persists formula definitions.
type TemplateStore interface {
	DefinitionByID(ctx context.Context, id int64) (*models.FormulaDefinition, error)
	CreateDefinition(ctx context.Context, def *models.FormulaDefinition) error
	DemoteMain(ctx context.Context, templateID, exceptID int64) error
	PromoteMain(ctx context.Context, definitionID int64) error
	MeterCodesForTemplate(ctx context.Context, templateID int64) ([]string, error)
}

// Stores is the per-transaction bundle handed to pipeline stages.
type Stores struct {
	Meters        MeterStore
	Readings      ReadingStore
	Summaries     SummaryStore
	Targets       TargetStore
	Notifications NotificationStore
	Templates     TemplateStore
}

// TxRunner executes fn inside one database transaction: commit on nil,
// rollback on error. The pipeline owns no connections itself.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(stores Stores) error) error
}

// SQLTxRunner runs transactions over *sql.DB with serializable isolation, so
// the prior/future session lookups of concurrent same-meter ingestions are
// serialized by the database.
type SQLTxRunner struct {
	DB *sql.DB
}

// WithinTx implements TxRunner.
func (r *SQLTxRunner) WithinTx(ctx context.Context, fn func(stores Stores) error) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := repository.NewRepos(tx)
	stores := Stores{
		Meters:        repos.Meters,
		Readings:      repos.Readings,
		Summaries:     repos.Summaries,
		Targets:       repos.Targets,
		Notifications: repos.Notifications,
		Templates:     repos.Templates,
	}

	if err := fn(stores); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
