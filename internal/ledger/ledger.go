package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/screencraft/engine/internal/models"
	appErr "github.com/screencraft/engine/pkg/errors"
	"github.com/screencraft/engine/pkg/logger"
)

// Credit policy constants.
const (
	// DailyAllotment is the balance every user is reset to once per UTC day.
	DailyAllotment = 100
	// MinimumBalance is required to start a generation run. It is a
	// pre-authorization threshold, distinct from the amount charged.
	MinimumBalance = 10
	// GenerationCost is charged per completed generation run.
	GenerationCost = 10
)

// ErrInsufficientCredits is returned when a debit is rejected. No state
// changes when it is returned.
var ErrInsufficientCredits = appErr.New(appErr.CodeInsufficientCredits, "not enough credits to start a generation")

// UsagePoint is one day's accumulated charge.
type UsagePoint struct {
	Day    time.Time `json:"day"`
	Amount int       `json:"amount"`
}

// Service gates and records credit consumption. All balance mutations run
// inside a transaction holding a FOR UPDATE lock on the user's ledger row,
// so concurrent debits and resets for one user serialize.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// WithTx returns a Service bound to an in-flight transaction, so a debit can
// join a larger atomic unit (merge + charge of a finished run).
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx, now: s.now}
}

// WithClock overrides the clock, for deterministic day-boundary tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{db: s.db, now: now}
}

// ResetDue reports whether the daily reset should run, comparing the two
// instants by UTC calendar day. Pure so day-boundary behavior is testable
// without a clock.
func ResetDue(lastResetAt, now time.Time) bool {
	ly, lm, ld := lastResetAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly != ny || lm != nm || ld != nd
}

// Debit atomically charges amount to the user: it validates the balance
// against MinimumBalance, decrements it, and adds amount to today's usage
// bucket. The whole operation is one transaction; a failure leaves prior
// state unchanged. Returns the updated balance.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, appErr.New(appErr.CodeInvalid, "debit amount must be positive")
	}

	var balance int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led, err := s.lockLedger(tx, userID)
		if err != nil {
			return err
		}

		if led.Balance < MinimumBalance {
			return ErrInsufficientCredits
		}

		led.Balance -= amount
		if led.Balance < 0 {
			led.Balance = 0
		}
		if err := tx.Save(led).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update balance failed")
		}

		day := dayOf(s.now())
		usage := models.CreditUsage{UserID: userID, Day: day, Amount: amount}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount": gorm.Expr("credit_usages.amount + ?", amount),
			}),
		}).Create(&usage).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "record usage failed")
		}

		balance = led.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.L().Info("credits debited", zap.String("user_id", userID.String()), zap.Int("amount", amount), zap.Int("balance", balance))
	return balance, nil
}

// Balance returns the user's ledger state, lazily applying the daily reset
// when the last reset was on a previous UTC day. The reset happens on the
// locked row, so N concurrent callers on a new day grant the allotment once.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (*models.CreditLedger, error) {
	var out *models.CreditLedger
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led, err := s.lockLedger(tx, userID)
		if err != nil {
			return err
		}
		out = led
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UsageHistory returns the user's per-day charges over the trailing window,
// ascending by day. Days with no usage are absent; callers fill gaps.
func (s *Service) UsageHistory(ctx context.Context, userID uuid.UUID, windowDays int) ([]UsagePoint, error) {
	if windowDays <= 0 {
		return nil, appErr.New(appErr.CodeInvalid, "window must be positive")
	}
	since := WindowStart(s.now(), windowDays)

	var rows []models.CreditUsage
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND day >= ?", userID, since).
		Order("day ASC").
		Find(&rows).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list usage failed")
	}

	out := make([]UsagePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, UsagePoint{Day: r.Day, Amount: r.Amount})
	}
	return out, nil
}

// WindowStart returns the first UTC day inside a trailing window of
// windowDays days ending today.
func WindowStart(now time.Time, windowDays int) time.Time {
	return dayOf(now).AddDate(0, 0, -(windowDays - 1))
}

// lockLedger loads the user's row FOR UPDATE, creating it at the daily
// allotment on first access, and applies the lazy daily reset. Both creation
// and reset are idempotent under concurrency: creation relies on the unique
// user_id index, and the reset decision is made on the locked row.
func (s *Service) lockLedger(tx *gorm.DB, userID uuid.UUID) (*models.CreditLedger, error) {
	var led models.CreditLedger
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&led).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := models.CreditLedger{UserID: userID, Balance: DailyAllotment, LastResetAt: s.now().UTC()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "create ledger failed")
		}
		// re-read under lock; another transaction may have won the insert
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&led).Error
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "load ledger failed")
	}

	if now := s.now(); ResetDue(led.LastResetAt, now) {
		led.Balance = DailyAllotment
		led.LastResetAt = now.UTC()
		if err := tx.Save(&led).Error; err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "daily reset failed")
		}
		logger.L().Info("daily credits reset", zap.String("user_id", userID.String()))
	}

	return &led, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
