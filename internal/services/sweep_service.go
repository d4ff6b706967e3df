package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// SweepService is the eager counterpart to the lazy expiry checks on
// the read paths: it batch-cancels expired PENDING bookings so stale
// rows do not accumulate. Correctness never depends on it having run;
// the expiry deadline is durable data and every read applies it.
type SweepService struct {
	DB       *sql.DB
	Bookings repositories.BookingRepository

	// BatchSize caps one sweep pass; zero means 500.
	BatchSize int
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

func (s SweepService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s SweepService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SweepExpired cancels every expired PENDING booking it finds and
// returns how many it finalized. Each booking is handled in its own
// transaction through the same status CAS the confirm path uses, so a
// concurrent confirm or a second overlapping sweep simply wins or
// loses per row; nothing is overwritten and nothing double-cancels.
// A failure on one booking is logged and does not abort the batch.
func (s SweepService) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := s.Bookings.ExpiredPending(s.db(), now, s.BatchSize)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		ok, err := s.cancelOne(ctx, id)
		if err != nil {
			utils.LogEvent("", "sweep", "cancel", "booking_id="+strconv.FormatInt(id, 10)+" error: "+err.Error())
			continue
		}
		if ok {
			cancelled++
		}
	}
	if len(ids) > 0 {
		utils.LogEvent("", "sweep", "run",
			"expired="+strconv.Itoa(len(ids))+" cancelled="+strconv.Itoa(cancelled))
	}
	return cancelled, nil
}

func (s SweepService) cancelOne(ctx context.Context, id int64) (bool, error) {
	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.Bookings.UpdateStatusIf(tx, id, models.StatusPending, models.StatusCancelled, "hold expired")
	if err != nil {
		return false, err
	}
	if !ok {
		// Lost the race to a confirm or another sweep; leave it alone.
		return false, nil
	}
	if err := s.Bookings.DeleteSeats(tx, id); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s SweepService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				utils.LogEvent("", "sweep", "run", "error: "+err.Error())
			}
		}
	}
}
