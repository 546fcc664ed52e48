package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/events"
)

// DefaultSweepBatchSize is how many stale bookings are loaded per query.
const DefaultSweepBatchSize = 200

// SweepReport summarises one reconciliation pass.
type SweepReport struct {
	Today     string `json:"today"`
	Scanned   int    `json:"scanned"`
	Cancelled int    `json:"cancelled"`
	Completed int    `json:"completed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// Transitioned returns how many bookings changed status.
func (r SweepReport) Transitioned() int { return r.Cancelled + r.Completed }

// SweepService auto-transitions bookings whose event date has passed:
// pending becomes cancelled and confirmed becomes completed. It is safe to run
// concurrently with itself and with user actions because every write is a
// compare-and-swap; the loser of a race counts the record as skipped.
type SweepService struct {
	repo      bookingDomain.BookingRepository
	events    eventEmitter
	loc       *time.Location
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// NewSweepService creates a SweepService that decides "today" in loc.
func NewSweepService(repo bookingDomain.BookingRepository, publisher EventPublisher, loc *time.Location, logger *zap.Logger) *SweepService {
	if loc == nil {
		loc = time.UTC
	}
	return &SweepService{
		repo:      repo,
		events:    eventEmitter{publisher: publisher, logger: logger},
		loc:       loc,
		batchSize: DefaultSweepBatchSize,
		now:       time.Now,
		logger:    logger,
	}
}

// Run performs one reconciliation pass. A failure on one booking is logged
// and counted; the pass continues with the rest. Candidates are paged by
// keyset, so a record that keeps failing is passed over rather than re-read.
// Only a failure to read candidates aborts the run.
func (s *SweepService) Run(ctx context.Context) (SweepReport, error) {
	now := s.now()
	today := bookingDomain.CalendarDate(now, s.loc)
	report := SweepReport{Today: today.Format(bookingDomain.DateLayout)}
	var cursor bookingDomain.StaleCursor

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := s.repo.FindStale(ctx, today, cursor, s.batchSize)
		if err != nil {
			return report, fmt.Errorf("failed to load stale bookings: %w", err)
		}

		for _, bk := range batch {
			report.Scanned++
			s.reconcile(ctx, bk, today, now, &report)
		}

		if len(batch) < s.batchSize {
			break
		}
		cursor = bookingDomain.CursorAfter(batch[len(batch)-1])
	}

	if report.Scanned > 0 {
		s.logger.Info("reconciliation sweep finished",
			zap.String("today", report.Today),
			zap.Int("scanned", report.Scanned),
			zap.Int("cancelled", report.Cancelled),
			zap.Int("completed", report.Completed),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}

func (s *SweepService) reconcile(ctx context.Context, bk *bookingDomain.Booking, today, now time.Time, report *SweepReport) {
	from := bk.Status()
	to, changed, err := bk.Reconcile(today, now)
	if err != nil {
		report.Failed++
		s.logger.Error("failed to reconcile booking",
			zap.String("booking_id", bk.ID().String()),
			zap.String("status", string(from)),
			zap.Error(err),
		)
		return
	}
	if !changed {
		report.Skipped++
		return
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		if domain.IsConflict(err) {
			report.Skipped++
			s.logger.Debug("booking already moved by another actor", zap.String("booking_id", bk.ID().String()))
			return
		}
		report.Failed++
		s.logger.Error("failed to persist reconciled booking",
			zap.String("booking_id", bk.ID().String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return
	}

	date := bk.EventDate().Format(bookingDomain.DateLayout)
	switch to {
	case bookingDomain.StatusCancelled:
		report.Cancelled++
		s.events.statusChanged(ctx, events.BookingCancelled, bk, from, nil, true)
		s.events.notice(ctx, bk, bk.ClientID(),
			fmt.Sprintf("Your booking with %s on %s was cancelled because it was not accepted in time.", bk.CelebrityName(), date))
		s.events.notice(ctx, bk, bk.CelebrityID(),
			fmt.Sprintf("The booking request from %s for %s expired and was cancelled.", bk.ClientName(), date))
	case bookingDomain.StatusCompleted:
		report.Completed++
		s.events.statusChanged(ctx, events.BookingCompleted, bk, from, nil, true)
		s.events.notice(ctx, bk, bk.ClientID(),
			fmt.Sprintf("Your booking with %s on %s is complete. You can now leave a review.", bk.CelebrityName(), date))
		s.events.notice(ctx, bk, bk.CelebrityID(),
			fmt.Sprintf("Your booking with %s on %s is complete.", bk.ClientName(), date))
	}
}
