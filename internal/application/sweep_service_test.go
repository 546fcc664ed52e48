package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/events"
)

type sweepFixture struct {
	svc       *SweepService
	repo      *fakeBookingRepo
	publisher *recordingPublisher
	clientID  uuid.UUID
	celebID   uuid.UUID
}

func newSweepFixture(now time.Time, loc *time.Location) *sweepFixture {
	f := &sweepFixture{
		repo:      newFakeBookingRepo(),
		publisher: &recordingPublisher{},
		clientID:  uuid.New(),
		celebID:   uuid.New(),
	}
	f.svc = NewSweepService(f.repo, f.publisher, loc, zap.NewNop())
	f.svc.now = func() time.Time { return now }
	return f
}

// seed stores a booking for date and walks it to status.
func (f *sweepFixture) seed(t *testing.T, date string, status bookingDomain.BookingStatus) uuid.UUID {
	t.Helper()
	eventDate, err := bookingDomain.ParseDate(date)
	require.NoError(t, err)

	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
		ClientID:      f.clientID,
		ClientName:    "Ada Obi",
		CelebrityID:   f.celebID,
		CelebrityName: "Tunde Live",
		Package: bookingDomain.PackageSnapshot{
			ServiceID:  uuid.New(),
			Title:      "Shout-out",
			PriceMinor: 500_000,
		},
		EventDate:        eventDate,
		TimeSlot:         "18:00",
		EventDescription: "Wedding",
		Location:         "Abuja",
		Currency:         domain.CurrencyNGN,
	}, created)
	require.NoError(t, err)

	switch status {
	case bookingDomain.StatusConfirmed:
		require.NoError(t, bk.Accept(created))
	case bookingDomain.StatusCompleted:
		require.NoError(t, bk.Accept(created))
		require.NoError(t, bk.Complete(created))
	case bookingDomain.StatusDeclined:
		require.NoError(t, bk.Decline("busy", created))
	}
	f.repo.put(bk)
	return bk.ID()
}

func (f *sweepFixture) status(id uuid.UUID) bookingDomain.BookingStatus {
	return f.repo.get(id).Status()
}

var sweepNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func TestSweep_TransitionsStaleBookings(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	pendingPast := f.seed(t, "2026-10-15", bookingDomain.StatusPending)
	confirmedPast := f.seed(t, "2026-10-15", bookingDomain.StatusConfirmed)
	pendingToday := f.seed(t, "2026-10-16", bookingDomain.StatusPending)
	confirmedFuture := f.seed(t, "2026-10-17", bookingDomain.StatusConfirmed)
	declinedPast := f.seed(t, "2026-10-01", bookingDomain.StatusDeclined)

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-10-16", report.Today)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Cancelled)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 2, report.Transitioned())
	assert.Zero(t, report.Failed)

	assert.Equal(t, bookingDomain.StatusCancelled, f.status(pendingPast))
	assert.Equal(t, bookingDomain.AutoCancelNote, f.repo.get(pendingPast).CancelNote())
	assert.Equal(t, bookingDomain.StatusCompleted, f.status(confirmedPast))
	assert.NotNil(t, f.repo.get(confirmedPast).CompletedAt())
	assert.Equal(t, bookingDomain.StatusPending, f.status(pendingToday))
	assert.Equal(t, bookingDomain.StatusConfirmed, f.status(confirmedFuture))
	assert.Equal(t, bookingDomain.StatusDeclined, f.status(declinedPast))
}

func TestSweep_SecondRunIsNoOp(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	id := f.seed(t, "2026-10-10", bookingDomain.StatusConfirmed)

	_, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	version := f.repo.get(id).Version()
	published := len(f.publisher.events)

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
	assert.Equal(t, version, f.repo.get(id).Version())
	assert.Len(t, f.publisher.events, published)
}

func TestSweep_NotifiesBothParties(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	id := f.seed(t, "2026-10-15", bookingDomain.StatusPending)

	_, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	changed := f.publisher.ofType(events.BookingCancelled)
	require.Len(t, changed, 1)
	var evt events.BookingStatusChangedEvent
	require.NoError(t, changed[0].ParseData(&evt))
	assert.Equal(t, id, evt.BookingID)
	assert.Equal(t, "pending", evt.From)
	assert.Equal(t, "cancelled", evt.To)
	assert.True(t, evt.Automatic)
	assert.Nil(t, evt.ChangedBy)

	notices := f.publisher.ofType(events.BookingNotice)
	require.Len(t, notices, 2)
	recipients := make([]uuid.UUID, 0, 2)
	for _, n := range notices {
		var notice events.NoticeEvent
		require.NoError(t, n.ParseData(&notice))
		recipients = append(recipients, notice.RecipientID)
	}
	assert.ElementsMatch(t, []uuid.UUID{f.clientID, f.celebID}, recipients)
}

func TestSweep_OneFailureDoesNotStopTheRest(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	broken := f.seed(t, "2026-10-14", bookingDomain.StatusPending)
	ok1 := f.seed(t, "2026-10-13", bookingDomain.StatusPending)
	ok2 := f.seed(t, "2026-10-12", bookingDomain.StatusConfirmed)
	f.repo.updateErr[broken] = errors.New("connection reset")

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Transitioned())
	assert.Equal(t, bookingDomain.StatusPending, f.status(broken))
	assert.Equal(t, bookingDomain.StatusCancelled, f.status(ok1))
	assert.Equal(t, bookingDomain.StatusCompleted, f.status(ok2))
}

func TestSweep_LostRaceCountsAsSkipped(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	id := f.seed(t, "2026-10-15", bookingDomain.StatusPending)

	f.repo.beforeUpdate = func(target uuid.UUID) {
		f.repo.beforeUpdate = nil
		bk := f.repo.get(target)
		require.NoError(t, bk.Accept(sweepNow))
		bk.IncrementVersion()
		f.repo.put(bk)
	}

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Transitioned())
	assert.Equal(t, bookingDomain.StatusConfirmed, f.status(id))
	assert.Empty(t, f.publisher.events)
}

func TestSweep_ReadFailureAbortsRun(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	f.seed(t, "2026-10-15", bookingDomain.StatusPending)
	f.repo.staleErr = errors.New("db down")

	_, err := f.svc.Run(context.Background())
	assert.Error(t, err)
}

func TestSweep_CancelledContext(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	id := f.seed(t, "2026-10-15", bookingDomain.StatusPending)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, bookingDomain.StatusPending, f.status(id))
}

func TestSweep_WorksThroughMultipleBatches(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	f.svc.batchSize = 2
	for _, date := range []string{"2026-10-01", "2026-10-02", "2026-10-03", "2026-10-04", "2026-10-05"} {
		f.seed(t, date, bookingDomain.StatusConfirmed)
	}

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 5, report.Completed)
}

func TestSweep_BatchOfFailuresDoesNotStarveLaterBookings(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	f.svc.batchSize = 2
	a := f.seed(t, "2026-10-01", bookingDomain.StatusPending)
	b := f.seed(t, "2026-10-02", bookingDomain.StatusPending)
	later := f.seed(t, "2026-10-03", bookingDomain.StatusConfirmed)
	f.repo.updateErr[a] = errors.New("boom")
	f.repo.updateErr[b] = errors.New("boom")

	for run := 0; run < 2; run++ {
		report, err := f.svc.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, report.Failed)
		if run == 0 {
			assert.Equal(t, 3, report.Scanned)
			assert.Equal(t, 1, report.Completed)
		} else {
			assert.Equal(t, 2, report.Scanned)
			assert.Zero(t, report.Transitioned())
		}
	}

	assert.Equal(t, bookingDomain.StatusPending, f.status(a))
	assert.Equal(t, bookingDomain.StatusPending, f.status(b))
	assert.Equal(t, bookingDomain.StatusCompleted, f.status(later))
}

func TestSweep_SameDayBookingsPageByID(t *testing.T) {
	f := newSweepFixture(sweepNow, lagos)
	f.svc.batchSize = 2
	ids := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, f.seed(t, "2026-10-10", bookingDomain.StatusPending))
	}

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 5, report.Cancelled)
	for _, id := range ids {
		assert.Equal(t, bookingDomain.StatusCancelled, f.status(id))
	}
}

func TestSweep_TodayIsDecidedInConfiguredZone(t *testing.T) {
	// 23:30 UTC on the 16th is already the 17th in Lagos.
	lateEvening := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)

	lagosRun := newSweepFixture(lateEvening, lagos)
	id := lagosRun.seed(t, "2026-10-16", bookingDomain.StatusPending)
	report, err := lagosRun.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", report.Today)
	assert.Equal(t, bookingDomain.StatusCancelled, lagosRun.status(id))

	utcRun := newSweepFixture(lateEvening, time.UTC)
	id = utcRun.seed(t, "2026-10-16", bookingDomain.StatusPending)
	report, err = utcRun.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", report.Today)
	assert.Equal(t, bookingDomain.StatusPending, utcRun.status(id))
}
