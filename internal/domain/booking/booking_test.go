package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

var (
	now       = time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)
	today     = CalendarDate(now, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
	tomorrow  = today.AddDate(0, 0, 1)
)

func validParams() NewBookingParams {
	return NewBookingParams{
		ClientID:      uuid.New(),
		ClientName:    "Tolu",
		CelebrityID:   uuid.New(),
		CelebrityName: "Burna",
		Package: PackageSnapshot{
			ServiceID:  uuid.New(),
			Title:      "Shout-out video",
			PriceMinor: 5_000_000,
			Duration:   "2 min",
			Features:   []string{"personalised"},
		},
		EventDate:        tomorrow,
		TimeSlot:         "18:00",
		EventDescription: "Birthday",
		Location:         "Lagos",
		Currency:         domain.CurrencyNGN,
	}
}

func newBookingWithStatus(t *testing.T, status BookingStatus, date time.Time) *Booking {
	t.Helper()
	s := validParams()
	s.EventDate = date
	b, err := NewBooking(s, now)
	require.NoError(t, err)
	snap := b.Snapshot()
	snap.Status = status
	return ReconstructBooking(snap)
}

func TestNewBooking_Defaults(t *testing.T) {
	b, err := NewBooking(validParams(), now)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, PayoutPending, b.PayoutStatus())
	assert.Regexp(t, `^BK-[A-Z2-9]{8}$`, b.Reference())
	assert.Equal(t, int64(1), b.Version())
	assert.Equal(t, now, b.CreatedAt())
	assert.False(t, b.Reviewed())
}

func TestNewBooking_ReportsEveryMissingField(t *testing.T) {
	p := validParams()
	p.Package = PackageSnapshot{}
	p.EventDate = time.Time{}
	p.TimeSlot = " "
	p.EventDescription = ""
	p.Location = ""

	_, err := NewBooking(p, now)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"package", "date", "time", "event_description", "location"}, verr.Fields)
}

func TestNewBooking_MissingEventDescription(t *testing.T) {
	p := validParams()
	p.EventDescription = ""

	b, err := NewBooking(p, now)

	assert.Nil(t, b)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"event_description"}, verr.Fields)
}

func TestNewBooking_SnapshotIsDetachedFromCaller(t *testing.T) {
	p := validParams()
	b, err := NewBooking(p, now)
	require.NoError(t, err)

	p.Package.PriceMinor = 1
	p.Package.Features[0] = "changed"

	assert.Equal(t, int64(5_000_000), b.Package().PriceMinor)
	assert.Equal(t, "personalised", b.Package().Features[0])
}

func TestStatus_NeverReturnsToPending(t *testing.T) {
	for from := range validTransitions {
		assert.False(t, from.CanTransitionTo(StatusPending), "%s must not lead to pending", from)
	}
}

func TestStatus_RefundReachableFromAllButRefunded(t *testing.T) {
	for from := range validTransitions {
		if from == StatusRefunded {
			assert.False(t, from.CanTransitionTo(StatusRefunded))
			continue
		}
		assert.True(t, from.CanTransitionTo(StatusRefunded), "%s should be refundable", from)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	for _, s := range []BookingStatus{StatusCompleted, StatusCancelled, StatusDeclined, StatusRefunded} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseBookingStatus("requested")
	assert.Error(t, err)
}

func TestAccept(t *testing.T) {
	b := newBookingWithStatus(t, StatusPending, tomorrow)
	require.NoError(t, b.Accept(now))
	assert.Equal(t, StatusConfirmed, b.Status())
	assert.NotNil(t, b.ConfirmedAt())

	err := newBookingWithStatus(t, StatusDeclined, tomorrow).Accept(now)
	assert.True(t, domain.IsInvalidState(err))
}

func TestCancel_TargetMustBeCancelOrDecline(t *testing.T) {
	b := newBookingWithStatus(t, StatusPending, tomorrow)
	err := b.Cancel(StatusCompleted, "", now)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, StatusPending, b.Status())
}

func TestCancel_RevalidatesSource(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		target  BookingStatus
		allowed bool
	}{
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPending, StatusDeclined, true},
		{StatusConfirmed, StatusDeclined, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusRefunded, StatusCancelled, false},
		{StatusDeclined, StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.target), func(t *testing.T) {
			b := newBookingWithStatus(t, tt.from, tomorrow)
			err := b.Cancel(tt.target, "note", now)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.target, b.Status())
				assert.Equal(t, "note", b.CancelNote())
				return
			}
			assert.True(t, domain.IsInvalidState(err))
			assert.Equal(t, tt.from, b.Status())
		})
	}
}

func TestSubmitReview_RequiresCompleted(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusDeclined, StatusRefunded} {
		b := newBookingWithStatus(t, s, yesterday)
		err := b.SubmitReview(5, "great", now)
		assert.True(t, domain.IsInvalidState(err), s)
		assert.False(t, b.Reviewed())
	}
}

func TestSubmitReview_OnlyOnce(t *testing.T) {
	b := newBookingWithStatus(t, StatusCompleted, yesterday)
	require.NoError(t, b.SubmitReview(4, " lovely ", now))
	assert.True(t, b.Reviewed())
	assert.Equal(t, 4, b.Rating())
	assert.Equal(t, "lovely", b.Comment())

	err := b.SubmitReview(1, "changed my mind", now)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, 4, b.Rating())
}

func TestSubmitReview_RatingBounds(t *testing.T) {
	for _, r := range []int{0, 6, -1} {
		b := newBookingWithStatus(t, StatusCompleted, yesterday)
		err := b.SubmitReview(r, "", now)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, "rating %d", r)
	}
}

func TestMarkRefunded(t *testing.T) {
	b := newBookingWithStatus(t, StatusCompleted, yesterday)
	require.NoError(t, b.CanRefund())
	require.NoError(t, b.MarkRefunded("RF-1", 1000, now))
	assert.Equal(t, StatusRefunded, b.Status())
	assert.Equal(t, "RF-1", b.RefundReference())
	assert.Equal(t, int64(1000), b.RefundedAmountMinor())

	assert.True(t, domain.IsInvalidState(b.CanRefund()))
	assert.True(t, domain.IsInvalidState(b.MarkRefunded("RF-2", 1, now)))
}

func TestConfirmPayout_IndependentOfStatus(t *testing.T) {
	b := newBookingWithStatus(t, StatusRefunded, yesterday)

	require.NoError(t, b.ConfirmPayout(now))
	assert.Equal(t, PayoutPaid, b.PayoutStatus())
	assert.Equal(t, StatusRefunded, b.Status())

	err := b.ConfirmPayout(now)
	assert.True(t, domain.IsInvalidState(err))
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		status  BookingStatus
		date    time.Time
		want    BookingStatus
		changed bool
	}{
		{"stale pending is cancelled", StatusPending, yesterday, StatusCancelled, true},
		{"stale confirmed is completed", StatusConfirmed, yesterday, StatusCompleted, true},
		{"pending today untouched", StatusPending, today, StatusPending, false},
		{"confirmed tomorrow untouched", StatusConfirmed, tomorrow, StatusConfirmed, false},
		{"pending tomorrow untouched", StatusPending, tomorrow, StatusPending, false},
		{"stale declined untouched", StatusDeclined, yesterday, StatusDeclined, false},
		{"stale refunded untouched", StatusRefunded, yesterday, StatusRefunded, false},
		{"stale completed untouched", StatusCompleted, yesterday, StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBookingWithStatus(t, tt.status, tt.date)
			got, changed, err := b.Reconcile(today, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed} {
		b := newBookingWithStatus(t, s, yesterday)
		first, _, err := b.Reconcile(today, now)
		require.NoError(t, err)

		second, changed, err := b.Reconcile(today, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, first, second)
	}
}

func TestCalendarDate_UsesLocation(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)

	// 23:30 UTC on the 16th is already the 17th in Lagos (UTC+1).
	late := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), CalendarDate(late, lagos))
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), CalendarDate(late, time.UTC))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-12-24")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("24/12/2026")
	assert.Error(t, err)
}
