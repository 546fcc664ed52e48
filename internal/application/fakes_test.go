package application

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	celebrityDomain "github.com/celebook/service-booking/internal/domain/celebrity"
	reviewDomain "github.com/celebook/service-booking/internal/domain/review"
	userDomain "github.com/celebook/service-booking/internal/domain/user"
	"github.com/celebook/service-booking/internal/gateway"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/kafka"
)

// --- bookings ---

type fakeBookingRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]bookingDomain.Snapshot
	saves     int
	updateErr map[uuid.UUID]error
	staleErr  error
	// beforeUpdate runs inside Update before the version check, to simulate
	// a concurrent writer.
	beforeUpdate func(id uuid.UUID)
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		rows:      make(map[uuid.UUID]bookingDomain.Snapshot),
		updateErr: make(map[uuid.UUID]error),
	}
}

func (r *fakeBookingRepo) put(bk *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[bk.ID()] = bk.Snapshot()
}

func (r *fakeBookingRepo) get(id uuid.UUID) *bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil
	}
	return bookingDomain.ReconstructBooking(s)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	if bk := r.get(id); bk != nil {
		return bk, nil
	}
	return nil, domain.NewNotFoundError("Booking", id.String())
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.Reference == reference {
			return bookingDomain.ReconstructBooking(s), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) FindByPaymentReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.PaymentReference == reference {
			return bookingDomain.ReconstructBooking(s), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) filter(match func(bookingDomain.Snapshot) bool) []*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, s := range r.rows {
		if match(s) {
			out = append(out, bookingDomain.ReconstructBooking(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out
}

func paginateBookings(all []*bookingDomain.Booking, page, limit int) ([]*bookingDomain.Booking, int64) {
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, int64(len(all))
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all))
}

func (r *fakeBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, p, limit int) ([]*bookingDomain.Booking, int64, error) {
	items, total := paginateBookings(r.filter(func(s bookingDomain.Snapshot) bool { return s.ClientID == clientID }), p, limit)
	return items, total, nil
}

func (r *fakeBookingRepo) FindByCelebrityID(_ context.Context, celebrityID uuid.UUID, p, limit int) ([]*bookingDomain.Booking, int64, error) {
	items, total := paginateBookings(r.filter(func(s bookingDomain.Snapshot) bool { return s.CelebrityID == celebrityID }), p, limit)
	return items, total, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, p, limit int) ([]*bookingDomain.Booking, int64, error) {
	items, total := paginateBookings(r.filter(func(bookingDomain.Snapshot) bool { return true }), p, limit)
	return items, total, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, s := range r.rows {
		counts[string(s.Status)]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) FindStale(_ context.Context, today time.Time, after bookingDomain.StaleCursor, limit int) ([]*bookingDomain.Booking, error) {
	if r.staleErr != nil {
		return nil, r.staleErr
	}
	out := r.filter(func(s bookingDomain.Snapshot) bool {
		open := s.Status == bookingDomain.StatusPending || s.Status == bookingDomain.StatusConfirmed
		return open && s.EventDate.Before(today) && (after.IsZero() || staleKeyLess(after.EventDate, after.ID, s.EventDate, s.ID))
	})
	sort.Slice(out, func(i, j int) bool {
		return staleKeyLess(out[i].EventDate(), out[i].ID(), out[j].EventDate(), out[j].ID())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// staleKeyLess orders by event date, then id bytes, as postgres orders uuids.
func staleKeyLess(aDate time.Time, aID uuid.UUID, bDate time.Time, bID uuid.UUID) bool {
	if !aDate.Equal(bDate) {
		return aDate.Before(bDate)
	}
	return bytes.Compare(aID[:], bID[:]) < 0
}

func (r *fakeBookingRepo) HasConfirmedInSlot(_ context.Context, celebrityID uuid.UUID, date time.Time, timeSlot string, excludeID uuid.UUID) (bool, error) {
	day := bookingDomain.CalendarDate(date, time.UTC)
	found := r.filter(func(s bookingDomain.Snapshot) bool {
		return s.CelebrityID == celebrityID &&
			s.EventDate.Equal(day) &&
			s.TimeSlot == timeSlot &&
			s.Status == bookingDomain.StatusConfirmed &&
			s.ID != excludeID
	})
	return len(found) > 0, nil
}

func (r *fakeBookingRepo) EarningsForCelebrity(_ context.Context, celebrityID uuid.UUID) (bookingDomain.Earnings, error) {
	var e bookingDomain.Earnings
	for _, bk := range r.filter(func(s bookingDomain.Snapshot) bool {
		return s.CelebrityID == celebrityID && s.Status == bookingDomain.StatusCompleted
	}) {
		e.CompletedCount++
		if bk.PayoutStatus() == bookingDomain.PayoutPaid {
			e.PaidMinor += bk.Package().PriceMinor
		} else {
			e.PendingMinor += bk.Package().PriceMinor
		}
	}
	return e, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[bk.ID()]; ok {
		return domain.NewConflictError("duplicate booking")
	}
	if ref := bk.PaymentReference(); ref != "" {
		for _, s := range r.rows {
			if s.PaymentReference == ref {
				return bookingDomain.ErrPaymentReferenceUsed
			}
		}
	}
	r.saves++
	r.rows[bk.ID()] = bk.Snapshot()
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(bk.ID())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[bk.ID()]; err != nil {
		return err
	}
	current, ok := r.rows[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if current.Version != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.rows[bk.ID()] = bk.Snapshot()
	return nil
}

// --- catalog ---

type fakeProfileRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*celebrityDomain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{rows: make(map[uuid.UUID]*celebrityDomain.Profile)}
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*celebrityDomain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFoundError("Celebrity", id.String())
}

func (r *fakeProfileRepo) List(_ context.Context, category string, p, limit int) ([]*celebrityDomain.Profile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*celebrityDomain.Profile
	for _, prof := range r.rows {
		if category == "" || prof.Category() == category {
			out = append(out, prof)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return out, int64(len(out)), nil
}

func (r *fakeProfileRepo) Save(_ context.Context, p *celebrityDomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID()] = p
	return nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, p *celebrityDomain.Profile) error {
	return r.Save(ctx, p)
}

type fakePackageRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*celebrityDomain.ServicePackage
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{rows: make(map[uuid.UUID]*celebrityDomain.ServicePackage)}
}

func (r *fakePackageRepo) FindByID(_ context.Context, id uuid.UUID) (*celebrityDomain.ServicePackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFoundError("ServicePackage", id.String())
}

func (r *fakePackageRepo) FindActiveByCelebrityID(_ context.Context, celebrityID uuid.UUID) ([]*celebrityDomain.ServicePackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*celebrityDomain.ServicePackage
	for _, p := range r.rows {
		if p.IsOwnedBy(celebrityID) && p.IsActive() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceMinor() < out[j].PriceMinor() })
	return out, nil
}

func (r *fakePackageRepo) Save(_ context.Context, p *celebrityDomain.ServicePackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID()] = p
	return nil
}

func (r *fakePackageRepo) Update(ctx context.Context, p *celebrityDomain.ServicePackage) error {
	return r.Save(ctx, p)
}

// --- users ---

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[uuid.UUID]*userDomain.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.rows[id]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("User", id.String())
}

func (r *fakeUserRepo) List(_ context.Context, role string, p, limit int) ([]*userDomain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userDomain.User
	for _, u := range r.rows {
		if role == "" || string(u.Role()) == role {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.ID()]; ok {
		return domain.NewConflictError("user already registered")
	}
	r.rows[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[u.ID()] = u
	return nil
}

// --- reviews ---

type fakeReviewRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*reviewDomain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{rows: make(map[uuid.UUID]*reviewDomain.Review)}
}

func (r *fakeReviewRepo) Save(_ context.Context, rv *reviewDomain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[rv.BookingID()]; ok {
		return domain.NewConflictError("booking has already been reviewed")
	}
	r.rows[rv.BookingID()] = rv
	return nil
}

func (r *fakeReviewRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*reviewDomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv, ok := r.rows[bookingID]; ok {
		return rv, nil
	}
	return nil, domain.NewNotFoundError("Review", bookingID.String())
}

func (r *fakeReviewRepo) FindByCelebrityID(_ context.Context, celebrityID uuid.UUID, p, limit int) ([]*reviewDomain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reviewDomain.Review
	for _, rv := range r.rows {
		if rv.CelebrityID() == celebrityID {
			out = append(out, rv)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) SummaryForCelebrity(ctx context.Context, celebrityID uuid.UUID) (reviewDomain.Summary, error) {
	reviews, total, _ := r.FindByCelebrityID(ctx, celebrityID, 1, 1000)
	if total == 0 {
		return reviewDomain.Summary{}, nil
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating()
	}
	return reviewDomain.Summary{Count: total, Average: float64(sum) / float64(total)}, nil
}

// --- outbound collaborators ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []kafka.CloudEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type stubVerifier struct {
	result gateway.PaymentVerification
	err    error
	calls  int
}

func (v *stubVerifier) Verify(_ context.Context, reference string) (gateway.PaymentVerification, error) {
	v.calls++
	if v.err != nil {
		return gateway.PaymentVerification{}, v.err
	}
	res := v.result
	res.Reference = reference
	return res, nil
}

type stubRefunds struct {
	err      error
	calls    int
	requests []gateway.RefundRequest
}

func (g *stubRefunds) ProcessRefund(_ context.Context, req gateway.RefundRequest) (gateway.RefundResult, error) {
	g.calls++
	g.requests = append(g.requests, req)
	if g.err != nil {
		return gateway.RefundResult{}, g.err
	}
	return gateway.RefundResult{Reference: "rf_" + req.BookingID.String()[:8]}, nil
}
