package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	celebrityDomain "github.com/celebook/service-booking/internal/domain/celebrity"
	reviewDomain "github.com/celebook/service-booking/internal/domain/review"
	userDomain "github.com/celebook/service-booking/internal/domain/user"
	"github.com/celebook/service-booking/internal/gateway"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/events"
	"github.com/celebook/service-booking/internal/pkg/validation"
)

const (
	// maxReferenceAttempts bounds retries when a generated reference collides.
	maxReferenceAttempts = 3
	// maxRefundRecordAttempts bounds reloads when recording a sent refund
	// loses a compare-and-swap.
	maxRefundRecordAttempts = 3
)

// PaymentVerifier confirms a checkout transaction with the processor.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (gateway.PaymentVerification, error)
}

// RefundGateway reverses a client payment.
type RefundGateway interface {
	ProcessRefund(ctx context.Context, req gateway.RefundRequest) (gateway.RefundResult, error)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CelebrityID      string `json:"celebrity_id" binding:"required,notblank"`
	ServiceID        string `json:"service_id" binding:"required,notblank"`
	Date             string `json:"date" binding:"required,notblank"`
	Time             string `json:"time" binding:"required,notblank"`
	EventDescription string `json:"event_description" binding:"required,notblank"`
	Location         string `json:"location" binding:"required,notblank"`
	PaymentReference string `json:"payment_reference" binding:"max=100"`
}

// CancelRequest asks for a booking to be cancelled or declined. Confirm must
// be set: an unconfirmed request is rejected without touching the booking.
type CancelRequest struct {
	TargetStatus string `json:"target_status" binding:"omitempty,oneof=cancelled declined"`
	Message      string `json:"message" binding:"max=500"`
	Confirm      bool   `json:"confirm" binding:"required"`
}

// ReviewRequest is a client's rating of a completed booking.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// RefundRequest is an admin's instruction to refund a client.
type RefundRequest struct {
	ClientID    uuid.UUID `json:"client_id" binding:"required"`
	AmountMinor int64     `json:"amount" binding:"required,gt=0"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// EarningsDTO summarises a celebrity's completed engagements.
type EarningsDTO struct {
	CompletedBookings int64  `json:"completed_bookings"`
	PendingMinor      int64  `json:"pending"`
	PaidMinor         int64  `json:"paid"`
	TotalMinor        int64  `json:"total"`
	Currency          string `json:"currency"`
}

// BookingServiceDeps are the collaborators of BookingService. Verifier may be
// nil, in which case the client's payment reference is stored unverified.
type BookingServiceDeps struct {
	Bookings  bookingDomain.BookingRepository
	Profiles  celebrityDomain.ProfileRepository
	Packages  celebrityDomain.PackageRepository
	Users     userDomain.UserRepository
	Reviews   reviewDomain.ReviewRepository
	Pricing   bookingDomain.PricingStrategy
	Verifier  PaymentVerifier
	Refunds   RefundGateway
	Publisher EventPublisher
	Location  *time.Location
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	profiles celebrityDomain.ProfileRepository
	packages celebrityDomain.PackageRepository
	users    userDomain.UserRepository
	reviews  reviewDomain.ReviewRepository
	pricing  bookingDomain.PricingStrategy
	verifier PaymentVerifier
	refunds  RefundGateway
	events   eventEmitter
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(deps BookingServiceDeps, logger *zap.Logger) *BookingService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		repo:     deps.Bookings,
		profiles: deps.Profiles,
		packages: deps.Packages,
		users:    deps.Users,
		reviews:  deps.Reviews,
		pricing:  deps.Pricing,
		verifier: deps.Verifier,
		refunds:  deps.Refunds,
		events:   eventEmitter{publisher: deps.Publisher, logger: logger},
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateBooking creates a pending booking for client. Missing fields are
// reported together before anything is read or written.
func (s *BookingService) CreateBooking(ctx context.Context, client Actor, req CreateBookingRequest) (*BookingDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	celebrityID, err := uuid.Parse(req.CelebrityID)
	if err != nil {
		return nil, domain.NewValidationError("invalid celebrity_id")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, domain.NewValidationError("invalid service_id")
	}
	eventDate, err := bookingDomain.ParseDate(req.Date)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	timeSlot := strings.TrimSpace(req.Time)

	profile, err := s.profiles.FindByID(ctx, celebrityID)
	if err != nil {
		return nil, err
	}
	pkg, err := s.packages.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsOwnedBy(celebrityID) {
		return nil, domain.NewValidationError("service does not belong to this celebrity")
	}
	if !pkg.IsActive() {
		return nil, domain.NewValidationError("service is no longer offered")
	}

	taken, err := s.repo.HasConfirmedInSlot(ctx, celebrityID, eventDate, timeSlot, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewSlotUnavailableError(celebrityID.String(), req.Date, timeSlot)
	}

	quote, err := s.pricing.Quote(pkg.PriceMinor())
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	amountPaid, err := s.verifyPayment(ctx, req.PaymentReference, quote)
	if err != nil {
		return nil, err
	}

	params := bookingDomain.NewBookingParams{
		ClientID:       client.ID,
		ClientName:     client.Name,
		CelebrityID:    celebrityID,
		CelebrityName:  profile.DisplayName(),
		CelebrityImage: profile.ImageURL(),
		Package: bookingDomain.PackageSnapshot{
			ServiceID:   pkg.ID(),
			Title:       pkg.Title(),
			PriceMinor:  pkg.PriceMinor(),
			Duration:    pkg.Duration(),
			Description: pkg.Description(),
			Features:    pkg.Features(),
		},
		EventDate:        eventDate,
		TimeSlot:         timeSlot,
		EventDescription: req.EventDescription,
		Location:         req.Location,
		PaymentReference: strings.TrimSpace(req.PaymentReference),
		AmountPaidMinor:  amountPaid,
		Currency:         quote.Currency,
	}

	var bk *bookingDomain.Booking
	for attempt := 1; ; attempt++ {
		bk, err = bookingDomain.NewBooking(params, s.now())
		if err != nil {
			return nil, err
		}
		err = s.repo.Save(ctx, bk)
		if err == nil {
			break
		}
		if errors.Is(err, bookingDomain.ErrPaymentReferenceUsed) {
			return nil, err
		}
		if !domain.IsConflict(err) || attempt >= maxReferenceAttempts {
			return nil, fmt.Errorf("failed to save booking: %w", err)
		}
		s.logger.Warn("booking reference collision, retrying", zap.String("reference", bk.Reference()))
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("reference", bk.Reference()),
		zap.String("celebrity_id", celebrityID.String()),
	)

	s.events.publish(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:   bk.ID(),
		Reference:   bk.Reference(),
		ClientID:    bk.ClientID(),
		CelebrityID: bk.CelebrityID(),
		ServiceID:   pkg.ID(),
		EventDate:   req.Date,
		TimeSlot:    timeSlot,
		PriceMinor:  quote.PriceMinor,
		TotalMinor:  quote.TotalMinor,
		Currency:    quote.Currency,
		PaymentRef:  bk.PaymentReference(),
		OccurredAt:  bk.CreatedAt(),
	})
	s.events.notice(ctx, bk, bk.CelebrityID(),
		fmt.Sprintf("New booking request from %s for %s on %s.", bk.ClientName(), pkg.Title(), req.Date))

	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// verifyPayment returns the amount the processor settled. Without a verifier
// the client's reference is kept as a hint and the quoted total is recorded.
// A reference already attached to a booking is refused either way.
func (s *BookingService) verifyPayment(ctx context.Context, reference string, quote bookingDomain.Quote) (int64, error) {
	reference = strings.TrimSpace(reference)
	if reference != "" {
		existing, err := s.repo.FindByPaymentReference(ctx, reference)
		if err == nil {
			s.logger.Warn("payment reference reused",
				zap.String("payment_reference", reference),
				zap.String("booking_id", existing.ID().String()),
			)
			return 0, bookingDomain.ErrPaymentReferenceUsed
		}
		if !domain.IsNotFound(err) {
			return 0, err
		}
	}
	if s.verifier == nil {
		if reference != "" {
			s.logger.Debug("payment reference stored without verification", zap.String("reference", reference))
		}
		return quote.TotalMinor, nil
	}
	if reference == "" {
		return 0, domain.NewMissingFieldsError("payment_reference")
	}

	v, err := s.verifier.Verify(ctx, reference)
	if err != nil {
		return 0, err
	}
	if !v.Succeeded() {
		return 0, domain.NewValidationError(fmt.Sprintf("%v: status %s", gateway.ErrPaymentNotSuccessful, v.Status))
	}
	if v.AmountMinor < quote.TotalMinor {
		return 0, domain.NewValidationError(
			fmt.Sprintf("amount paid %d is less than total %d", v.AmountMinor, quote.TotalMinor))
	}
	return v.AmountMinor, nil
}

// AcceptBooking confirms a pending booking on behalf of its celebrity.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, celebrityID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.loadForCelebrity(ctx, bookingID, celebrityID)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.HasConfirmedInSlot(ctx, bk.CelebrityID(), bk.EventDate(), bk.TimeSlot(), bk.ID())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewSlotUnavailableError(bk.CelebrityID().String(),
			bk.EventDate().Format(bookingDomain.DateLayout), bk.TimeSlot())
	}

	from := bk.Status()
	if err := bk.Accept(s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	s.events.statusChanged(ctx, events.BookingAccepted, bk, from, &celebrityID, false)
	s.events.notice(ctx, bk, bk.ClientID(),
		fmt.Sprintf("%s accepted your booking for %s.", bk.CelebrityName(), bk.EventDate().Format(bookingDomain.DateLayout)))

	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// DeclineBooking declines a pending booking on behalf of its celebrity.
func (s *BookingService) DeclineBooking(ctx context.Context, bookingID, celebrityID uuid.UUID, note string) (*BookingDTO, error) {
	bk, err := s.loadForCelebrity(ctx, bookingID, celebrityID)
	if err != nil {
		return nil, err
	}

	from := bk.Status()
	if err := bk.Decline(note, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	s.events.statusChanged(ctx, events.BookingDeclined, bk, from, &celebrityID, false)
	s.events.notice(ctx, bk, bk.ClientID(), fmt.Sprintf("%s declined your booking.", bk.CelebrityName()))

	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// CancelBooking moves a booking to cancelled or declined. The request must be
// explicitly confirmed, and declined may only be chosen by the celebrity or an
// admin. The counterpart is notified.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, actor Actor, req CancelRequest) (*BookingDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	target := bookingDomain.StatusCancelled
	if strings.TrimSpace(req.TargetStatus) != "" {
		parsed, err := bookingDomain.ParseBookingStatus(req.TargetStatus)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		target = parsed
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !bk.IsParty(actor.ID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	if target == bookingDomain.StatusDeclined && !actor.IsAdmin() && actor.ID != bk.CelebrityID() {
		return nil, domain.NewForbiddenError("only the celebrity can decline a booking")
	}

	from := bk.Status()
	if err := bk.Cancel(target, req.Message, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	eventType := events.BookingCancelled
	if target == bookingDomain.StatusDeclined {
		eventType = events.BookingDeclined
	}
	s.events.statusChanged(ctx, eventType, bk, from, &actor.ID, false)

	message := fmt.Sprintf("Booking %s was %s.", bk.Reference(), target)
	if req.Message != "" {
		message += " " + req.Message
	}
	switch actor.ID {
	case bk.ClientID():
		s.events.notice(ctx, bk, bk.CelebrityID(), message)
	case bk.CelebrityID():
		s.events.notice(ctx, bk, bk.ClientID(), message)
	default:
		s.events.notice(ctx, bk, bk.ClientID(), message)
		s.events.notice(ctx, bk, bk.CelebrityID(), message)
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor", actor.ID.String()),
	)

	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// SubmitReview records the client's single review of a completed booking.
func (s *BookingService) SubmitReview(ctx context.Context, bookingID, clientID uuid.UUID, req ReviewRequest) (*BookingDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ClientID() != clientID {
		return nil, domain.NewForbiddenError("booking does not belong to this client")
	}

	if err := bk.SubmitReview(req.Rating, req.Comment, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	rv, err := reviewDomain.NewReview(reviewDomain.NewReviewParams{
		BookingID:     bk.ID(),
		CelebrityID:   bk.CelebrityID(),
		ClientID:      bk.ClientID(),
		CelebrityName: bk.CelebrityName(),
		ClientName:    bk.ClientName(),
		Rating:        bk.Rating(),
		Comment:       bk.Comment(),
	}, *bk.ReviewedAt())
	if err == nil {
		err = s.reviews.Save(ctx, rv)
	}
	if err != nil {
		// The booking row is authoritative; the review listing can be rebuilt from it.
		s.logger.Error("failed to save review record",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}

	s.events.publish(ctx, events.BookingReviewed, bk.ID().String(), events.BookingReviewedEvent{
		BookingID:   bk.ID(),
		CelebrityID: bk.CelebrityID(),
		ClientID:    bk.ClientID(),
		Rating:      bk.Rating(),
		OccurredAt:  bk.UpdatedAt(),
	})
	s.events.notice(ctx, bk, bk.CelebrityID(),
		fmt.Sprintf("%s left a %d-star review.", bk.ClientName(), bk.Rating()))

	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// ProcessRefund reverses the client's payment and then marks the booking
// refunded. Every check runs before the reversal is attempted. If the
// reversal fails the booking is left exactly as it was. Once money has moved
// the booking is always recorded as refunded, even if another writer changed
// it in the meantime.
func (s *BookingService) ProcessRefund(ctx context.Context, bookingID uuid.UUID, req RefundRequest) (*BookingDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.ClientID() != req.ClientID {
		return nil, domain.NewForbiddenError("booking does not belong to this client")
	}
	if err := bk.CanRefund(); err != nil {
		return nil, err
	}

	limit := bk.AmountPaidMinor()
	if limit <= 0 {
		quote, err := s.pricing.Quote(bk.Package().PriceMinor)
		if err != nil {
			return nil, err
		}
		limit = quote.TotalMinor
	}
	if req.AmountMinor > limit {
		return nil, domain.NewValidationError(fmt.Sprintf("refund amount must be between 1 and %d", limit))
	}

	client, err := s.users.FindByID(ctx, bk.ClientID())
	if err != nil {
		return nil, err
	}
	payout := client.Payout()
	if payout == nil {
		return nil, domain.NewValidationError("client has no payout details on file")
	}

	result, err := s.refunds.ProcessRefund(ctx, gateway.RefundRequest{
		ClientID:      bk.ClientID(),
		BookingID:     bk.ID(),
		AmountMinor:   req.AmountMinor,
		Currency:      bk.Currency(),
		BankName:      payout.BankName,
		AccountNumber: payout.AccountNumber,
		AccountName:   payout.AccountName,
	})
	if err != nil {
		var extErr *domain.ExternalServiceError
		if !errors.As(err, &extErr) {
			err = domain.NewExternalServiceError("payout-function", err)
		}
		return nil, err
	}

	bk, err = s.recordRefund(ctx, bk, result.Reference, req.AmountMinor)
	if err != nil {
		s.logger.Error("refund sent but booking not updated",
			zap.String("booking_id", bookingID.String()),
			zap.String("refund_reference", result.Reference),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("booking refunded",
		zap.String("booking_id", bk.ID().String()),
		zap.Int64("amount", req.AmountMinor),
		zap.String("refund_reference", result.Reference),
	)

	s.events.publish(ctx, events.BookingRefunded, bk.ID().String(), events.BookingRefundedEvent{
		BookingID:       bk.ID(),
		ClientID:        bk.ClientID(),
		AmountMinor:     req.AmountMinor,
		Currency:        bk.Currency(),
		RefundReference: result.Reference,
		OccurredAt:      bk.UpdatedAt(),
	})
	s.events.notice(ctx, bk, bk.ClientID(), fmt.Sprintf("Your refund for booking %s has been processed.", bk.Reference()))

	dto := toBookingDTO(bk, s.pricing)
	return &dto, nil
}

// ConfirmCelebrityPayout marks the celebrity as paid. It ignores the booking
// status, so refunded bookings can still be paid out.
func (s *BookingService) ConfirmCelebrityPayout(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bk.ConfirmPayout(s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.BookingPayoutConfirmed, bk.ID().String(), events.PayoutConfirmedEvent{
		BookingID:   bk.ID(),
		CelebrityID: bk.CelebrityID(),
		PriceMinor:  bk.Package().PriceMinor,
		Status:      string(bk.Status()),
		OccurredAt:  bk.UpdatedAt(),
	})
	s.events.notice(ctx, bk, bk.CelebrityID(), fmt.Sprintf("Payout for booking %s has been sent.", bk.Reference()))

	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// GetBooking retrieves a booking visible to actor.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor Actor) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !bk.IsParty(actor.ID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk, s.pricing)
	return &result, nil
}

// ListForClient returns a page of the client's bookings.
func (s *BookingService) ListForClient(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.pricing), total, page, limit)
	return &result, nil
}

// ListForCelebrity returns a page of bookings made with the celebrity.
func (s *BookingService) ListForCelebrity(ctx context.Context, celebrityID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCelebrityID(ctx, celebrityID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings, s.pricing), total, page, limit)
	return &result, nil
}

// ListForActor lists the caller's own bookings according to their role.
func (s *BookingService) ListForActor(ctx context.Context, actor Actor, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	switch actor.Role {
	case auth.RoleCelebrity:
		return s.ListForCelebrity(ctx, actor.ID, page, limit)
	case auth.RoleAdmin:
		bookings, total, err := s.ListAllBookings(ctx, page, limit)
		if err != nil {
			return nil, err
		}
		result := domain.NewPaginatedResult(bookings, total, page, limit)
		return &result, nil
	default:
		return s.ListForClient(ctx, actor.ID, page, limit)
	}
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings, s.pricing), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// GetCelebrityEarnings sums package prices of the celebrity's completed
// bookings, split by payout status.
func (s *BookingService) GetCelebrityEarnings(ctx context.Context, celebrityID uuid.UUID) (*EarningsDTO, error) {
	e, err := s.repo.EarningsForCelebrity(ctx, celebrityID)
	if err != nil {
		return nil, err
	}
	return &EarningsDTO{
		CompletedBookings: e.CompletedCount,
		PendingMinor:      e.PendingMinor,
		PaidMinor:         e.PaidMinor,
		TotalMinor:        e.PendingMinor + e.PaidMinor,
		Currency:          domain.CurrencyNGN,
	}, nil
}

// Quote prices a package at checkout.
func (s *BookingService) Quote(priceMinor int64) (bookingDomain.Quote, error) {
	q, err := s.pricing.Quote(priceMinor)
	if err != nil {
		return bookingDomain.Quote{}, domain.NewValidationError(err.Error())
	}
	return q, nil
}

// --- Helpers ---

func (s *BookingService) loadForCelebrity(ctx context.Context, bookingID, celebrityID uuid.UUID) (*bookingDomain.Booking, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.CelebrityID() != celebrityID {
		return nil, domain.NewForbiddenError("booking does not belong to this celebrity")
	}
	return bk, nil
}

// recordRefund marks bk refunded after the reversal succeeded. On a lost
// compare-and-swap the booking is reloaded and marked again; refunded is
// reachable from every other status.
func (s *BookingService) recordRefund(ctx context.Context, bk *bookingDomain.Booking, reference string, amountMinor int64) (*bookingDomain.Booking, error) {
	for attempt := 1; ; attempt++ {
		if err := bk.MarkRefunded(reference, amountMinor, s.now()); err != nil {
			return nil, err
		}
		err := s.persist(ctx, bk)
		if err == nil {
			return bk, nil
		}
		if !domain.IsConflict(err) || attempt >= maxRefundRecordAttempts {
			return nil, err
		}
		if bk, err = s.repo.FindByID(ctx, bk.ID()); err != nil {
			return nil, err
		}
	}
}

// persist bumps the version and writes with compare-and-swap.
func (s *BookingService) persist(ctx context.Context, bk *bookingDomain.Booking) error {
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		if domain.IsConflict(err) {
			s.logger.Warn("booking update lost a concurrent write",
				zap.String("booking_id", bk.ID().String()),
				zap.Int64("version", bk.Version()),
			)
		}
		return err
	}
	return nil
}
