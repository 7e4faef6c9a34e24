package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type amendmentSessionRepository interface {
	ListByBooking(ctx context.Context, bookingID string) ([]models.BookingSession, error)
	ListByCarFromDate(ctx context.Context, carID string, from time.Time) ([]models.BookingSession, error)
	ApplyAmendment(ctx context.Context, plan *scheduling.AmendmentPlan) error
}

type amendmentBookingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type amendmentHolidayRepository interface {
	ListFromDate(ctx context.Context, from time.Time) ([]models.HolidayDeclaration, error)
}

// AmendmentService amends existing bookings: cancellations and date
// changes are planned by the scheduling engine and applied atomically.
type AmendmentService struct {
	bookings     amendmentBookingRepository
	sessions     amendmentSessionRepository
	holidays     amendmentHolidayRepository
	school       schoolReader
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAmendmentService constructs an AmendmentService.
func NewAmendmentService(bookings amendmentBookingRepository, sessions amendmentSessionRepository, holidays amendmentHolidayRepository, school schoolReader, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *AmendmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmendmentService{
		bookings:     bookings,
		sessions:     sessions,
		holidays:     holidays,
		school:       school,
		availability: availability,
		validator:    validate,
		logger:       logger,
	}
}

// Amend plans and applies an amendment to the booking's sessions. Either
// everything is applied or the booking is left untouched.
func (s *AmendmentService) Amend(ctx context.Context, bookingID string, req dto.AmendBookingRequest, now time.Time) (*dto.AmendmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid amendment payload")
	}

	action := scheduling.AmendmentAction(req.Action)
	if !action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown amendment action")
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "booking is already cancelled")
	}

	bookingSessions, err := s.sessions.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking sessions")
	}

	selected, err := s.selectSessions(action, req.SessionIDs, bookingSessions, now)
	if err != nil {
		return nil, err
	}

	replacementDates, err := parseDates(req.ReplacementDates)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "replacement dates must be formatted YYYY-MM-DD")
	}

	carSessions, err := s.sessions.ListByCarFromDate(ctx, booking.CarID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load car sessions")
	}

	holidays, err := s.holidays.ListFromDate(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holiday declarations")
	}

	weeklyHoliday := ""
	profile, err := s.school.Get(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if profile != nil && profile.WeeklyHoliday != nil {
		weeklyHoliday = *profile.WeeklyHoliday
	}

	plan, err := scheduling.BuildAmendmentPlan(scheduling.AmendmentRequest{
		Action:           action,
		Reason:           req.Reason,
		Selected:         selected,
		BookingSessions:  bookingSessions,
		ReplacementDates: replacementDates,
		CarSessions:      carSessions,
		Holidays:         holidays,
		WeeklyHoliday:    weeklyHoliday,
		Now:              now,
	})
	if err != nil {
		var validationErr *scheduling.ValidationError
		if errors.As(err, &validationErr) {
			return nil, appErrors.Clone(appErrors.ErrValidation, validationErr.Message)
		}
		var blockedErr *scheduling.BlockedDatesError
		if errors.As(err, &blockedErr) {
			return nil, appErrors.Clone(appErrors.ErrDateBlocked, blockedErr.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan amendment")
	}

	if err := s.sessions.ApplyAmendment(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply amendment")
	}

	if action == scheduling.AmendCancelBooking {
		if err := s.bookings.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
			s.logger.Warn("failed to mark booking cancelled", zap.String("booking_id", bookingID), zap.Error(err))
		}
	}

	if s.availability != nil {
		s.availability.InvalidateCar(ctx, booking.CarID)
	}

	s.logger.Info("amendment applied",
		zap.String("booking_id", bookingID),
		zap.String("action", string(action)),
		zap.Int("cancelled", len(plan.Cancellations)),
		zap.Int("created", len(plan.Creations)))

	sessions, err := s.sessions.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload booking sessions")
	}

	return &dto.AmendmentResult{
		BookingID: bookingID,
		Cancelled: len(plan.Cancellations),
		Created:   len(plan.Creations),
		Sessions:  sessions,
	}, nil
}

// selectSessions resolves the amendment's target sessions. A cancel
// action with no explicit selection targets every amendable session.
func (s *AmendmentService) selectSessions(action scheduling.AmendmentAction, ids []string, sessions []models.BookingSession, now time.Time) ([]models.BookingSession, error) {
	if len(ids) == 0 {
		if action == scheduling.AmendChangeDate {
			return nil, appErrors.Clone(appErrors.ErrValidation, "change date requires explicit session ids")
		}
		var selected []models.BookingSession
		for _, sess := range sessions {
			if sess.DeletedAt != nil {
				continue
			}
			if sess.Status != models.SessionStatusPending && sess.Status != models.SessionStatusConfirmed {
				continue
			}
			if scheduling.DateKey(sess.SessionDate) <= scheduling.DateKey(now) {
				continue
			}
			selected = append(selected, sess)
		}
		if len(selected) == 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "booking has no amendable sessions")
		}
		return selected, nil
	}

	byID := make(map[string]models.BookingSession, len(sessions))
	for _, sess := range sessions {
		byID[sess.ID] = sess
	}
	selected := make([]models.BookingSession, 0, len(ids))
	for _, id := range ids {
		sess, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session "+id+" does not belong to the booking")
		}
		selected = append(selected, sess)
	}
	return selected, nil
}

func parseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}
