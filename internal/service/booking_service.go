package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	CreateWithSessions(ctx context.Context, booking *models.Booking, sessions []models.BookingSession) error
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type bookingSessionRepository interface {
	ListByCarAndDate(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.BookingSession, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type customerReader interface {
	FindByID(ctx context.Context, id string) (*models.Customer, error)
}

type availabilityInvalidator interface {
	InvalidateCar(ctx context.Context, carID string)
	InvalidateAll(ctx context.Context)
}

// BookingService orchestrates booking creation: availability on the start
// date, session materialization across the course length, and the
// transactional insert.
type BookingService struct {
	bookings     bookingRepository
	sessions     bookingSessionRepository
	courses      courseReader
	customers    customerReader
	cars         carReader
	school       schoolReader
	holidays     availabilityHolidayRepository
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(bookings bookingRepository, sessions bookingSessionRepository, courses courseReader, customers customerReader, cars carReader, school schoolReader, holidays availabilityHolidayRepository, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:     bookings,
		sessions:     sessions,
		courses:      courses,
		customers:    customers,
		cars:         cars,
		school:       school,
		holidays:     holidays,
		availability: availability,
		validator:    validate,
		logger:       logger,
	}
}

// List returns bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a booking together with all of its sessions.
func (s *BookingService) Get(ctx context.Context, id string) (*dto.BookingDetail, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	sessions, err := s.sessions.ListByBooking(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking sessions")
	}
	return &dto.BookingDetail{Booking: *booking, Sessions: sessions}, nil
}

// Create books a course: the requested slot must be free on the start
// date, and one session per course day is materialized skipping the
// weekly off-day. Everything lands in a single transaction.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest, now time.Time) (*dto.BookingDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be formatted YYYY-MM-DD")
	}
	if scheduling.DateKey(startDate) <= scheduling.DateKey(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be in the future")
	}

	if _, err := s.customers.FindByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not active")
	}

	car, err := s.cars.FindByID(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "car not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load car")
	}
	if !car.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "car is not active")
	}
	if car.DriverID == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "car has no assigned instructor")
	}

	profile, err := s.school.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "school profile is not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}

	allSlots, err := generateProfileSlots(profile)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "school operating hours are invalid")
	}
	if !containsSlot(allSlots, req.Slot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot does not match the school's slot grid")
	}

	weeklyHoliday := ""
	if profile.WeeklyHoliday != nil {
		weeklyHoliday = *profile.WeeklyHoliday
	}

	startSessions, err := s.sessions.ListByCarAndDate(ctx, req.CarID, startDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	startHolidays, err := s.holidays.ListActiveForDate(ctx, startDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holiday declarations")
	}

	reasons := scheduling.BlockingReasons(scheduling.AvailabilityInput{
		Date:          startDate,
		CarID:         req.CarID,
		AllSlots:      allSlots,
		Sessions:      startSessions,
		Holidays:      startHolidays,
		WeeklyHoliday: weeklyHoliday,
		Now:           &now,
	}, scheduling.Slot(req.Slot))
	if len(reasons) > 0 {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "slot is not available on the start date: "+strings.Join(reasons, "; "))
	}

	dates, err := scheduling.MaterializeSessionDates(startDate, course.Days, weeklyHoliday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to materialize session dates")
	}

	booking := &models.Booking{
		CustomerID: req.CustomerID,
		CourseID:   req.CourseID,
		CarID:      req.CarID,
		DriverID:   *car.DriverID,
		Slot:       req.Slot,
		StartDate:  startDate,
		Status:     models.BookingStatusActive,
	}

	sessions := make([]models.BookingSession, 0, len(dates))
	for i, date := range dates {
		sessions = append(sessions, models.BookingSession{
			DayNumber:   i + 1,
			SessionDate: date,
			Slot:        req.Slot,
			CarID:       req.CarID,
			DriverID:    *car.DriverID,
			Status:      models.SessionStatusPending,
		})
	}

	if err := s.bookings.CreateWithSessions(ctx, booking, sessions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	if s.availability != nil {
		s.availability.InvalidateCar(ctx, req.CarID)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("car_id", booking.CarID),
		zap.String("slot", booking.Slot),
		zap.Int("sessions", len(sessions)))

	return &dto.BookingDetail{Booking: *booking, Sessions: sessions}, nil
}

// Complete marks a booking COMPLETED once its sessions are done.
func (s *BookingService) Complete(ctx context.Context, id string) error {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if booking.Status != models.BookingStatusActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "only active bookings can be completed")
	}
	if err := s.bookings.UpdateStatus(ctx, id, models.BookingStatusCompleted); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking status")
	}
	return nil
}

func containsSlot(slots []scheduling.Slot, value string) bool {
	for _, slot := range slots {
		if string(slot) == value {
			return true
		}
	}
	return false
}
