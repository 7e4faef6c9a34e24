package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type availabilitySessionRepository interface {
	ListByCarAndDate(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error)
}

type availabilityHolidayRepository interface {
	ListActiveForDate(ctx context.Context, date time.Time) ([]models.HolidayDeclaration, error)
}

type schoolReader interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
}

type carReader interface {
	FindByID(ctx context.Context, id string) (*models.Car, error)
	List(ctx context.Context, filter models.CarFilter) ([]models.Car, int, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AvailabilityCacheConfig controls caching of computed availability.
type AvailabilityCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AvailabilityService computes which slots are free per car and date. It
// caches the date-level result; the caller's clock is applied after the
// cache so past-slot trimming stays correct within the TTL.
type AvailabilityService struct {
	sessions availabilitySessionRepository
	holidays availabilityHolidayRepository
	school   schoolReader
	cars     carReader
	cache    availabilityCache
	config   AvailabilityCacheConfig
	logger   *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(sessions availabilitySessionRepository, holidays availabilityHolidayRepository, school schoolReader, cars carReader, cache availabilityCache, config AvailabilityCacheConfig, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{sessions: sessions, holidays: holidays, school: school, cars: cars, cache: cache, config: config, logger: logger}
}

type cachedAvailability struct {
	WeeklyHoliday  bool     `json:"weekly_holiday"`
	AllSlots       []string `json:"all_slots"`
	AvailableSlots []string `json:"available_slots"`
}

// SlotsForCar returns the availability of one car on one date, evaluated
// against the provided clock. The second return value reports whether the
// day was served from cache.
func (s *AvailabilityService) SlotsForCar(ctx context.Context, carID string, date time.Time, now time.Time) (*dto.DayAvailability, bool, error) {
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "car not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load car")
	}
	if !car.Active {
		return nil, false, appErrors.Clone(appErrors.ErrPreconditionFailed, "car is not active")
	}
	return s.slotsForCar(ctx, car.ID, date, now)
}

// GridForDate returns the availability of every active car on one date.
// The cache-hit flag is true only when every car was served from cache.
func (s *AvailabilityService) GridForDate(ctx context.Context, date time.Time, now time.Time) ([]dto.DayAvailability, bool, error) {
	active := true
	cars, _, err := s.cars.List(ctx, models.CarFilter{Active: &active, PageSize: 100})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cars")
	}

	grid := make([]dto.DayAvailability, 0, len(cars))
	cacheHit := len(cars) > 0
	for _, car := range cars {
		day, dayHit, err := s.slotsForCar(ctx, car.ID, date, now)
		if err != nil {
			return nil, false, err
		}
		cacheHit = cacheHit && dayHit
		grid = append(grid, *day)
	}
	return grid, cacheHit, nil
}

// InvalidateCar drops cached availability for one car across all dates.
func (s *AvailabilityService) InvalidateCar(ctx context.Context, carID string) {
	if !s.config.Enabled || s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("availability:%s:*", carID)); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.String("car_id", carID), zap.Error(err))
	}
}

// InvalidateAll drops every cached availability entry. Used when the
// school profile or a school-wide holiday changes.
func (s *AvailabilityService) InvalidateAll(ctx context.Context) {
	if !s.config.Enabled || s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "availability:*"); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
	}
}

func (s *AvailabilityService) slotsForCar(ctx context.Context, carID string, date time.Time, now time.Time) (*dto.DayAvailability, bool, error) {
	dateKey := scheduling.DateKey(date)
	cacheKey := fmt.Sprintf("availability:%s:%s", carID, dateKey)

	var cached cachedAvailability
	if s.config.Enabled && s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return s.finalize(carID, dateKey, date, cached, now), true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	cached, err := s.compute(ctx, carID, date)
	if err != nil {
		return nil, false, err
	}

	if s.config.Enabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, cached, s.config.TTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return s.finalize(carID, dateKey, date, cached, now), false, nil
}

// compute builds the clock-independent availability for a car and date:
// weekly holiday, occupancy and declarations applied, past slots not yet
// trimmed.
func (s *AvailabilityService) compute(ctx context.Context, carID string, date time.Time) (cachedAvailability, error) {
	profile, err := s.school.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cachedAvailability{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "school profile is not configured")
		}
		return cachedAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}

	allSlots, err := generateProfileSlots(profile)
	if err != nil {
		return cachedAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "school operating hours are invalid")
	}

	sessions, err := s.sessions.ListByCarAndDate(ctx, carID, date)
	if err != nil {
		return cachedAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	holidays, err := s.holidays.ListActiveForDate(ctx, date)
	if err != nil {
		return cachedAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holiday declarations")
	}

	weeklyHoliday := ""
	if profile.WeeklyHoliday != nil {
		weeklyHoliday = *profile.WeeklyHoliday
	}

	available := scheduling.AvailableSlots(scheduling.AvailabilityInput{
		Date:          date,
		CarID:         carID,
		AllSlots:      allSlots,
		Sessions:      sessions,
		Holidays:      holidays,
		WeeklyHoliday: weeklyHoliday,
	})

	return cachedAvailability{
		WeeklyHoliday:  scheduling.IsWeeklyHoliday(date, weeklyHoliday),
		AllSlots:       slotStrings(allSlots),
		AvailableSlots: slotStrings(available),
	}, nil
}

// finalize applies the caller's clock to a cached day, trimming slots
// that already started.
func (s *AvailabilityService) finalize(carID, dateKey string, date time.Time, cached cachedAvailability, now time.Time) *dto.DayAvailability {
	remaining := scheduling.AvailableSlots(scheduling.AvailabilityInput{
		Date:     date,
		CarID:    carID,
		AllSlots: toSlots(cached.AvailableSlots),
		Now:      &now,
	})
	return &dto.DayAvailability{
		CarID:          carID,
		Date:           dateKey,
		WeeklyHoliday:  cached.WeeklyHoliday,
		AllSlots:       cached.AllSlots,
		AvailableSlots: slotStrings(remaining),
	}
}

func generateProfileSlots(profile *models.SchoolProfile) ([]scheduling.Slot, error) {
	lunchStart, lunchEnd := "", ""
	if profile.LunchStartTime != nil {
		lunchStart = *profile.LunchStartTime
	}
	if profile.LunchEndTime != nil {
		lunchEnd = *profile.LunchEndTime
	}
	return scheduling.GenerateSlots(profile.DayStartTime, profile.DayEndTime, lunchStart, lunchEnd)
}

func slotStrings(slots []scheduling.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, string(slot))
	}
	return out
}

func toSlots(values []string) []scheduling.Slot {
	out := make([]scheduling.Slot, 0, len(values))
	for _, v := range values {
		out = append(out, scheduling.Slot(v))
	}
	return out
}
