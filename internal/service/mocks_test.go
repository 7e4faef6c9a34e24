package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type stubSessionRepo struct {
	byCarDate   map[string][]models.BookingSession
	byBooking   map[string][]models.BookingSession
	byCar       []models.BookingSession
	appliedPlan *scheduling.AmendmentPlan
	listCalls   int
}

func (m *stubSessionRepo) ListByCarAndDate(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error) {
	m.listCalls++
	return m.byCarDate[carID+"|"+scheduling.DateKey(date)], nil
}

func (m *stubSessionRepo) ListByCarFromDate(ctx context.Context, carID string, from time.Time) ([]models.BookingSession, error) {
	return m.byCar, nil
}

func (m *stubSessionRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.BookingSession, error) {
	return m.byBooking[bookingID], nil
}

func (m *stubSessionRepo) ApplyAmendment(ctx context.Context, plan *scheduling.AmendmentPlan) error {
	m.appliedPlan = plan
	return nil
}

type stubHolidayRepo struct {
	holidays []models.HolidayDeclaration
	created  *models.HolidayDeclaration
}

func (m *stubHolidayRepo) ListActiveForDate(ctx context.Context, date time.Time) ([]models.HolidayDeclaration, error) {
	var out []models.HolidayDeclaration
	for _, h := range m.holidays {
		if scheduling.DateKey(date) >= scheduling.DateKey(h.StartDate) && scheduling.DateKey(date) <= scheduling.DateKey(h.EndDate) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *stubHolidayRepo) ListFromDate(ctx context.Context, from time.Time) ([]models.HolidayDeclaration, error) {
	return m.holidays, nil
}

func (m *stubHolidayRepo) List(ctx context.Context, filter models.HolidayFilter) ([]models.HolidayDeclaration, int, error) {
	return m.holidays, len(m.holidays), nil
}

func (m *stubHolidayRepo) Create(ctx context.Context, holiday *models.HolidayDeclaration) error {
	holiday.ID = "hol-new"
	m.created = holiday
	return nil
}

type stubSchoolReader struct {
	profile *models.SchoolProfile
}

func (m *stubSchoolReader) Get(ctx context.Context) (*models.SchoolProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

func (m *stubSchoolReader) Upsert(ctx context.Context, profile *models.SchoolProfile) error {
	m.profile = profile
	return nil
}

type stubCarReader struct {
	cars map[string]models.Car
}

func (m *stubCarReader) FindByID(ctx context.Context, id string) (*models.Car, error) {
	if car, ok := m.cars[id]; ok {
		return &car, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubCarReader) List(ctx context.Context, filter models.CarFilter) ([]models.Car, int, error) {
	var out []models.Car
	for _, car := range m.cars {
		if filter.Active == nil || car.Active == *filter.Active {
			out = append(out, car)
		}
	}
	return out, len(out), nil
}

type stubInvalidator struct {
	invalidatedCars []string
	invalidatedAll  int
}

func (m *stubInvalidator) InvalidateCar(ctx context.Context, carID string) {
	m.invalidatedCars = append(m.invalidatedCars, carID)
}

func (m *stubInvalidator) InvalidateAll(ctx context.Context) {
	m.invalidatedAll++
}

type stubCache struct {
	values   map[string][]byte
	hits     int
	misses   int
	sets     int
	patterns []string
}

func (m *stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		m.misses++
		return appErrors.ErrCacheMiss
	}
	m.hits++
	return json.Unmarshal(raw, dest)
}

func (m *stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *stubCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

type stubBookingRepo struct {
	bookings map[string]models.Booking
	created  *models.Booking
	sessions []models.BookingSession
	statuses map[string]models.BookingStatus
}

func (m *stubBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range m.bookings {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *stubBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubBookingRepo) CreateWithSessions(ctx context.Context, booking *models.Booking, sessions []models.BookingSession) error {
	if booking.ID == "" {
		booking.ID = "book-new"
	}
	if m.bookings == nil {
		m.bookings = make(map[string]models.Booking)
	}
	m.bookings[booking.ID] = *booking
	m.created = booking
	m.sessions = sessions
	return nil
}

func (m *stubBookingRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.BookingStatus)
	}
	m.statuses[id] = status
	return nil
}

type stubCourseReader struct {
	courses map[string]models.Course
}

func (m *stubCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type stubCustomerReader struct {
	customers map[string]models.Customer
}

func (m *stubCustomerReader) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}
