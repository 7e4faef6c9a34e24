package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/export"
)

type reportPaymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
}

// ReportService renders operational exports: the printable day sheet for
// instructors and the payments ledger for accounting.
type ReportService struct {
	sessions availabilitySessionRepository
	cars     carReader
	payments reportPaymentRepository
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(sessions availabilitySessionRepository, cars carReader, payments reportPaymentRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		sessions: sessions,
		cars:     cars,
		payments: payments,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		logger:   logger,
	}
}

// DaySheetPDF renders the schedule of every active car on a date.
func (s *ReportService) DaySheetPDF(ctx context.Context, date time.Time) ([]byte, error) {
	active := true
	cars, _, err := s.cars.List(ctx, models.CarFilter{Active: &active, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cars")
	}

	dataset := export.Dataset{
		Headers: []string{"Car", "Slot", "Day", "Booking", "Status"},
	}
	for _, car := range cars {
		sessions, err := s.sessions.ListByCarAndDate(ctx, car.ID, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
		}
		for _, sess := range sessions {
			if sess.DeletedAt != nil {
				continue
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Car":     car.RegistrationNo,
				"Slot":    sess.Slot,
				"Day":     strconv.Itoa(sess.DayNumber),
				"Booking": sess.BookingID,
				"Status":  string(sess.Status),
			})
		}
	}

	title := "Day sheet " + scheduling.DateKey(date)
	out, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render day sheet")
	}
	return out, nil
}

// PaymentsCSV renders the payment ledger matching the filter.
func (s *ReportService) PaymentsCSV(ctx context.Context, filter models.PaymentFilter) ([]byte, error) {
	filter.PageSize = 100
	if filter.Page < 1 {
		filter.Page = 1
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Booking", "Amount", "Currency", "Method", "Status", "Reference", "Paid At"},
	}
	for {
		payments, total, err := s.payments.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
		}
		for _, p := range payments {
			paidAt := ""
			if p.PaidAt != nil {
				paidAt = p.PaidAt.UTC().Format(time.RFC3339)
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"ID":        p.ID,
				"Booking":   p.BookingID,
				"Amount":    centsToString(p.AmountCents),
				"Currency":  p.Currency,
				"Method":    string(p.Method),
				"Status":    string(p.Status),
				"Reference": p.Reference,
				"Paid At":   paidAt,
			})
		}
		if filter.Page*filter.PageSize >= total || len(payments) == 0 {
			break
		}
		filter.Page++
	}

	out, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render payments export")
	}
	return out, nil
}

func centsToString(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, abs(cents%100))
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
