package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/storage"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	reportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportTimeout     = 2 * time.Minute
)

// OrderReporter is the slice of the order service the report job needs.
type OrderReporter interface {
	ExportExcel(ctx context.Context, r service.DateRange) ([]byte, error)
}

// OrderReportScheduler archives the previous day's orders as a spreadsheet.
type OrderReportScheduler struct {
	cron   *cron.Cron
	spec   string
	orders OrderReporter
	blobs  storage.BlobStore
	now    func() time.Time
}

func NewOrderReportScheduler(spec string, orders OrderReporter, blobs storage.BlobStore) *OrderReportScheduler {
	return &OrderReportScheduler{
		cron:   cron.New(),
		spec:   spec,
		orders: orders,
		blobs:  blobs,
		now:    time.Now,
	}
}

// Start registers the job and starts the cron loop.
func (s *OrderReportScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		day := s.now().AddDate(0, 0, -1)
		if _, err := s.RunFor(ctx, day); err != nil {
			logger.Error("Scheduled order report failed", err, map[string]interface{}{
				"day": day.Format("2006-01-02"),
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for order report", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order report scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop waits for a running job to finish.
func (s *OrderReportScheduler) Stop() {
	logger.Info("Stopping order report scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Order report scheduler stopped")
}

// RunFor exports the orders placed on day and stores the workbook under
// reports/. It returns the stored key, or "" when there were no orders.
func (s *OrderReportScheduler) RunFor(ctx context.Context, day time.Time) (string, error) {
	label := day.Format("2006-01-02")
	logger.Info("Generating order report", map[string]interface{}{
		"day": label,
	})

	data, err := s.orders.ExportExcel(ctx, service.DateRange{Start: &day, End: &day})
	if errors.Is(err, service.ErrNothingToExport) {
		logger.Info("No orders to report", map[string]interface{}{
			"day": label,
		})
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("export orders: %w", err)
	}

	key := fmt.Sprintf("%s/orders-%s.xlsx", storage.ReportFolder, label)
	if _, err := s.blobs.Put(ctx, key, data, reportContentType); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}

	logger.Info("Order report stored", map[string]interface{}{
		"day":   label,
		"key":   key,
		"bytes": len(data),
	})
	return key, nil
}
