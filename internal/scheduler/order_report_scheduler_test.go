package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	data  []byte
	err   error
	asked service.DateRange
}

func (f *fakeReporter) ExportExcel(ctx context.Context, r service.DateRange) ([]byte, error) {
	f.asked = r
	return f.data, f.err
}

type memoryBlobs struct {
	objects map[string][]byte
	err     error
}

func (m *memoryBlobs) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return key, nil
}

func (m *memoryBlobs) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryBlobs) URL(key string) string { return "/files/" + key }

func TestOrderReportScheduler_RunFor_StoresWorkbook(t *testing.T) {
	reporter := &fakeReporter{data: []byte("xlsx")}
	blobs := &memoryBlobs{}
	s := NewOrderReportScheduler("5 0 * * *", reporter, blobs)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	key, err := s.RunFor(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, "reports/orders-2026-03-14.xlsx", key)
	assert.Equal(t, []byte("xlsx"), blobs.objects[key])
	require.NotNil(t, reporter.asked.Start)
	assert.Equal(t, day, *reporter.asked.Start)
	assert.Equal(t, day, *reporter.asked.End)
}

func TestOrderReportScheduler_RunFor_NoOrders(t *testing.T) {
	blobs := &memoryBlobs{}
	s := NewOrderReportScheduler("5 0 * * *", &fakeReporter{err: service.ErrNothingToExport}, blobs)

	key, err := s.RunFor(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Empty(t, blobs.objects)
}

func TestOrderReportScheduler_RunFor_Failures(t *testing.T) {
	s := NewOrderReportScheduler("5 0 * * *", &fakeReporter{err: errors.New("db down")}, &memoryBlobs{})
	_, err := s.RunFor(context.Background(), time.Now())
	assert.ErrorContains(t, err, "export orders")

	s = NewOrderReportScheduler("5 0 * * *", &fakeReporter{data: []byte("x")}, &memoryBlobs{err: errors.New("denied")})
	_, err = s.RunFor(context.Background(), time.Now())
	assert.ErrorContains(t, err, "store report")
}

func TestOrderReportScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewOrderReportScheduler("not a cron", &fakeReporter{}, &memoryBlobs{})
	assert.Error(t, s.Start())
}
