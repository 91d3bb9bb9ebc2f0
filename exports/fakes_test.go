package exports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/utils"
	"github.com/shopspring/decimal"
)

func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// memStorage is an in-memory ArtifactStorage with controllable timestamps,
// so retention and batch-status tests run without a bucket.
type memStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	updated map[string]time.Time
	clock   func() time.Time

	putErr error
	getErr error
}

func newMemStorage() *memStorage {
	return &memStorage{
		data:    map[string][]byte{},
		updated: map[string]time.Time{},
		clock:   time.Now,
	}
}

func (m *memStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	m.updated[key] = m.clock()
	return nil
}

func (m *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memStorage) List(_ context.Context, prefix string) ([]utils.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []utils.ObjectInfo
	for key, data := range m.data {
		if strings.HasPrefix(key, prefix) {
			out = append(out, utils.ObjectInfo{Key: key, Size: int64(len(data)), Updated: m.updated[key]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.updated, key)
	return nil
}

func (m *memStorage) Size(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return 0, utils.ErrorRecordNotFound
	}
	return int64(len(data)), nil
}

func (m *memStorage) URL(key string) string { return "mem://" + key }

// fakeProvider serves reports out of maps; nil entry means not found.
type fakeProvider struct {
	reports  map[int]*models.FinancialReport
	approved []*models.FinancialReport
	listErr  error
}

func (f *fakeProvider) GetReport(_ context.Context, id int) (*models.FinancialReport, error) {
	return f.reports[id], nil
}

func (f *fakeProvider) ListReportsByIds(_ context.Context, ids []int) ([]*models.FinancialReport, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.FinancialReport
	for _, id := range ids {
		if r, ok := f.reports[id]; ok && r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProvider) GetApprovedReport(_ context.Context, cooperativeId int, reportType models.ReportType, year int) (*models.FinancialReport, error) {
	for _, r := range f.approved {
		if r.CooperativeId == cooperativeId && r.ReportType == reportType && r.ReportingYear == year {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeProvider) ListApprovedReports(_ context.Context, cooperativeId int, year int) ([]*models.FinancialReport, error) {
	var out []*models.FinancialReport
	for _, r := range f.approved {
		if r.CooperativeId == cooperativeId && r.ReportingYear == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProvider) ListApprovedReportsByDateRange(_ context.Context, cooperativeId int, from, to time.Time) ([]*models.FinancialReport, error) {
	var out []*models.FinancialReport
	for _, r := range f.approved {
		end := time.Date(r.ReportingYear, 12, 31, 0, 0, 0, 0, time.UTC)
		if r.CooperativeId == cooperativeId && !end.Before(from) && !end.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (f *fakeAudit) Record(_ context.Context, event AuditEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeAudit) byAction(action string) []AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []AuditEvent
	for _, e := range f.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeQueue struct {
	mu       sync.Mutex
	messages []config.ExportTaskMessage
	err      error
	failIds  map[int]bool
}

func (f *fakeQueue) PublishExportTask(_ context.Context, msg config.ExportTaskMessage) error {
	if f.err != nil {
		return f.err
	}
	if f.failIds[msg.ReportId] {
		return fmt.Errorf("publish rejected for report %d", msg.ReportId)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

type fakeBatchStore struct {
	mu       sync.Mutex
	expected map[string]int
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{expected: map[string]int{}}
}

func (f *fakeBatchStore) SetExpectedCount(_ context.Context, batchId string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expected[batchId] = count
	return nil
}

func (f *fakeBatchStore) GetExpectedCount(_ context.Context, batchId string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count, ok := f.expected[batchId]
	return count, ok, nil
}

func (f *fakeBatchStore) ClearExpectedCount(_ context.Context, batchId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.expected, batchId)
	return nil
}

func newTestService(provider *fakeProvider, storage *memStorage) (*Service, *fakeAudit, *fakeQueue, *fakeBatchStore) {
	audit := &fakeAudit{}
	queue := &fakeQueue{}
	batches := newFakeBatchStore()
	svc := &Service{
		Provider: provider,
		Storage:  storage,
		Audit:    audit,
		Queue:    queue,
		Batches:  batches,
		Workers:  3,
	}
	return svc, audit, queue, batches
}

func fixedClockContext(at time.Time) ExportContext {
	return ExportContext{ActorId: 42, ActorName: "Budi Hartono", Clock: func() time.Time { return at }}
}

func testReport(id int, reportType models.ReportType, year int) *models.FinancialReport {
	return &models.FinancialReport{
		ID:            id,
		CooperativeId: 7,
		Cooperative:   &models.Cooperative{ID: 7, Name: "Koperasi Maju Bersama"},
		ReportType:    reportType,
		ReportingYear: year,
		Status:        models.ReportStatusApproved,
		LineItems: []*models.ReportLineItem{
			{ID: id*10 + 1, Name: fmt.Sprintf("Pos %d", id), Category: "asset", Amount: mustDecimal("1000000")},
		},
	}
}
