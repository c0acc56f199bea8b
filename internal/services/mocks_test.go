package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// ============================================================================
// BATCH USAGES
// ============================================================================

type mockUsageRepo struct {
	mu      sync.Mutex
	records map[uint][]models.BatchUsageRecord
	orphans map[uint]int64
	calls   int
	err     error
}

func newMockUsageRepo() *mockUsageRepo {
	return &mockUsageRepo{
		records: make(map[uint][]models.BatchUsageRecord),
		orphans: make(map[uint]int64),
	}
}

func (m *mockUsageRepo) GetByServiceOrder(ctx context.Context, serviceOrderID uint) ([]models.BatchUsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.BatchUsageRecord, len(m.records[serviceOrderID]))
	copy(out, m.records[serviceOrderID])
	return out, nil
}

func (m *mockUsageRepo) CountOrphans(ctx context.Context, serviceOrderID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orphans[serviceOrderID], nil
}

// ============================================================================
// SERVICE ORDERS
// ============================================================================

type savedCOGS struct {
	stamp   repository.COGSStamp
	history *models.CalculationHistory
}

type mockOrderRepo struct {
	mu         sync.Mutex
	orders     map[uint]*models.ServiceOrder
	saved      []savedCOGS
	cogsSum    decimal.Decimal
	cogsStatus string
	hours      decimal.Decimal
	laborFees  decimal.Decimal
	sumErr     error
	saveErr    error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uint]*models.ServiceOrder)}
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uint) (*models.ServiceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) GetWithParts(ctx context.Context, id uint) (*models.ServiceOrder, error) {
	return m.GetByID(ctx, id)
}

func (m *mockOrderRepo) SaveCOGS(ctx context.Context, id uint, stamp repository.COGSStamp, history *models.CalculationHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrRecordNotFound
	}
	o.TotalCOGS = stamp.TotalCOGS
	o.COGSCalculationMethod = stamp.Method
	calculatedAt := stamp.CalculationDate
	o.COGSCalculationDate = &calculatedAt
	breakdown := stamp.Breakdown
	o.COGSBreakdown = &breakdown
	m.saved = append(m.saved, savedCOGS{stamp: stamp, history: history})
	return nil
}

func (m *mockOrderRepo) SumCOGS(ctx context.Context, from, to time.Time, status string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cogsStatus = status
	if m.sumErr != nil {
		return decimal.Zero, m.sumErr
	}
	return m.cogsSum, nil
}

func (m *mockOrderRepo) SumActualHours(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hours, nil
}

func (m *mockOrderRepo) SumLaborFees(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.laborFees, nil
}

// ============================================================================
// FINANCIAL
// ============================================================================

type mockFinancialRepo struct {
	mu           sync.Mutex
	settings     map[string]*models.FinancialSettings
	transactions []models.FinancialTransaction
	history      map[uint][]models.CalculationHistory
	createErrs   []error
	nextID       uint
	sumErr       error
}

func newMockFinancialRepo() *mockFinancialRepo {
	return &mockFinancialRepo{
		settings: make(map[string]*models.FinancialSettings),
		history:  make(map[uint][]models.CalculationHistory),
		nextID:   1,
	}
}

func (m *mockFinancialRepo) CreateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.SettingName] = settings
	return nil
}

func (m *mockFinancialRepo) GetSettings(ctx context.Context, name string) (*models.FinancialSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[name]
	if !ok || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

func (m *mockFinancialRepo) UpdateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	return m.CreateSettings(ctx, settings)
}

func (m *mockFinancialRepo) GetCalculationHistory(ctx context.Context, serviceOrderID uint) ([]models.CalculationHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[serviceOrderID], nil
}

func (m *mockFinancialRepo) CreateTransaction(ctx context.Context, tx *models.FinancialTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range m.transactions {
		if existing.TransactionNumber == tx.TransactionNumber {
			return repository.ErrDuplicateKey
		}
	}
	tx.ID = m.nextID
	m.nextID++
	m.transactions = append(m.transactions, *tx)
	return nil
}

// SumTransactions mirrors the SQL aggregate over the in-memory rows.
func (m *mockFinancialRepo) SumTransactions(ctx context.Context, q repository.TransactionSum) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sumErr != nil {
		return decimal.Zero, m.sumErr
	}
	total := decimal.Zero
	for _, tx := range m.transactions {
		if tx.TransactionType != q.Type || tx.Status != models.TransactionCompleted {
			continue
		}
		if tx.TransactionDate.Before(q.From) || tx.TransactionDate.After(q.To) {
			continue
		}
		if len(q.Categories) > 0 {
			in := false
			for _, c := range q.Categories {
				if c == tx.Category {
					in = true
				}
			}
			if in == q.Exclude {
				continue
			}
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// ============================================================================
// CUSTOMERS AND PARTS
// ============================================================================

type mockCustomerRepo struct {
	customers map[uint]*models.Customer
	vehicles  map[uint]*models.Vehicle
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{
		customers: make(map[uint]*models.Customer),
		vehicles:  make(map[uint]*models.Vehicle),
	}
}

func (m *mockCustomerRepo) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return m.customers[id], nil
}

func (m *mockCustomerRepo) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	return m.vehicles[id], nil
}

type mockPartRepo struct {
	parts map[uint]models.Part
}

func (m *mockPartRepo) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Part, error) {
	out := make(map[uint]models.Part)
	for _, id := range ids {
		if p, ok := m.parts[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// ============================================================================
// WARRANTIES
// ============================================================================

type mockWarrantyRepo struct {
	mu          sync.Mutex
	warranties  map[uint]*models.Warranty
	claims      map[uint]*models.WarrantyClaim
	stamps      []repository.PartWarrantyStamp
	orders      *mockOrderRepo
	nextID      uint
	nextItemID  uint
	nextClaimID uint
	saveCalls   int
	saveErrs    []error
}

func newMockWarrantyRepo(orders *mockOrderRepo) *mockWarrantyRepo {
	return &mockWarrantyRepo{
		warranties:  make(map[uint]*models.Warranty),
		claims:      make(map[uint]*models.WarrantyClaim),
		orders:      orders,
		nextID:      1,
		nextItemID:  1,
		nextClaimID: 1,
	}
}

func cloneWarranty(w *models.Warranty) *models.Warranty {
	cp := *w
	cp.Items = append([]models.WarrantyItem(nil), w.Items...)
	return &cp
}

func (m *mockWarrantyRepo) GetByServiceOrderID(ctx context.Context, serviceOrderID uint) (*models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.warranties {
		if w.ServiceOrderID == serviceOrderID {
			return cloneWarranty(w), nil
		}
	}
	return nil, nil
}

func (m *mockWarrantyRepo) GetByCode(ctx context.Context, code string) (*models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.warranties {
		if w.WarrantyCode == code {
			return cloneWarranty(w), nil
		}
	}
	return nil, nil
}

func (m *mockWarrantyRepo) GetByID(ctx context.Context, id uint) (*models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.warranties[id]
	if !ok {
		return nil, nil
	}
	return cloneWarranty(w), nil
}

func (m *mockWarrantyRepo) Search(ctx context.Context, filter models.WarrantySearchFilter) ([]models.Warranty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Warranty
	for _, w := range m.warranties {
		if filter.CustomerID != nil && w.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(w.WarrantyCode), strings.ToLower(filter.Keyword)) {
			continue
		}
		out = append(out, *cloneWarranty(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarrantyStartDate.After(out[j].WarrantyStartDate) })
	return out, nil
}

func (m *mockWarrantyRepo) SaveGeneration(ctx context.Context, gen repository.WarrantyGeneration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if len(m.saveErrs) > 0 {
		err := m.saveErrs[0]
		m.saveErrs = m.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	for id, w := range m.warranties {
		if w.WarrantyCode == gen.Warranty.WarrantyCode && id != gen.Warranty.ID {
			return repository.ErrDuplicateKey
		}
	}
	if gen.Warranty.ID == 0 {
		gen.Warranty.ID = m.nextID
		m.nextID++
	}
	for i := range gen.Items {
		gen.Items[i].ID = m.nextItemID
		gen.Items[i].WarrantyID = gen.Warranty.ID
		m.nextItemID++
	}
	stored := cloneWarranty(gen.Warranty)
	stored.Items = append([]models.WarrantyItem(nil), gen.Items...)
	m.warranties[stored.ID] = stored
	m.stamps = append(m.stamps, gen.PartStamps...)

	if m.orders != nil {
		if o, ok := m.orders.orders[gen.ServiceOrderID]; ok {
			code := gen.Warranty.WarrantyCode
			end := gen.Warranty.WarrantyEndDate
			o.WarrantyCode = &code
			o.WarrantyExpiryDate = &end
			for _, stamp := range gen.PartStamps {
				for i := range o.Parts {
					if o.Parts[i].ID == stamp.ServiceOrderPartID {
						until := stamp.WarrantyUntil
						o.Parts[i].IsWarranty = true
						o.Parts[i].WarrantyUntil = &until
					}
				}
			}
		}
	}
	return nil
}

func (m *mockWarrantyRepo) CreateClaim(ctx context.Context, claim *models.WarrantyClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.ClaimNumber == claim.ClaimNumber {
			return repository.ErrDuplicateKey
		}
	}
	claim.ID = m.nextClaimID
	m.nextClaimID++
	cp := *claim
	m.claims[claim.ID] = &cp
	return nil
}

func (m *mockWarrantyRepo) GetClaim(ctx context.Context, id uint) (*models.WarrantyClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockWarrantyRepo) UpdateClaim(ctx context.Context, claim *models.WarrantyClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[claim.ID]; !ok {
		return fmt.Errorf("claim %d missing", claim.ID)
	}
	cp := *claim
	m.claims[claim.ID] = &cp
	return nil
}

// ============================================================================
// SEQUENCER
// ============================================================================

type fakeSequencer struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newFakeSequencer() *fakeSequencer {
	return &fakeSequencer{values: make(map[string]int64)}
}

func (f *fakeSequencer) Next(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.values[key]++
	return f.values[key], nil
}
