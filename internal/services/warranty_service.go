package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/sirupsen/logrus"
)

type WarrantyService interface {
	// Generate derives the warranty of a service order from its part
	// usages. An existing warranty is returned untouched unless
	// ForceRegenerate is set.
	Generate(ctx context.Context, serviceOrderID uint, opts models.WarrantyGenerationOptions) (*models.Warranty, error)
	GetByServiceOrder(ctx context.Context, serviceOrderID uint) (*models.Warranty, error)
	GetByCode(ctx context.Context, code string) (*models.Warranty, error)
	Search(ctx context.Context, filter models.WarrantySearchFilter) ([]models.Warranty, error)
	CreateClaim(ctx context.Context, warrantyID uint, req models.ClaimCreateRequest) (*models.WarrantyClaim, error)
	// UpdateClaimStatus returns nil when the claim does not exist.
	UpdateClaimStatus(ctx context.Context, claimID uint, req models.ClaimStatusUpdate) (*models.WarrantyClaim, error)
}

type warrantyService struct {
	warrantyRepo  repository.WarrantyRepository
	orderRepo     repository.ServiceOrderRepository
	customerRepo  repository.CustomerRepository
	partRepo      repository.PartRepository
	codes         *CodeGenerator
	defaultMonths int
	logger        logrus.FieldLogger
	now           func() time.Time
}

func NewWarrantyService(
	warrantyRepo repository.WarrantyRepository,
	orderRepo repository.ServiceOrderRepository,
	customerRepo repository.CustomerRepository,
	partRepo repository.PartRepository,
	codes *CodeGenerator,
	defaultMonths int,
	logger logrus.FieldLogger,
) WarrantyService {
	return &warrantyService{
		warrantyRepo:  warrantyRepo,
		orderRepo:     orderRepo,
		customerRepo:  customerRepo,
		partRepo:      partRepo,
		codes:         codes,
		defaultMonths: defaultMonths,
		logger:        logger,
		now:           time.Now,
	}
}

func missingFor(entity string, id interface{}) error {
	return fmt.Errorf("%w: %w", ErrInvalidState, &NotFoundError{Entity: entity, ID: id})
}

func (s *warrantyService) Generate(ctx context.Context, serviceOrderID uint, opts models.WarrantyGenerationOptions) (*models.Warranty, error) {
	existing, err := s.warrantyRepo.GetByServiceOrderID(ctx, serviceOrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil && !opts.ForceRegenerate {
		return existing, nil
	}

	order, err := s.orderRepo.GetWithParts(ctx, serviceOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, missingFor("service order", serviceOrderID)
	}
	customer, err := s.customerRepo.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, missingFor("customer", order.CustomerID)
	}
	vehicle, err := s.customerRepo.GetVehicle(ctx, order.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, missingFor("vehicle", order.VehicleID)
	}

	start := s.now()
	if opts.WarrantyStartDate != nil {
		start = *opts.WarrantyStartDate
	} else if order.HandoverDate != nil {
		start = *order.HandoverDate
	}

	defaultMonths := opts.DefaultWarrantyMonths
	if defaultMonths <= 0 {
		defaultMonths = s.defaultMonths
	}

	warranty := existing
	if warranty == nil {
		warranty = &models.Warranty{
			ServiceOrderID:   order.ID,
			Status:           string(models.WarrantyActive),
			HandoverBy:       opts.HandoverBy,
			HandoverLocation: opts.HandoverLocation,
		}
	} else {
		if opts.HandoverBy != nil {
			warranty.HandoverBy = opts.HandoverBy
		}
		if opts.HandoverLocation != nil {
			warranty.HandoverLocation = opts.HandoverLocation
		}
	}
	warranty.CustomerID = customer.ID
	warranty.VehicleID = vehicle.ID
	warranty.WarrantyStartDate = start

	items, stamps, err := s.buildItems(ctx, order, start, defaultMonths)
	if err != nil {
		return nil, err
	}

	end := start
	for _, item := range items {
		if item.WarrantyEndDate.After(end) {
			end = item.WarrantyEndDate
		}
	}
	if len(items) == 0 && defaultMonths > 0 {
		end = addMonths(start, defaultMonths)
	}
	warranty.WarrantyEndDate = end

	gen := repository.WarrantyGeneration{
		Warranty:       warranty,
		Items:          items,
		PartStamps:     stamps,
		ServiceOrderID: order.ID,
	}

	reuseCode := existing != nil && strings.TrimSpace(existing.WarrantyCode) != "" && !opts.ForceRegenerate
	if reuseCode {
		err = s.warrantyRepo.SaveGeneration(ctx, gen)
	} else {
		originalID := warranty.ID
		err = s.codes.InsertWithCode(ctx,
			func(ctx context.Context) (string, error) { return s.codes.WarrantyCode(ctx, order.ID) },
			func(code string) error {
				warranty.ID = originalID
				warranty.WarrantyCode = code
				for i := range gen.Items {
					gen.Items[i].ID = 0
				}
				return s.warrantyRepo.SaveGeneration(ctx, gen)
			})
	}
	if err != nil {
		s.logger.WithError(err).WithField("service_order_id", serviceOrderID).Error("failed to generate warranty")
		return nil, err
	}

	warranty.Items = gen.Items
	warranty.Customer = customer
	warranty.Vehicle = vehicle

	s.logger.WithFields(logrus.Fields{
		"service_order_id": serviceOrderID,
		"warranty_code":    warranty.WarrantyCode,
		"items":            len(items),
		"end_date":         end.Format("2006-01-02"),
	}).Info("warranty generated")

	return warranty, nil
}

// buildItems resolves coverage months per part usage: the usage's own
// warranty date, then the part default, then defaultMonths. Usages that
// end up with no coverage produce no item.
func (s *warrantyService) buildItems(ctx context.Context, order *models.ServiceOrder, start time.Time, defaultMonths int) ([]models.WarrantyItem, []repository.PartWarrantyStamp, error) {
	partIDs := make([]uint, 0, len(order.Parts))
	seen := make(map[uint]bool)
	for _, usage := range order.Parts {
		if !seen[usage.PartID] {
			seen[usage.PartID] = true
			partIDs = append(partIDs, usage.PartID)
		}
	}
	parts, err := s.partRepo.GetByIDs(ctx, partIDs)
	if err != nil {
		return nil, nil, err
	}

	items := make([]models.WarrantyItem, 0)
	stamps := make([]repository.PartWarrantyStamp, 0)
	for _, usage := range order.Parts {
		if usage.DeletedAt.Valid {
			continue
		}
		part, hasPart := parts[usage.PartID]

		months := 0
		if usage.WarrantyUntil != nil {
			months = monthsBetween(start, *usage.WarrantyUntil)
		}
		if months <= 0 && hasPart {
			months = part.WarrantyMonths
		}
		if months <= 0 {
			months = defaultMonths
		}
		if months <= 0 {
			continue
		}

		end := addMonths(start, months)
		item := models.WarrantyItem{
			ServiceOrderPartID: uintPtr(usage.ID),
			PartName:           usage.PartName,
			WarrantyMonths:     months,
			WarrantyStartDate:  start,
			WarrantyEndDate:    end,
			Status:             string(models.WarrantyActive),
		}
		if hasPart {
			item.PartID = uintPtr(part.ID)
			item.PartNumber = stringPtr(part.PartNumber)
			if item.PartName == "" {
				item.PartName = part.PartName
			}
		}
		items = append(items, item)
		stamps = append(stamps, repository.PartWarrantyStamp{ServiceOrderPartID: usage.ID, WarrantyUntil: end})
	}
	return items, stamps, nil
}

// addMonths moves t by n calendar months, clamping the day to the last
// day of the target month (Aug 31 + 6 months is Feb 28).
func addMonths(t time.Time, n int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

// monthsBetween converts a span to whole 30-day months, never negative.
func monthsBetween(start, until time.Time) int {
	days := until.Sub(start).Hours() / 24
	months := int(math.RoundToEven(days / 30))
	if months < 0 {
		return 0
	}
	return months
}

func (s *warrantyService) GetByServiceOrder(ctx context.Context, serviceOrderID uint) (*models.Warranty, error) {
	return s.warrantyRepo.GetByServiceOrderID(ctx, serviceOrderID)
}

func (s *warrantyService) GetByCode(ctx context.Context, code string) (*models.Warranty, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return s.warrantyRepo.GetByCode(ctx, code)
}

func (s *warrantyService) Search(ctx context.Context, filter models.WarrantySearchFilter) ([]models.Warranty, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	filter.Status = strings.TrimSpace(filter.Status)
	return s.warrantyRepo.Search(ctx, filter)
}

func (s *warrantyService) CreateClaim(ctx context.Context, warrantyID uint, req models.ClaimCreateRequest) (*models.WarrantyClaim, error) {
	if strings.TrimSpace(req.IssueDescription) == "" {
		return nil, fmt.Errorf("%w: issue description is required", ErrInvalidArgument)
	}
	warranty, err := s.warrantyRepo.GetByID(ctx, warrantyID)
	if err != nil {
		return nil, err
	}
	if warranty == nil {
		return nil, missingFor("warranty", warrantyID)
	}

	claim := &models.WarrantyClaim{
		WarrantyID:       warrantyID,
		ClaimDate:        s.now(),
		ServiceOrderID:   req.ServiceOrderID,
		CustomerID:       warranty.CustomerID,
		VehicleID:        warranty.VehicleID,
		IssueDescription: req.IssueDescription,
		Status:           string(models.ClaimPending),
		Notes:            req.Notes,
	}
	if req.ClaimDate != nil {
		claim.ClaimDate = *req.ClaimDate
	}
	if req.CustomerID != nil {
		claim.CustomerID = *req.CustomerID
	}
	if req.VehicleID != nil {
		claim.VehicleID = *req.VehicleID
	}

	if number := strings.TrimSpace(req.ClaimNumber); number != "" {
		claim.ClaimNumber = number
		if err := s.warrantyRepo.CreateClaim(ctx, claim); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return nil, fmt.Errorf("%w: claim number %s already exists", ErrConflict, number)
			}
			return nil, err
		}
		return claim, nil
	}

	err = s.codes.InsertWithCode(ctx,
		func(ctx context.Context) (string, error) { return s.codes.ClaimNumber(ctx, warrantyID) },
		func(code string) error {
			claim.ID = 0
			claim.ClaimNumber = code
			return s.warrantyRepo.CreateClaim(ctx, claim)
		})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

var claimTransitions = map[models.ClaimStatus][]models.ClaimStatus{
	models.ClaimPending:    {models.ClaimPending, models.ClaimInProgress, models.ClaimResolved, models.ClaimRejected},
	models.ClaimInProgress: {models.ClaimInProgress, models.ClaimResolved, models.ClaimRejected},
}

func parseClaimStatus(value string) (models.ClaimStatus, bool) {
	for _, status := range []models.ClaimStatus{models.ClaimPending, models.ClaimInProgress, models.ClaimResolved, models.ClaimRejected} {
		if strings.EqualFold(strings.TrimSpace(value), string(status)) {
			return status, true
		}
	}
	return "", false
}

func canTransition(from, to models.ClaimStatus) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *warrantyService) UpdateClaimStatus(ctx context.Context, claimID uint, req models.ClaimStatusUpdate) (*models.WarrantyClaim, error) {
	target, ok := parseClaimStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown claim status %q", ErrInvalidArgument, req.Status)
	}

	claim, err := s.warrantyRepo.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, nil
	}

	current, ok := parseClaimStatus(claim.Status)
	if !ok {
		current = models.ClaimPending
	}
	if !canTransition(current, target) {
		return nil, fmt.Errorf("%w: claim %d cannot move from %s to %s", ErrInvalidState, claimID, current, target)
	}

	claim.Status = string(target)
	if req.Resolution != nil {
		claim.Resolution = req.Resolution
	}
	if req.Notes != nil {
		claim.Notes = req.Notes
	}
	switch target {
	case models.ClaimResolved:
		resolved := s.now()
		if req.ResolvedDate != nil {
			resolved = *req.ResolvedDate
		}
		claim.ResolvedDate = &resolved
	case models.ClaimRejected:
		if req.ResolvedDate != nil {
			claim.ResolvedDate = req.ResolvedDate
		}
	}

	if err := s.warrantyRepo.UpdateClaim(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

func uintPtr(v uint) *uint {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
