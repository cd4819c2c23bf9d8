package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bodegamart/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock repositories and services

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByFilter(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) CountByFilter(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) (int, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) DeactivateExpiredPromotions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetByProductID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Inventory, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) FindProductIDs(ctx context.Context, tenantID uuid.UUID, filter *models.InventoryIDFilter) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockPurchasesRepository struct {
	mock.Mock
}

func (m *MockPurchasesRepository) FindProductIDsByPaymentMethod(ctx context.Context, tenantID uuid.UUID, paymentMethod string) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) ListByAction(ctx context.Context, tenantID uuid.UUID, action string, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tenantID, action, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetExchangeRate(ctx context.Context) (decimal.Decimal, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) SetExchangeRate(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error {
	args := m.Called(ctx, rate, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantProducts(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

type PricingServiceTestSuite struct {
	suite.Suite
	productRepo   *MockProductRepository
	inventoryRepo *MockInventoryRepository
	purchasesRepo *MockPurchasesRepository
	auditLogsRepo *MockAuditLogsRepository
	cacheService  *MockCacheService
	service       PricingService
	ctx           context.Context
	tenantID      uuid.UUID
	userID        uuid.UUID
}

func (s *PricingServiceTestSuite) SetupTest() {
	s.productRepo = new(MockProductRepository)
	s.inventoryRepo = new(MockInventoryRepository)
	s.purchasesRepo = new(MockPurchasesRepository)
	s.auditLogsRepo = new(MockAuditLogsRepository)
	s.cacheService = new(MockCacheService)
	s.service = NewPricingService(s.productRepo, s.inventoryRepo, s.purchasesRepo, s.auditLogsRepo, s.cacheService, 0)
	s.ctx = context.Background()
	s.tenantID = uuid.New()
	s.userID = uuid.New()
}

func TestPricingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PricingServiceTestSuite))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (s *PricingServiceTestSuite) buildProduct() *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		TenantID: s.tenantID,
		Name:     "Harina de Maíz",
		Category: "alimentos",
		IsActive: true,
		Variants: []models.Variant{
			{SKU: "SKU-001", Name: "Default", BasePrice: dec("100"), CostPrice: dec("70")},
		},
		Suppliers: []models.SupplierLink{
			{
				SupplierID:             uuid.New(),
				SupplierName:           "Proveedor 1",
				PaymentCurrency:        "USD_PARALELO",
				PreferredPaymentMethod: "zelle",
				UsesParallelRate:       true,
			},
		},
	}
}

// --- Preview ---

func (s *PricingServiceTestSuite) TestPreview_PercentageIncrease() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)

	previews, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{Category: "alimentos", Status: models.StatusActive},
		models.PercentageIncrease{Percentage: dec("10")})

	assert.NoError(s.T(), err)
	assert.Len(s.T(), previews, 1)
	assert.Equal(s.T(), product.ID, previews[0].ProductID)
	assert.Equal(s.T(), "SKU-001", previews[0].SKU)
	assert.True(s.T(), previews[0].CurrentPrice.Equal(dec("100")))
	assert.True(s.T(), previews[0].NewPrice.Equal(dec("110")), "got %s", previews[0].NewPrice)
	assert.False(s.T(), previews[0].HasError)
}

func (s *PricingServiceTestSuite) TestPreview_NeverWrites() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{},
		models.PercentageIncrease{Percentage: dec("10")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
	s.auditLogsRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	// The preview must also leave the in-memory product untouched.
	assert.True(s.T(), product.Variants[0].BasePrice.Equal(dec("100")))
}

func (s *PricingServiceTestSuite) TestPreview_Repeatable() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)

	criteria := models.BulkUpdateCriteria{Category: "alimentos"}
	operation := models.MarginUpdate{TargetMargin: dec("0.5")}

	first, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID, criteria, operation)
	assert.NoError(s.T(), err)
	second, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID, criteria, operation)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), first, second)
}

func (s *PricingServiceTestSuite) TestPreview_FlagsErrorVariants() {
	product := s.buildProduct()
	product.Variants = append(product.Variants, models.Variant{
		SKU: "SKU-NOCOST", Name: "No Cost", BasePrice: dec("100"), CostPrice: dec("0"),
	})
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)

	previews, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{},
		models.InflationFormula{ParallelRate: dec("55"), BCVRate: dec("50"), TargetMargin: dec("0.3")})

	assert.NoError(s.T(), err)
	assert.Len(s.T(), previews, 2)
	assert.False(s.T(), previews[0].HasError)
	// ceil(70 * 1.1 * 1.3 * 50) = ceil(5005) = 5005
	assert.True(s.T(), previews[0].NewPrice.Equal(dec("5005")), "got %s", previews[0].NewPrice)
	assert.True(s.T(), previews[1].HasError)
	assert.Equal(s.T(), "Sin Costo de Referencia", previews[1].ErrorMessage)
}

func (s *PricingServiceTestSuite) TestPreview_AppliesProductCap() {
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return f.Limit == DefaultPreviewMaxProducts
	})).Return([]*models.Product{}, nil)

	previews, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), previews)
	s.productRepo.AssertExpectations(s.T())
}

// --- Execute ---

func (s *PricingServiceTestSuite) TestExecute_UpdatesAndAudits() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)
	s.productRepo.On("Save", s.ctx, product).Return(nil)
	s.auditLogsRepo.On("Create", s.ctx, mock.MatchedBy(func(entry *models.AuditLog) bool {
		return entry.Action == models.ActionBulkPriceUpdate &&
			entry.Entity == models.EntityProduct &&
			entry.EntityID == models.BulkEntityID &&
			entry.TenantID == s.tenantID &&
			entry.PerformedBy == s.userID &&
			entry.Details["updated_count"] == 1
	})).Return(nil)
	s.cacheService.On("InvalidateTenantProducts", s.ctx, s.tenantID).Return(nil)

	count, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{Category: "alimentos"},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)
	assert.True(s.T(), product.Variants[0].BasePrice.Equal(dec("105")), "got %s", product.Variants[0].BasePrice)
	s.productRepo.AssertNumberOfCalls(s.T(), "Save", 1)
	s.auditLogsRepo.AssertNumberOfCalls(s.T(), "Create", 1)
}

func (s *PricingServiceTestSuite) TestExecute_ZeroMatchesStillAudits() {
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{}, nil)
	s.auditLogsRepo.On("Create", s.ctx, mock.MatchedBy(func(entry *models.AuditLog) bool {
		return entry.Details["updated_count"] == 0
	})).Return(nil)

	count, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{Category: "inexistente"},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 0, count)
	s.productRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
	s.auditLogsRepo.AssertNumberOfCalls(s.T(), "Create", 1)
	s.cacheService.AssertNotCalled(s.T(), "InvalidateTenantProducts", mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestExecute_SkipsErrorVariants() {
	product := s.buildProduct()
	product.Variants = []models.Variant{
		{SKU: "SKU-NOCOST", Name: "No Cost", BasePrice: dec("100"), CostPrice: dec("0")},
	}
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)
	s.auditLogsRepo.On("Create", s.ctx, mock.Anything).Return(nil)

	count, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{},
		models.InflationFormula{ParallelRate: dec("55"), BCVRate: dec("50"), TargetMargin: dec("0.3")})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 0, count)
	assert.True(s.T(), product.Variants[0].BasePrice.Equal(dec("100")), "errored variant must keep its price")
	s.productRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestExecute_UnchangedPriceNotCounted() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)
	s.auditLogsRepo.On("Create", s.ctx, mock.Anything).Return(nil)

	count, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{},
		models.PercentageIncrease{Percentage: dec("0")})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 0, count)
	s.productRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestExecute_Promotion() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)
	s.productRepo.On("Save", s.ctx, product).Return(nil)
	s.auditLogsRepo.On("Create", s.ctx, mock.Anything).Return(nil)
	s.cacheService.On("InvalidateTenantProducts", s.ctx, s.tenantID).Return(nil)

	count, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{},
		models.PromotionLaunch{DiscountPercentage: dec("15"), DurationDays: 7})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)
	assert.True(s.T(), product.HasActivePromotion)
	if assert.NotNil(s.T(), product.Promotion) {
		assert.True(s.T(), product.Promotion.IsActive)
		assert.True(s.T(), product.Promotion.DiscountPercentage.Equal(dec("15")))
		assert.True(s.T(), product.Promotion.AutoDeactivate)
		assert.Equal(s.T(), 7, product.Promotion.DurationDays)
	}
	// Base price is untouched by promotions.
	assert.True(s.T(), product.Variants[0].BasePrice.Equal(dec("100")))
}

func (s *PricingServiceTestSuite) TestExecute_SaveFailureAborts() {
	productA := s.buildProduct()
	productB := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{productA, productB}, nil)
	s.productRepo.On("Save", s.ctx, productA).Return(errors.New("connection reset"))

	// Two concurrent bulk updates over overlapping products are
	// last-write-wins with no conflict detection; what IS guaranteed is
	// that a persistence failure stops the batch and surfaces the error.
	_, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.Error(s.T(), err)
	s.productRepo.AssertNotCalled(s.T(), "Save", s.ctx, productB)
	s.auditLogsRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestExecute_AuditFailureIsNotFatal() {
	product := s.buildProduct()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{product}, nil)
	s.productRepo.On("Save", s.ctx, product).Return(nil)
	s.auditLogsRepo.On("Create", s.ctx, mock.Anything).Return(errors.New("audit sink down"))
	s.cacheService.On("InvalidateTenantProducts", s.ctx, s.tenantID).Return(nil)

	count, err := s.service.ExecuteBulkUpdate(s.ctx, s.tenantID, s.userID,
		models.BulkUpdateCriteria{},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)
}

// --- Criteria resolution ---

func (s *PricingServiceTestSuite) TestCriteria_DefaultStatusIsActive() {
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return f.IsActive != nil && *f.IsActive
	})).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertExpectations(s.T())
}

func (s *PricingServiceTestSuite) TestCriteria_StatusAllDropsConstraint() {
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return f.IsActive == nil
	})).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{Status: models.StatusAll},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertExpectations(s.T())
}

func (s *PricingServiceTestSuite) TestCriteria_SupplierPaymentFilters() {
	active := true
	parallel := true
	supplierID := uuid.New()
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return f.SupplierPaymentCurrency == "USD_PARALELO" &&
			f.SupplierPaymentMethod == "zelle" &&
			f.UsesParallelRate != nil && *f.UsesParallelRate == parallel &&
			f.SupplierID != nil && *f.SupplierID == supplierID &&
			f.IsActive != nil && *f.IsActive == active
	})).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{
			SupplierID:              &supplierID,
			SupplierPaymentCurrency: "USD_PARALELO",
			SupplierPaymentMethod:   "zelle",
			UsesParallelRate:        &parallel,
		},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertExpectations(s.T())
	// Direct supplier filters must not consult purchase history.
	s.purchasesRepo.AssertNotCalled(s.T(), "FindProductIDsByPaymentMethod", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestCriteria_LegacyPaymentMethod() {
	idA := uuid.New()
	s.purchasesRepo.On("FindProductIDsByPaymentMethod", s.ctx, s.tenantID, "efectivo_usd").Return([]uuid.UUID{idA}, nil)
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return len(f.IDs) == 1 && f.IDs[0] == idA
	})).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{PaymentMethod: "efectivo_usd"},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertExpectations(s.T())
}

func (s *PricingServiceTestSuite) TestCriteria_LegacyPaymentMethodNoMatches() {
	s.purchasesRepo.On("FindProductIDsByPaymentMethod", s.ctx, s.tenantID, "pago_movil").Return([]uuid.UUID{}, nil)

	previews, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{PaymentMethod: "pago_movil"},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), previews)
	s.productRepo.AssertNotCalled(s.T(), "FindByFilter", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestCriteria_LowStockIntersection() {
	idA := uuid.New()
	idB := uuid.New()
	s.inventoryRepo.On("FindProductIDs", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.InventoryIDFilter) bool {
		return f.LowStockAlert != nil && *f.LowStockAlert
	})).Return([]uuid.UUID{idA, idB}, nil)
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return len(f.IDs) == 2
	})).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{StockLevel: models.StockLevelLow},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertExpectations(s.T())
}

func (s *PricingServiceTestSuite) TestCriteria_InventoryIntersectsExplicitIDs() {
	idA := uuid.New()
	idB := uuid.New()
	idC := uuid.New()
	s.inventoryRepo.On("FindProductIDs", s.ctx, s.tenantID, mock.Anything).Return([]uuid.UUID{idB, idC}, nil)
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.ProductFilter) bool {
		return len(f.IDs) == 1 && f.IDs[0] == idB
	})).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{IDs: []uuid.UUID{idA, idB}, Velocity: models.VelocityHigh},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.productRepo.AssertExpectations(s.T())
}

func (s *PricingServiceTestSuite) TestCriteria_EmptyInventorySetShortCircuits() {
	s.inventoryRepo.On("FindProductIDs", s.ctx, s.tenantID, mock.Anything).Return([]uuid.UUID{}, nil)

	previews, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{Velocity: models.VelocityHigh},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), previews)
	s.productRepo.AssertNotCalled(s.T(), "FindByFilter", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PricingServiceTestSuite) TestCriteria_HighVelocityThreshold() {
	s.inventoryRepo.On("FindProductIDs", s.ctx, s.tenantID, mock.MatchedBy(func(f *models.InventoryIDFilter) bool {
		return f.TurnoverRateAtLeast != nil && *f.TurnoverRateAtLeast == models.HighVelocityTurnoverRate
	})).Return([]uuid.UUID{uuid.New()}, nil)
	s.productRepo.On("FindByFilter", s.ctx, s.tenantID, mock.Anything).Return([]*models.Product{}, nil)

	_, err := s.service.PreviewBulkUpdate(s.ctx, s.tenantID,
		models.BulkUpdateCriteria{Velocity: models.VelocityHigh},
		models.PercentageIncrease{Percentage: dec("5")})

	assert.NoError(s.T(), err)
	s.inventoryRepo.AssertExpectations(s.T())
}

// --- Helpers ---

func (s *PricingServiceTestSuite) TestGetExchangeRate_FallsBack() {
	s.cacheService.On("GetExchangeRate", s.ctx).Return(decimal.Zero, false, nil)

	rate, err := s.service.GetExchangeRate(s.ctx)
	assert.NoError(s.T(), err)
	assert.True(s.T(), rate.Equal(dec("36.5")), "got %s", rate)
}

func (s *PricingServiceTestSuite) TestGetExchangeRate_UsesCachedValue() {
	s.cacheService.On("GetExchangeRate", s.ctx).Return(dec("42.75"), true, nil)

	rate, err := s.service.GetExchangeRate(s.ctx)
	assert.NoError(s.T(), err)
	assert.True(s.T(), rate.Equal(dec("42.75")))
}

func (s *PricingServiceTestSuite) TestCalculateMargin() {
	assert.True(s.T(), s.service.CalculateMargin(dec("70"), dec("100")).Equal(dec("30")))
	assert.True(s.T(), s.service.CalculateMargin(dec("0"), dec("100")).IsZero())
}
