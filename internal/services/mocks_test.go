package services_test

import (
	"context"
	"time"

	"mandi/internal/models"
	"mandi/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return userResult(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return userResult(m.Called(ctx, id))
}

func userResult(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockProfileRepository is a mock implementation of repositories.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return profileResult(m.Called(ctx, id))
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return profileResult(m.Called(ctx, userID))
}

func (m *MockProfileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) ListSuppliers(ctx context.Context, verifiedOnly bool) ([]models.Profile, error) {
	args := m.Called(ctx, verifiedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileRepository) AddRating(ctx context.Context, supplierID string, score int) (*models.Profile, error) {
	return profileResult(m.Called(ctx, supplierID, score))
}

func profileResult(args mock.Arguments) (*models.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) List(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *models.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Transition(ctx context.Context, id string, from, to models.OrderStatus, reserveStock bool) (*models.Order, error) {
	args := m.Called(ctx, id, from, to, reserveStock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) OpenRoom(ctx context.Context, vendorID, supplierID string) (*models.ChatRoom, bool, error) {
	args := m.Called(ctx, vendorID, supplierID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.ChatRoom), args.Bool(1), args.Error(2)
}

func (m *MockChatRepository) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockChatRepository) ListRooms(ctx context.Context, profileID string) ([]models.ChatRoom, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]models.ChatRoom), args.Error(1)
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockChatRepository) MarkRead(ctx context.Context, roomID, readerID string) (int64, error) {
	args := m.Called(ctx, roomID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPriceAlertRepository struct {
	mock.Mock
}

func (m *MockPriceAlertRepository) Create(ctx context.Context, a *models.PriceAlert) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockPriceAlertRepository) GetByID(ctx context.Context, id string) (*models.PriceAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceAlert), args.Error(1)
}

func (m *MockPriceAlertRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.PriceAlert, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).([]models.PriceAlert), args.Error(1)
}

func (m *MockPriceAlertRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPriceAlertRepository) Trigger(ctx context.Context, productID string, price float64, at time.Time) ([]models.PriceAlert, error) {
	args := m.Called(ctx, productID, price, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PriceAlert), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event string, payload any) error {
	return m.Called(ctx, event, payload).Error(0)
}

func vendorProfile() *models.Profile {
	return &models.Profile{ID: "vendor-1", UserID: "user-v", Role: models.RoleVendor, BusinessName: "Chaat Corner", ContactPerson: "Asha"}
}

func supplierProfile() *models.Profile {
	return &models.Profile{ID: "supplier-1", UserID: "user-s", Role: models.RoleSupplier, BusinessName: "Fresh Farms", ContactPerson: "Ravi"}
}
