package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"codefriend-store/internal/client"
	"codefriend-store/internal/model"
	"codefriend-store/internal/repository"
	"codefriend-store/internal/service"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// single connection keeps the in-memory db alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.LicenseKey{},
		&model.DownloadHistory{},
		&model.AuditLog{},
	))

	return db
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	uploadErr error
	assetErr  error
}

func (f *fakeStorage) UploadSlip(_ context.Context, orderID, filename string, _ io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "https://blobs.test/slips/" + orderID + "/" + filename
	f.mu.Lock()
	f.uploads = append(f.uploads, url)
	f.mu.Unlock()
	return url, nil
}

func (f *fakeStorage) AssetURL(_ context.Context, assetKey string) (string, error) {
	if f.assetErr != nil {
		return "", f.assetErr
	}
	return "https://blobs.test/signed/" + assetKey, nil
}

type fakeMailer struct {
	sent chan client.OrderApprovedMail
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan client.OrderApprovedMail, 8)}
}

func (f *fakeMailer) SendOrderApproved(_ context.Context, mail client.OrderApprovedMail) error {
	if f.err != nil {
		return f.err
	}
	f.sent <- mail
	return nil
}

func (f *fakeMailer) waitForMail(t *testing.T) client.OrderApprovedMail {
	t.Helper()
	select {
	case mail := <-f.sent:
		return mail
	case <-time.After(3 * time.Second):
		t.Fatal("no mail dispatched")
		return client.OrderApprovedMail{}
	}
}

type fixture struct {
	db           *gorm.DB
	storage      *fakeStorage
	mailer       *fakeMailer
	orders       service.OrderService
	verify       service.VerifyService
	entitlements service.EntitlementService
	telemetry    service.TelemetryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupDB(t)
	storage := &fakeStorage{}
	mailer := newFakeMailer()

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	return &fixture{
		db:           db,
		storage:      storage,
		mailer:       mailer,
		orders:       service.NewOrderService(db, storage, productRepo, orderRepo, licenseRepo),
		verify:       service.NewVerifyService(db, mailer, orderRepo, licenseRepo, auditRepo, userRepo, productRepo),
		entitlements: service.NewEntitlementService(db, storage, productRepo, orderRepo, downloadRepo),
		telemetry:    service.NewTelemetryService(client.NewMemoryViewMarkerStore(), time.Hour, productRepo, downloadRepo),
	}
}

func (f *fixture) seedUser(t *testing.T, role string) model.User {
	t.Helper()
	user := model.User{
		ID:    uuid.NewString(),
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Role:  role,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) seedProduct(t *testing.T, price decimal.Decimal, isFree, isActive bool) model.Product {
	t.Helper()
	product := model.Product{
		ID:       uuid.NewString(),
		Title:    gofakeit.ProductName(),
		Price:    price,
		IsFree:   isFree,
		IsActive: isActive,
		AssetKey: "assets/" + uuid.NewString(),
	}
	require.NoError(t, f.db.Create(&product).Error)
	// GORM omits zero-valued fields carrying a default tag on insert, so
	// IsActive=false would be stored as the column default (true) without
	// this explicit write.
	require.NoError(t, f.db.Model(&product).UpdateColumn("is_active", isActive).Error)
	return product
}

// seedVerifiableOrder walks a fresh order up to WAITING_VERIFY.
func (f *fixture) seedVerifiableOrder(t *testing.T, user model.User, product model.Product) string {
	t.Helper()
	ctx := context.Background()

	created, err := f.orders.Create(ctx, actorFor(user), product.ID)
	require.NoError(t, err)

	err = f.orders.SubmitEvidence(ctx, actorFor(user), created.OrderID, "slip.jpg", bytes.NewReader([]byte("img")))
	require.NoError(t, err)

	return created.OrderID
}

func (f *fixture) orderStatus(t *testing.T, orderID string) model.OrderStatus {
	t.Helper()
	var order model.Order
	require.NoError(t, f.db.Where("id = ?", orderID).First(&order).Error)
	return order.Status
}

func actorFor(user model.User) model.Actor {
	return model.Actor{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
}
