package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"codefriend-store/internal/client"
	"codefriend-store/internal/model"
	"codefriend-store/internal/repository"
	"codefriend-store/internal/server"
	"codefriend-store/internal/service"
)

const testSecret = "server-test-secret"

type stubStorage struct{}

func (stubStorage) UploadSlip(_ context.Context, orderID, filename string, _ io.Reader) (string, error) {
	return "https://blobs.test/slips/" + orderID + "/" + filename, nil
}

func (stubStorage) AssetURL(_ context.Context, assetKey string) (string, error) {
	return "https://blobs.test/signed/" + assetKey, nil
}

type stubMailer struct{}

func (stubMailer) SendOrderApproved(context.Context, client.OrderApprovedMail) error {
	return nil
}

type testEnv struct {
	db  *gorm.DB
	srv *server.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Product{}, &model.Order{},
		&model.LicenseKey{}, &model.DownloadHistory{}, &model.AuditLog{},
	))

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	srv := server.NewServer(
		testSecret,
		service.NewOrderService(db, stubStorage{}, productRepo, orderRepo, licenseRepo),
		service.NewVerifyService(db, stubMailer{}, orderRepo, licenseRepo, auditRepo, userRepo, productRepo),
		service.NewEntitlementService(db, stubStorage{}, productRepo, orderRepo, downloadRepo),
		service.NewTelemetryService(client.NewMemoryViewMarkerStore(), time.Hour, productRepo, downloadRepo),
	)

	return &testEnv{db: db, srv: srv}
}

func (e *testEnv) seedUser(t *testing.T, role string) model.User {
	t.Helper()
	user := model.User{ID: uuid.NewString(), Name: "User " + uuid.NewString()[:8], Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) seedProduct(t *testing.T, price decimal.Decimal, isFree bool) model.Product {
	t.Helper()
	product := model.Product{ID: uuid.NewString(), Title: "Product " + uuid.NewString()[:8], Price: price, IsFree: isFree, IsActive: true, AssetKey: "assets/" + uuid.NewString()}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}

func (e *testEnv) token(t *testing.T, user model.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func slipForm(t *testing.T) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("slip", "slip.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPurchaseFlow(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedUser(t, model.RoleCustomer)
	staff := env.seedUser(t, model.RoleStaff)
	product := env.seedProduct(t, decimal.NewFromInt(500), false)

	// checkout
	rec := env.do(t, http.MethodPost, "/api/orders", env.token(t, customer),
		strings.NewReader(fmt.Sprintf(`{"product_id":%q}`, product.ID)), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	orderID := created.OrderID
	require.NotEmpty(t, orderID)

	// download is still forbidden
	rec = env.do(t, http.MethodGet, "/api/products/"+product.ID+"/download", env.token(t, customer), nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "purchase required")

	// slip upload
	form, contentType := slipForm(t)
	rec = env.do(t, http.MethodPost, "/api/orders/"+orderID+"/evidence", env.token(t, customer), form, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// approval is staff-only
	rec = env.do(t, http.MethodPost, "/api/admin/orders/"+orderID+"/approve", env.token(t, customer), nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/orders/"+orderID+"/approve", env.token(t, staff), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// a second approval reads as already processed
	rec = env.do(t, http.MethodPost, "/api/admin/orders/"+orderID+"/approve", env.token(t, staff), nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already processed")

	// the customer can now download
	rec = env.do(t, http.MethodGet, "/api/products/"+product.ID+"/download", env.token(t, customer), nil, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), product.AssetKey)

	// and read their license key
	rec = env.do(t, http.MethodGet, "/api/orders/"+orderID+"/license", env.token(t, customer), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var license struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &license))
	assert.NotEmpty(t, license.Key)
}

func TestAnonymousAccess(t *testing.T) {
	env := newTestEnv(t)
	freeProduct := env.seedProduct(t, decimal.Zero, true)
	paidProduct := env.seedProduct(t, decimal.NewFromInt(100), false)

	t.Run("free product downloads without a token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/products/"+freeProduct.ID+"/download", "", nil, "")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), freeProduct.AssetKey)
	})

	t.Run("paid product denies anonymous download", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/products/"+paidProduct.ID+"/download", "", nil, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("orders api requires a token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/orders", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("view endpoint accepts anonymous hits", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/products/"+freeProduct.ID+"/view", "", nil, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
