package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/response"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meterProvider := metricnoop.NewMeterProvider()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := memory.NewProductRepository(tracer, logger)
	svc := service.NewProductService(repo, nil, tracer, meterProvider.Meter("test"), logger)
	h := handler.NewProductHandler(svc, logger)

	srv := NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0"}, &config.RateLimitConfig{}, h, meterProvider, logger)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetProduct(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/products/", `{"id":"P1","rewardRate":"5.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "P1", created.ID)
	assert.Equal(t, "AUDITING", string(created.Status))
	assert.True(t, created.StepAmount.IsZero())
	assert.Equal(t, 0, created.LockTerm)
	assert.False(t, created.CreateAt.IsZero())

	rec = do(t, h, http.MethodGet, "/products/P1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/products/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct_Errors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"malformed json", `{"id":`, http.StatusBadRequest, ""},
		{"missing id", `{"rewardRate":5}`, http.StatusBadRequest, "id"},
		{"rate out of range", `{"id":"X","rewardRate":30.5}`, http.StatusBadRequest, "rewardRate"},
		{"fractional step", `{"id":"X","rewardRate":5,"stepAmount":10.5}`, http.StatusBadRequest, "stepAmount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/products/", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestCreateProduct_DuplicateID(t *testing.T) {
	h := newTestServer(t)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/products/", `{"id":"P1","rewardRate":1}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/products/", `{"id":"P1","rewardRate":2}`).Code)
}

func TestQueryProducts(t *testing.T) {
	h := newTestServer(t)

	for _, body := range []string{
		`{"id":"P1","rewardRate":"1.5"}`,
		`{"id":"P2","rewardRate":"2"}`,
		`{"id":"P3","rewardRate":"7.25","status":"IN_SELL"}`,
		`{"id":"P4","rewardRate":"10"}`,
		`{"id":"P5","rewardRate":"12"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/products/", body).Code)
	}

	rec := do(t, h, http.MethodGet, "/products/?minRewardRate=2&maxRewardRate=10&statusList=AUDITING&sort=rewardRate,desc", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page dto.PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Content, 2)
	assert.Equal(t, "P4", page.Content[0].ID)
	assert.Equal(t, "P2", page.Content[1].ID)
	assert.EqualValues(t, 2, page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)

	// zero bound is ignored rather than enforced
	rec = do(t, h, http.MethodGet, "/products/?minRewardRate=0&size=2&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 5, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "P5", page.Content[0].ID)

	rec = do(t, h, http.MethodGet, "/products/?minRewardRate=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/products/?statusList=SOLD", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/products/?page=1844674407370955161&size=10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Content)
	assert.EqualValues(t, 5, page.TotalElements)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
