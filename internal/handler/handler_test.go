package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmotors/dealer-service/internal/config"
	"github.com/hdmotors/dealer-service/internal/service"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := service.NewService(nil, nil, logger, &config.Config{JWTSecret: "test"})
	return NewHandler(svc, logger)
}

func TestQuoteEndpoint(t *testing.T) {
	h := newTestHandler(t)
	body := `{"principal":20000,"apr_percent":19.99,"frequency":"Bi-Weekly","term_months":60}`
	req := httptest.NewRequest(http.MethodPost, "/api/amortization/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Quote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Quote struct {
			Payment    string `json:"payment"`
			TermMonths int    `json:"term_months"`
		} `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 60, resp.Quote.TermMonths)
	assert.NotEmpty(t, resp.Quote.Payment)
}

func TestQuoteEndpointInfeasiblePayment(t *testing.T) {
	h := newTestHandler(t)
	body := `{"principal":20000,"apr_percent":19.99,"frequency":"Bi-Weekly","payment":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/amortization/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Quote(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "payment too small")
	assert.NotEmpty(t, resp.Hint)
}

func TestQuoteEndpointRejectsInvalidBody(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/amortization/quote", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	h.Quote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogDailyRejectsBadDate(t *testing.T) {
	h := newTestHandler(t)
	body := `{"date":"06/05/2024","payments":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/daily-log", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.LogDaily(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid date", resp.Message)
	assert.Equal(t, "expected YYYY-MM-DD", resp.Hint)
}

func TestScreenshotRequiresReportType(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/shortcut-screenshot", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Screenshot(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
