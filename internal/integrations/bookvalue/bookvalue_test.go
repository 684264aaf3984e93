package bookvalue

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmotors/dealer-service/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClient(&config.Config{BookValueURL: srv.URL}, logger)
}

func TestLookupParsesValuation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?>
			<ValuationResponse>
				<Values>
					<Wholesale>8250.00</Wholesale>
					<Retail>10995.00</Retail>
				</Values>
			</ValuationResponse>`))
	})

	v, err := c.Lookup("1HGCM82633A004352")
	require.NoError(t, err)
	assert.Equal(t, "1HGCM82633A004352", v.VIN)
	assert.Equal(t, 8250.00, v.Wholesale)
	assert.Equal(t, 10995.00, v.Retail)
}

func TestLookupRejectsMissingValues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<ValuationResponse></ValuationResponse>`))
	})

	_, err := c.Lookup("1HGCM82633A004352")
	assert.Error(t, err)
}

func TestLookupRequiresVIN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.Lookup("")
	assert.Error(t, err)
}
