// Package bookvalue integrates with the external vehicle-valuation service
// used by the deal desk. The service speaks XML over HTTP; responses carry
// wholesale and retail book values per VIN.
package bookvalue

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/hdmotors/dealer-service/internal/config"
)

// Valuation is a book-value lookup result.
type Valuation struct {
	VIN       string  `json:"vin"`
	Wholesale float64 `json:"wholesale"`
	Retail    float64 `json:"retail"`
}

// Client handles the valuation service integration.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a valuation client.
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.BookValueURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildRequest creates the XML lookup request for a VIN.
func (c *Client) buildRequest(vin string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<ValuationRequest>
			<VIN>%s</VIN>
			<AsOf>%s</AsOf>
		</ValuationRequest>`, vin, time.Now().Format("2006-01-02"))
}

// sendRequest posts the XML request to the valuation service.
func (c *Client) sendRequest(xmlRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(xmlRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	// Log the raw XML response for debugging
	c.log.Debugf("Valuation XML response: %s", string(body))

	return body, nil
}

// parseResponse extracts the valuation figures from the XML body.
func (c *Client) parseResponse(vin string, rawBody []byte) (*Valuation, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	value := doc.FindElement("//ValuationResponse/Values")
	if value == nil {
		return nil, fmt.Errorf("no valuation data found in XML")
	}

	wholesale, err := parseAmount(value, "./Wholesale")
	if err != nil {
		return nil, err
	}
	retail, err := parseAmount(value, "./Retail")
	if err != nil {
		return nil, err
	}

	return &Valuation{VIN: vin, Wholesale: wholesale, Retail: retail}, nil
}

func parseAmount(parent *etree.Element, path string) (float64, error) {
	el := parent.FindElement(path)
	if el == nil {
		return 0, fmt.Errorf("element %s not found in XML", path)
	}
	v, err := strconv.ParseFloat(el.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s amount: %v", path, err)
	}
	return v, nil
}

// Lookup retrieves the current book values for a VIN.
func (c *Client) Lookup(vin string) (*Valuation, error) {
	if vin == "" {
		return nil, fmt.Errorf("vin is required")
	}

	body, err := c.sendRequest(c.buildRequest(vin))
	if err != nil {
		return nil, err
	}

	valuation, err := c.parseResponse(vin, body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Book value for %s: wholesale %.2f, retail %.2f", vin, valuation.Wholesale, valuation.Retail)
	return valuation, nil
}
