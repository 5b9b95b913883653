// Package nvd fetches CVE details from the NVD 2.0 REST API. Enrichment is
// best effort: callers degrade to alert data alone when NVD is unreachable.
package nvd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/model"
)

const defaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

// Client queries the NVD CVE API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ interfaces.CVEEnricher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates an NVD client with a bounded request timeout.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			Descriptions []struct {
				Lang  string `json:"lang"`
				Value string `json:"value"`
			} `json:"descriptions"`
			Metrics map[string][]struct {
				CVSSData struct {
					BaseScore    float64 `json:"baseScore"`
					BaseSeverity string  `json:"baseSeverity"`
				} `json:"cvssData"`
			} `json:"metrics"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

// FetchCVE retrieves description and CVSS severity for one CVE ID.
func (c *Client) FetchCVE(ctx context.Context, cveID string) (*model.CVEDetail, error) {
	reqURL := c.baseURL + "?cveId=" + url.QueryEscape(cveID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build NVD request", goerr.V("cve", cveID))
	}
	req.Header.Set("User-Agent", "dependahunt/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query NVD", goerr.V("cve", cveID))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected NVD status",
			goerr.V("cve", cveID), goerr.V("status", resp.StatusCode))
	}

	var body nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode NVD response", goerr.V("cve", cveID))
	}

	if len(body.Vulnerabilities) == 0 {
		return nil, goerr.New("CVE not found in NVD", goerr.V("cve", cveID))
	}

	cve := body.Vulnerabilities[0].CVE
	detail := &model.CVEDetail{ID: cveID, Severity: "Unknown"}

	for _, d := range cve.Descriptions {
		if d.Lang == "en" {
			detail.Description = d.Value
			break
		}
	}
	if detail.Description == "" && len(cve.Descriptions) > 0 {
		detail.Description = cve.Descriptions[0].Value
	}

	// Newest CVSS version available wins.
	for _, key := range []string{"cvssMetricV40", "cvssMetricV31", "cvssMetricV30", "cvssMetricV2"} {
		metrics, ok := cve.Metrics[key]
		if !ok || len(metrics) == 0 {
			continue
		}
		data := metrics[0].CVSSData
		if data.BaseSeverity != "" {
			detail.Severity = fmt.Sprintf("%s (%.1f)", data.BaseSeverity, data.BaseScore)
		} else {
			detail.Severity = fmt.Sprintf("CVSS %.1f", data.BaseScore)
		}
		break
	}

	return detail, nil
}
