package nvd_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/dependahunt/pkg/infra/nvd"
)

const cveFixture = `{
  "vulnerabilities": [
    {
      "cve": {
        "descriptions": [
          {"lang": "es", "value": "descripcion en espanol"},
          {"lang": "en", "value": "lodash template injection"}
        ],
        "metrics": {
          "cvssMetricV31": [
            {"cvssData": {"baseScore": 7.2, "baseSeverity": "HIGH"}}
          ],
          "cvssMetricV2": [
            {"cvssData": {"baseScore": 5.8, "baseSeverity": ""}}
          ]
        }
      }
    }
  ]
}`

func TestClient_FetchCVE(t *testing.T) {
	ctx := context.Background()

	t.Run("parses description and newest CVSS metric", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, r.URL.Query().Get("cveId"), "CVE-2021-23337")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cveFixture))
		}))
		defer srv.Close()

		client := nvd.New(nvd.WithBaseURL(srv.URL))
		detail, err := client.FetchCVE(ctx, "CVE-2021-23337")
		gt.NoError(t, err)
		gt.Equal(t, detail.ID, "CVE-2021-23337")
		gt.Equal(t, detail.Description, "lodash template injection")
		gt.Equal(t, detail.Severity, "HIGH (7.2)")
	})

	t.Run("falls back to first description without english", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"vulnerabilities":[{"cve":{"descriptions":[{"lang":"es","value":"solo espanol"}],"metrics":{}}}]}`))
		}))
		defer srv.Close()

		detail, err := nvd.New(nvd.WithBaseURL(srv.URL)).FetchCVE(ctx, "CVE-2024-0001")
		gt.NoError(t, err)
		gt.Equal(t, detail.Description, "solo espanol")
		gt.Equal(t, detail.Severity, "Unknown")
	})

	t.Run("unknown CVE", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"vulnerabilities":[]}`))
		}))
		defer srv.Close()

		_, err := nvd.New(nvd.WithBaseURL(srv.URL)).FetchCVE(ctx, "CVE-9999-0000")
		gt.Error(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := nvd.New(nvd.WithBaseURL(srv.URL)).FetchCVE(ctx, "CVE-2021-23337")
		gt.Error(t, err)
	})
}
