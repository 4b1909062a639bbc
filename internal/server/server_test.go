package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/internal/ledger"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/server"
)

func newTestServer() *server.Server {
	config := &server.Config{
		Address: ":8080",
		Debug:   true,
	}
	led := ledger.New(ledger.NewMemoryStore(), ledger.DefaultConfig())
	return server.NewServer(config, led, zerolog.Nop())
}

func postJSON(t *testing.T, srv *server.Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeVerdict(t *testing.T, w *httptest.ResponseRecorder) *model.Verdict {
	t.Helper()
	var verdict model.Verdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	return &verdict
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestValidateIBANEndpoint(t *testing.T) {
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate/iban", map[string]string{
		"value": "DE89 3704 0044 0532 0130 00",
	})
	require.Equal(t, http.StatusOK, w.Code)

	verdict := decodeVerdict(t, w)
	assert.Equal(t, model.Valid, verdict.Validity)
	assert.Equal(t, "DE89370400440532013000", verdict.Normalized)
	assert.Equal(t, "37040044", verdict.BankCode)
	assert.Equal(t, "0532013000", verdict.AccountNumber)
}

func TestValidateInvalidIBAN(t *testing.T) {
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate/iban", map[string]string{
		"value": "DE90370400440532013000",
	})
	require.Equal(t, http.StatusOK, w.Code)

	verdict := decodeVerdict(t, w)
	assert.Equal(t, model.Invalid, verdict.Validity)
	assert.NotEmpty(t, verdict.Defects)
}

func TestValidateVATIDFormatOnly(t *testing.T) {
	// No BZSt client configured: German VAT-IDs get a tri-state verdict.
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate/vat-id", map[string]string{
		"value": "DE123456789",
	})
	require.Equal(t, http.StatusOK, w.Code)

	verdict := decodeVerdict(t, w)
	assert.Equal(t, model.Unknown, verdict.Validity)
	assert.Equal(t, model.StatusFormatValid, verdict.Status)
}

func TestValidateUnknownClass(t *testing.T) {
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate/passport", map[string]string{"value": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateEmptyValue(t *testing.T) {
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate/iban", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateAutoDetect(t *testing.T) {
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate", map[string]string{
		"value": "MARKDEF1100",
	})
	require.Equal(t, http.StatusOK, w.Code)

	verdict := decodeVerdict(t, w)
	assert.Equal(t, model.ClassBIC, verdict.Class)
}

func TestValidateBatch(t *testing.T) {
	srv := newTestServer()

	w := postJSON(t, srv, "/api/v1/validate/batch", map[string][]string{
		"values": {
			"DE89370400440532013000",
			"DE90370400440532013000",
			"FR12345678901",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rep struct {
		Passed  bool `json:"passed"`
		Total   int  `json:"total"`
		Valid   int  `json:"valid"`
		Invalid int  `json:"invalid"`
		Unknown int  `json:"unknown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.False(t, rep.Passed)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 1, rep.Valid)
	assert.Equal(t, 1, rep.Invalid)
	assert.Equal(t, 1, rep.Unknown)
}

func TestInvoiceValidateEndpoint(t *testing.T) {
	srv := newTestServer()

	ublInvoice := `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
    xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
    xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:ID>RE-2026-00001</cbc:ID>
  <cbc:IssueDate>2026-03-14</cbc:IssueDate>
  <cbc:DocumentCurrencyCode>EUR</cbc:DocumentCurrencyCode>
</Invoice>`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoice/validate", bytes.NewReader([]byte(ublInvoice)))
	req.Header.Set("Content-Type", "application/xml")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Profile string `json:"profile"`
		Verdict struct {
			Validity string         `json:"validity"`
			Defects  []model.Defect `json:"defects"`
			Hash     string         `json:"hash"`
		} `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "en16931-ubl", response.Profile)
	assert.Equal(t, "invalid", response.Verdict.Validity)
	assert.NotEmpty(t, response.Verdict.Defects, "seller and totals are missing")
	assert.NotEmpty(t, response.Verdict.Hash)
}

func TestInvoiceValidateUnknownSyntax(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoice/validate",
		bytes.NewReader([]byte(`<Order><ID>1</ID></Order>`)))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestNumberGenerateEndpoint(t *testing.T) {
	srv := newTestServer()

	for i := 1; i <= 2; i++ {
		w := postJSON(t, srv, "/api/v1/numbers/generate", map[string]string{"prefix": "RE"})
		require.Equal(t, http.StatusCreated, w.Code)

		var entry ledger.Entry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		assert.Equal(t, i, entry.Sequence)
		assert.Equal(t, "RE", entry.Prefix)
	}
}

func TestNumberRegisterAndAudit(t *testing.T) {
	srv := newTestServer()

	for _, seq := range []int{1, 3} {
		w := postJSON(t, srv, "/api/v1/numbers/register", map[string]any{
			"prefix":   "RE",
			"year":     2026,
			"sequence": seq,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/numbers/audit?prefix=RE", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var audit ledger.AuditReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &audit))
	assert.False(t, audit.Clean())
	require.Len(t, audit.Gaps, 1)
	assert.Equal(t, 2, audit.Gaps[0].Sequence)
}

func TestNumberAuditRequiresPrefix(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/numbers/audit", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
