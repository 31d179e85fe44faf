package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(Config{
		DBPath:      filepath.Join(t.TempDir(), "api.db"),
		SchemesPath: filepath.Join("..", "schemes", "schemes_seed.json"),
		SilentDB:    true,
		JWTSecret:   "test-secret",
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	router, err := srv.Router()
	if err != nil {
		t.Fatalf("Router: %v", err)
	}
	return srv, router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if env.Timestamp == "" {
		t.Fatal("envelope missing timestamp")
	}
	return env
}

func TestHealthz(t *testing.T) {
	_, router := newTestServer(t)
	rec := doJSON(t, router, http.MethodGet, "/api/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env := decodeEnvelope(t, rec); !env.Success {
		t.Fatalf("envelope = %+v, want success", env)
	}
}

func TestCheckMessageEndpoint(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/check-message", CheckMessageRequest{
		MessageText: "URGENT you won a lottery, click here immediately http://kisan-bonus.xyz",
		Channel:     "sms",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("envelope = %+v, want success", env)
	}

	payload, _ := json.Marshal(env.Data)
	var dto MessageVerdictDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if dto.Verdict != "FAKE" {
		t.Fatalf("verdict = %s, want FAKE (reasons %v)", dto.Verdict, dto.Reasons)
	}
	if len(dto.Reasons) == 0 {
		t.Fatal("expected reasons in response")
	}
}

func TestCheckMessageRejectsEmptyText(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/check-message", CheckMessageRequest{
		MessageText: "   ",
		Channel:     "sms",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == "" {
		t.Fatalf("envelope = %+v, want failure with error", env)
	}
}

func TestVerifyDocumentEndpoint(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/verify-document", VerifyDocumentRequest{
		DocumentRef:  "uploads/aadhaar-7.png",
		DocumentType: "aadhaar",
		UserID:       "user-7",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	payload, _ := json.Marshal(env.Data)
	var dto DocumentVerdictDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	// No OCR or registry configured, so the document scores clean and earns
	// a certificate.
	if dto.Status != "verified" {
		t.Fatalf("status = %s, want verified", dto.Status)
	}
	if dto.CertificateID == "" || dto.QRCode == "" {
		t.Fatalf("expected certificate, got %+v", dto)
	}

	certs := doJSON(t, router, http.MethodGet, "/api/certificates/user-7", nil)
	if certs.Code != http.StatusOK {
		t.Fatalf("certificates status = %d", certs.Code)
	}
	certEnv := decodeEnvelope(t, certs)
	certPayload, _ := json.Marshal(certEnv.Data)
	var certDTOs []CertificateDTO
	if err := json.Unmarshal(certPayload, &certDTOs); err != nil {
		t.Fatalf("decode certificates: %v", err)
	}
	if len(certDTOs) != 1 || certDTOs[0].CertID != dto.CertificateID {
		t.Fatalf("certificates = %+v, want the issued one", certDTOs)
	}
}

func TestReportsFeedRiskMap(t *testing.T) {
	_, router := newTestServer(t)

	for i := 0; i < 14; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/reports", CreateReportRequest{
			Village:  "Rampur",
			District: "Sitapur",
			Category: "lottery-scam",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("report status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/risk-map/Sitapur", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("risk map status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	payload, _ := json.Marshal(env.Data)
	var dto RiskMapDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		t.Fatalf("decode risk map: %v", err)
	}
	if len(dto.Villages) != 1 {
		t.Fatalf("villages = %+v, want one", dto.Villages)
	}
	v := dto.Villages[0]
	if v.Village != "Rampur" || v.Score != 70 || v.Risk != "high" {
		t.Fatalf("village = %+v, want Rampur at score 70 high", v)
	}
}

func TestSchemesEndpoint(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/api/schemes?category=farmers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	payload, _ := json.Marshal(env.Data)
	var dtos []SchemeDTO
	if err := json.Unmarshal(payload, &dtos); err != nil {
		t.Fatalf("decode schemes: %v", err)
	}
	if len(dtos) == 0 {
		t.Fatal("expected at least one farmers scheme")
	}
}

func TestAdminRequiresJWT(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/fraud-stats", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", rec.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/fraud-stats", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	authed := httptest.NewRecorder()
	router.ServeHTTP(authed, req)
	if authed.Code != http.StatusOK {
		t.Fatalf("status = %d with token, body %s", authed.Code, authed.Body.String())
	}
}
