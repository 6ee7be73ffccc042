package residential

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"intake_backend/platform/httpkit"
	"intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const validBody = `{
	"first_name": "Grace",
	"last_name": "Hopper",
	"email": "grace@example.com",
	"phone": "+16502530000",
	"company": "Hopper Family",
	"source": "website",
	"project_unit_count": 2,
	"construction_province": "Ontario",
	"residential_pathway": "consumer",
	"lead_type": "residential"
}`

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(store, validator.New(), &fakeDispatcher{}, nil, nil, nil))

	r := gin.New()
	r.Use(httpkit.AssignRequestID(), httpkit.ExposeErrors(false))
	r.POST("/api/submit-residential", httpkit.RequireJSON(), h.HandleSubmit)
	return r
}

func submit(r http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/api/submit-residential", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHandleSubmit_Accepted(t *testing.T) {
	rec, body := submit(newTestRouter(NewMemoryStore()), validBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true || body["message"] != msgAccepted || body["submissionId"] == "" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandleSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "empty object", body: `{}`, field: "body"},
		{name: "malformed", body: `{"first_name":`, field: "body"},
		{name: "wrong type", body: strings.Replace(validBody, `"project_unit_count": 2`, `"project_unit_count": "two"`, 1), field: "project_unit_count"},
		{name: "script", body: strings.Replace(validBody, `"Hopper Family"`, `"<script>x</script>"`, 1), field: "company"},
		{name: "too many units", body: strings.Replace(validBody, `"project_unit_count": 2`, `"project_unit_count": 60`, 1), field: "project_unit_count"},
	}

	r := newTestRouter(NewMemoryStore())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := submit(r, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if body["success"] != false {
				t.Fatalf("expected success=false, got %v", body)
			}
			errs, _ := body["errors"].([]any)
			if len(errs) == 0 || errs[0].(map[string]any)["field"] != tc.field {
				t.Fatalf("expected error on %s, got %v", tc.field, body["errors"])
			}
		})
	}
}

func TestHandleSubmit_InternalError(t *testing.T) {
	rec, body := submit(newTestRouter(failingStore{}), validBody)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["success"] != false || body["message"] != msgInternalError {
		t.Fatalf("unexpected body %v", body)
	}
	if body["requestId"] != rec.Header().Get(httpkit.HeaderRequestID) {
		t.Fatalf("expected request id to match header")
	}
}
