package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"crm-gateway/internal/flows"
)

func flowsRouter(repo *flows.MemoryRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := Handlers{Flows: flows.NewService(repo)}
	r.GET("/v1/flows", h.ListFlows)
	return r
}

func TestListFlows(t *testing.T) {
	repo := flows.NewMemoryRepo()
	repo.Flows = []flows.Flow{
		{Key: "lead-qualify", EnvVarRef: "FLOW_LEAD_QUALIFY_SID", Active: true},
		{Key: "after-hours", EnvVarRef: "FLOW_AFTER_HOURS_SID", Active: false},
	}

	w := httptest.NewRecorder()
	flowsRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/flows", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Flows []flows.Flow `json:"flows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(body.Flows) != 2 || body.Flows[0].Key != "after-hours" {
		t.Fatalf("expected sorted flows, got %+v", body.Flows)
	}
}

func TestListFlows_StoreFailureIs503(t *testing.T) {
	repo := flows.NewMemoryRepo()
	repo.Err = errors.New("store down")

	w := httptest.NewRecorder()
	flowsRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/flows", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
