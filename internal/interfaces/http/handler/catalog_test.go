package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/depot/backend/internal/application/catalog"
	"github.com/depot/backend/internal/application/gateout"
	"github.com/depot/backend/internal/infrastructure/cache"
	"github.com/depot/backend/internal/infrastructure/erp"
	"github.com/depot/backend/internal/infrastructure/persistence"
	"github.com/depot/backend/internal/interfaces/http/dto"
	"github.com/depot/backend/internal/interfaces/http/middleware"
	"github.com/depot/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestAPI builds the full API surface against a stub upstream
func newTestAPI(t *testing.T, listings map[string]string, process http.HandlerFunc) (*gin.Engine, *persistence.MemoryRegistrationStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/gettokenNonAid"):
			json.NewEncoder(w).Encode(map[string]any{"token": "tok", "reqtime": "1700000000"})
		case strings.Contains(r.URL.Path, "/api/data/process/"):
			reqid := strings.TrimPrefix(r.URL.Path, "/api/data/process/")
			if body, ok := listings[reqid]; ok {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
				return
			}
			if process != nil {
				process(w, r)
				return
			}
			w.Write([]byte(`{"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	cfg := &erp.Config{BaseURL: ts.URL}
	broker, err := erp.NewTokenBroker(cfg, zap.NewNop())
	require.NoError(t, err)
	client, err := erp.NewClient(cfg, broker, zap.NewNop())
	require.NoError(t, err)

	ttls := catalog.TTLs{
		Depot: time.Minute, Container: time.Minute, ShippingLine: time.Minute,
		Goods: time.Minute, ContainerType: time.Minute, Company: time.Minute,
	}
	catalogSvc := catalog.NewService(client, cache.NewMemoryStore(), ttls, zap.NewNop())

	regStore := persistence.NewMemoryRegistrationStore()
	gateoutSvc := gateout.NewService(client, regStore, zap.NewNop())

	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := router.NewRouter(engine)
	r.Register(NewCatalogHandler(catalogSvc))
	r.Register(NewGateOutHandler(gateoutSvc))
	r.Register(NewHealthHandler("depot-backend", "test"))
	r.Setup()

	return engine, regStore
}

func doRequest(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCatalogHandler_ListDepots(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{
		"Get_List_Depot": `{"data":[
			{"ID":"3","MaDepot":"DPT-HCM","TenDepot":"Depot Cat Lai","TinhThanh":"Ho Chi Minh","Active":"True"},
			{"ID":"7","MaDepot":"DPT-HP","TenDepot":"Depot Hai Phong","TinhThanh":"Hai Phong","Active":"True"}
		]}`,
	}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/catalog/depots?province=hai", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	items, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/depots/3", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/depots/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_ListContainers_SizeValidation(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/catalog/containers?size=60ft", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/containers?size=40ft", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogHandler_GetContainerByID(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{
		"Get_List_Cont_Reuse": `{"data":[{"ID":"101","ContNo":"MSKU1234567","KichCo":"20'","LoaiCont":"GP","HangTauID":"5","Active":"True"}]}`,
	}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/catalog/containers/101", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MSKU1234567")

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/containers/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/shipping-lines/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/goods/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/container-types/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_ListingsNeverFailOnUpstreamError(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	// Upstream is down and the cache is cold: the listing degrades to empty
	w := doRequest(engine, http.MethodGet, "/api/v1/catalog/goods", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data)
}

func TestCatalogHandler_RefreshCache(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{}, nil)

	w := doRequest(engine, http.MethodPost, "/api/v1/catalog/cache/refresh?entity=depots", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodPost, "/api/v1/catalog/cache/refresh?entity=widgets", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_GetCompanyRequiresUserID(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{
		"Get_Company_By_User": `{"data":[{"ID":"1","TenCongTy":"Cong Ty TNHH ABC","Active":"True"}]}`,
	}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/catalog/company", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/catalog/company?user_id=111735", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler(t *testing.T) {
	engine, _ := newTestAPI(t, map[string]string{}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "depot-backend")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
