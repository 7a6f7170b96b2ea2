package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/domain/shared"
	"github.com/depot/backend/internal/infrastructure/cache"
	"github.com/depot/backend/internal/infrastructure/erp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// catalogStub serves the token endpoint plus per-reqid listing bodies
type catalogStub struct {
	listings     map[string]string
	processCalls atomic.Int32
	failing      atomic.Bool
}

func newCatalogStub(t *testing.T, listings map[string]string) (*catalogStub, *Service, *cache.MemoryStore) {
	t.Helper()

	stub := &catalogStub{listings: listings}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/gettokenNonAid"):
			json.NewEncoder(w).Encode(map[string]any{"token": "tok", "reqtime": "1700000000"})
		case strings.Contains(r.URL.Path, "/api/data/process/"):
			stub.processCalls.Add(1)
			if stub.failing.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			reqid := strings.TrimPrefix(r.URL.Path, "/api/data/process/")
			body, ok := stub.listings[reqid]
			if !ok {
				body = `{"data":[]}`
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
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

	store := cache.NewMemoryStore()
	ttls := TTLs{
		Depot:         time.Minute,
		Container:     time.Minute,
		ShippingLine:  time.Minute,
		Goods:         time.Minute,
		ContainerType: time.Minute,
		Company:       time.Minute,
	}
	return stub, NewService(client, store, ttls, zap.NewNop()), store
}

func TestService_FetchDepots(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newCatalogStub(t, map[string]string{
		"Get_List_Depot": `{"data":[
			{"ID":{"v":3},"MaDepot":"DPT-HCM","TenDepot":{"v":"Depot Cat Lai"},"DiaChi":"Nguyen Thi Dinh","TinhThanh":"Ho Chi Minh","Active":"True"},
			{"ID":"7","MaDepot":"DPT-HP","TenDepot":"Depot Hai Phong","TinhThanh":{"r":"Hai Phong"},"Active":"False"}
		]}`,
	})

	t.Run("normalizes tagged rows", func(t *testing.T) {
		depots := svc.FetchDepots(ctx, depot.DepotFilters{})
		require.Len(t, depots, 2)

		assert.Equal(t, "3", depots[0].ID)
		assert.Equal(t, "Depot Cat Lai", depots[0].Name)
		assert.Equal(t, depot.StatusActive, depots[0].Status)

		assert.Equal(t, "Hai Phong", depots[1].Province)
		assert.Equal(t, depot.StatusInactive, depots[1].Status)
	})

	t.Run("province filter is case-insensitive substring", func(t *testing.T) {
		depots := svc.FetchDepots(ctx, depot.DepotFilters{Province: "hai phong"})
		require.Len(t, depots, 1)
		assert.Equal(t, "7", depots[0].ID)
	})

	t.Run("search filter matches name", func(t *testing.T) {
		depots := svc.FetchDepots(ctx, depot.DepotFilters{Search: "cat lai"})
		require.Len(t, depots, 1)
		assert.Equal(t, "3", depots[0].ID)
	})
}

func TestService_GetDepotByID(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newCatalogStub(t, map[string]string{
		"Get_List_Depot": `{"data":[{"ID":"3","TenDepot":"Depot Cat Lai","Active":"True"}]}`,
	})

	d, err := svc.GetDepotByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Depot Cat Lai", d.Name)

	_, err = svc.GetDepotByID(ctx, "999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_FetchContainers(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newCatalogStub(t, map[string]string{
		"Get_List_Cont_Reuse": `{"data":[
			{"ID":{"v":101},"ContNo":"MSKU1234567","KichCo":"20'","LoaiCont":"RF","HangTauID":{"v":5},"TenHangTau":"Maersk","DepotID":"3","TenDepot":"Depot Cat Lai","ContTypeSizeID":{"v":2},"SoLuong":{"v":4},"Active":"True"},
			{"ID":"102","ContNo":"HLCU7654321","KichCo":"40'","LoaiCont":"HC","HangTauID":"8","TenHangTau":"Hapag-Lloyd","DepotID":"7","Active":"True"},
			{"ID":"103","ContNo":"OOLU1111111","KichCo":"53'","LoaiCont":"XX","HangTauID":"8","DepotID":"7","Active":"True"}
		]}`,
	})

	containers := svc.FetchContainers(ctx, depot.ContainerFilters{})
	require.Len(t, containers, 3)

	t.Run("enum mapping", func(t *testing.T) {
		assert.Equal(t, depot.Size20ft, containers[0].Size)
		assert.Equal(t, depot.KindReefer, containers[0].Type)
		assert.Equal(t, depot.Size40ft, containers[1].Size)
		assert.Equal(t, depot.KindDry, containers[1].Type)
	})

	t.Run("unknown codes fall back to defaults", func(t *testing.T) {
		assert.Equal(t, depot.Size40ft, containers[2].Size)
		assert.Equal(t, depot.KindDry, containers[2].Type)
	})

	t.Run("raw identifiers preserved for gate-out", func(t *testing.T) {
		raw := containers[0].RawAPIData
		assert.Equal(t, "5", raw["HangTauID"])
		assert.Equal(t, "2", raw["ContTypeSizeID"])
		assert.Equal(t, "3", raw["DepotID"])
		assert.Equal(t, "MSKU1234567", raw["ContNo"])
	})

	t.Run("filter by depot and shipping line", func(t *testing.T) {
		got := svc.FetchContainers(ctx, depot.ContainerFilters{DepotID: "7", ShippingLineID: "8"})
		assert.Len(t, got, 2)

		got = svc.FetchContainers(ctx, depot.ContainerFilters{Size: "20ft"})
		require.Len(t, got, 1)
		assert.Equal(t, "MSKU1234567", got[0].Number)
	})

	t.Run("by-id lookup", func(t *testing.T) {
		c, err := svc.GetContainerByID(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, "MSKU1234567", c.Number)
		assert.Equal(t, "5", c.RawAPIData["HangTauID"])

		_, err = svc.GetContainerByID(ctx, "999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_FetchShippingLinesGoodsAndTypes(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newCatalogStub(t, map[string]string{
		"Get_List_HangTau":      `{"data":[{"ID":"5","MaHangTau":"MSK","TenHangTau":"Maersk","Active":"True"},{"ID":"8","MaHangTau":"HLC","TenHangTau":"Hapag-Lloyd","Active":"False"}]}`,
		"Get_List_HangHoa":      `{"data":[{"ID":"4","TenHangHoa":"Gao","Active":"True"}]}`,
		"Get_List_ContTypeSize": `{"data":[{"ID":"2","MaLoai":"20GP","TenLoai":"20' General Purpose","KichCo":"20'","LoaiCont":"GP","Active":"True"}]}`,
	})

	lines := svc.FetchShippingLines(ctx, depot.SearchFilters{Search: "maersk"})
	require.Len(t, lines, 1)
	assert.Equal(t, "MSK", lines[0].Code)

	goods := svc.FetchGoods(ctx, depot.SearchFilters{})
	require.Len(t, goods, 1)
	assert.Equal(t, "Gao", goods[0].Name)

	types := svc.FetchContainerTypes(ctx, depot.SearchFilters{})
	require.Len(t, types, 1)
	assert.Equal(t, depot.Size20ft, types[0].Size)
	assert.Equal(t, depot.KindDry, types[0].Kind)

	t.Run("by-id lookups", func(t *testing.T) {
		line, err := svc.GetShippingLineByID(ctx, "8")
		require.NoError(t, err)
		assert.Equal(t, "Hapag-Lloyd", line.Name)

		g, err := svc.GetGoodsByID(ctx, "4")
		require.NoError(t, err)
		assert.Equal(t, "Gao", g.Name)

		ct, err := svc.GetContainerTypeByID(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, "20GP", ct.Code)

		_, err = svc.GetShippingLineByID(ctx, "999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = svc.GetGoodsByID(ctx, "999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = svc.GetContainerTypeByID(ctx, "999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_FetchCompanyByUserID(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newCatalogStub(t, map[string]string{
		"Get_Company_By_User": `{"data":[{"ID":"1","TenCongTy":{"v":"Cong Ty TNHH ABC"},"MaSoThue":"0301234567","Active":"True"}]}`,
	})

	company, err := svc.FetchCompanyByUserID(ctx, 111735)
	require.NoError(t, err)
	assert.Equal(t, "Cong Ty TNHH ABC", company.Name)
	assert.Equal(t, "0301234567", company.TaxCode)
}

func TestService_CachingBehavior(t *testing.T) {
	ctx := context.Background()
	stub, svc, _ := newCatalogStub(t, map[string]string{
		"Get_List_Depot": `{"data":[{"ID":"3","TenDepot":"Depot Cat Lai","Active":"True"}]}`,
	})

	svc.FetchDepots(ctx, depot.DepotFilters{})
	svc.FetchDepots(ctx, depot.DepotFilters{})
	assert.Equal(t, int32(1), stub.processCalls.Load(), "second read must come from cache")

	t.Run("refresh forces a refetch", func(t *testing.T) {
		require.NoError(t, svc.RefreshCache(ctx, "depots"))
		svc.FetchDepots(ctx, depot.DepotFilters{})
		assert.Equal(t, int32(2), stub.processCalls.Load())
	})

	t.Run("unknown entity is rejected", func(t *testing.T) {
		assert.Error(t, svc.RefreshCache(ctx, "widgets"))
	})
}

func TestService_StaleFallbackWhenUpstreamDown(t *testing.T) {
	ctx := context.Background()
	stub, svc, store := newCatalogStub(t, map[string]string{
		"Get_List_Depot": `{"data":[{"ID":"3","TenDepot":"Depot Cat Lai","Active":"True"}]}`,
	})

	// Warm the cache, then expire the snapshot and break the upstream
	require.Len(t, svc.FetchDepots(ctx, depot.DepotFilters{}), 1)

	snap, err := store.Get(ctx, "depots")
	require.NoError(t, err)
	snap.RefreshedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Set(ctx, "depots", snap))
	stub.failing.Store(true)

	depots := svc.FetchDepots(ctx, depot.DepotFilters{})
	require.Len(t, depots, 1, "stale data must be served when refresh fails")
	assert.Equal(t, "Depot Cat Lai", depots[0].Name)
}
