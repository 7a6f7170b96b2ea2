package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/domain/shared"
	"github.com/depot/backend/internal/infrastructure/cache"
	"github.com/depot/backend/internal/infrastructure/erp"
	"go.uber.org/zap"
)

// Upstream operation names for the catalog listings
const (
	reqidDepotList         = "Get_List_Depot"
	reqidContainerList     = "Get_List_Cont_Reuse"
	reqidShippingLineList  = "Get_List_HangTau"
	reqidGoodsList         = "Get_List_HangHoa"
	reqidContainerTypeList = "Get_List_ContTypeSize"
	reqidCompanyByUser     = "Get_Company_By_User"
)

// Cache keys per collection
const (
	cacheKeyDepots         = "depots"
	cacheKeyContainers     = "containers"
	cacheKeyShippingLines  = "shipping_lines"
	cacheKeyGoods          = "goods"
	cacheKeyContainerTypes = "container_types"
	cacheKeyCompanyPrefix  = "company:user:"
)

// Dispatcher is the upstream call surface the catalog service depends on
type Dispatcher interface {
	Call(ctx context.Context, reqid string, payload any) erp.DispatchResult
}

// TTLs holds the per-collection cache lifetimes
type TTLs struct {
	Depot         time.Duration
	Container     time.Duration
	ShippingLine  time.Duration
	Goods         time.Duration
	ContainerType time.Duration
	Company       time.Duration
}

// Service fetches upstream catalog listings, normalizes the rows into domain
// records and serves them through the collection cache. Listings degrade to
// stale or empty data rather than failing.
type Service struct {
	dispatcher Dispatcher
	store      cache.CollectionStore
	ttls       TTLs
	logger     *zap.Logger
}

// NewService creates a catalog service
func NewService(dispatcher Dispatcher, store cache.CollectionStore, ttls TTLs, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dispatcher: dispatcher,
		store:      store,
		ttls:       ttls,
		logger:     logger,
	}
}

// FetchDepots returns the depot listing, filtered
func (s *Service) FetchDepots(ctx context.Context, filters depot.DepotFilters) []depot.Depot {
	depots := cache.GetOrRefresh(ctx, s.store, s.logger, cacheKeyDepots, s.ttls.Depot,
		func(ctx context.Context) ([]depot.Depot, error) {
			return fetchListing(ctx, s.dispatcher, reqidDepotList, depotRow.toDomain)
		})

	out := make([]depot.Depot, 0, len(depots))
	for _, d := range depots {
		if filters.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// GetDepotByID returns a single depot from the cached listing
func (s *Service) GetDepotByID(ctx context.Context, id string) (*depot.Depot, error) {
	for _, d := range s.FetchDepots(ctx, depot.DepotFilters{}) {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FetchContainers returns the reusable-container listing, filtered
func (s *Service) FetchContainers(ctx context.Context, filters depot.ContainerFilters) []depot.Container {
	containers := cache.GetOrRefresh(ctx, s.store, s.logger, cacheKeyContainers, s.ttls.Container,
		func(ctx context.Context) ([]depot.Container, error) {
			return fetchListing(ctx, s.dispatcher, reqidContainerList, containerRow.toDomain)
		})

	out := make([]depot.Container, 0, len(containers))
	for _, c := range containers {
		if filters.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// GetContainerByID returns a single container from the cached listing. The
// gate-out flow uses this to resolve the selected container's raw upstream
// identifiers.
func (s *Service) GetContainerByID(ctx context.Context, id string) (*depot.Container, error) {
	for _, c := range s.FetchContainers(ctx, depot.ContainerFilters{}) {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FetchShippingLines returns the shipping line listing, filtered
func (s *Service) FetchShippingLines(ctx context.Context, filters depot.SearchFilters) []depot.ShippingLine {
	lines := cache.GetOrRefresh(ctx, s.store, s.logger, cacheKeyShippingLines, s.ttls.ShippingLine,
		func(ctx context.Context) ([]depot.ShippingLine, error) {
			return fetchListing(ctx, s.dispatcher, reqidShippingLineList, shippingLineRow.toDomain)
		})

	out := make([]depot.ShippingLine, 0, len(lines))
	for _, l := range lines {
		if filters.MatchShippingLine(l) {
			out = append(out, l)
		}
	}
	return out
}

// GetShippingLineByID returns a single shipping line from the cached listing
func (s *Service) GetShippingLineByID(ctx context.Context, id string) (*depot.ShippingLine, error) {
	for _, l := range s.FetchShippingLines(ctx, depot.SearchFilters{}) {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FetchGoods returns the goods listing, filtered
func (s *Service) FetchGoods(ctx context.Context, filters depot.SearchFilters) []depot.Goods {
	goods := cache.GetOrRefresh(ctx, s.store, s.logger, cacheKeyGoods, s.ttls.Goods,
		func(ctx context.Context) ([]depot.Goods, error) {
			return fetchListing(ctx, s.dispatcher, reqidGoodsList, goodsRow.toDomain)
		})

	out := make([]depot.Goods, 0, len(goods))
	for _, g := range goods {
		if filters.MatchGoods(g) {
			out = append(out, g)
		}
	}
	return out
}

// GetGoodsByID returns a single goods record from the cached listing
func (s *Service) GetGoodsByID(ctx context.Context, id string) (*depot.Goods, error) {
	for _, g := range s.FetchGoods(ctx, depot.SearchFilters{}) {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FetchContainerTypes returns the container type/size listing, filtered
func (s *Service) FetchContainerTypes(ctx context.Context, filters depot.SearchFilters) []depot.ContainerType {
	types := cache.GetOrRefresh(ctx, s.store, s.logger, cacheKeyContainerTypes, s.ttls.ContainerType,
		func(ctx context.Context) ([]depot.ContainerType, error) {
			return fetchListing(ctx, s.dispatcher, reqidContainerTypeList, containerTypeRow.toDomain)
		})

	out := make([]depot.ContainerType, 0, len(types))
	for _, t := range types {
		if filters.MatchContainerType(t) {
			out = append(out, t)
		}
	}
	return out
}

// GetContainerTypeByID returns a single container type from the cached listing
func (s *Service) GetContainerTypeByID(ctx context.Context, id string) (*depot.ContainerType, error) {
	for _, ct := range s.FetchContainerTypes(ctx, depot.SearchFilters{}) {
		if ct.ID == id {
			return &ct, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FetchCompanyByUserID returns the invoicing company bound to a dashboard
// user. Cached per user.
func (s *Service) FetchCompanyByUserID(ctx context.Context, userID int64) (*depot.Company, error) {
	key := fmt.Sprintf("%s%d", cacheKeyCompanyPrefix, userID)
	companies := cache.GetOrRefresh(ctx, s.store, s.logger, key, s.ttls.Company,
		func(ctx context.Context) ([]depot.Company, error) {
			res := s.dispatcher.Call(ctx, reqidCompanyByUser, map[string]any{"UserID": userID})
			if !res.OK() {
				return nil, fmt.Errorf("%s: %s", reqidCompanyByUser, res.ErrorMessage)
			}
			rows := decodeRows[companyRow](res.Raw)
			companies := make([]depot.Company, 0, len(rows))
			for _, row := range rows {
				companies = append(companies, row.toDomain())
			}
			return companies, nil
		})

	if len(companies) == 0 {
		return nil, shared.ErrNotFound
	}
	return &companies[0], nil
}

// RefreshCache drops cached collections so the next read refetches. An empty
// entity name clears every collection.
func (s *Service) RefreshCache(ctx context.Context, entity string) error {
	keys := map[string]string{
		"depots":          cacheKeyDepots,
		"containers":      cacheKeyContainers,
		"shipping_lines":  cacheKeyShippingLines,
		"goods":           cacheKeyGoods,
		"container_types": cacheKeyContainerTypes,
	}

	if entity == "" {
		return s.store.Invalidate(ctx)
	}

	key, ok := keys[entity]
	if !ok {
		return shared.NewDomainError("UNKNOWN_ENTITY", fmt.Sprintf("unknown cache entity %q", entity))
	}
	return s.store.Invalidate(ctx, key)
}

// fetchListing dispatches a listing call and transforms its rows. A
// non-success outcome becomes an error so the cache layer can apply its
// stale-fallback policy.
func fetchListing[R, D any](ctx context.Context, dispatcher Dispatcher, reqid string, transform func(R) D) ([]D, error) {
	res := dispatcher.Call(ctx, reqid, map[string]any{})
	if !res.OK() {
		return nil, fmt.Errorf("%s: %s", reqid, res.ErrorMessage)
	}

	rows := decodeRows[R](res.Raw)
	out := make([]D, 0, len(rows))
	for _, row := range rows {
		out = append(out, transform(row))
	}
	return out, nil
}
