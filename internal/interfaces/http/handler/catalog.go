package handler

import (
	"github.com/depot/backend/internal/application/catalog"
	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the upstream catalog listings
type CatalogHandler struct {
	BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/catalog")
	g.GET("/depots", h.ListDepots)
	g.GET("/depots/:id", h.GetDepot)
	g.GET("/containers", h.ListContainers)
	g.GET("/containers/:id", h.GetContainer)
	g.GET("/shipping-lines", h.ListShippingLines)
	g.GET("/shipping-lines/:id", h.GetShippingLine)
	g.GET("/goods", h.ListGoods)
	g.GET("/goods/:id", h.GetGoods)
	g.GET("/container-types", h.ListContainerTypes)
	g.GET("/container-types/:id", h.GetContainerType)
	g.GET("/company", h.GetCompany)
	g.POST("/cache/refresh", h.RefreshCache)
}

// ListDepots handles GET /catalog/depots
func (h *CatalogHandler) ListDepots(c *gin.Context) {
	var req dto.DepotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	depots := h.service.FetchDepots(c.Request.Context(), depot.DepotFilters{
		Province: req.Province,
		Search:   req.Search,
	})
	h.Success(c, depots)
}

// GetDepot handles GET /catalog/depots/:id
func (h *CatalogHandler) GetDepot(c *gin.Context) {
	d, err := h.service.GetDepotByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// ListContainers handles GET /catalog/containers
func (h *CatalogHandler) ListContainers(c *gin.Context) {
	var req dto.ContainerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	containers := h.service.FetchContainers(c.Request.Context(), depot.ContainerFilters{
		DepotID:        req.DepotID,
		ShippingLineID: req.ShippingLineID,
		Size:           req.Size,
		Search:         req.Search,
	})
	h.Success(c, containers)
}

// GetContainer handles GET /catalog/containers/:id
func (h *CatalogHandler) GetContainer(c *gin.Context) {
	container, err := h.service.GetContainerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, container)
}

// ListShippingLines handles GET /catalog/shipping-lines
func (h *CatalogHandler) ListShippingLines(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	h.Success(c, h.service.FetchShippingLines(c.Request.Context(), depot.SearchFilters{Search: req.Search}))
}

// GetShippingLine handles GET /catalog/shipping-lines/:id
func (h *CatalogHandler) GetShippingLine(c *gin.Context) {
	line, err := h.service.GetShippingLineByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// ListGoods handles GET /catalog/goods
func (h *CatalogHandler) ListGoods(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	h.Success(c, h.service.FetchGoods(c.Request.Context(), depot.SearchFilters{Search: req.Search}))
}

// GetGoods handles GET /catalog/goods/:id
func (h *CatalogHandler) GetGoods(c *gin.Context) {
	goods, err := h.service.GetGoodsByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, goods)
}

// ListContainerTypes handles GET /catalog/container-types
func (h *CatalogHandler) ListContainerTypes(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	h.Success(c, h.service.FetchContainerTypes(c.Request.Context(), depot.SearchFilters{Search: req.Search}))
}

// GetContainerType handles GET /catalog/container-types/:id
func (h *CatalogHandler) GetContainerType(c *gin.Context) {
	ct, err := h.service.GetContainerTypeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ct)
}

// GetCompany handles GET /catalog/company?user_id=N
func (h *CatalogHandler) GetCompany(c *gin.Context) {
	var req dto.UserScopedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	company, err := h.service.FetchCompanyByUserID(c.Request.Context(), req.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// RefreshCache handles POST /catalog/cache/refresh?entity=depots
func (h *CatalogHandler) RefreshCache(c *gin.Context) {
	var req dto.CacheRefreshRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	if err := h.service.RefreshCache(c.Request.Context(), req.Entity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"refreshed": true})
}
