package dto

// DepotListRequest holds the depot listing query parameters
type DepotListRequest struct {
	Province string `form:"province"`
	Search   string `form:"search"`
}

// ContainerListRequest holds the container listing query parameters
type ContainerListRequest struct {
	DepotID        string `form:"depot_id"`
	ShippingLineID string `form:"shipping_line_id"`
	Size           string `form:"size" binding:"omitempty,oneof=20ft 40ft 45ft"`
	Search         string `form:"search"`
}

// SearchRequest holds the generic search query parameter used by the
// remaining catalog listings
type SearchRequest struct {
	Search string `form:"search"`
}

// UserScopedRequest identifies the dashboard user a query is scoped to
type UserScopedRequest struct {
	UserID int64 `form:"user_id" binding:"required,gt=0"`
}

// CacheRefreshRequest selects which cached collection to drop; empty means
// all of them
type CacheRefreshRequest struct {
	Entity string `json:"entity" form:"entity" binding:"omitempty,oneof=depots containers shipping_lines goods container_types"`
}
