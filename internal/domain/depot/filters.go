package depot

import "strings"

// DepotFilters narrows a depot listing. All matches are case-insensitive
// substring matches over normalized fields and are applied after
// transformation, never against raw upstream rows.
type DepotFilters struct {
	Province string
	Search   string
}

// Match reports whether the depot passes the filters
func (f DepotFilters) Match(d Depot) bool {
	if f.Province != "" && !containsFold(d.Province, f.Province) {
		return false
	}
	if f.Search != "" {
		return containsFold(d.Name, f.Search) ||
			containsFold(d.Code, f.Search) ||
			containsFold(d.Address, f.Search)
	}
	return true
}

// ContainerFilters narrows a container listing
type ContainerFilters struct {
	DepotID        string
	ShippingLineID string
	Size           string
	Search         string
}

// Match reports whether the container passes the filters
func (f ContainerFilters) Match(c Container) bool {
	if f.DepotID != "" && c.DepotID != f.DepotID {
		return false
	}
	if f.ShippingLineID != "" && c.ShippingLineID != f.ShippingLineID {
		return false
	}
	if f.Size != "" && !strings.EqualFold(string(c.Size), f.Size) {
		return false
	}
	if f.Search != "" {
		return containsFold(c.Number, f.Search) ||
			containsFold(c.ShippingLineName, f.Search) ||
			containsFold(c.DepotName, f.Search)
	}
	return true
}

// SearchFilters is the generic name/code search used by the remaining
// catalog listings
type SearchFilters struct {
	Search string
}

// MatchShippingLine reports whether the shipping line passes the filters
func (f SearchFilters) MatchShippingLine(l ShippingLine) bool {
	if f.Search == "" {
		return true
	}
	return containsFold(l.Name, f.Search) || containsFold(l.Code, f.Search)
}

// MatchGoods reports whether the goods record passes the filters
func (f SearchFilters) MatchGoods(g Goods) bool {
	if f.Search == "" {
		return true
	}
	return containsFold(g.Name, f.Search)
}

// MatchContainerType reports whether the container type passes the filters
func (f SearchFilters) MatchContainerType(t ContainerType) bool {
	if f.Search == "" {
		return true
	}
	return containsFold(t.Name, f.Search) || containsFold(t.Code, f.Search)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
