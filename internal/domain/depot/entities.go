package depot

// Status represents the activation state of an upstream catalog record
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// StatusFromFlag derives the record status from the upstream boolean-like
// string. Only the literal "True" maps to active; anything else (including
// absence) is inactive.
func StatusFromFlag(flag string) Status {
	if flag == "True" {
		return StatusActive
	}
	return StatusInactive
}

// Depot represents a container depot normalized from the upstream catalog
type Depot struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Province string `json:"province"`
	Status   Status `json:"status"`
}

// Container represents a reusable container available for gate-out.
// RawAPIData preserves the original upstream identifiers verbatim; the
// gate-out flow is keyed off this bag and it must never be re-derived.
type Container struct {
	ID               string            `json:"id"`
	Number           string            `json:"number"`
	Size             ContainerSize     `json:"size"`
	Type             ContainerKind     `json:"type"`
	ShippingLineID   string            `json:"shipping_line_id"`
	ShippingLineName string            `json:"shipping_line_name"`
	DepotID          string            `json:"depot_id"`
	DepotName        string            `json:"depot_name"`
	Quantity         string            `json:"quantity"`
	Status           Status            `json:"status"`
	RawAPIData       map[string]string `json:"raw_api_data"`
}

// ShippingLine represents a shipping line (hang tau)
type ShippingLine struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Goods represents a goods/cargo type (hang hoa)
type Goods struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// ContainerType represents an upstream container type/size combination
type ContainerType struct {
	ID     string        `json:"id"`
	Code   string        `json:"code"`
	Name   string        `json:"name"`
	Size   ContainerSize `json:"size"`
	Kind   ContainerKind `json:"kind"`
	Status Status        `json:"status"`
}

// Company represents the invoicing company bound to a dashboard user
type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxCode string `json:"tax_code"`
	Address string `json:"address"`
	Status  Status `json:"status"`
}
