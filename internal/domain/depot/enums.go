package depot

// ContainerSize is the normalized container length class
type ContainerSize string

const (
	Size20ft ContainerSize = "20ft"
	Size40ft ContainerSize = "40ft"
	Size45ft ContainerSize = "45ft"
)

// ContainerKind is the normalized container construction type
type ContainerKind string

const (
	KindDry      ContainerKind = "dry"
	KindReefer   ContainerKind = "reefer"
	KindOpenTop  ContainerKind = "opentop"
	KindFlatRack ContainerKind = "flatrack"
	KindTank     ContainerKind = "tank"
)

// containerSizeCodes maps the upstream size notation to the normalized size.
// Unknown codes fall back to 40ft; the upstream catalog is not authoritative
// enough to treat an unmapped code as an error.
var containerSizeCodes = map[string]ContainerSize{
	"20'": Size20ft,
	"40'": Size40ft,
	"45'": Size45ft,
}

// MapContainerSize maps an upstream size code to the normalized size
func MapContainerSize(code string) ContainerSize {
	if size, ok := containerSizeCodes[code]; ok {
		return size
	}
	return Size40ft
}

// containerKindCodes maps upstream ISO-style type codes to the normalized
// kind. GP (general purpose) and HC (high cube) are both plain dry boxes.
var containerKindCodes = map[string]ContainerKind{
	"GP": KindDry,
	"HC": KindDry,
	"RF": KindReefer,
	"OT": KindOpenTop,
	"FR": KindFlatRack,
	"TK": KindTank,
}

// MapContainerKind maps an upstream type code to the normalized kind.
// Unknown codes fall back to dry.
func MapContainerKind(code string) ContainerKind {
	if kind, ok := containerKindCodes[code]; ok {
		return kind
	}
	return KindDry
}
