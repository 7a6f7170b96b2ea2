package catalog

import (
	"encoding/json"

	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/infrastructure/erp"
)

// Upstream listing rows. Every field may arrive as a bare scalar, a {v, r}
// tagged object, or be absent entirely, so fields are typed `any` and all
// access goes through erp.DecodeField.

type depotRow struct {
	ID        any `json:"ID"`
	MaDepot   any `json:"MaDepot"`
	TenDepot  any `json:"TenDepot"`
	DiaChi    any `json:"DiaChi"`
	TinhThanh any `json:"TinhThanh"`
	Active    any `json:"Active"`
}

type containerRow struct {
	ID             any `json:"ID"`
	ContNo         any `json:"ContNo"`
	KichCo         any `json:"KichCo"`
	LoaiCont       any `json:"LoaiCont"`
	HangTauID      any `json:"HangTauID"`
	TenHangTau     any `json:"TenHangTau"`
	DepotID        any `json:"DepotID"`
	TenDepot       any `json:"TenDepot"`
	ContTypeSizeID any `json:"ContTypeSizeID"`
	SoLuong        any `json:"SoLuong"`
	Active         any `json:"Active"`
}

type shippingLineRow struct {
	ID         any `json:"ID"`
	MaHangTau  any `json:"MaHangTau"`
	TenHangTau any `json:"TenHangTau"`
	Active     any `json:"Active"`
}

type goodsRow struct {
	ID         any `json:"ID"`
	TenHangHoa any `json:"TenHangHoa"`
	Active     any `json:"Active"`
}

type containerTypeRow struct {
	ID       any `json:"ID"`
	MaLoai   any `json:"MaLoai"`
	TenLoai  any `json:"TenLoai"`
	KichCo   any `json:"KichCo"`
	LoaiCont any `json:"LoaiCont"`
	Active   any `json:"Active"`
}

type companyRow struct {
	ID        any `json:"ID"`
	TenCongTy any `json:"TenCongTy"`
	MaSoThue  any `json:"MaSoThue"`
	DiaChi    any `json:"DiaChi"`
	Active    any `json:"Active"`
}

// decodeRows unmarshals a listing response body into typed rows. A body that
// is not a {"data": [...]} envelope yields no rows.
func decodeRows[T any](raw []byte) []T {
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	return envelope.Data
}

func (r depotRow) toDomain() depot.Depot {
	return depot.Depot{
		ID:       erp.DecodeField(r.ID),
		Code:     erp.DecodeField(r.MaDepot),
		Name:     erp.DecodeField(r.TenDepot),
		Address:  erp.DecodeField(r.DiaChi),
		Province: erp.DecodeField(r.TinhThanh),
		Status:   depot.StatusFromFlag(erp.DecodeField(r.Active)),
	}
}

func (r containerRow) toDomain() depot.Container {
	return depot.Container{
		ID:               erp.DecodeField(r.ID),
		Number:           erp.DecodeField(r.ContNo),
		Size:             depot.MapContainerSize(erp.DecodeField(r.KichCo)),
		Type:             depot.MapContainerKind(erp.DecodeField(r.LoaiCont)),
		ShippingLineID:   erp.DecodeField(r.HangTauID),
		ShippingLineName: erp.DecodeField(r.TenHangTau),
		DepotID:          erp.DecodeField(r.DepotID),
		DepotName:        erp.DecodeField(r.TenDepot),
		Quantity:         erp.DecodeField(r.SoLuong),
		Status:           depot.StatusFromFlag(erp.DecodeField(r.Active)),
		// The gate-out flow is keyed off these identifiers; they must carry
		// the upstream values as-is, never re-derived from normalized fields.
		RawAPIData: map[string]string{
			"ID":             erp.DecodeField(r.ID),
			"ContNo":         erp.DecodeField(r.ContNo),
			"HangTauID":      erp.DecodeField(r.HangTauID),
			"ContTypeSizeID": erp.DecodeField(r.ContTypeSizeID),
			"DepotID":        erp.DecodeField(r.DepotID),
			"SoLuong":        erp.DecodeField(r.SoLuong),
		},
	}
}

func (r shippingLineRow) toDomain() depot.ShippingLine {
	return depot.ShippingLine{
		ID:     erp.DecodeField(r.ID),
		Code:   erp.DecodeField(r.MaHangTau),
		Name:   erp.DecodeField(r.TenHangTau),
		Status: depot.StatusFromFlag(erp.DecodeField(r.Active)),
	}
}

func (r goodsRow) toDomain() depot.Goods {
	return depot.Goods{
		ID:     erp.DecodeField(r.ID),
		Name:   erp.DecodeField(r.TenHangHoa),
		Status: depot.StatusFromFlag(erp.DecodeField(r.Active)),
	}
}

func (r containerTypeRow) toDomain() depot.ContainerType {
	return depot.ContainerType{
		ID:     erp.DecodeField(r.ID),
		Code:   erp.DecodeField(r.MaLoai),
		Name:   erp.DecodeField(r.TenLoai),
		Size:   depot.MapContainerSize(erp.DecodeField(r.KichCo)),
		Kind:   depot.MapContainerKind(erp.DecodeField(r.LoaiCont)),
		Status: depot.StatusFromFlag(erp.DecodeField(r.Active)),
	}
}

func (r companyRow) toDomain() depot.Company {
	return depot.Company{
		ID:      erp.DecodeField(r.ID),
		Name:    erp.DecodeField(r.TenCongTy),
		TaxCode: erp.DecodeField(r.MaSoThue),
		Address: erp.DecodeField(r.DiaChi),
		Status:  depot.StatusFromFlag(erp.DecodeField(r.Active)),
	}
}
