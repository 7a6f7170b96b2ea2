package depot

import (
	"context"
	"time"
)

// GateOutData is the sanitized gate-out payload sent upstream. Field names
// follow the upstream contract; all integer fields have already been coerced
// and validated by the time a value of this type exists.
type GateOutData struct {
	HangTauID               int64  `json:"HangTauID"`
	ContTypeSizeID          int64  `json:"ContTypeSizeID"`
	SoChungTuNhapBai        string `json:"SoChungTuNhapBai"`
	DonViVanTaiID           int64  `json:"DonViVanTaiID"`
	SoXe                    string `json:"SoXe"`
	NguoiTao                int64  `json:"NguoiTao"`
	CongTyInHoaDonPhiHaTang int64  `json:"CongTyInHoaDon_PhiHaTang"`
	CongTyInHoaDon          int64  `json:"CongTyInHoaDon"`
	DepotID                 int64  `json:"DepotID"`
	SoLuongCont             int64  `json:"SoLuongCont"`
	HangHoa                 int64  `json:"HangHoa"`
}

// RegisteredContainer is the local record of a successful gate-out
// registration. ContainerData holds the upstream response body returned for
// the registration; GateOutData holds the sanitized payload that was sent.
type RegisteredContainer struct {
	ID            string         `json:"id"`
	UserID        int64          `json:"user_id"`
	ContainerData map[string]any `json:"container_data"`
	GateOutData   GateOutData    `json:"gate_out_data"`
	RegisteredAt  time.Time      `json:"registered_at"`
}

// RegistrationStore persists RegisteredContainer records. Implementations
// may be volatile (in-memory) or durable; the gate-out flow treats the store
// as best-effort and never lets a store failure fail the registration.
type RegistrationStore interface {
	Save(ctx context.Context, reg *RegisteredContainer) error
	ListByUser(ctx context.Context, userID int64) ([]*RegisteredContainer, error)
	Close() error
}
