package gateout

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/depot/backend/internal/domain/depot"
)

// Request is the gate-out registration payload as posted by the dashboard.
// Fields are loosely typed: the UI sends numbers, numeric strings or nothing
// at all, so every field is validated and coerced before dispatch.
type Request struct {
	HangTauID               any `json:"HangTauID"`
	ContTypeSizeID          any `json:"ContTypeSizeID"`
	SoChungTuNhapBai        any `json:"SoChungTuNhapBai"`
	DonViVanTaiID           any `json:"DonViVanTaiID"`
	SoXe                    any `json:"SoXe"`
	NguoiTao                any `json:"NguoiTao"`
	CongTyInHoaDonPhiHaTang any `json:"CongTyInHoaDon_PhiHaTang"`
	CongTyInHoaDon          any `json:"CongTyInHoaDon"`
	DepotID                 any `json:"DepotID"`
	SoLuongCont             any `json:"SoLuongCont"`
	HangHoa                 any `json:"HangHoa"`
}

// sanitize validates and coerces the request in one pass so the caller sees
// every missing or non-numeric field in a single response instead of
// discovering them one round trip at a time. A non-empty invalid list means
// the returned payload must not be used.
func sanitize(req *Request) (depot.GateOutData, []string) {
	var invalid []string

	intField := func(name string, v any) int64 {
		if isMissing(v) {
			invalid = append(invalid, name)
			return 0
		}
		n, ok := parseIntLike(v)
		if !ok {
			invalid = append(invalid, name)
			return 0
		}
		return n
	}
	stringField := func(name string, v any) string {
		if isMissing(v) {
			invalid = append(invalid, name)
			return ""
		}
		return coerceString(v)
	}

	data := depot.GateOutData{
		HangTauID:               intField("HangTauID", req.HangTauID),
		ContTypeSizeID:          intField("ContTypeSizeID", req.ContTypeSizeID),
		SoChungTuNhapBai:        stringField("SoChungTuNhapBai", req.SoChungTuNhapBai),
		DonViVanTaiID:           intField("DonViVanTaiID", req.DonViVanTaiID),
		SoXe:                    stringField("SoXe", req.SoXe),
		NguoiTao:                intField("NguoiTao", req.NguoiTao),
		CongTyInHoaDonPhiHaTang: intField("CongTyInHoaDon_PhiHaTang", req.CongTyInHoaDonPhiHaTang),
		CongTyInHoaDon:          intField("CongTyInHoaDon", req.CongTyInHoaDon),
		DepotID:                 intField("DepotID", req.DepotID),
		SoLuongCont:             intField("SoLuongCont", req.SoLuongCont),
		HangHoa:                 intField("HangHoa", req.HangHoa),
	}

	return data, invalid
}

// isMissing reports whether a field value counts as absent
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// parseIntLike coerces a loosely typed value to an int64. Numeric strings
// are parsed by their leading integer run ("12abc" yields 12, "abc" fails),
// floats are truncated toward zero, NaN and infinities fail.
func parseIntLike(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(math.Trunc(t)), true
	case json.Number:
		return parseLeadingInt(t.String())
	case string:
		return parseLeadingInt(strings.TrimSpace(t))
	default:
		return 0, false
	}
}

// parseLeadingInt parses the leading optionally-signed integer run of s
func parseLeadingInt(s string) (int64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == end {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:digits], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// coerceString renders a loosely typed value as the string the upstream
// expects
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
