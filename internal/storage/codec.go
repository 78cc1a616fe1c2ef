package storage

import (
	"encoding/json"
	"errors"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch is returned when a decoded record's schema or codec
// version doesn't match what this build understands.
var ErrVersionMismatch = errors.New("storage: record version mismatch")

func newVersionedRecord() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// EncodeSurfaceSnapshot serializes a snapshot to its on-disk JSON form.
func EncodeSurfaceSnapshot(s SurfaceSnapshot) ([]byte, error) {
	s.VersionedRecord = newVersionedRecord()
	return json.Marshal(s)
}

// DecodeSurfaceSnapshot parses and version-checks a persisted snapshot.
func DecodeSurfaceSnapshot(data []byte) (SurfaceSnapshot, error) {
	var s SurfaceSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return SurfaceSnapshot{}, err
	}
	if err := checkVersion(s.VersionedRecord); err != nil {
		return SurfaceSnapshot{}, err
	}
	return s, nil
}

// EncodeRiskMetricsRecord serializes a risk-metrics sample.
func EncodeRiskMetricsRecord(r RiskMetricsRecord) ([]byte, error) {
	r.VersionedRecord = newVersionedRecord()
	return json.Marshal(r)
}

// DecodeRiskMetricsRecord parses and version-checks a persisted sample.
func DecodeRiskMetricsRecord(data []byte) (RiskMetricsRecord, error) {
	var r RiskMetricsRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return RiskMetricsRecord{}, err
	}
	if err := checkVersion(r.VersionedRecord); err != nil {
		return RiskMetricsRecord{}, err
	}
	return r, nil
}

// EncodeArbitrageReportRecord serializes an arbitrage report.
func EncodeArbitrageReportRecord(r ArbitrageReportRecord) ([]byte, error) {
	r.VersionedRecord = newVersionedRecord()
	return json.Marshal(r)
}

// DecodeArbitrageReportRecord parses and version-checks a persisted report.
func DecodeArbitrageReportRecord(data []byte) (ArbitrageReportRecord, error) {
	var r ArbitrageReportRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return ArbitrageReportRecord{}, err
	}
	if err := checkVersion(r.VersionedRecord); err != nil {
		return ArbitrageReportRecord{}, err
	}
	return r, nil
}

// EncodeWiringTemplateRecord serializes the template a run was launched with.
func EncodeWiringTemplateRecord(r WiringTemplateRecord) ([]byte, error) {
	r.VersionedRecord = newVersionedRecord()
	return json.Marshal(r)
}

// DecodeWiringTemplateRecord parses and version-checks a persisted template record.
func DecodeWiringTemplateRecord(data []byte) (WiringTemplateRecord, error) {
	var r WiringTemplateRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return WiringTemplateRecord{}, err
	}
	if err := checkVersion(r.VersionedRecord); err != nil {
		return WiringTemplateRecord{}, err
	}
	return r, nil
}
