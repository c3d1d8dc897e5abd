package domain

import "slices"

// ModeRealtime is the DATA_MODE value for real-time (unadjusted) data.
const ModeRealtime = "R"

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a GeoJSON point from a latitude/longitude pair.
func NewPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// DataInfo describes one measured parameter of a profile.
type DataInfo struct {
	DataMode           string `json:"DATA_MODE"`
	Units              string `json:"UNITS"`
	LongName           string `json:"LONG_NAME"`
	ProfileParameterQC string `json:"PROFILE_PARAMETER_QC"`
}

// MetaFields are the descriptive platform/instrument fields shared by all profiles
// of one float configuration.
type MetaFields struct {
	PlatformNumber    string   `json:"PLATFORM_NUMBER"`
	DataType          string   `json:"DATA_TYPE"`
	FormatVersion     string   `json:"FORMAT_VERSION"`
	HandbookVersion   string   `json:"HANDBOOK_VERSION"`
	ReferenceDateTime string   `json:"REFERENCE_DATE_TIME"`
	ProjectName       string   `json:"PROJECT_NAME"`
	PIName            []string `json:"PI_NAME"`
	DataCentre        string   `json:"DATA_CENTRE"`
	DCReference       string   `json:"DC_REFERENCE"`
	PlatformType      string   `json:"PLATFORM_TYPE"`
	FloatSerialNo     string   `json:"FLOAT_SERIAL_NO"`
	FirmwareVersion   string   `json:"FIRMWARE_VERSION"`
	WMOInstType       string   `json:"WMO_INST_TYPE"`
	PositioningSystem string   `json:"POSITIONING_SYSTEM"`
}

// Equal reports whether every descriptive field matches.
func (m MetaFields) Equal(o MetaFields) bool {
	return m.PlatformNumber == o.PlatformNumber &&
		m.DataType == o.DataType &&
		m.FormatVersion == o.FormatVersion &&
		m.HandbookVersion == o.HandbookVersion &&
		m.ReferenceDateTime == o.ReferenceDateTime &&
		m.ProjectName == o.ProjectName &&
		slices.Equal(m.PIName, o.PIName) &&
		m.DataCentre == o.DataCentre &&
		m.DCReference == o.DCReference &&
		m.PlatformType == o.PlatformType &&
		m.FloatSerialNo == o.FloatSerialNo &&
		m.FirmwareVersion == o.FirmwareVersion &&
		m.WMOInstType == o.WMOInstType &&
		m.PositioningSystem == o.PositioningSystem
}

// MetaRecord is a persisted platform/instrument configuration.
type MetaRecord struct {
	ID string `json:"_id"`
	MetaFields
}

// ProfileRecord is one measurement cycle of one float.
type ProfileRecord struct {
	ID          string   `json:"_id"`
	Geolocation GeoPoint `json:"geolocation"`
	Metadata    []string `json:"metadata"`

	CycleNumber            int     `json:"CYCLE_NUMBER"`
	Direction              string  `json:"DIRECTION"`
	DataStateIndicator     string  `json:"DATA_STATE_INDICATOR"`
	DataMode               string  `json:"DATA_MODE"`
	DateCreation           string  `json:"DATE_CREATION"`
	DateUpdate             string  `json:"DATE_UPDATE"`
	DCReference            string  `json:"DC_REFERENCE"`
	Juld                   float64 `json:"JULD"`
	JuldQC                 string  `json:"JULD_QC"`
	JuldLocation           float64 `json:"JULD_LOCATION"`
	PositionQC             string  `json:"POSITION_QC"`
	VerticalSamplingScheme string  `json:"VERTICAL_SAMPLING_SCHEME"`
	ConfigMissionNumber    int     `json:"CONFIG_MISSION_NUMBER"`

	RealtimeData    Optional[map[string][]float64] `json:"realtime_data,omitzero"`
	AdjustedData    Optional[map[string][]float64] `json:"adjusted_data,omitzero"`
	DataInfo        Optional[map[string]DataInfo]  `json:"data_info,omitzero"`
	LevelQC         Optional[map[string][]string]  `json:"level_qc,omitzero"`
	AdjustedLevelQC Optional[map[string][]string]  `json:"adjusted_level_qc,omitzero"`
}

// Realtime reports whether the record carries real-time data.
func (p ProfileRecord) Realtime() bool {
	return p.DataMode == ModeRealtime
}

// MetadataID returns the first metadata reference, or "" when there is none.
func (p ProfileRecord) MetadataID() string {
	if len(p.Metadata) == 0 {
		return ""
	}
	return p.Metadata[0]
}
