package domain

import (
	"fmt"
	"log/slog"
)

// Dimensions holds the sizes of the file's fixed dimensions.
type Dimensions struct {
	Prof    int
	Param   int
	Levels  int
	Calib   int
	History int
}

// ProfileFields is the intermediate representation of one file, populated by
// the unpacker and measurement extractor and consumed by Assemble.
type ProfileFields struct {
	Dims Dimensions
	Meta MetaFields

	CycleNumber            int
	Direction              string
	DataStateIndicator     string
	DataMode               string
	DateCreation           string
	DateUpdate             string
	Juld                   float64
	JuldQC                 string
	JuldLocation           float64
	Latitude               float64
	Longitude              float64
	PositionQC             string
	VerticalSamplingScheme string
	ConfigMissionNumber    int

	Measurements Measurements

	// Degraded names the fields that were replaced by sentinels.
	Degraded []string
}

// ReadDimensions reads the fixed dimensions. N_PROF, N_PARAM and N_LEVELS are
// required; N_CALIB and N_HISTORY default to 0.
func ReadDimensions(c Container) (Dimensions, error) {
	var d Dimensions
	required := []struct {
		name string
		dst  *int
	}{
		{DimProf, &d.Prof},
		{DimParam, &d.Param},
		{DimLevels, &d.Levels},
	}
	for _, r := range required {
		n, ok := c.Dimension(r.name)
		if !ok {
			return Dimensions{}, fmt.Errorf("%w: dimension %s not found", ErrMalformedFile, r.name)
		}
		*r.dst = n
	}
	if d.Prof < 1 {
		return Dimensions{}, fmt.Errorf("%w: file holds no profiles", ErrMalformedFile)
	}
	d.Calib, _ = c.Dimension(DimCalib)
	d.History, _ = c.Dimension(DimHistory)
	return d, nil
}

// ExtractFields reads every field of the first profile in c.
func ExtractFields(c Container, logger *slog.Logger) (ProfileFields, error) {
	dims, err := ReadDimensions(c)
	if err != nil {
		return ProfileFields{}, err
	}

	u := NewUnpacker(c, logger)
	f := ProfileFields{
		Dims: dims,
		Meta: MetaFields{
			PlatformNumber:    u.String("PLATFORM_NUMBER", String8),
			DataType:          u.String("DATA_TYPE", String16),
			FormatVersion:     u.String("FORMAT_VERSION", String4),
			HandbookVersion:   u.String("HANDBOOK_VERSION", String4),
			ReferenceDateTime: u.String("REFERENCE_DATE_TIME", DateTime),
			ProjectName:       u.String("PROJECT_NAME", String64),
			PIName:            SplitNames(u.String("PI_NAME", String64)),
			DataCentre:        u.String("DATA_CENTRE", String2),
			DCReference:       u.String("DC_REFERENCE", String32),
			PlatformType:      u.String("PLATFORM_TYPE", String32),
			FloatSerialNo:     u.String("FLOAT_SERIAL_NO", String32),
			FirmwareVersion:   u.String("FIRMWARE_VERSION", String32),
			WMOInstType:       u.String("WMO_INST_TYPE", String4),
			PositioningSystem: u.String("POSITIONING_SYSTEM", String8),
		},
		CycleNumber:            u.Int("CYCLE_NUMBER"),
		Direction:              u.String("DIRECTION", String1),
		DataStateIndicator:     u.String("DATA_STATE_INDICATOR", String4),
		DataMode:               u.String("DATA_MODE", String1),
		DateCreation:           u.String("DATE_CREATION", DateTime),
		DateUpdate:             u.String("DATE_UPDATE", DateTime),
		Juld:                   u.Float("JULD"),
		JuldQC:                 u.String("JULD_QC", String1),
		JuldLocation:           u.Float("JULD_LOCATION"),
		Latitude:               u.Float("LATITUDE"),
		Longitude:              u.Float("LONGITUDE"),
		PositionQC:             u.String("POSITION_QC", String1),
		VerticalSamplingScheme: u.String("VERTICAL_SAMPLING_SCHEME", String256),
		ConfigMissionNumber:    u.Int("CONFIG_MISSION_NUMBER"),
	}

	if err := checkPosition(f); err != nil {
		return ProfileFields{}, err
	}

	names, err := ParameterNames(c, dims.Param)
	if err != nil {
		return ProfileFields{}, err
	}
	f.Measurements, err = ExtractMeasurements(u, f.DataMode, names, dims.Levels)
	if err != nil {
		return ProfileFields{}, err
	}
	f.Degraded = u.Degraded()
	return f, nil
}

// checkPosition rejects a profile whose geolocation or JULD fell back to a
// sentinel or lies outside WGS84 bounds. Both are indexed by the sinks.
func checkPosition(f ProfileFields) error {
	if f.Juld == FillFloat {
		return fmt.Errorf("%w: JULD missing", ErrMalformedFile)
	}
	if !(f.Latitude >= -90 && f.Latitude <= 90) || !(f.Longitude >= -180 && f.Longitude <= 180) {
		return fmt.Errorf("%w: position [%v, %v] out of range", ErrMalformedFile, f.Longitude, f.Latitude)
	}
	return nil
}
