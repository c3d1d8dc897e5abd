package domain

import "strconv"

// ProfileID returns "<platform>_<cycle>".
func ProfileID(platform string, cycle int) string {
	return platform + "_" + strconv.Itoa(cycle)
}

// Assemble builds the profile document for f, linked to metadataID. Exactly one
// of RealtimeData and AdjustedData is set, chosen by f.DataMode.
func Assemble(f ProfileFields, metadataID string) ProfileRecord {
	rec := ProfileRecord{
		ID:                     ProfileID(f.Meta.PlatformNumber, f.CycleNumber),
		Geolocation:            NewPoint(f.Latitude, f.Longitude),
		Metadata:               []string{metadataID},
		CycleNumber:            f.CycleNumber,
		Direction:              f.Direction,
		DataStateIndicator:     f.DataStateIndicator,
		DataMode:               f.DataMode,
		DateCreation:           f.DateCreation,
		DateUpdate:             f.DateUpdate,
		DCReference:            f.Meta.DCReference,
		Juld:                   f.Juld,
		JuldQC:                 f.JuldQC,
		JuldLocation:           f.JuldLocation,
		PositionQC:             f.PositionQC,
		VerticalSamplingScheme: f.VerticalSamplingScheme,
		ConfigMissionNumber:    f.ConfigMissionNumber,
	}

	params := f.Measurements.Params
	data := make(map[string][]float64, len(params))
	info := make(map[string]DataInfo, len(params))
	levelQC := make(map[string][]string, len(params))
	for _, p := range params {
		data[p.Name] = p.Values
		info[p.Name] = p.Info
		levelQC[p.Name] = p.LevelQC
	}
	rec.DataInfo = Some(info)
	rec.LevelQC = Some(levelQC)

	if Kind(f.DataMode) == SeriesRaw {
		rec.RealtimeData = Some(data)
		return rec
	}

	adjustedQC := make(map[string][]string, len(params))
	for _, p := range params {
		adjustedQC[p.Name] = p.AdjustedQC
	}
	rec.AdjustedData = Some(data)
	rec.AdjustedLevelQC = Some(adjustedQC)
	return rec
}
