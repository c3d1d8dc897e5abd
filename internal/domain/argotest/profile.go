package argotest

// Levels is the number of vertical levels in generated profiles.
const Levels = 3

// Parameters measured in generated profiles.
var Parameters = []string{"PRES", "TEMP", "PSAL"}

var (
	units = map[string]string{
		"PRES": "decibar",
		"TEMP": "degree_Celsius",
		"PSAL": "psu",
	}
	longNames = map[string]string{
		"PRES": "Sea water pressure, equals 0 at sea-level",
		"TEMP": "Sea temperature in-situ ITS-90 scale",
		"PSAL": "Practical salinity",
	}
	baseValues = map[string][]float64{
		"PRES": {5.1, 10.2, 20.4},
		"TEMP": {18.25, 17.9, 15.5},
		"PSAL": {35.1, 35.12, 35.2},
	}
)

// Profile returns a complete single-profile file for a float cycle. Raw and
// adjusted arrays are both present; adjusted values are offset by +0.5 so tests
// can tell which variant was read.
func Profile(platform string, cycle int, mode string) *Container {
	c := NewContainer()
	c.Dims["N_PROF"] = 1
	c.Dims["N_PARAM"] = len(Parameters)
	c.Dims["N_LEVELS"] = Levels
	c.Dims["N_CALIB"] = 1
	c.Dims["N_HISTORY"] = 0

	c.SetString("DATA_TYPE", 16, "Argo profile")
	c.SetString("FORMAT_VERSION", 4, "3.1")
	c.SetString("HANDBOOK_VERSION", 4, "1.2")
	c.SetString("REFERENCE_DATE_TIME", 14, "19500101000000")
	c.SetString("DATE_CREATION", 14, "20200115093000")
	c.SetString("DATE_UPDATE", 14, "20231002120000")
	c.SetString("PLATFORM_NUMBER", 8, platform)
	c.SetString("PROJECT_NAME", 64, "Argo SPAIN")
	c.SetString("PI_NAME", 64, "Pedro Velez, Maria Garcia")
	c.SetString("STATION_PARAMETERS", 16, Parameters...)
	c.SetString("DIRECTION", 1, "A")
	c.SetString("DATA_CENTRE", 2, "IF")
	c.SetString("DC_REFERENCE", 32, "")
	c.SetString("DATA_STATE_INDICATOR", 4, "2B")
	c.SetString("DATA_MODE", 1, mode)
	c.SetString("PLATFORM_TYPE", 32, "ARVOR")
	c.SetString("FLOAT_SERIAL_NO", 32, "AI2600-17EU026")
	c.SetString("FIRMWARE_VERSION", 32, "5900A04")
	c.SetString("WMO_INST_TYPE", 4, "844")
	c.SetString("JULD_QC", 1, "1")
	c.SetString("POSITION_QC", 1, "1")
	c.SetString("POSITIONING_SYSTEM", 8, "GPS")
	c.SetString("VERTICAL_SAMPLING_SCHEME", 256, "Primary sampling: averaged [10 sec sampling, 25 dbar average]")

	c.IntVars["CYCLE_NUMBER"] = []int64{int64(cycle)}
	c.IntVars["CONFIG_MISSION_NUMBER"] = []int64{1}
	c.FloatVars["JULD"] = []float64{25678.5 + float64(cycle)*10}
	c.FloatVars["JULD_LOCATION"] = []float64{25678.51 + float64(cycle)*10}
	c.FloatVars["LATITUDE"] = []float64{36.512}
	c.FloatVars["LONGITUDE"] = []float64{-9.875}

	for _, p := range Parameters {
		raw := baseValues[p]
		adjusted := make([]float64, len(raw))
		for i, v := range raw {
			adjusted[i] = v + 0.5
		}
		c.FloatVars[p] = raw
		c.FloatVars[p+"_ADJUSTED"] = adjusted
		c.SetString(p+"_QC", 1, "1", "1", "2")
		c.SetString(p+"_ADJUSTED_QC", 1, "1", "1", "1")
		c.SetString("PROFILE_"+p+"_QC", 1, "A")
		c.SetAttr(p, "units", units[p])
		c.SetAttr(p, "long_name", longNames[p])
	}
	return c
}
