package domain_test

import (
	"testing"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
	"github.com/couchcryptid/argo-profile-etl/internal/domain/argotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMeasurements_Realtime(t *testing.T) {
	c := argotest.Profile("2901237", 1, "R")
	u := domain.NewUnpacker(c, nil)

	m, err := domain.ExtractMeasurements(u, "R", argotest.Parameters, argotest.Levels)
	require.NoError(t, err)
	require.Len(t, m.Params, 3)

	temp := m.Params[1]
	assert.Equal(t, "TEMP", temp.Name)
	assert.Equal(t, domain.SeriesRaw, temp.Kind)
	assert.Equal(t, []float64{18.25, 17.9, 15.5}, temp.Values)
	assert.Equal(t, []string{"1", "1", "2"}, temp.LevelQC)
	assert.Nil(t, temp.AdjustedQC)
	assert.Equal(t, domain.DataInfo{
		DataMode:           "R",
		Units:              "degree_Celsius",
		LongName:           "Sea temperature in-situ ITS-90 scale",
		ProfileParameterQC: "A",
	}, temp.Info)
}

func TestExtractMeasurements_Adjusted(t *testing.T) {
	c := argotest.Profile("2901237", 1, "D")
	u := domain.NewUnpacker(c, nil)

	m, err := domain.ExtractMeasurements(u, "D", argotest.Parameters, argotest.Levels)
	require.NoError(t, err)
	require.Len(t, m.Params, 3)

	pres := m.Params[0]
	assert.Equal(t, domain.SeriesAdjusted, pres.Kind)
	assert.InDeltaSlice(t, []float64{5.6, 10.7, 20.9}, pres.Values, 1e-9)
	assert.Equal(t, []string{"1", "1", "2"}, pres.LevelQC)
	assert.Equal(t, []string{"1", "1", "1"}, pres.AdjustedQC)
	assert.Equal(t, "D", pres.Info.DataMode)
}

func TestExtractMeasurements_MissingArrayFailsFile(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		removed string
	}{
		{"realtime", "R", "PSAL"},
		{"adjusted", "D", "TEMP_ADJUSTED"},
		{"adjusted with empty mode", "", "PRES_ADJUSTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := argotest.Profile("2901237", 1, tt.mode).Remove(tt.removed)
			u := domain.NewUnpacker(c, nil)

			_, err := domain.ExtractMeasurements(u, tt.mode, argotest.Parameters, argotest.Levels)
			require.ErrorIs(t, err, domain.ErrMissingMeasurement)
			assert.Contains(t, err.Error(), tt.removed)
		})
	}
}

func TestExtractMeasurements_ShortArrayFailsFile(t *testing.T) {
	c := argotest.Profile("2901237", 1, "R")
	c.FloatVars["TEMP"] = []float64{18.25}
	u := domain.NewUnpacker(c, nil)

	_, err := domain.ExtractMeasurements(u, "R", argotest.Parameters, argotest.Levels)
	require.ErrorIs(t, err, domain.ErrMalformedFile)
}

func TestExtractMeasurements_OnlyFirstProfileLevels(t *testing.T) {
	c := argotest.Profile("2901237", 1, "R")
	c.FloatVars["PRES"] = []float64{1, 2, 3, 101, 102, 103}
	u := domain.NewUnpacker(c, nil)

	m, err := domain.ExtractMeasurements(u, "R", []string{"PRES"}, argotest.Levels)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, m.Params[0].Values)
}

func TestExtractMeasurements_SkipsBlankAndRepeatedSlots(t *testing.T) {
	c := argotest.Profile("2901237", 1, "R")
	u := domain.NewUnpacker(c, nil)

	m, err := domain.ExtractMeasurements(u, "R", []string{"PRES", "", "TEMP", "PRES"}, argotest.Levels)
	require.NoError(t, err)
	require.Len(t, m.Params, 2)
	assert.Equal(t, "PRES", m.Params[0].Name)
	assert.Equal(t, "TEMP", m.Params[1].Name)
}

func TestExtractMeasurements_ParameterDataMode(t *testing.T) {
	c := argotest.Profile("2901237", 1, "A")
	c.SetString("PARAMETER_DATA_MODE", 1, "D", "A", "R")
	u := domain.NewUnpacker(c, nil)

	m, err := domain.ExtractMeasurements(u, "A", argotest.Parameters, argotest.Levels)
	require.NoError(t, err)
	assert.Equal(t, "D", m.Params[0].Info.DataMode)
	assert.Equal(t, "A", m.Params[1].Info.DataMode)
	assert.Equal(t, "R", m.Params[2].Info.DataMode)
}

func TestExtractMeasurements_MissingQCIsTolerated(t *testing.T) {
	c := argotest.Profile("2901237", 1, "R").Remove("TEMP_QC").Remove("PROFILE_TEMP_QC")
	u := domain.NewUnpacker(c, nil)

	m, err := domain.ExtractMeasurements(u, "R", argotest.Parameters, argotest.Levels)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", ""}, m.Params[1].LevelQC)
	assert.Empty(t, m.Params[1].Info.ProfileParameterQC)
	assert.Equal(t, []string{"TEMP_QC", "PROFILE_TEMP_QC"}, u.Degraded())
}

func TestKind(t *testing.T) {
	assert.Equal(t, domain.SeriesRaw, domain.Kind("R"))
	assert.Equal(t, domain.SeriesAdjusted, domain.Kind("A"))
	assert.Equal(t, domain.SeriesAdjusted, domain.Kind("D"))
	assert.Equal(t, domain.SeriesAdjusted, domain.Kind(""))
	assert.Equal(t, "adjusted", domain.SeriesAdjusted.String())
}
