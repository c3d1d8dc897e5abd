package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
	"github.com/couchcryptid/argo-profile-etl/internal/domain/argotest"
	"github.com/couchcryptid/argo-profile-etl/internal/observability"
	"github.com/couchcryptid/argo-profile-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOpener struct {
	files  map[string]*argotest.Container
	opened []string
	clock  *clockwork.FakeClock
}

func (m *mockOpener) Open(path string) (domain.Container, error) {
	m.opened = append(m.opened, path)
	if m.clock != nil {
		m.clock.Advance(2 * time.Second)
	}
	c, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return c, nil
}

type mockSink struct {
	metas    []domain.MetaRecord
	profiles []domain.ProfileRecord
	ids      map[string]bool

	metaErr    error
	profileErr error
	failMetaOn int // 1-based InsertMeta call that fails with metaErr; 0 fails every call
	metaCalls  int
}

func newMockSink() *mockSink {
	return &mockSink{ids: make(map[string]bool)}
}

func (m *mockSink) InsertMeta(_ context.Context, rec domain.MetaRecord) error {
	m.metaCalls++
	if m.metaErr != nil && (m.failMetaOn == 0 || m.failMetaOn == m.metaCalls) {
		return m.metaErr
	}
	if m.ids[rec.ID] {
		return fmt.Errorf("metadata %s: %w", rec.ID, domain.ErrDuplicateRecord)
	}
	m.ids[rec.ID] = true
	m.metas = append(m.metas, rec)
	return nil
}

func (m *mockSink) InsertProfile(_ context.Context, rec domain.ProfileRecord) error {
	if m.profileErr != nil {
		return m.profileErr
	}
	if m.ids[rec.ID] {
		return fmt.Errorf("profile %s: %w", rec.ID, domain.ErrDuplicateRecord)
	}
	m.ids[rec.ID] = true
	m.profiles = append(m.profiles, rec)
	return nil
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// batch builds one fixture file per cycle for platform in the given mode.
func batch(platform, mode string, cycles ...int) (*mockOpener, []string) {
	opener := &mockOpener{files: make(map[string]*argotest.Container)}
	paths := make([]string, 0, len(cycles))
	for _, cycle := range cycles {
		path := fmt.Sprintf("data/%s%s_%03d.nc", mode, platform, cycle)
		opener.files[path] = argotest.Profile(platform, cycle, mode)
		paths = append(paths, path)
	}
	return opener, paths
}

// --- tests ---

func TestPipeline_Run_SharedMetadataRealtime(t *testing.T) {
	opener, paths := batch("2901237", "R", 1, 2, 3)
	sink := newMockSink()
	metrics := newTestMetrics()
	p := pipeline.New(opener, sink, discardLogger(), metrics)

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, sink.metas, 1)
	assert.Equal(t, "2901237_m0", sink.metas[0].ID)

	require.Len(t, sink.profiles, 3)
	for i, rec := range sink.profiles {
		assert.Equal(t, fmt.Sprintf("2901237_%d", i+1), rec.ID)
		assert.Equal(t, []string{"2901237_m0"}, rec.Metadata)
		assert.True(t, rec.RealtimeData.Present())
		assert.False(t, rec.AdjustedData.Present())
	}

	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, 3, summary.Converted)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 1, summary.MetadataCreated)
	assert.Empty(t, summary.Problems)
	assert.NotEmpty(t, summary.RunID)

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues(observability.OutcomeConverted)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MetadataCreated), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.ProfilesPersisted), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_DelayedMode(t *testing.T) {
	opener, paths := batch("6901580", "D", 7)
	sink := newMockSink()
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())

	_, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, sink.profiles, 1)
	rec := sink.profiles[0]
	assert.Equal(t, "6901580_7", rec.ID)
	assert.False(t, rec.RealtimeData.Present())
	adjusted, ok := rec.AdjustedData.Get()
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{5.6, 10.7, 20.9}, adjusted["PRES"], 1e-9)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"realtime_data"`)
	assert.Contains(t, string(b), `"adjusted_data"`)
}

func TestPipeline_Run_DistinctConfigurations(t *testing.T) {
	opener, paths := batch("2901237", "R", 1, 2)
	opener.files[paths[1]].SetString("FIRMWARE_VERSION", 32, "5900A05")
	sink := newMockSink()
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, sink.metas, 2)
	assert.Equal(t, "2901237_m0", sink.metas[0].ID)
	assert.Equal(t, "2901237_m1", sink.metas[1].ID)
	assert.Equal(t, []string{"2901237_m0"}, sink.profiles[0].Metadata)
	assert.Equal(t, []string{"2901237_m1"}, sink.profiles[1].Metadata)
	assert.Equal(t, 2, summary.MetadataCreated)
}

func TestPipeline_Run_SkipsFileMissingMeasurement(t *testing.T) {
	opener, paths := batch("2901237", "R", 1, 2, 3)
	opener.files[paths[1]].Remove("TEMP")
	sink := newMockSink()
	metrics := newTestMetrics()
	p := pipeline.New(opener, sink, discardLogger(), metrics)

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, []string{"2901237_1", "2901237_3"}, profileIDs(sink.profiles))
	assert.Equal(t, 2, summary.Converted)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Problems, 1)
	assert.Equal(t, paths[1], summary.Problems[0].File)
	assert.False(t, summary.Problems[0].Fatal)
	assert.Contains(t, summary.Problems[0].Reason, "TEMP")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues(observability.OutcomeSkipped)), 0)
}

func TestPipeline_Run_SkipsUnreadableFile(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	paths = append([]string{"data/corrupt.nc"}, paths...)
	sink := newMockSink()
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, "data/corrupt.nc", summary.Problems[0].File)
}

func TestPipeline_Run_DegradedFieldsStillConvert(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	opener.files[paths[0]].Remove("JULD_LOCATION").Remove("CONFIG_MISSION_NUMBER")
	sink := newMockSink()
	metrics := newTestMetrics()
	p := pipeline.New(opener, sink, discardLogger(), metrics)

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Converted)
	require.Len(t, sink.profiles, 1)
	assert.InDelta(t, domain.FillFloat, sink.profiles[0].JuldLocation, 0)
	assert.Equal(t, domain.FillInt, sink.profiles[0].ConfigMissionNumber)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.DegradedFields), 0)
}

func TestPipeline_Run_RetractsMetadataOnInsertFailure(t *testing.T) {
	opener, paths := batch("2901237", "R", 1, 2)
	sink := newMockSink()
	sink.metaErr = errors.New("connection reset")
	sink.failMetaOn = 1
	metrics := newTestMetrics()
	p := pipeline.New(opener, sink, discardLogger(), metrics)

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	// The second file re-mints the retracted id rather than referencing a
	// record that was never written.
	require.Len(t, sink.metas, 1)
	assert.Equal(t, "2901237_m0", sink.metas[0].ID)
	require.Len(t, sink.profiles, 1)
	assert.Equal(t, "2901237_2", sink.profiles[0].ID)
	assert.Equal(t, []string{"2901237_m0"}, sink.profiles[0].Metadata)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Converted)
	require.Len(t, summary.Problems, 1)
	assert.True(t, summary.Problems[0].Fatal)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MetadataRetracted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FilesTotal.WithLabelValues(observability.OutcomeFailed)), 0)
}

func TestPipeline_ProcessFile_ProfileFailureKeepsPersistedMetadata(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	sink := newMockSink()
	sink.profileErr = errors.New("disk full")
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())
	cache := domain.NewMetaCache()

	rec, err := p.ProcessFile(context.Background(), cache, paths[0])
	require.Error(t, err)
	require.ErrorIs(t, err, pipeline.ErrPersist)
	assert.Equal(t, "2901237_1", rec.ID)

	assert.Equal(t, 1, cache.Len())
	assert.Len(t, sink.metas, 1)
}

func TestPipeline_ProcessFile_DuplicateProfile(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	sink := newMockSink()
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())
	cache := domain.NewMetaCache()

	_, err := p.ProcessFile(context.Background(), cache, paths[0])
	require.NoError(t, err)

	_, err = p.ProcessFile(context.Background(), cache, paths[0])
	require.ErrorIs(t, err, pipeline.ErrPersist)
	require.ErrorIs(t, err, domain.ErrDuplicateRecord)
	assert.Len(t, sink.metas, 1)
}

func TestPipeline_ProcessFile_ClosesContainer(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	p := pipeline.New(opener, newMockSink(), discardLogger(), newTestMetrics())

	_, err := p.ProcessFile(context.Background(), domain.NewMetaCache(), paths[0])
	require.NoError(t, err)
	assert.True(t, opener.files[paths[0]].Closed)
}

func TestPipeline_ProcessFile_MatchesAssemble(t *testing.T) {
	opener, paths := batch("2901237", "D", 4)
	p := pipeline.New(opener, newMockSink(), discardLogger(), newTestMetrics())

	got, err := p.ProcessFile(context.Background(), domain.NewMetaCache(), paths[0])
	require.NoError(t, err)

	fields, err := domain.ExtractFields(argotest.Profile("2901237", 4, "D"), nil)
	require.NoError(t, err)
	want := domain.Assemble(fields, "2901237_m0")

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(
		domain.Optional[map[string][]float64]{},
		domain.Optional[map[string]domain.DataInfo]{},
		domain.Optional[map[string][]string]{},
	)); diff != "" {
		t.Errorf("ProcessFile mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Run_FreshCachePerRun(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	sink := newMockSink()
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())

	_, err := p.Run(context.Background(), paths)
	require.NoError(t, err)

	// A second run mints m0 again; the sink rejects it as a duplicate.
	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Problems[0].Reason, "2901237_m0")
}

func TestPipeline_Run_StopsBetweenFilesOnCancel(t *testing.T) {
	opener, paths := batch("2901237", "R", 1, 2, 3)
	ctx, cancel := context.WithCancel(context.Background())
	sink := &cancellingSink{mockSink: newMockSink(), cancel: cancel}
	p := pipeline.New(opener, sink, discardLogger(), newTestMetrics())

	summary, err := p.Run(ctx, paths)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{paths[0]}, opener.opened)
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 1, summary.MetadataCreated)
}

// cancellingSink cancels the run after the first profile is written.
type cancellingSink struct {
	*mockSink
	cancel context.CancelFunc
}

func (s *cancellingSink) InsertProfile(ctx context.Context, rec domain.ProfileRecord) error {
	err := s.mockSink.InsertProfile(ctx, rec)
	s.cancel()
	return err
}

func TestPipeline_Run_Duration(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	pipeline.SetClock(fakeClock)
	t.Cleanup(func() {
		pipeline.SetClock(nil)
	})

	opener, paths := batch("2901237", "R", 1, 2, 3)
	opener.clock = fakeClock
	p := pipeline.New(opener, newMockSink(), discardLogger(), newTestMetrics())

	summary, err := p.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, summary.Duration)
}

func TestPipeline_CheckReadiness(t *testing.T) {
	opener, paths := batch("2901237", "R", 1)
	opener.files[paths[0]].Remove("PRES")
	p := pipeline.New(opener, newMockSink(), discardLogger(), newTestMetrics())

	require.Error(t, p.CheckReadiness(context.Background()))

	_, err := p.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Error(t, p.CheckReadiness(context.Background()), "skipped files do not make the pipeline ready")

	opener2, paths2 := batch("2901237", "R", 2)
	p2 := pipeline.New(opener2, newMockSink(), discardLogger(), newTestMetrics())
	_, err = p2.Run(context.Background(), paths2)
	require.NoError(t, err)
	assert.NoError(t, p2.CheckReadiness(context.Background()))
}

func TestPipeline_Run_Empty(t *testing.T) {
	p := pipeline.New(&mockOpener{}, newMockSink(), discardLogger(), newTestMetrics())

	summary, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Files)
	assert.Zero(t, summary.Converted)
}

func profileIDs(recs []domain.ProfileRecord) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}
