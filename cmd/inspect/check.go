package main

import (
	"context"
	"fmt"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
	"github.com/couchcryptid/argo-profile-etl/internal/pipeline"
)

// recorder keeps every record in memory in insertion order.
type recorder struct {
	metas    []domain.MetaRecord
	profiles []domain.ProfileRecord
}

func (r *recorder) InsertMeta(_ context.Context, rec domain.MetaRecord) error {
	r.metas = append(r.metas, rec)
	return nil
}

func (r *recorder) InsertProfile(_ context.Context, rec domain.ProfileRecord) error {
	r.profiles = append(r.profiles, rec)
	return nil
}

// phase tracks pass/fail for one check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func checkConversion(s pipeline.Summary) *phase {
	p := &phase{name: "Every file converts"}
	for _, problem := range s.Problems {
		p.errorf("%s: %s", problem.File, problem.Reason)
	}
	return p
}

func checkModeExclusivity(profiles []domain.ProfileRecord) *phase {
	p := &phase{name: "Exactly one measurement set per mode"}
	for _, rec := range profiles {
		rt, adj := rec.RealtimeData.Present(), rec.AdjustedData.Present()
		switch {
		case rt == adj:
			p.errorf("%s: realtime_data present=%v, adjusted_data present=%v", rec.ID, rt, adj)
		case rt != rec.Realtime():
			p.errorf("%s: DATA_MODE %q but realtime_data present=%v", rec.ID, rec.DataMode, rt)
		}
	}
	return p
}

func checkLinkage(metas []domain.MetaRecord, profiles []domain.ProfileRecord) *phase {
	p := &phase{name: "Profiles reference stored metadata"}
	known := make(map[string]bool, len(metas))
	for _, m := range metas {
		if known[m.ID] {
			p.errorf("metadata id %s minted twice", m.ID)
		}
		known[m.ID] = true
	}
	seen := make(map[string]bool, len(profiles))
	for _, rec := range profiles {
		if seen[rec.ID] {
			p.errorf("profile id %s produced twice", rec.ID)
		}
		seen[rec.ID] = true
		if len(rec.Metadata) != 1 {
			p.errorf("%s: %d metadata references, want 1", rec.ID, len(rec.Metadata))
			continue
		}
		if !known[rec.Metadata[0]] {
			p.errorf("%s: references unknown metadata %s", rec.ID, rec.Metadata[0])
		}
	}
	return p
}

func checkQueryFields(profiles []domain.ProfileRecord) *phase {
	p := &phase{name: "Geolocation and JULD usable for queries"}
	for _, rec := range profiles {
		lon, lat := rec.Geolocation.Coordinates[0], rec.Geolocation.Coordinates[1]
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			p.errorf("%s: position [%v, %v] out of range", rec.ID, lon, lat)
		}
		if rec.Juld == domain.FillFloat {
			p.errorf("%s: JULD missing", rec.ID)
		}
	}
	return p
}
