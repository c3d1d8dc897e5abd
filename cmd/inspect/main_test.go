package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		printing bool
		want     string
	}{
		{"dir check", false, false, "warn"},
		{"print file keeps stdout to the document", false, true, "error"},
		{"verbose print", true, true, "debug"},
		{"verbose dir check", true, false, "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logLevel(tt.verbose, tt.printing))
		})
	}
}
