// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter_Levels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name  string
		log   func(a watermill.LoggerAdapter)
		level string
	}{
		{"error", func(a watermill.LoggerAdapter) { a.Error("handler failed", errors.New("boom"), nil) }, "error"},
		{"info is demoted", func(a watermill.LoggerAdapter) { a.Info("subscriber started", nil) }, "debug"},
		{"debug", func(a watermill.LoggerAdapter) { a.Debug("message acked", nil) }, "debug"},
		{"trace", func(a watermill.LoggerAdapter) { a.Trace("raw payload", nil) }, "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewWatermillAdapter(zerolog.New(&buf).Level(zerolog.TraceLevel)))

			if want := `"level":"` + tt.level + `"`; !strings.Contains(buf.String(), want) {
				t.Errorf("output %s missing %s", buf.String(), want)
			}
		})
	}
}

func TestWatermillAdapter_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewWatermillAdapter(zerolog.New(&buf))
	adapter := base.With(watermill.LogFields{"topic": "recommendation.jobs"})

	adapter.Error("handler failed", errors.New("store down"), watermill.LogFields{"message_uuid": "m-1"})

	out := buf.String()
	for _, want := range []string{
		`"topic":"recommendation.jobs"`,
		`"message_uuid":"m-1"`,
		`"error":"store down"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}

	// With must not leak fields into the parent adapter.
	buf.Reset()
	base.Error("plain", nil, nil)
	if strings.Contains(buf.String(), "topic") {
		t.Errorf("parent adapter picked up child fields: %s", buf.String())
	}
}

func TestWatermillAdapter_DisabledLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWatermillAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel)).Debug("hidden", watermill.LogFields{"k": 1})
	if buf.Len() != 0 {
		t.Errorf("debug entry written at info level: %s", buf.String())
	}
}
