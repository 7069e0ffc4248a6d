// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package logging

import (
	"sort"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter on top of zerolog so
// the job router, publishers and subscribers log like the rest of the
// service. Watermill's info chatter (handler added, subscriber started) is
// emitted at debug level.
type WatermillAdapter struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

var _ watermill.LoggerAdapter = (*WatermillAdapter)(nil)

// NewWatermillAdapter wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillAdapter(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.write(a.logger.Error().Err(err), msg, fields)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.write(a.logger.Debug(), msg, fields)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.write(a.logger.Debug(), msg, fields)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.write(a.logger.Trace(), msg, fields)
}

// With returns an adapter that adds fields to every entry.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}

func (a *WatermillAdapter) write(event *zerolog.Event, msg string, fields watermill.LogFields) {
	if event == nil {
		return
	}
	all := a.fields.Add(fields)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		event = event.Interface(k, all[k])
	}
	event.Msg(msg)
}
