// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

// Package logging provides zerolog-based structured logging for NutriRank.
//
// A global logger is configured once from main:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
// Components receive child loggers by injection
// (logging.WithComponent("jobs")) and request-scoped code uses
// logging.Ctx(ctx), which adds the request, correlation and user ids
// stored in the context.
//
// Two adapters route third-party logging into zerolog: SlogHandler for
// sutureslog and WatermillAdapter for the job router.
//
// Always terminate an event with Msg or Send; an unterminated event is
// never written.
package logging
