// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

// Package jobs runs recommendation requests asynchronously.
//
// The API enqueues a Job through a Queue, which writes a pending marker to
// recommendation:{user_id} and publishes the job on a watermill topic. A
// Router delivers each message to the Worker, which
//
//   - takes training_lock:{user_id} with SETNX (300s TTL by default) and
//     acknowledges the job without work when another run holds it
//   - runs the engine under the job timeout (5 minutes by default, never
//     longer than the lock TTL)
//   - writes a success or failed Result to recommendation:{user_id} with a
//     1 hour TTL, and run metadata to last_train:{user_id}
//   - releases the lock
//
// Store failures are retried by the router with exponential backoff and end
// in the poison topic when retries run out. Bad input, data-integrity
// errors and timeouts are final and stored as failed results.
//
// Two transports exist: an in-process gochannel (the default) and NATS
// JetStream, optionally served by an EmbeddedServer.
package jobs
