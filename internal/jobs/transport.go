// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package jobs

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Transport pairs the publisher and subscriber of one broker. The
// Subscriber ignores Close: a watermill router closes its subscribers when
// it stops, and the transport must survive a supervised router restart.
// Transport.Close releases the broker resources.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	closers []func() error
}

// Close closes the subscriber, then the publisher.
func (t *Transport) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewChannelTransport returns an in-process transport. Jobs are lost on
// restart, which is acceptable for a single instance because results are
// recomputed on the next request.
func NewChannelTransport(buffer int64, logger watermill.LoggerAdapter) *Transport {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
		Persistent:          false,
	}, logger)
	return &Transport{
		Publisher:  pubsub,
		Subscriber: reusableSubscriber{pubsub},
		closers:    []func() error{pubsub.Close},
	}
}

type reusableSubscriber struct {
	message.Subscriber
}

func (reusableSubscriber) Close() error { return nil }

// NewTransport builds the transport selected by cfg.Transport.
func NewTransport(cfg *Config, natsCfg *NATSConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Transport {
	case TransportChannel, "":
		return NewChannelTransport(cfg.ChannelBuffer, logger), nil
	case TransportNATS:
		return NewNATSTransport(natsCfg, []string{cfg.Topic, cfg.PoisonTopic}, logger)
	default:
		return nil, fmt.Errorf("unknown job transport %q", cfg.Transport)
	}
}
