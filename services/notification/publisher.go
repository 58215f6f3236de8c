package notification

import (
	"context"
	"errors"
)

// Publisher delivers an encoded event to the receiver identified by channelKey.
type Publisher interface {
	Publish(ctx context.Context, channelKey string, payload []byte) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, channelKey string, payload []byte) error

func (f PublisherFunc) Publish(ctx context.Context, channelKey string, payload []byte) error {
	return f(ctx, channelKey, payload)
}

// MultiPublisher fans a payload out to every publisher and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, channelKey string, payload []byte) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, channelKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
