package broker

import (
	"context"

	"github.com/vexhq/vex/provider"
)

type Broker interface {
	Topic(context.Context, string) Topic
}

type Topic interface {
	Publish(context.Context, provider.Event) error
	Subscribe(context.Context, provider.Hook) (Subscription, error)
}

type Subscription interface {
	ID() string
	Unsubscribe()
}
