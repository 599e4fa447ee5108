package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"

	"github.com/papertrade/trading"
)

type EventService struct {
	client *Client
	logger trading.Logger
}

func NewEventService(client *Client, logger trading.Logger) *EventService {
	return &EventService{client, logger}
}

func (es *EventService) Publish(event *trading.Event) {
	es.publishOnNotificationsTopic(context.TODO(), event)
}

func (es *EventService) publishOnNotificationsTopic(
	ctx context.Context,
	event *trading.Event,
) {
	topicLogger := es.logger.WithField("topic", "notifications")

	messageData, err := json.Marshal(&notificationEvent{
		Trader:  event.TraderID.String(),
		Payload: event.Payload,
	})
	if err != nil {
		topicLogger.Errorf("could not marshal trading event: [%v]", err)
		return
	}

	es.publishOnTopic(
		ctx,
		es.client.notificationsTopic,
		messageData,
		topicLogger,
	)
}

func (es *EventService) publishOnTopic(
	ctx context.Context,
	topic *pubsub.Topic,
	messageData []byte,
	topicLogger trading.Logger,
) {
	result := topic.Publish(ctx, &pubsub.Message{
		Data: messageData,
	})

	go func() {
		id, err := result.Get(ctx)
		if err != nil {
			topicLogger.Errorf(
				"could not publish trading event: [%v]",
				err,
			)
			return
		}

		topicLogger.Infof("published trading event with ID: [%v]", id)
	}()
}

type notificationEvent struct {
	Trader  string
	Payload string
}
