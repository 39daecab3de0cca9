package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaActivityPublisherShipsEvents(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event ActivityEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != ActivityCommentCreated || event.TemplateID != "t1" || event.At.IsZero() {
			return errors.New("unexpected event payload")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaActivityPublisher(producer, "forms.activity")
	publisher.Publish(context.Background(), ActivityEvent{Type: ActivityCommentCreated, TemplateID: "t1", UserID: "u1", CommentID: "c1"})
	publisher.Publish(context.Background(), ActivityEvent{Type: ActivityTemplateLiked, TemplateID: "t1", UserID: "u1"})

	require.NoError(t, publisher.Close())
	assert.NoError(t, publisher.Close())
}

func TestKafkaActivityPublisherDropsAfterClose(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	publisher := NewKafkaActivityPublisher(producer, "forms.activity")
	require.NoError(t, publisher.Close())

	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), ActivityEvent{Type: ActivityTemplateUnliked, TemplateID: "t1", UserID: "u1"})
	})
}
