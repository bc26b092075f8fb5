package eventsvc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "shule.staff.created" {
			return errors.Errorf("unexpected topic %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil || string(key) != "s1" {
			return errors.Errorf("unexpected key %s", key)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var env Envelope
		if err := json.Unmarshal(value, &env); err != nil {
			return err
		}
		if env.Topic != core.TopicStaffCreated || env.OccurredAt.IsZero() {
			return errors.Errorf("unexpected envelope %+v", env)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWith(producer, "shule")
	defer func() { require.NoError(t, pub.Close()) }()

	err := pub.Publish(context.Background(), core.TopicStaffCreated, "s1", map[string]string{"employee_id": "EMP20240001"})
	assert.NoError(t, err)

	err = pub.Publish(context.Background(), core.TopicStaffCreated, "s2", nil)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestRecorder(t *testing.T) {
	rec := new(Recorder)
	require.NoError(t, rec.Publish(context.Background(), core.TopicParentCreated, "p1", nil))
	require.NoError(t, rec.Publish(context.Background(), core.TopicStudentCreated, "s1", nil))
	assert.Equal(t, []string{core.TopicParentCreated, core.TopicStudentCreated}, rec.Topics())

	rec.Err = errors.New("down")
	assert.Error(t, rec.Publish(context.Background(), core.TopicParentCreated, "p2", nil))
	assert.Len(t, rec.Events(), 2)
}
