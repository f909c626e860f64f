package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/gopherchat-web/internal/activity"
)

func TestNewEventPublishing(t *testing.T) {
	e, err := activity.NewEvent(activity.LoginSucceeded, "alice")
	require.NoError(t, err)

	msg, err := NewEventPublishing(e)
	require.NoError(t, err)
	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)
	require.Equal(t, e.ID, msg.MessageId)
	require.Equal(t, "login_succeeded", msg.Type)

	var back activity.Event
	require.NoError(t, json.Unmarshal(msg.Body, &back))
	require.Equal(t, e.ID, back.ID)
	require.Equal(t, "alice", back.Username)
}

func TestRetryPublishing(t *testing.T) {
	d := amqp.Delivery{
		Headers:     amqp.Table{"trace": "x"},
		ContentType: "application/json",
		MessageId:   "01H",
		Body:        []byte(`{}`),
	}

	first := RetryPublishing(d, 5*time.Second)
	require.Equal(t, "5000", first.Expiration)
	require.Equal(t, 1, RetryCount(first.Headers))
	require.Equal(t, "x", first.Headers["trace"])
	require.Nil(t, d.Headers[RetryCountHeader])

	d.Headers = first.Headers
	second := RetryPublishing(d, time.Second)
	require.Equal(t, 2, RetryCount(second.Headers))
}

func TestQueueNames(t *testing.T) {
	require.Equal(t, "auth_events.retry", RetryQueue("auth_events"))
	require.Equal(t, "auth_events.dlq", DeadQueue("auth_events"))
}
