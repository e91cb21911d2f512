package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsumerDispatch(t *testing.T) {
	c := &Consumer{logger: zap.NewNop()}
	payload, err := json.Marshal(BookingEvent{Type: EventBookingConfirmed, PNR: "PNRX7K2M9Q"})
	require.NoError(t, err)

	var got *BookingEvent
	err = c.dispatch(context.Background(), kafka.Message{Value: payload}, func(_ context.Context, e BookingEvent) error {
		got = &e
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, EventBookingConfirmed, got.Type)
	assert.Equal(t, "PNRX7K2M9Q", got.PNR)
}

func TestConsumerDispatch_SkipsUndecodable(t *testing.T) {
	c := &Consumer{logger: zap.NewNop()}

	called := false
	err := c.dispatch(context.Background(), kafka.Message{Value: []byte("{not json")}, func(context.Context, BookingEvent) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestConsumerDispatch_HandlerErrorPropagates(t *testing.T) {
	c := &Consumer{logger: zap.NewNop()}
	payload, err := json.Marshal(BookingEvent{Type: EventBookingCancelled, PNR: "PNRA2B3C4D"})
	require.NoError(t, err)

	boom := errors.New("smtp down")
	err = c.dispatch(context.Background(), kafka.Message{Value: payload}, func(context.Context, BookingEvent) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
