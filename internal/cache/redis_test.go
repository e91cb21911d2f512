package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

func testFare() domain.FlightFare {
	return domain.FlightFare{
		FlightID:       7,
		CurrentPrice:   decimal.RequireFromString("680.63"),
		DemandFactor:   1.1,
		SeatsRemaining: 150,
		UpdatedAt:      time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}
}

func TestSetFare(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	fare := testFare()
	payload, err := json.Marshal(fare)
	require.NoError(t, err)

	mock.ExpectSet(fareKey(7), payload, time.Minute).SetVal("OK")

	assert.NoError(t, c.SetFare(context.Background(), fare))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFare(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	fare := testFare()
	payload, err := json.Marshal(fare)
	require.NoError(t, err)

	mock.ExpectGet(fareKey(7)).SetVal(string(payload))

	got, err := c.GetFare(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CurrentPrice.Equal(fare.CurrentPrice))
	assert.Equal(t, 150, got.SeatsRemaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFare_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	mock.ExpectGet(fareKey(42)).RedisNil()

	got, err := c.GetFare(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFare_CorruptPayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	mock.ExpectGet(fareKey(7)).SetVal("{not json")

	_, err := c.GetFare(context.Background(), 7)
	assert.Error(t, err)
}
