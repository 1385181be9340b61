package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("Despachado").Valid())
	assert.False(t, OrderStatus("pendente").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestGrandTotal(t *testing.T) {
	withDelivery := Order{DeliveryType: DeliveryShipping, Amount: 150, Freight: 20}
	assert.Equal(t, 170.0, withDelivery.GrandTotal())

	pickup := Order{DeliveryType: DeliveryPickup, Amount: 150, Freight: 20}
	assert.Equal(t, 150.0, pickup.GrandTotal())
}

func TestTimeStampLexicalOrderMatchesChronological(t *testing.T) {
	early := NewTimeStamp(time.Date(2024, 1, 15, 9, 30, 45, 0, time.UTC))
	late := NewTimeStamp(time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, "20240115093045", early)
	assert.Len(t, early, len(TimeStampLayout))
	assert.True(t, early < late)
}
