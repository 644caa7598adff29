package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_JSONHidesID(t *testing.T) {
	c := Customer{ID: 42, FirstName: Text("Frodo"), LastName: Text("Baggins")}

	body, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "id")
	assert.NotContains(t, fields, "ID")
	assert.Equal(t, "Frodo", fields["firstName"])
	assert.Contains(t, fields, "address")
	assert.Nil(t, fields["address"])
}

func TestCustomer_DecodeIgnoresID(t *testing.T) {
	var c Customer
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "firstName": "Bilbo"}`), &c))
	assert.Zero(t, c.ID)
	assert.Equal(t, "Bilbo", Value(c.FirstName))
}

func TestCustomer_MergeDecode(t *testing.T) {
	c := Customer{ID: 1, FirstName: Text("Frodo"), LastName: Text("Baggins"), Address: Text("Legnicka")}

	require.NoError(t, json.Unmarshal([]byte(`{"firstName": "Bilbo Jr.", "address": null}`), &c))

	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Bilbo Jr.", Value(c.FirstName))
	assert.Equal(t, "Baggins", Value(c.LastName))
	assert.Nil(t, c.Address)
}

func TestEntity_WithID(t *testing.T) {
	trip := Trip{Destination: Text("London")}
	withID := trip.WithID(9)

	assert.Equal(t, int64(9), withID.GetID())
	assert.Zero(t, trip.GetID(), "WithID must not mutate the receiver")

	customer := Customer{}.WithID(3)
	assert.Equal(t, int64(3), customer.GetID())
}

func TestValue(t *testing.T) {
	assert.Equal(t, "", Value(nil))
	assert.Equal(t, "x", Value(Text("x")))
}
