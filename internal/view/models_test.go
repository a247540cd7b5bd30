package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainInfoCardJoinsStations(t *testing.T) {
	var info TrainInfo
	require.NoError(t, json.Unmarshal([]byte(`{"trainId":"G1","seatNum":100,"stationCount":3,"stations":["A","B","C"]}`), &info))

	card := info.Card()

	require.Len(t, card.Fields, 4)
	assert.Equal(t, "A → B → C", card.Fields[3].Value)
	assert.Empty(t, card.Error)
}

func TestTrainInfoCardWithoutStations(t *testing.T) {
	card := TrainInfo{TrainID: "G1"}.Card()
	assert.Len(t, card.Fields, 3)
}

func TestOrdersCard(t *testing.T) {
	empty := Orders{}.Card()
	assert.Nil(t, empty.Table)
	assert.NotEmpty(t, empty.Note)

	card := Orders{Orders: []Order{
		{TrainID: "G101", Date: "2024-01-01", DepartureStation: "Beijing"},
		{TrainID: "D5", Date: "2024-01-02", DepartureStation: "Tianjin"},
	}}.Card()
	require.NotNil(t, card.Table)
	assert.Len(t, card.Table.Header, 4)
	assert.Equal(t, []string{"G101", "2024-01-01", "Beijing", "Куплен"}, card.Table.Rows[0])
	assert.Equal(t, "D5", card.Table.Rows[1][0])
}

func TestAccessibilityStatus(t *testing.T) {
	yes := Accessibility{StartStation: "A", EndStation: "B", Accessible: true}.Card()
	no := Accessibility{StartStation: "A", EndStation: "B"}.Card()

	assert.Equal(t, StatusSuccess, yes.Fields[2].Status)
	assert.Equal(t, StatusError, no.Fields[2].Status)
}

func TestRoutePathCard(t *testing.T) {
	card := RoutePath{StartStation: "A", EndStation: "C", Path: []string{"A", "B", "C"}, TotalTime: 30, TotalPrice: 13}.Card()
	assert.Equal(t, "A → B → C", card.Fields[2].Value)
	assert.Equal(t, "30 мин", card.Fields[3].Value)
}

func TestErrorCard(t *testing.T) {
	card := ErrorCard("sold out")
	assert.Contains(t, card.Error, "sold out")
	assert.Empty(t, card.Fields)
}
