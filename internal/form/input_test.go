package form

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireNamesFirstMissingField(t *testing.T) {
	in := Input{"trainId": "G101", "date": "   ", "departureStation": ""}

	err := in.Require("trainId", "date", "departureStation")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "date", missing.Field)
	assert.Contains(t, missing.UserMessage(), "date")
}

func TestRequireAcceptsFilledForm(t *testing.T) {
	in := Input{"userId": " 7 ", "password": "secret"}
	assert.NoError(t, in.Require("userId", "password"))
	assert.Equal(t, "7", in.Value("userId"))
}

func TestValueNormalizesToNFC(t *testing.T) {
	in := Input{"station": "Cafe\u0301 "}
	assert.Equal(t, "Caf\u00e9", in.Value("station"))
}

func TestSplitListPreservesOrder(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, SplitList("A/B/C"))
	assert.Equal(t, []string{"A", "", "C"}, SplitList("A//C"))
	assert.Empty(t, SplitList("  "))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw  string
		want Int
	}{
		{raw: "10", want: NewInt(10)},
		{raw: "  -3", want: NewInt(-3)},
		{raw: "+4", want: NewInt(4)},
		{raw: "12abc", want: NewInt(12)},
		{raw: "abc", want: Int{}},
		{raw: "", want: Int{}},
		{raw: "-", want: Int{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInt(tt.raw))
		})
	}
}

func TestIntListEncodesAsNumbersAndNull(t *testing.T) {
	in := Input{"durations": "10/20", "prices": "5/x"}

	data, err := json.Marshal(map[string]any{
		"durations": in.IntList("durations"),
		"prices":    in.IntList("prices"),
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"durations":[10,20],"prices":[5,null]}`, string(data))
}

func TestIntUnmarshal(t *testing.T) {
	var got struct {
		A Int `json:"a"`
		B Int `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":null}`), &got))
	assert.Equal(t, NewInt(3), got.A)
	assert.False(t, got.B.Valid)
	assert.Equal(t, "NaN", got.B.String())
}
