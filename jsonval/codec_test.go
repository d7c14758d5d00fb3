package jsonval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePreservesKeyOrder(t *testing.T) {
	data := []byte(`{"weapons": [{"damage": 12.5, "name": "autocannon"}], "hull": 400, "armor": null}`)

	v, err := Decode(data)
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"weapons", "hull", "armor"}, obj.Keys())

	weapons, _ := obj.Get("weapons")
	arr, ok := weapons.(Array)
	require.True(t, ok)
	require.Len(t, arr, 1)

	weapon := arr[0].(*Object)
	assert.Equal(t, []string{"damage", "name"}, weapon.Keys())

	damage, _ := weapon.Get("damage")
	assert.Equal(t, Number(12.5), damage)

	armor, _ := obj.Get("armor")
	assert.Equal(t, Null{}, armor)
}

func TestDecodeScalars(t *testing.T) {
	cases := []struct {
		input string
		want  Value
	}{
		{`null`, Null{}},
		{`true`, Bool(true)},
		{`false`, Bool(false)},
		{`42`, Number(42)},
		{`-3.25`, Number(-3.25)},
		{`"with \"escapes\" and \n newline"`, String("with \"escapes\" and \n newline")},
	}
	for _, tc := range cases {
		v, err := Decode([]byte(tc.input))
		require.NoError(t, err, tc.input)
		assert.True(t, Equal(tc.want, v), "decoding %s", tc.input)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte(`{"unterminated": `))
	assert.Error(t, err)
}

func TestEncodeStableOutput(t *testing.T) {
	obj := NewObject().
		Set("name", String("fighter")).
		Set("cost", Number(250)).
		Set("tags", Array{String("ship"), String("small")}).
		Set("loadout", NewObject())

	want := `{
  "name": "fighter",
  "cost": 250,
  "tags": [
    "ship",
    "small"
  ],
  "loadout": {}
}
`
	data, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	// Encoding twice yields identical bytes
	again, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	input := []byte(`{
  "name": "cruiser",
  "hull": 1200,
  "speed": 3.5,
  "weapons": [
    {
      "name": "beam",
      "damage": 40
    },
    null,
    true
  ]
}
`)
	v, err := Decode(input)
	require.NoError(t, err)

	out, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, string(input), string(out))
}

func TestEncodeRejectsNonFiniteNumbers(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := Encode(Number(f))
		assert.Error(t, err, "encoding %v", f)
	}
}
