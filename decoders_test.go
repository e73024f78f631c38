package fromenv_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepan-anokhin/fromenv"
)

func TestSequenceProbing(t *testing.T) {
	type TestData struct {
		Items []int
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"ITEMS_0": "1",
		"ITEMS_1": "2",
		"ITEMS_2": "3",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, value.Items)
	assert.Equal(t, []string{"ITEMS_0", "ITEMS_1", "ITEMS_2"}, footprint.Names())
}

func TestSequenceProbingStopsAtGap(t *testing.T) {
	type TestData struct {
		Items []string
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"ITEMS_0": "a",
		"ITEMS_2": "orphaned",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, value.Items)
	assert.Equal(t, []string{"ITEMS_0"}, footprint.Names())
}

func TestSequenceRequiresFirstElement(t *testing.T) {
	type TestData struct {
		Items []int
	}

	_, err := fromenv.Decode[TestData](map[string]string{})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorMissingVar, de.Kind)
	assert.Equal(t, "ITEMS_0", de.Var)
}

func TestSequenceDeclaredLength(t *testing.T) {
	type TestData struct {
		Items []int
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"ITEMS_LEN": "2",
		"ITEMS_0":   "10",
		"ITEMS_1":   "20",
		"ITEMS_2":   "ignored beyond the declared length",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, value.Items)
	assert.Equal(t, []string{"ITEMS_0", "ITEMS_1", "ITEMS_LEN"}, footprint.Names())
}

func TestSequenceEmptyViaLength(t *testing.T) {
	type TestData struct {
		Items []int
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"ITEMS_LEN": "0",
	})
	require.NoError(t, err)
	assert.Empty(t, value.Items)
	assert.Equal(t, []string{"ITEMS_LEN"}, footprint.Names())
}

func TestSequenceIncompleteDeclaredLength(t *testing.T) {
	type TestData struct {
		Items []int
	}

	_, err := fromenv.Decode[TestData](map[string]string{
		"ITEMS_LEN": "3",
		"ITEMS_0":   "1",
	})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorInvalidLength, de.Kind)
	assert.Equal(t, "ITEMS_1", de.Var)
}

func TestSequenceBadLengthValue(t *testing.T) {
	type TestData struct {
		Items []int
	}

	for _, raw := range []string{"-1", "abc", "1.5", ""} {
		_, err := fromenv.Decode[TestData](map[string]string{"ITEMS_LEN": raw})
		var de *fromenv.DecodeError
		require.ErrorAs(t, err, &de, "raw=%q", raw)
		assert.Equal(t, fromenv.ErrorInvalidLength, de.Kind, "raw=%q", raw)
		assert.Equal(t, "ITEMS_LEN", de.Var, "raw=%q", raw)
		assert.Equal(t, raw, de.Raw, "raw=%q", raw)
	}
}

func TestSequenceOfRecords(t *testing.T) {
	type Endpoint struct {
		Host string
		Port int `default:"80"`
	}
	type TestData struct {
		Endpoints []Endpoint
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"ENDPOINTS_0_HOST": "a.example.com",
		"ENDPOINTS_0_PORT": "8080",
		"ENDPOINTS_1_HOST": "b.example.com",
	})
	require.NoError(t, err)
	t.Logf("decoded:\n%s", spew.Sdump(value))

	assert.Equal(t, []Endpoint{
		{Host: "a.example.com", Port: 8080},
		{Host: "b.example.com", Port: 80},
	}, value.Endpoints)
	assert.Equal(t, []string{
		"ENDPOINTS_0_HOST", "ENDPOINTS_0_PORT", "ENDPOINTS_1_HOST",
	}, footprint.Names())
}

func TestSequenceDeclaredLengthWithDefaultedElements(t *testing.T) {
	type Item struct {
		Value string `default:"d"`
	}
	type TestData struct {
		List []Item
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"LIST_LEN":     "2",
		"LIST_1_VALUE": "x",
	})
	require.NoError(t, err)
	assert.Equal(t, []Item{{Value: "d"}, {Value: "x"}}, value.List)
	assert.Equal(t, []string{"LIST_1_VALUE", "LIST_LEN"}, footprint.Names())
}

func TestSequenceDefaultWinsWhenUnspecified(t *testing.T) {
	type TestData struct {
		List []string `default:"field,default"`
	}

	// No variables at all: the field default is taken as-is.
	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "default"}, value.List)
	assert.Empty(t, footprint.Names())

	// An explicit empty length beats the default.
	value, footprint, err = fromenv.DecodeWithFootprint[TestData](map[string]string{"LIST_LEN": "0"})
	require.NoError(t, err)
	assert.Empty(t, value.List)
	assert.Equal(t, []string{"LIST_LEN"}, footprint.Names())

	// Explicit elements beat the default.
	value, _, err = fromenv.DecodeWithFootprint[TestData](map[string]string{"LIST_0": "explicit"})
	require.NoError(t, err)
	assert.Equal(t, []string{"explicit"}, value.List)
}

func TestSequenceEmptyStringDefault(t *testing.T) {
	type TestData struct {
		List []string `default:""`
	}

	value, err := fromenv.Decode[TestData](map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, value.List)
}

func TestTuple(t *testing.T) {
	type TestData struct {
		Point [2]int
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"POINT_0": "3",
		"POINT_1": "4",
	})
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 4}, value.Point)
	assert.Equal(t, []string{"POINT_0", "POINT_1"}, footprint.Names())

	// Every position is required, no length marker involved.
	_, err = fromenv.Decode[TestData](map[string]string{"POINT_0": "3"})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorMissingVar, de.Kind)
	assert.Equal(t, "POINT_1", de.Var)
}

func TestOptionalPresent(t *testing.T) {
	type TestData struct {
		Name *string
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"NAME": "value",
	})
	require.NoError(t, err)
	require.NotNil(t, value.Name)
	assert.Equal(t, "value", *value.Name)
	assert.Equal(t, []string{"NAME"}, footprint.Names())
}

func TestOptionalAbsentIsAnError(t *testing.T) {
	type TestData struct {
		Name *string
	}

	_, err := fromenv.Decode[TestData](map[string]string{})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorMissingVar, de.Kind)
	assert.Equal(t, "NAME", de.Var)
}

func TestOptionalExplicitNone(t *testing.T) {
	type TestData struct {
		Name *string
	}

	// A truthy marker is decisive: the wrapped value is not even read.
	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"NAME_IS_NONE__": "true",
		"NAME":           "ignored",
	})
	require.NoError(t, err)
	assert.Nil(t, value.Name)
	assert.Equal(t, []string{"NAME_IS_NONE__"}, footprint.Names())
}

func TestOptionalFalsyMarker(t *testing.T) {
	type TestData struct {
		Name *string
	}

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"NAME_IS_NONE__": "false",
		"NAME":           "value",
	})
	require.NoError(t, err)
	require.NotNil(t, value.Name)
	assert.Equal(t, "value", *value.Name)
	assert.Equal(t, []string{"NAME", "NAME_IS_NONE__"}, footprint.Names())
}

func TestOptionalInvalidMarker(t *testing.T) {
	type TestData struct {
		Name *string
	}

	_, err := fromenv.Decode[TestData](map[string]string{
		"NAME_IS_NONE__": "maybe",
		"NAME":           "value",
	})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorInvalidValue, de.Kind)
	assert.Equal(t, "NAME_IS_NONE__", de.Var)
	assert.Equal(t, "maybe", de.Raw)
}

func TestOptionalWithDefault(t *testing.T) {
	type TestData struct {
		Name *string `default:"fallback"`
	}

	// Nothing set: the default wins.
	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{})
	require.NoError(t, err)
	require.NotNil(t, value.Name)
	assert.Equal(t, "fallback", *value.Name)
	assert.Empty(t, footprint.Names())

	// An explicit marker beats the default.
	value, _, err = fromenv.DecodeWithFootprint[TestData](map[string]string{"NAME_IS_NONE__": "yes"})
	require.NoError(t, err)
	assert.Nil(t, value.Name)

	// An explicit value beats the default.
	value, _, err = fromenv.DecodeWithFootprint[TestData](map[string]string{"NAME": "explicit"})
	require.NoError(t, err)
	require.NotNil(t, value.Name)
	assert.Equal(t, "explicit", *value.Name)
}

func TestOptionalFalsyMarkerWithDefault(t *testing.T) {
	type TestData struct {
		Name *string `default:"fallback"`
	}

	// A falsy marker is consumed but keeps the optional transparent: with
	// the wrapped variable absent, the declared default still applies.
	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"NAME_IS_NONE__": "false",
	})
	require.NoError(t, err)
	require.NotNil(t, value.Name)
	assert.Equal(t, "fallback", *value.Name)
	assert.Equal(t, []string{"NAME_IS_NONE__"}, footprint.Names())

	// Without a default the wrapped absence remains an error.
	type NoDefault struct {
		Name *string
	}

	_, err = fromenv.Decode[NoDefault](map[string]string{"NAME_IS_NONE__": "false"})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorMissingVar, de.Kind)
	assert.Equal(t, "NAME", de.Var)
}

func TestOptionalRecord(t *testing.T) {
	type Nested struct {
		Value string
	}
	type TestData struct {
		Nested *Nested
	}

	value, err := fromenv.Decode[TestData](map[string]string{"NESTED_VALUE": "x"})
	require.NoError(t, err)
	require.NotNil(t, value.Nested)
	assert.Equal(t, "x", value.Nested.Value)

	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{
		"NESTED_IS_NONE__": "1",
		"NESTED_VALUE":     "ignored",
	})
	require.NoError(t, err)
	assert.Nil(t, value.Nested)
	assert.Equal(t, []string{"NESTED_IS_NONE__"}, footprint.Names())
}

func TestOptionalRecordWithAllDefaults(t *testing.T) {
	type Nested struct {
		Value string `default:"default"`
		Other string `default:"other-default"`
	}
	type TestData struct {
		Nested *Nested
	}

	// A fully defaultable record materializes even with no variables set.
	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{})
	require.NoError(t, err)
	require.NotNil(t, value.Nested)
	assert.Equal(t, Nested{Value: "default", Other: "other-default"}, *value.Nested)
	assert.Empty(t, footprint.Names())
}

func TestDefaultDisambiguation(t *testing.T) {
	type TestData struct {
		S string `default:"default"`
	}

	// Explicit empty string is a value, not an absence.
	value, footprint, err := fromenv.DecodeWithFootprint[TestData](map[string]string{"S": ""})
	require.NoError(t, err)
	assert.Equal(t, "", value.S)
	assert.Equal(t, []string{"S"}, footprint.Names())

	// Absence falls back to the default without consuming anything.
	value, footprint, err = fromenv.DecodeWithFootprint[TestData](map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "default", value.S)
	assert.Empty(t, footprint.Names())
}

func TestSequenceDefaultDoesNotMaskPartialElements(t *testing.T) {
	type TestData struct {
		List []int `default:"1,2"`
	}

	// Once any of the sequence's variables is consumed, failures propagate;
	// the default covers pure absence only.
	_, err := fromenv.Decode[TestData](map[string]string{
		"LIST_LEN": "2",
		"LIST_0":   "10",
	})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorInvalidLength, de.Kind)
	assert.Equal(t, "LIST_1", de.Var)

	_, err = fromenv.Decode[TestData](map[string]string{"LIST_0": "broken"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorInvalidValue, de.Kind)
	assert.Equal(t, "LIST_0", de.Var)
}

func TestDefaultDoesNotMaskInvalidValue(t *testing.T) {
	type TestData struct {
		X int `default:"5"`
	}

	// A present-but-broken value is an error, never silently defaulted.
	_, err := fromenv.Decode[TestData](map[string]string{"X": "broken"})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, fromenv.ErrorInvalidValue, de.Kind)
	assert.Equal(t, "X", de.Var)
}

func TestFirstErrorWins(t *testing.T) {
	type TestData struct {
		A int
		B int
	}

	// Both fields are broken; the error reports the first in field order.
	_, err := fromenv.Decode[TestData](map[string]string{"A": "bad", "B": "worse"})
	var de *fromenv.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "A", de.Var)
}
