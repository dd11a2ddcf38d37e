package tika_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tikaparse/internal/tika"
)

func TestMetadataValue_Scalar(t *testing.T) {
	v := tika.Scalar("a")
	assert.False(t, v.IsSequence())
	assert.Equal(t, "a", v.String())
	assert.Equal(t, []string{"a"}, v.Values())
}

func TestMetadataValue_SequenceString(t *testing.T) {
	v := tika.Sequence("a", "b")
	assert.True(t, v.IsSequence())
	assert.Equal(t, "a, b", v.String())
}

func TestMetadataValue_ValuesIsCopy(t *testing.T) {
	v := tika.Sequence("a", "b")
	vals := v.Values()
	vals[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, v.Values())
}

func TestMetadataValue_UnmarshalJSON(t *testing.T) {
	var m tika.Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":["y","z"],"c":7}`), &m))

	assert.Equal(t, tika.Scalar("x"), m["a"])
	assert.Equal(t, tika.Sequence("y", "z"), m["b"])
	assert.Equal(t, tika.Scalar("7"), m["c"])
}

func TestMetadataValue_MarshalEmptySequence(t *testing.T) {
	out, err := json.Marshal(tika.Sequence())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestMetadata_KeysSorted(t *testing.T) {
	m := tika.Metadata{"b": tika.Scalar("1"), "a": tika.Scalar("2"), "c": tika.Scalar("3")}
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}
