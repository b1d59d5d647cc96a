package xcjson_test

import (
	"testing"

	"github.com/farcloser/primordium/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/xcresults/internal/xcjson"
)

const document = `{
  "_type": {"_name": "ActionTestMetadata"},
  "name": {"_type": {"_name": "String"}, "_value": "testLogin()"},
  "duration": {"_type": {"_name": "Double"}, "_value": "1.25"},
  "bogus": {"_value": "not-a-number"},
  "summaryRef": {"id": {"_value": "0~abc"}},
  "subtests": {"_values": [
    {"name": {"_value": "first"}},
    {"name": {"_value": "second"}}
  ]}
}`

func TestParseRejectsGarbage(t *testing.T) {
	_, err := xcjson.Parse([]byte("{not json"))
	require.ErrorIs(t, err, fault.ErrInvalidJSON)
}

func TestAccessors(t *testing.T) {
	node, err := xcjson.Parse([]byte(document))
	require.NoError(t, err)

	assert.Equal(t, "ActionTestMetadata", node.TypeName())

	name, ok := node.String("name")
	assert.True(t, ok)
	assert.Equal(t, "testLogin()", name)

	_, ok = node.String("missing")
	assert.False(t, ok)

	duration, ok := node.Float("duration")
	assert.True(t, ok)
	assert.InDelta(t, 1.25, duration, 1e-9)

	_, ok = node.Float("bogus")
	assert.False(t, ok)

	ref, ok := node.Ref("summaryRef")
	assert.True(t, ok)
	assert.Equal(t, "0~abc", ref)

	_, ok = node.Ref("name")
	assert.False(t, ok)

	subtests := node.Values("subtests")
	require.Len(t, subtests, 2)

	second, _ := subtests[1].String("name")
	assert.Equal(t, "second", second)

	assert.Empty(t, node.Values("name"))
	assert.Empty(t, node.Values("missing"))
	assert.False(t, node.Get("missing").Exists())
	assert.True(t, node.Has("summaryRef"))
}
