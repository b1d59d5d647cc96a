package xcresults_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/xcresults/internal/xcjson"
)

// Builders for the xcresulttool wrapping convention.

type object = map[string]any

func val(v string) object {
	return object{"_value": v}
}

func vals(items ...any) object {
	if items == nil {
		items = []any{}
	}

	return object{"_values": items}
}

func ref(id string) object {
	return object{"id": val(id)}
}

func typed(name string, fields object) object {
	fields["_type"] = object{"_name": name}

	return fields
}

func parse(t *testing.T, doc any) xcjson.Node {
	t.Helper()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	node, err := xcjson.Parse(data)
	require.NoError(t, err)

	return node
}

// stamp formats a UTC time the way xcresulttool does.
func stamp(at time.Time) string {
	return at.UTC().Format("2006-01-02T15:04:05.000-0700")
}

func millis(at time.Time) *int64 {
	ms := at.UnixMilli()

	return &ms
}

var errUnknownRef = errors.New("unknown reference")

// fakeResolver serves canned documents and records every lookup.
type fakeResolver struct {
	t     *testing.T
	docs  map[string]any
	calls []string
}

func (f *fakeResolver) Resolve(_ context.Context, id string) (xcjson.Node, error) {
	f.calls = append(f.calls, id)

	doc, ok := f.docs[id]
	if !ok {
		return xcjson.Node{}, errUnknownRef
	}

	return parse(f.t, doc), nil
}
