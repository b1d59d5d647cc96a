package xcresults_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/xcresults"
)

func names(t *testing.T, summaries []xcresults.Summary) []string {
	t.Helper()

	found := make([]string, 0, len(summaries))

	for _, summary := range summaries {
		name, _ := summary.Node.String("name")
		found = append(found, name)
	}

	return found
}

func TestTestRuns(t *testing.T) {
	root := parse(t, object{
		"actions": vals(
			object{
				"actionResult":   object{"testsRef": ref("T1")},
				"runDestination": object{"displayName": val("iPhone 15 Pro")},
				"startedTime":    val(stamp(begin)),
			},
			object{"actionResult": object{}},
			object{"actionResult": object{"testsRef": ref("T2")}},
		),
	})

	runs := xcresults.TestRuns(root)

	require.Len(t, runs, 2)
	assert.Equal(t, "T1", runs[0].TestsRef)
	assert.Equal(t, millis(begin), runs[0].Meta.Start)
	assert.Equal(t, []xcresults.Label{{Name: xcresults.LabelRunDestination, Value: "iPhone 15 Pro"}}, runs[0].Meta.Labels)

	assert.Equal(t, "T2", runs[1].TestsRef)
	assert.Nil(t, runs[1].Meta.Start)
	assert.Empty(t, runs[1].Meta.Labels)
}

func TestDiscoverDepthFirst(t *testing.T) {
	resolver := &fakeResolver{t: t, docs: map[string]any{
		"S1": object{"name": val("first")},
		"S3": object{"name": val("third")},
	}}

	tree := parse(t, typed("ActionTestSummaryGroup", object{
		"name": val("group"),
		"subtests": vals(
			object{"summaryRef": ref("S1")},
			typed("ActionTestSummaryGroup", object{
				"subtests": vals(
					typed("ActionTestMetadata", object{"name": val("second")}),
					object{"summaryRef": ref("S3")},
				),
			}),
			typed("ActionTestMetadata", object{"name": val("second")}),
		),
	}))

	summaries, err := xcresults.Discover(context.Background(), tree, resolver)
	require.NoError(t, err)

	found := make([]string, 0, len(summaries))
	for _, node := range summaries {
		name, _ := node.String("name")
		found = append(found, name)
	}

	assert.Equal(t, []string{"first", "second", "third", "second"}, found)
	assert.Equal(t, []string{"S1", "S3"}, resolver.calls)
}

func TestDiscoverResolverFailure(t *testing.T) {
	resolver := &fakeResolver{t: t, docs: map[string]any{}}

	tree := parse(t, object{"subtests": vals(object{"summaryRef": ref("gone")})})

	_, err := xcresults.Discover(context.Background(), tree, resolver)
	require.ErrorIs(t, err, errUnknownRef)
}

func TestCollectSummaries(t *testing.T) {
	resolver := &fakeResolver{t: t, docs: map[string]any{
		"T1": object{
			"summaries": vals(object{
				"testableSummaries": vals(
					object{
						"targetName": val("AppUITests"),
						"tests": vals(typed("ActionTestSummaryGroup", object{
							"subtests": vals(object{"summaryRef": ref("S1")}),
						})),
					},
					object{"name": val("Empty"), "targetName": val("EmptyTests")},
				),
			}),
		},
		"S1": object{"name": val("testLogin()"), "identifier": val("Login/testLogin()")},
	}}

	root := parse(t, object{
		"actions": vals(
			object{
				"actionResult":   object{"testsRef": ref("T1")},
				"runDestination": object{"displayName": val("iPad")},
			},
			object{
				"actionResult":   object{"testsRef": ref("T1")},
				"runDestination": object{"displayName": val("iPhone")},
			},
		),
	})

	summaries, err := xcresults.CollectSummaries(context.Background(), root, resolver)
	require.NoError(t, err)

	// The same test run on two destinations is two results.
	assert.Equal(t, []string{"testLogin()", "testLogin()"}, names(t, summaries))
	assert.Equal(t, []xcresults.Label{
		{Name: xcresults.LabelRunDestination, Value: "iPad"},
		{Name: xcresults.LabelSuite, Value: "AppUITests"},
	}, summaries[0].Meta.Labels)
	assert.Equal(t, "iPhone", summaries[1].Meta.Labels[0].Value)
	assert.Equal(t, "AppUITests", summaries[1].Meta.Suite())
}

func TestCollectSummariesPropagatesResolverErrors(t *testing.T) {
	resolver := &fakeResolver{t: t, docs: map[string]any{}}
	root := parse(t, object{"actions": vals(object{"actionResult": object{"testsRef": ref("T404")}})})

	_, err := xcresults.CollectSummaries(context.Background(), root, resolver)
	require.ErrorIs(t, err, errUnknownRef)
}
