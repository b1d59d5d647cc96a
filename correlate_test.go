package xcresults_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farcloser/xcresults"
)

func TestCorrelate(t *testing.T) {
	screenshot := object{"filename": val("Screenshot.heic"), "payloadRef": ref("0~shot")}

	doc := summary("Failure",
		object{
			"title":       val("Open cart"),
			"attachments": vals(screenshot, object{"filename": val("inline.txt")}),
			"subactivities": vals(object{
				"title":       val("Nested"),
				"attachments": vals(object{"filename": val("trace.log"), "payloadRef": ref("0~trace")}),
			}),
		},
		object{
			"title":       val("Reopen cart"),
			"attachments": vals(screenshot),
		},
	)
	doc["failureSummaries"] = vals(object{
		"uuid":        val("F1"),
		"message":     val("boom"),
		"attachments": vals(object{"filename": val("failure.png"), "payloadRef": ref("0~failure")}),
	})
	doc["activitySummaries"].(object)["_values"] = append(
		doc["activitySummaries"].(object)["_values"].([]any),
		object{"title": val("Failing"), "failureSummaryIDs": vals(val("F1"))},
	)

	node := parse(t, doc)
	result := xcresults.Convert(node, xcresults.RunMeta{})

	tasks := xcresults.Correlate(result, node)

	assert.Equal(t, map[string]xcresults.Payload{
		"Screenshot.jpeg": {ID: "0~shot", Filename: "Screenshot.heic"},
		"trace.log":       {ID: "0~trace", Filename: "trace.log"},
		"failure.png":     {ID: "0~failure", Filename: "failure.png"},
	}, tasks)
}

func TestCorrelateIgnoresUnreferencedPayloads(t *testing.T) {
	doc := summary("Success", object{"title": val("Step")})

	node := parse(t, doc)
	result := xcresults.Convert(node, xcresults.RunMeta{})

	// Payloads nobody in the report points at are never exported.
	extra := parse(t, object{
		"activitySummaries": vals(object{
			"attachments": vals(object{"filename": val("orphan.png"), "payloadRef": ref("0~orphan")}),
		}),
	})

	assert.Empty(t, xcresults.Correlate(result, extra))
}
