package xcresults

import "github.com/farcloser/xcresults/internal/xcjson"

// Payload identifies the bundle content behind one attachment.
type Payload struct {
	ID string
	// Filename is the name recorded in the bundle, before HEIC normalization.
	Filename string
}

// Correlate joins the attachments of a converted result with the payload references of its raw summary.
// The returned map is keyed by output file name. A raw name used by several steps fans out to each of them.
func Correlate(result *TestResult, summary xcjson.Node) map[string]Payload {
	sources := make(map[string][]string)

	result.Walk(func(node *Executable) {
		for _, attachment := range node.Attachments {
			sources[attachment.Name] = append(sources[attachment.Name], attachment.Source)
		}
	})

	tasks := make(map[string]Payload)

	collect := func(name string, payload Payload) {
		for _, source := range sources[name] {
			tasks[source] = payload
		}
	}

	for _, node := range summary.Values(keyActivitySummaries) {
		payloadRefs(node, collect)
	}

	for _, node := range summary.Values(keyFailureSummaries) {
		payloadRefs(node, collect)
	}

	return tasks
}

func payloadRefs(node xcjson.Node, collect func(name string, payload Payload)) {
	for _, ref := range node.Values(keyAttachments) {
		id, ok := ref.Ref(keyPayloadRef)
		if !ok {
			continue
		}

		filename, ok := ref.String(keyFilename)
		if !ok {
			continue
		}

		collect(NormalizeAttachmentName(filename), Payload{ID: id, Filename: filename})
	}

	for _, sub := range node.Values(keySubactivities) {
		payloadRefs(sub, collect)
	}
}
