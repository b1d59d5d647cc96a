package xcresults

// Field names of the xcresulttool document.
const (
	keyActions           = "actions"
	keyActionResult      = "actionResult"
	keyTestsRef          = "testsRef"
	keyRunDestination    = "runDestination"
	keyDisplayName       = "displayName"
	keyStartedTime       = "startedTime"
	keySummaries         = "summaries"
	keyTestableSummaries = "testableSummaries"
	keyTargetName        = "targetName"
	keyTests             = "tests"
	keySubtests          = "subtests"
	keySummaryRef        = "summaryRef"

	keyName       = "name"
	keyIdentifier = "identifier"
	keyDuration   = "duration"
	keyTestStatus = "testStatus"

	keyActivitySummaries = "activitySummaries"
	keyFailureSummaries  = "failureSummaries"
	keySubactivities     = "subactivities"
	keyFailureIDs        = "failureSummaryIDs"
	keyTitle             = "title"
	keyActivityType      = "activityType"
	keyStart             = "start"
	keyFinish            = "finish"

	keyAttachments = "attachments"
	keyFilename    = "filename"
	keyPayloadRef  = "payloadRef"

	keyUUID      = "uuid"
	keyMessage   = "message"
	keyTimestamp = "timestamp"
)

// typeTestMetadata tags a test node that is its own summary.
const typeTestMetadata = "ActionTestMetadata"
