package xcresults

import (
	"path/filepath"
	"strings"

	"github.com/farcloser/xcresults/internal/xcjson"
)

const (
	extensionHEIC = ".heic"
	extensionJPEG = ".jpeg"
)

// IsHEIC reports whether a file name carries a HEIC extension.
func IsHEIC(name string) bool {
	return strings.EqualFold(filepath.Ext(name), extensionHEIC)
}

// NormalizeAttachmentName renames HEIC files to the JPEG they are converted to on export.
func NormalizeAttachmentName(name string) string {
	if !IsHEIC(name) {
		return name
	}

	return strings.TrimSuffix(name, filepath.Ext(name)) + extensionJPEG
}

// attachmentsOf reads the attachment references of an activity or a failure record.
func attachmentsOf(node xcjson.Node) []Attachment {
	refs := node.Values(keyAttachments)
	attachments := make([]Attachment, 0, len(refs))

	for _, ref := range refs {
		filename, ok := ref.String(keyFilename)
		if !ok {
			continue
		}

		name := NormalizeAttachmentName(filename)
		attachments = append(attachments, Attachment{Name: name, Source: name})
	}

	return attachments
}
