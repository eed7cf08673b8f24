package guest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Usage is the storage usage record the engine's usage query returns.
// The bridge passes it through unmodified; field names mirror the
// engine's JSON output.
type Usage struct {
	End                         string `json:"end"`
	PayloadSize                 int64  `json:"payload_size"`
	MetadataSize                int64  `json:"metadata_size"`
	ObjectCount                 int64  `json:"object_count"`
	UploadCount                 int64  `json:"upload_count"`
	InfrequentAccessPayloadSize int64  `json:"infrequent_access_payload_size"`
	InfrequentAccessMetadata    int64  `json:"infrequent_access_metadata_size"`
	InfrequentAccessObjectCount int64  `json:"infrequent_access_object_count"`
	InfrequentAccessUploadCount int64  `json:"infrequent_access_upload_count"`
}

// ParseUsage decodes the usage record the engine wrote to stdout.
func ParseUsage(data []byte) (*Usage, error) {
	var u Usage
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode usage value: %w", err)
	}
	return &u, nil
}

// String renders a human-readable representation of the record.
func (u *Usage) String() string {
	var b strings.Builder

	end := u.End
	if end == "" {
		end = "now"
	}
	fmt.Fprintf(&b, "usage through %s\n", end)
	fmt.Fprintf(&b, "  payload:  %s (%d objects, %d uploads)\n",
		humanSize(u.PayloadSize), u.ObjectCount, u.UploadCount)
	fmt.Fprintf(&b, "  metadata: %s\n", humanSize(u.MetadataSize))
	fmt.Fprintf(&b, "  infrequent access: %s payload, %s metadata (%d objects, %d uploads)",
		humanSize(u.InfrequentAccessPayloadSize),
		humanSize(u.InfrequentAccessMetadata),
		u.InfrequentAccessObjectCount,
		u.InfrequentAccessUploadCount)

	return b.String()
}

// humanSize formats a byte count with decimal units, two fraction
// digits, matching the engine's own rendering.
func humanSize(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}
