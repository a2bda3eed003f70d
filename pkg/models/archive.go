package models

// Archive is one timestamped snapshot of a volume on disk.
type Archive struct {
	VolumeName string `json:"volume_name"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
}
