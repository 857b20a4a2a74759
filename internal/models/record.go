package models

import "time"

// RecordStatus represents the upload state of a tracked record.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusUploading RecordStatus = "uploading"
	RecordStatusComplete  RecordStatus = "complete"
)

// Record represents one file tracked by the drop zone.
type Record struct {
	ID        string       `json:"id" msgpack:"id"`
	Name      string       `json:"name" msgpack:"name"`
	SizeBytes int64        `json:"sizeBytes" msgpack:"sizeBytes"`
	MimeType  string       `json:"mimeType" msgpack:"mimeType"`
	PreviewID string       `json:"previewId" msgpack:"previewId"`
	Progress  int          `json:"progress" msgpack:"progress"` // 0-100
	Status    RecordStatus `json:"status" msgpack:"status"`
	SizeLabel string       `json:"sizeLabel" msgpack:"sizeLabel"`
	Icon      string       `json:"icon" msgpack:"icon"`
	AddedAt   time.Time    `json:"addedAt" msgpack:"addedAt"`
}

// Snapshot is an immutable view of the tracked collection. Records are in
// intake order and the slice is rebuilt on every mutation, so holders of an
// older snapshot never observe a partial update.
type Snapshot struct {
	Version int64    `json:"version" msgpack:"version"`
	Records []Record `json:"records" msgpack:"records"`
}
