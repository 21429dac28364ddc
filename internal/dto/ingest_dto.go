package dto

type IngestChunkRequest struct {
	SourceType string `json:"source_type" validate:"required"`
	SourceId   string `json:"source_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// PublishIngestChunkMessage is the wire payload on the ingestion topic.
type PublishIngestChunkMessage struct {
	SourceType string `json:"source_type"`
	SourceId   string `json:"source_id"`
	Content    string `json:"content"`
}
