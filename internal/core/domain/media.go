package domain

import (
	"fmt"
	"time"
)

// MediaType represents the kind of media a record holds
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// DateSource identifies which fallback produced the resolved capture date
type DateSource string

const (
	DateSourceExifOriginal  DateSource = "exif-original"
	DateSourceExifDigitized DateSource = "exif-digitized"
	DateSourceFilename      DateSource = "filename"
	DateSourceFileModified  DateSource = "file-modified"
	DateSourceProcessing    DateSource = "processing-time"
)

// DateConfidence is a qualitative trust label for a resolved capture date
type DateConfidence string

const (
	DateConfidenceHigh   DateConfidence = "high"
	DateConfidenceMedium DateConfidence = "medium"
	DateConfidenceLow    DateConfidence = "low"
)

// DateInfo describes how the capture date of a record was determined
type DateInfo struct {
	Source     DateSource     `json:"source"`
	Confidence DateConfidence `json:"confidence"`
	Timezone   string         `json:"timezone,omitempty"`
}

// Location is a GPS coordinate pair embedded in media metadata
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ContentMetadata holds the intrinsic properties of an uploaded file
type ContentMetadata struct {
	Size     int64     `json:"size"`
	Hash     string    `json:"hash"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Camera   string    `json:"camera,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// MediaRecord is one ingested photo or video
type MediaRecord struct {
	ID               string          `json:"id"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"originalFilename"`
	StoragePath      string          `json:"storagePath"`
	ThumbnailPath    string          `json:"thumbnailPath,omitempty"`
	Type             MediaType       `json:"type"`
	UploadedBy       string          `json:"uploadedBy"`
	UploadedAt       time.Time       `json:"uploadedAt"`
	TakenAt          time.Time       `json:"takenAt"`
	DateInfo         DateInfo        `json:"dateInfo"`
	ContentMetadata  ContentMetadata `json:"contentMetadata"`
	Tags             []string        `json:"tags,omitempty"`
	IsScreenshot     bool            `json:"isScreenshot"`
	IsEdited         bool            `json:"isEdited"`
	HasValidExif     bool            `json:"hasValidExif"`
}

// YearPartition is the document holding every record for one calendar year
// of TakenAt. Placement never changes after creation.
type YearPartition struct {
	Media []MediaRecord `json:"media"`
}

// MediaIndex is the singleton document summarizing which partitions exist.
// Years is sorted descending. It may lag partition writes but self-heals
// through Recount and Rebuild.
type MediaIndex struct {
	Years       []int     `json:"years"`
	TotalMedia  int       `json:"totalMedia"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// EmbeddedMetadata is what the metadata extraction collaborator reads out
// of the file itself. Absent fields mean "no data", not an error.
type EmbeddedMetadata struct {
	CaptureTime   *time.Time
	DigitizedTime *time.Time
	Latitude      *float64
	Longitude     *float64
	Width         int
	Height        int
	Duration      float64
	Camera        string
	Software      string
}

// Upload is a submitted file awaiting ingestion
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	ModTime     time.Time
	UploadedBy  string
	Tags        []string
}

// GallerySettings is the config.json document
type GallerySettings struct {
	Title          string `json:"title"`
	PageSize       int    `json:"pageSize"`
	MaxUploadBytes int64  `json:"maxUploadBytes"`
}

// User is one entry of the users.json document
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// UserList is the users.json document
type UserList struct {
	Users []User `json:"users"`
}

// Document keys of the persisted state layout
const (
	IndexKey    = "media/index.json"
	SettingsKey = "config.json"
	UsersKey    = "users.json"
)

// PartitionKey returns the document key of a year partition
func PartitionKey(year int) string {
	return fmt.Sprintf("media/%d.json", year)
}
