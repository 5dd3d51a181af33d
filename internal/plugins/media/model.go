// Package media manages the photos customers upload with a booking. Files
// are stored on the local filesystem in a date-based directory structure,
// with resized thumbnails generated for each image.
package media

import (
	"path/filepath"
	"time"
)

// MediaFile is one uploaded booking photo.
type MediaFile struct {
	ID                  string            `json:"id"`
	BookingID           string            `json:"booking_id"`
	UploadedBy          string            `json:"uploaded_by"`
	Filename            string            `json:"filename"`      // Path on disk relative to the media root.
	OriginalName        string            `json:"original_name"` // Name the file was uploaded with.
	MimeType            string            `json:"mime_type"`
	FileSize            int64             `json:"file_size"`
	ThumbnailPaths      map[string]string `json:"thumbnail_paths"` // size -> relative path
	WasteLocation       string            `json:"waste_location"`
	AccessRestricted    bool              `json:"access_restricted"`
	DismantlingRequired bool              `json:"dismantling_required"`
	CreatedAt           time.Time         `json:"created_at"`
}

// Flagged reports whether the photo carries a site condition the crew needs
// to plan for.
func (f *MediaFile) Flagged() bool {
	return f.AccessRestricted || f.DismantlingRequired
}

// Extension returns the file extension for this media file.
func (f *MediaFile) Extension() string {
	if ext, ok := MimeToExtension[f.MimeType]; ok {
		return ext
	}
	return filepath.Ext(f.OriginalName)
}

// UploadInput holds the input for storing a booking photo.
type UploadInput struct {
	BookingID           string
	UploadedBy          string
	OriginalName        string
	MimeType            string
	FileBytes           []byte
	WasteLocation       string
	AccessRestricted    bool
	DismantlingRequired bool
}

// UploadResponse is the JSON response returned after a successful upload.
type UploadResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MimeType     string `json:"mime_type"`
	FileSize     int64  `json:"file_size"`
}

// Stats summarises uploads for the dashboard.
type Stats struct {
	TotalUploads        int    `json:"total_uploads"`
	TotalBytes          int64  `json:"total_bytes"`
	AccessRestricted    int    `json:"access_restricted"`
	DismantlingRequired int    `json:"dismantling_required"`
	RecentUploads       int    `json:"recent_uploads"`
	TopWasteLocation    string `json:"top_waste_location"`
}

// FlaggedItems counts uploads needing crew attention.
func (s *Stats) FlaggedItems() int {
	return s.AccessRestricted + s.DismantlingRequired
}

// Content filters accepted as the list's status (or filterBy) value.
const (
	FilterAccessRestricted    = "access_restricted"
	FilterDismantlingRequired = "dismantling_required"
	FilterRecent              = "recent"
)

// RecentDays is the window the "recent" filter covers.
const RecentDays = 7

// --- MIME Type Validation ---

// AllowedMimeTypes defines which MIME types are accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// MimeToExtension maps MIME types to file extensions.
var MimeToExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ThumbnailSizes maps a size label to its longest edge in pixels.
var ThumbnailSizes = map[string]int{"300": 300, "800": 800}
