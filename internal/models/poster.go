package models

import "net/http"

// PosterImage is a binary poster as returned by the image endpoint or a cache.
type PosterImage struct {
	Data        []byte
	ContentType string
}

// Size is the number of poster bytes.
func (p *PosterImage) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// DetectedType returns ContentType, sniffing the bytes when it is empty or generic.
func (p *PosterImage) DetectedType() string {
	if p.ContentType != "" && p.ContentType != "application/octet-stream" {
		return p.ContentType
	}
	return http.DetectContentType(p.Data)
}
