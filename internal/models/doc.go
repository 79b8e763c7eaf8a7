// Package models defines the value types shared by the fetch client, the poster layer and the viewers.
//
//   - [Movie] : one recommended movie as decoded from the backend, with optional inline poster bytes
//   - [PosterImage] : raw poster bytes plus the content type the backend or a cache reported
//
// Movies are never persisted; a list lives for one page view.
package models
