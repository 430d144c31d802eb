// Package models defines the data model for the playlist search service.
//
// Playlist, PlaylistOwner, SearchCriteria and SearchResult are value objects
// constructed per request and never persisted; SearchRecord is the one
// persisted type, capturing a completed search for the history log.
package models
