// Package routepath centralizes the API route constants.
package routepath

import "net/url"

const (
	Healthz = "/healthz"
)

const (
	APILogin  = "/api/login"
	APILogout = "/api/logout"
	APISubmit = "/api/submit"
)

const (
	APIRooms       = "/api/rooms"
	APIRoomsPrefix = "/api/rooms/"
)

// Room returns the path for one room.
func Room(roomID string) string {
	return APIRooms + "/" + escapeSegment(roomID)
}

// RoomConfig returns the config path for one room.
func RoomConfig(roomID string) string {
	return Room(roomID) + "/config"
}

// RoomFeedback returns the feedback path for one room.
func RoomFeedback(roomID string) string {
	return Room(roomID) + "/feedback"
}

// RoomStats returns the stats path for one room.
func RoomStats(roomID string) string {
	return Room(roomID) + "/stats"
}

func escapeSegment(segment string) string {
	return url.PathEscape(segment)
}
