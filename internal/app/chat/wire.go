/*
Package chat contains the core logic for live connections: the connection registry,
per-connection heartbeat monitoring, presence broadcasting, and message relay.

This file defines the JSON frames exchanged over the persistent connection.
*/
package chat

// PresenceEntry is one entry of the online snapshot: the identity of a currently
// open connection. Both fields are null for unauthenticated connections.
type PresenceEntry struct {
	UserID   *string `json:"userId"`
	UserName *string `json:"userName"`
}

// presenceFrame is the server-to-client presence update.
type presenceFrame struct {
	Online []PresenceEntry `json:"online"`
}

// chatPayload is the client-to-server chat send frame.
type chatPayload struct {
	Recipient string    `json:"recipient"`
	Text      string    `json:"text,omitempty"`
	File      *chatFile `json:"file,omitempty"`
}

// chatFile is an inline attachment: original file name plus base64-encoded bytes,
// optionally carrying a media-type prefix up to the first comma.
type chatFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// deliverFrame is the server-to-client chat delivery frame.
type deliverFrame struct {
	Text      string  `json:"text,omitempty"`
	Sender    *string `json:"sender"`
	Recipient string  `json:"recipient"`
	ID        string  `json:"id"`
	FileRef   *string `json:"fileRef"`
}
