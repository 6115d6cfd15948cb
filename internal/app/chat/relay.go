/*
Package chat contains the core logic for live connections.

This file defines the Relay, which validates inbound chat payloads, persists them
(including any inline attachment), and forwards them to the recipient's live
connections.
*/
package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dmchat/internal/app/message"
	"dmchat/internal/app/storage"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
)

// Relay persists and forwards inbound chat payloads.
type Relay struct {
	hub      *Hub
	messages message.Store
	blobs    storage.BlobStore

	// now is replaced in tests for deterministic attachment names and timestamps.
	now func() time.Time

	logger zerolog.Logger
}

// NewRelay constructs a Relay over the given registry and collaborator stores.
func NewRelay(hub *Hub, messages message.Store, blobs storage.BlobStore) *Relay {
	return &Relay{
		hub:      hub,
		messages: messages,
		blobs:    blobs,
		now:      time.Now,
		logger:   logx.Logger().With().Str("component", "relay").Logger(),
	}
}

// HandleInbound processes one raw frame received from a connection.
//
// Delivery is fire-and-forget: every failure below is silent to the remote peer.
// A frame that fails to parse is logged and ignored; the connection stays open.
// A payload without a recipient, or with neither text nor a stored attachment,
// is a silent no-op. A persistence failure drops the send without forwarding.
func (r *Relay) HandleInbound(ctx context.Context, sender *Client, frame []byte) {
	var payload chatPayload
	if err := json.Unmarshal(frame, &payload); err != nil {
		r.logger.Warn().Err(err).Str("connection_id", sender.id).Msg("Ignoring malformed inbound frame")
		return
	}

	var fileRef *string
	if payload.File != nil {
		name, err := r.storeAttachment(ctx, payload.File)
		if err != nil {
			// A failed attachment does not abort relay of a co-present text.
			r.logger.Warn().Err(err).
				Str("connection_id", sender.id).
				Str("file_name", payload.File.Name).
				Msg("Attachment dropped")
		} else {
			fileRef = &name
		}
	}

	if payload.Recipient == "" || (payload.Text == "" && fileRef == nil) {
		return
	}

	msg := message.Message{
		ID:        randx.MessageID(),
		Recipient: payload.Recipient,
		Text:      payload.Text,
		FileRef:   fileRef,
		CreatedAt: r.now(),
	}

	if identity := sender.Identity(); identity != nil {
		senderID := identity.ID
		msg.Sender = &senderID
	}

	if err := r.messages.Create(ctx, msg); err != nil {
		r.logger.Error().Err(err).
			Str("message_id", msg.ID).
			Str("recipient", msg.Recipient).
			Msg("Dropping message, persistence failed")
		return
	}

	out, err := json.Marshal(deliverFrame{
		Text:      msg.Text,
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		ID:        msg.ID,
		FileRef:   msg.FileRef,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to marshal deliver frame")
		return
	}

	for _, c := range r.hub.ConnectionsFor(msg.Recipient) {
		c.enqueue(out)
	}
}

// storeAttachment decodes the inline payload and writes it under a name generated
// from the current time and the original file's extension.
func (r *Relay) storeAttachment(ctx context.Context, f *chatFile) (string, error) {
	name := fmt.Sprintf("%d.%s", r.now().UnixMilli(), extensionOf(f.Name))

	data := f.Data
	// Strip a media-type prefix like "data:image/png;base64," when present.
	if idx := strings.IndexByte(data, ','); idx >= 0 {
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode attachment data: %w", err)
	}

	if _, err := r.blobs.Write(ctx, name, raw); err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}

	return name, nil
}

// extensionOf returns the final dot-segment of the original file name.
func extensionOf(name string) string {
	parts := strings.Split(name, ".")
	return parts[len(parts)-1]
}
