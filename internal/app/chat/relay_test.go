package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dmchat/internal/app/message"
)

type memMessageStore struct {
	mu         sync.Mutex
	created    []message.Message
	failCreate bool
}

func (s *memMessageStore) Create(_ context.Context, m message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errors.New("store unavailable")
	}
	s.created = append(s.created, m)
	return nil
}

func (s *memMessageStore) Conversation(_ context.Context, a, b string) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []message.Message
	for _, m := range s.created {
		sender := ""
		if m.Sender != nil {
			sender = *m.Sender
		}
		if (sender == a && m.Recipient == b) || (sender == b && m.Recipient == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

type memBlobStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	failWrite bool
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Write(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return "", errors.New("disk full")
	}
	s.blobs[name] = data
	return "/uploads/" + name, nil
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRelay(h *Hub, store *memMessageStore, blobs *memBlobStore) *Relay {
	r := NewRelay(h, store, blobs)
	r.now = func() time.Time { return testNow }
	return r
}

// decodeDeliver reads the single queued frame on the client as a deliver frame.
func decodeDeliver(t *testing.T, c *Client) deliverFrame {
	t.Helper()

	frames := drainFrames(c)
	require.Len(t, frames, 1)

	var frame deliverFrame
	require.NoError(t, json.Unmarshal(frames[0], &frame))
	return frame
}

func TestRelay_TextRoundTrip(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	relay := newTestRelay(h, store, newMemBlobStore())

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	recipient := newTestClient(h, &Identity{ID: "u-bob", UserName: "bob"})
	h.Register(sender)
	h.Register(recipient)
	drainFrames(sender)
	drainFrames(recipient)

	relay.HandleInbound(context.Background(), sender, []byte(`{"recipient":"u-bob","text":"hello"}`))

	req.Len(store.created, 1)
	persisted := store.created[0]
	req.Equal("hello", persisted.Text)
	req.Equal("u-bob", persisted.Recipient)
	req.NotNil(persisted.Sender)
	req.Equal("u-alice", *persisted.Sender)
	req.Nil(persisted.FileRef)
	req.Equal(testNow, persisted.CreatedAt)

	frame := decodeDeliver(t, recipient)
	req.Equal("hello", frame.Text)
	req.Equal("u-alice", *frame.Sender)
	req.Equal("u-bob", frame.Recipient)
	req.Equal(persisted.ID, frame.ID)
	req.Nil(frame.FileRef)

	// The sender's own connection receives nothing.
	req.Empty(drainFrames(sender))
}

func TestRelay_FanOutToAllRecipientConnections(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	relay := newTestRelay(h, store, newMemBlobStore())

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	bobIdentity := Identity{ID: "u-bob", UserName: "bob"}
	phone := newTestClient(h, &bobIdentity)
	laptop := newTestClient(h, &bobIdentity)
	h.Register(sender)
	h.Register(phone)
	h.Register(laptop)
	drainFrames(phone)
	drainFrames(laptop)

	relay.HandleInbound(context.Background(), sender, []byte(`{"recipient":"u-bob","text":"ping both"}`))

	// One persisted record, two deliveries.
	req.Len(store.created, 1)
	for _, c := range []*Client{phone, laptop} {
		frame := decodeDeliver(t, c)
		req.Equal("ping both", frame.Text)
		req.Equal(store.created[0].ID, frame.ID)
	}
}

func TestRelay_AttachmentRoundTrip(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	blobs := newMemBlobStore()
	relay := newTestRelay(h, store, blobs)

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	recipient := newTestClient(h, &Identity{ID: "u-bob", UserName: "bob"})
	h.Register(sender)
	h.Register(recipient)
	drainFrames(recipient)

	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	payload := chatPayload{
		Recipient: "u-bob",
		File: &chatFile{
			Name: "holiday.photo.png",
			Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
		},
	}
	frame, err := json.Marshal(payload)
	req.NoError(err)

	relay.HandleInbound(context.Background(), sender, frame)

	wantName := fmt.Sprintf("%d.png", testNow.UnixMilli())
	req.Equal(raw, blobs.blobs[wantName])

	req.Len(store.created, 1)
	req.NotNil(store.created[0].FileRef)
	req.Equal(wantName, *store.created[0].FileRef)
	req.Empty(store.created[0].Text)

	deliver := decodeDeliver(t, recipient)
	req.NotNil(deliver.FileRef)
	req.Equal(wantName, *deliver.FileRef)
	req.Empty(deliver.Text)
}

func TestRelay_AttachmentWithoutMediaTypePrefix(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	blobs := newMemBlobStore()
	relay := newTestRelay(h, store, blobs)

	sender := newTestClient(h, nil)
	h.Register(sender)

	raw := []byte("plain bytes")
	payload := fmt.Sprintf(`{"recipient":"u-bob","file":{"name":"notes.txt","data":%q}}`,
		base64.StdEncoding.EncodeToString(raw))

	relay.HandleInbound(context.Background(), sender, []byte(payload))

	wantName := fmt.Sprintf("%d.txt", testNow.UnixMilli())
	req.Equal(raw, blobs.blobs[wantName])
	req.Len(store.created, 1)
}

func TestRelay_BrokenAttachmentKeepsText(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	blobs := newMemBlobStore()
	relay := newTestRelay(h, store, blobs)

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	recipient := newTestClient(h, &Identity{ID: "u-bob", UserName: "bob"})
	h.Register(sender)
	h.Register(recipient)
	drainFrames(recipient)

	relay.HandleInbound(context.Background(), sender,
		[]byte(`{"recipient":"u-bob","text":"see attached","file":{"name":"x.png","data":"%%%not-base64%%%"}}`))

	// The text still goes through, without a file reference.
	req.Empty(blobs.blobs)
	req.Len(store.created, 1)
	req.Nil(store.created[0].FileRef)

	deliver := decodeDeliver(t, recipient)
	req.Equal("see attached", deliver.Text)
	req.Nil(deliver.FileRef)
}

func TestRelay_BlobWriteFailureKeepsText(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	blobs := newMemBlobStore()
	blobs.failWrite = true
	relay := newTestRelay(h, store, blobs)

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	h.Register(sender)

	data := base64.StdEncoding.EncodeToString([]byte("bytes"))
	relay.HandleInbound(context.Background(), sender,
		[]byte(fmt.Sprintf(`{"recipient":"u-bob","text":"hi","file":{"name":"x.png","data":%q}}`, data)))

	req.Len(store.created, 1)
	req.Nil(store.created[0].FileRef)
	req.Equal("hi", store.created[0].Text)
}

func TestRelay_UnauthenticatedSenderPersistsNullSender(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	relay := newTestRelay(h, store, newMemBlobStore())

	sender := newTestClient(h, nil)
	recipient := newTestClient(h, &Identity{ID: "u-bob", UserName: "bob"})
	h.Register(sender)
	h.Register(recipient)
	drainFrames(recipient)

	relay.HandleInbound(context.Background(), sender, []byte(`{"recipient":"u-bob","text":"who am i"}`))

	req.Len(store.created, 1)
	req.Nil(store.created[0].Sender)

	frames := drainFrames(recipient)
	req.Len(frames, 1)
	var decoded map[string]any
	req.NoError(json.Unmarshal(frames[0], &decoded))
	req.Contains(decoded, "sender")
	req.Nil(decoded["sender"])
}

func TestRelay_IgnoresIncompletePayloads(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	relay := newTestRelay(h, store, newMemBlobStore())

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	h.Register(sender)

	for _, frame := range []string{
		`not json at all`,
		`{}`,
		`{"text":"no recipient"}`,
		`{"recipient":"u-bob"}`,
	} {
		relay.HandleInbound(context.Background(), sender, []byte(frame))
	}

	req.Empty(store.created)
}

func TestRelay_PersistenceFailureDropsDelivery(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{failCreate: true}
	relay := newTestRelay(h, store, newMemBlobStore())

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	recipient := newTestClient(h, &Identity{ID: "u-bob", UserName: "bob"})
	h.Register(sender)
	h.Register(recipient)
	drainFrames(recipient)

	relay.HandleInbound(context.Background(), sender, []byte(`{"recipient":"u-bob","text":"lost"}`))

	req.Empty(drainFrames(recipient))
}

func TestRelay_OfflineRecipientStillPersists(t *testing.T) {
	req := require.New(t)

	h := newTestHub(&fakeClock{})
	store := &memMessageStore{}
	relay := newTestRelay(h, store, newMemBlobStore())

	sender := newTestClient(h, &Identity{ID: "u-alice", UserName: "alice"})
	h.Register(sender)

	relay.HandleInbound(context.Background(), sender, []byte(`{"recipient":"u-ghost","text":"anyone there"}`))

	req.Len(store.created, 1)
	req.Equal("u-ghost", store.created[0].Recipient)
}
