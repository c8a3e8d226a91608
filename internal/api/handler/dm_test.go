package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/backend/internal/models"
)

type messageResponse struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	SenderID       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	CreatedAt      time.Time `json:"createdAt"`
	IsMine         bool      `json:"isMine"`
	IsRead         bool      `json:"isRead"`
}

type dmListItem struct {
	ID                  string    `json:"id"`
	ParticipantID       string    `json:"participantId"`
	ParticipantUsername string    `json:"participantUsername"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	LastMessage         *string   `json:"lastMessage"`
	UnreadCount         int64     `json:"unreadCount"`
}

type dmDetailResponse struct {
	ID                  string            `json:"id"`
	ParticipantID       string            `json:"participantId"`
	ParticipantUsername string            `json:"participantUsername"`
	IsActive            bool              `json:"isActive"`
	Messages            []messageResponse `json:"messages"`
}

func openDM(t *testing.T, env *testEnv, token, recipient string) dmDetailResponse {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/api/v1/dm", token, gin.H{"recipientUsername": recipient})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail dmDetailResponse
	decodeBody(t, rec, &detail)
	return detail
}

func sendDM(t *testing.T, env *testEnv, token, threadID, content string) messageResponse {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/api/v1/dm/"+threadID+"/messages", token, gin.H{"content": content})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var msg messageResponse
	decodeBody(t, rec, &msg)
	return msg
}

func listDMs(t *testing.T, env *testEnv, token string) []dmListItem {
	t.Helper()
	rec := env.request(t, http.MethodGet, "/api/v1/dm", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []dmListItem
	decodeBody(t, rec, &list)
	return list
}

// TestOpenDMPairSymmetry verifies both directions land in the same thread:
// Alice opening Bob and Bob opening Alice share one conversation.
func TestOpenDMPairSymmetry(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	bob := env.store.addUser("bob", "Bob")

	fromAlice := openDM(t, env, env.session(t, alice), "Bob")
	fromBob := openDM(t, env, env.session(t, bob), "Alice")

	assert.Equal(t, fromAlice.ID, fromBob.ID)
	assert.Equal(t, bob.ID, fromAlice.ParticipantID)
	assert.Equal(t, "Bob", fromAlice.ParticipantUsername)
	assert.Equal(t, alice.ID, fromBob.ParticipantID)
	assert.Equal(t, "Alice", fromBob.ParticipantUsername)
	assert.True(t, fromAlice.IsActive)
}

// TestOpenDMIsIdempotent verifies repeated opens return the existing thread
// instead of stacking new ones.
func TestOpenDMIsIdempotent(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	token := env.session(t, alice)

	first := openDM(t, env, token, "Bob")
	second := openDM(t, env, token, "Bob")

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, listDMs(t, env, token), 1)
}

func TestOpenDMUnknownRecipient(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")

	rec := env.request(t, http.MethodPost, "/api/v1/dm", env.session(t, alice),
		gin.H{"recipientUsername": "nobody"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recipient not found")
}

func TestOpenDMSelf(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")

	rec := env.request(t, http.MethodPost, "/api/v1/dm", env.session(t, alice),
		gin.H{"recipientUsername": "Alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot DM yourself")
}

// TestSendDMUnreadForRecipientOnly verifies a sent message counts as unread
// for the recipient and never for the sender.
func TestSendDMUnreadForRecipientOnly(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	bob := env.store.addUser("bob", "Bob")
	aliceToken := env.session(t, alice)
	bobToken := env.session(t, bob)

	thread := openDM(t, env, aliceToken, "Bob")
	msg := sendDM(t, env, aliceToken, thread.ID, "hey there")

	assert.True(t, msg.IsMine)
	assert.False(t, msg.IsRead)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.Equal(t, "Alice", msg.SenderUsername)

	bobView := listDMs(t, env, bobToken)
	require.Len(t, bobView, 1)
	assert.Equal(t, int64(1), bobView[0].UnreadCount)
	require.NotNil(t, bobView[0].LastMessage)
	assert.Equal(t, "hey there", *bobView[0].LastMessage)

	aliceView := listDMs(t, env, aliceToken)
	require.Len(t, aliceView, 1)
	assert.Equal(t, int64(0), aliceView[0].UnreadCount, "own messages never count as unread")
}

// TestSendDMBumpsThreadActivity verifies the thread's updatedAt lands exactly
// on the appended message's creation time and drives the list order.
func TestSendDMBumpsThreadActivity(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	env.store.addUser("carol", "Carol")
	token := env.session(t, alice)

	bobThread := openDM(t, env, token, "Bob")
	carolThread := openDM(t, env, token, "Carol")

	sendDM(t, env, token, bobThread.ID, "first")
	lastMsg := sendDM(t, env, token, carolThread.ID, "second")

	list := listDMs(t, env, token)
	require.Len(t, list, 2)
	assert.Equal(t, carolThread.ID, list[0].ID, "most recently active thread first")
	assert.Equal(t, bobThread.ID, list[1].ID)
	assert.True(t, list[0].UpdatedAt.Equal(lastMsg.CreatedAt), "updatedAt equals the last message's createdAt")

	// Another message in the older thread flips the order back.
	sendDM(t, env, token, bobThread.ID, "third")
	list = listDMs(t, env, token)
	assert.Equal(t, bobThread.ID, list[0].ID)
}

// TestDMDetailMarksRead verifies opening a thread clears the unread count for
// the reader and flips the read receipts the sender sees.
func TestDMDetailMarksRead(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	bob := env.store.addUser("bob", "Bob")
	aliceToken := env.session(t, alice)
	bobToken := env.session(t, bob)

	thread := openDM(t, env, aliceToken, "Bob")
	sendDM(t, env, aliceToken, thread.ID, "hello")
	sendDM(t, env, aliceToken, thread.ID, "anyone there?")

	bobView := listDMs(t, env, bobToken)
	require.Len(t, bobView, 1)
	require.Equal(t, int64(2), bobView[0].UnreadCount)

	rec := env.request(t, http.MethodGet, "/api/v1/dm/"+thread.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail dmDetailResponse
	decodeBody(t, rec, &detail)
	require.Len(t, detail.Messages, 2)
	for _, msg := range detail.Messages {
		assert.False(t, msg.IsMine)
		assert.True(t, msg.IsRead, "detail reflects the read state it just applied")
	}

	bobView = listDMs(t, env, bobToken)
	assert.Equal(t, int64(0), bobView[0].UnreadCount)

	// The sender now sees read receipts.
	aliceDetail := openDM(t, env, aliceToken, "Bob")
	require.Len(t, aliceDetail.Messages, 2)
	for _, msg := range aliceDetail.Messages {
		assert.True(t, msg.IsMine)
		assert.True(t, msg.IsRead)
	}
}

// TestDMDetailReadIsIdempotent verifies re-opening a read thread changes
// nothing.
func TestDMDetailReadIsIdempotent(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	bob := env.store.addUser("bob", "Bob")
	aliceToken := env.session(t, alice)
	bobToken := env.session(t, bob)

	thread := openDM(t, env, aliceToken, "Bob")
	sendDM(t, env, aliceToken, thread.ID, "hello")

	for i := 0; i < 3; i++ {
		rec := env.request(t, http.MethodGet, "/api/v1/dm/"+thread.ID, bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, int64(0), listDMs(t, env, bobToken)[0].UnreadCount)
}

// TestDMMessagesKeepOrder verifies messages come back in creation order with
// strictly increasing timestamps, interleaved senders included.
func TestDMMessagesKeepOrder(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	bob := env.store.addUser("bob", "Bob")
	aliceToken := env.session(t, alice)
	bobToken := env.session(t, bob)

	thread := openDM(t, env, aliceToken, "Bob")
	sendDM(t, env, aliceToken, thread.ID, "one")
	sendDM(t, env, bobToken, thread.ID, "two")
	sendDM(t, env, aliceToken, thread.ID, "three")

	detail := openDM(t, env, aliceToken, "Bob")
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, "one", detail.Messages[0].Content)
	assert.Equal(t, "two", detail.Messages[1].Content)
	assert.Equal(t, "three", detail.Messages[2].Content)
	for i := 1; i < len(detail.Messages); i++ {
		assert.True(t, detail.Messages[i].CreatedAt.After(detail.Messages[i-1].CreatedAt),
			"createdAt must strictly increase")
	}
}

func TestSendDMBlankContent(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	token := env.session(t, alice)
	thread := openDM(t, env, token, "Bob")

	rec := env.request(t, http.MethodPost, "/api/v1/dm/"+thread.ID+"/messages", token,
		gin.H{"content": "   \n\t "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Message content cannot be empty")
}

func TestSendDMMissingBody(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	token := env.session(t, alice)
	thread := openDM(t, env, token, "Bob")

	rec := env.request(t, http.MethodPost, "/api/v1/dm/"+thread.ID+"/messages", token, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "content is required")
}

// TestDMNonParticipant verifies a third account can neither read nor write
// someone else's conversation.
func TestDMNonParticipant(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	carol := env.store.addUser("carol", "Carol")
	thread := openDM(t, env, env.session(t, alice), "Bob")
	carolToken := env.session(t, carol)

	read := env.request(t, http.MethodGet, "/api/v1/dm/"+thread.ID, carolToken, nil)
	write := env.request(t, http.MethodPost, "/api/v1/dm/"+thread.ID+"/messages", carolToken,
		gin.H{"content": "let me in"})

	assert.Equal(t, http.StatusForbidden, read.Code)
	assert.Equal(t, http.StatusForbidden, write.Code)
	assert.Contains(t, read.Body.String(), "Not a participant in this thread")
}

func TestDMUnknownThread(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")

	rec := env.request(t, http.MethodGet, "/api/v1/dm/no-such-thread", env.session(t, alice), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thread not found")
}

// TestArchiveDMAndReopen verifies archiving blocks further messages, keeps
// the history listed, and a later open starts a fresh thread.
func TestArchiveDMAndReopen(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	token := env.session(t, alice)

	thread := openDM(t, env, token, "Bob")
	sendDM(t, env, token, thread.ID, "before the archive")

	rec := env.request(t, http.MethodPost, "/api/v1/dm/"+thread.ID+"/archive", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	blocked := env.request(t, http.MethodPost, "/api/v1/dm/"+thread.ID+"/messages", token,
		gin.H{"content": "too late"})
	assert.Equal(t, http.StatusBadRequest, blocked.Code)
	assert.Contains(t, blocked.Body.String(), "Thread is archived")

	reopened := openDM(t, env, token, "Bob")
	assert.NotEqual(t, thread.ID, reopened.ID, "archived pair gets a fresh thread")
	assert.Empty(t, reopened.Messages)

	// The archived conversation stays in the inbox for its history.
	assert.Len(t, listDMs(t, env, token), 2)
}

// TestSendDMFansOutToRecipientConnections verifies every socket of the
// recipient gets the event exactly once and the sender's sockets stay quiet.
func TestSendDMFansOutToRecipientConnections(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	bob := env.store.addUser("bob", "Bob")
	token := env.session(t, alice)
	thread := openDM(t, env, token, "Bob")

	bobPhone := newRecordingConn(bob.ID)
	bobLaptop := newRecordingConn(bob.ID)
	aliceConn := newRecordingConn(alice.ID)
	env.hub.Registry.Add(bob.ID, bobPhone)
	env.hub.Registry.Add(bob.ID, bobLaptop)
	env.hub.Registry.Add(alice.ID, aliceConn)

	msg := sendDM(t, env, token, thread.ID, "ping")

	require.Len(t, bobPhone.events, 1)
	require.Len(t, bobLaptop.events, 1)
	assert.Empty(t, aliceConn.events, "sender is not notified about own messages")

	event := bobPhone.events[0]
	assert.Equal(t, models.EventDMNewMessage, event.Event)
	assert.Equal(t, thread.ID, event.ThreadID)
	assert.Equal(t, msg.ID, event.Message.ID)
	assert.Equal(t, "ping", event.Message.Content)
	assert.Equal(t, alice.ID, event.Message.SenderID)
	assert.Equal(t, "Alice", event.Message.SenderUsername)
}

// TestSendDMWithoutRecipientConnections verifies delivery is best effort:
// nobody listening is not an error and the message still lands.
func TestSendDMWithoutRecipientConnections(t *testing.T) {
	env := newTestEnv()
	alice := env.store.addUser("alice", "Alice")
	env.store.addUser("bob", "Bob")
	token := env.session(t, alice)
	thread := openDM(t, env, token, "Bob")

	sendDM(t, env, token, thread.ID, "into the void")

	detail := openDM(t, env, token, "Bob")
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "into the void", detail.Messages[0].Content)
}
