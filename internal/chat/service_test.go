package chat

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewSnapshot(t.TempDir(), zap.NewNop()), zap.NewNop())
}

func TestAddMessage_MissingConversation(t *testing.T) {
	svc := newTestService(t)

	assert.False(t, svc.AddMessage("u1", "conv-missing", "user", "hi"))
	assert.Empty(t, svc.List("u1"))
}

func TestMessagesForAPI_PreservesOrderAndShape(t *testing.T) {
	svc := newTestService(t)

	conv := svc.Create("u1", "")
	for i := 0; i < 5; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		require.True(t, svc.AddMessage("u1", conv.ID, role, fmt.Sprintf("msg-%d", i)))
	}

	msgs := svc.MessagesForAPI("u1", conv.ID)
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
	}
	assert.Equal(t, "assistant", msgs[3].Role)

	assert.Empty(t, svc.MessagesForAPI("u1", "conv-missing"))
}

func TestList_OrdersByLastActivity(t *testing.T) {
	svc := newTestService(t)

	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	a := svc.Create("u1", "A")
	clock = clock.Add(time.Minute)
	b := svc.Create("u1", "B")

	list := svc.List("u1")
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	// appending to A moves it back to the front
	clock = clock.Add(time.Minute)
	require.True(t, svc.AddMessage("u1", a.ID, "user", "hello again"))

	list = svc.List("u1")
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, 1, list[0].MessageCount)
}

func TestList_TruncatesLastMessagePreview(t *testing.T) {
	svc := newTestService(t)

	conv := svc.Create("u1", "t")
	long := strings.Repeat("x", 60)
	require.True(t, svc.AddMessage("u1", conv.ID, "assistant", long))

	list := svc.List("u1")
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, long[:50]+"...", list[0].LastMessage.Content)

	// short messages pass through untouched
	require.True(t, svc.AddMessage("u1", conv.ID, "assistant", "Hi there"))
	list = svc.List("u1")
	assert.Equal(t, "Hi there", list[0].LastMessage.Content)
	assert.Equal(t, 2, list[0].MessageCount)
}

func TestDelete_Twice(t *testing.T) {
	svc := newTestService(t)

	conv := svc.Create("u1", "t")
	assert.True(t, svc.Delete("u1", conv.ID))
	assert.False(t, svc.Delete("u1", conv.ID))
	_, ok := svc.Get("u1", conv.ID)
	assert.False(t, ok)
}

func TestDefaultTitleAndSetTitle(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) }

	conv := svc.Create("u1", "")
	assert.Equal(t, "New conversation 2026-05-01 09:30", conv.Title)

	require.True(t, svc.SetTitle("u1", conv.ID, "renamed"))
	got, ok := svc.Get("u1", conv.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)

	assert.False(t, svc.SetTitle("u1", "conv-missing", "x"))
}

func TestRestart_ReloadsConversations(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(store.NewSnapshot(dir, zap.NewNop()), zap.NewNop())

	conv := svc.Create("u1", "keep me")
	require.True(t, svc.AddMessage("u1", conv.ID, "user", "Hello"))

	svc2 := NewService(store.NewSnapshot(dir, zap.NewNop()), zap.NewNop())
	got, ok := svc2.Get("u1", conv.ID)
	require.True(t, ok)
	assert.Equal(t, "keep me", got.Title)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Hello", got.Messages[0].Content)
}
