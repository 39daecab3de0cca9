package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"
	"forms-service/internal/repositories/memory"
	"forms-service/internal/services"
	"forms-service/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomFixture struct {
	store      *repositories.Store
	hub        *Hub
	dispatcher *Dispatcher
	alice      *Client
	bob        *Client
	template   *models.Template
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	for _, u := range []models.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Photo: "a.png", Status: models.StatusActive, Role: models.RoleUser},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Photo: "b.png", Status: models.StatusActive, Role: models.RoleUser},
	} {
		require.NoError(t, store.Users.Create(ctx, &u))
	}
	tpl := &models.Template{ID: "t1", Title: "Survey", CreatorID: "alice", Access: models.AccessPublic, LikedBy: []string{}}
	require.NoError(t, store.Templates.Create(ctx, tpl))

	hub := createTestHub(t)
	dispatcher := NewDispatcher(
		services.NewCommentService(store, nil),
		services.NewLikeService(store, nil),
		NewLocalBroadcaster(hub),
		0,
	)

	f := &roomFixture{
		store:      store,
		hub:        hub,
		dispatcher: dispatcher,
		alice:      createTestClient(t, hub, models.Session{ID: "alice", Name: "Alice", Email: "alice@example.com", Photo: "a.png"}),
		bob:        createTestClient(t, hub, models.Session{ID: "bob", Name: "Bob", Email: "bob@example.com", Photo: "b.png"}),
		template:   tpl,
	}
	f.send(f.alice, `{"event":"join-template","data":"t1"}`)
	f.send(f.bob, `{"event":"join-template","data":"t1"}`)
	return f
}

// send handles a raw frame and waits for any action it started.
func (f *roomFixture) send(c *Client, raw string) {
	f.dispatcher.Handle(c, []byte(raw))
	f.dispatcher.Wait()
}

func TestCommentCreateBroadcastsToRoom(t *testing.T) {
	f := newRoomFixture(t)

	f.send(f.alice, `{"event":"comment:create","data":{"text":"  Hello ","templateId":"t1"}}`)

	for _, c := range []*Client{f.alice, f.bob} {
		frame := nextFrame(t, c)
		require.Equal(t, MessageTypeCommentNew, frame.Event)
		comment := decodeData[models.Comment](t, frame)
		assert.Equal(t, "Hello", comment.Text)
		assert.Equal(t, "t1", comment.TemplateID)
		require.NotNil(t, comment.Author)
		assert.Equal(t, models.Author{ID: "alice", Name: "Alice", Photo: "a.png"}, *comment.Author)
	}
}

func TestEmptyCommentIsRejected(t *testing.T) {
	f := newRoomFixture(t)

	f.send(f.alice, `{"event":"comment:create","data":{"text":"   ","templateId":"t1"}}`)

	frame := nextFrame(t, f.alice)
	assert.Equal(t, MessageTypeCommentError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: ActionCreate, Error: "Comment cannot be empty"}, decodeData[ErrorPayload](t, frame))
	assertNoFrame(t, f.bob)
}

func TestNonAuthorCannotEditOrDelete(t *testing.T) {
	f := newRoomFixture(t)
	f.send(f.alice, `{"event":"comment:create","data":{"text":"Hello","templateId":"t1"}}`)
	created := decodeData[models.Comment](t, nextFrame(t, f.alice))
	nextFrame(t, f.bob)

	f.send(f.bob, `{"event":"comment:edit","data":{"commentId":"`+created.ID+`","text":"Hijacked","templateId":"t1"}}`)
	frame := nextFrame(t, f.bob)
	assert.Equal(t, MessageTypeCommentError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: ActionEdit, Error: "Comment not found or not authorized to edit"}, decodeData[ErrorPayload](t, frame))
	assertNoFrame(t, f.alice)

	f.send(f.bob, `{"event":"comment:delete","data":{"commentId":"`+created.ID+`","templateId":"t1"}}`)
	frame = nextFrame(t, f.bob)
	assert.Equal(t, ErrorPayload{Action: ActionDelete, Error: "Comment not found or not authorized to delete"}, decodeData[ErrorPayload](t, frame))
	assertNoFrame(t, f.alice)

	stored, err := f.store.Comments.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Text)
}

func TestAuthorEditsAndDeletes(t *testing.T) {
	f := newRoomFixture(t)
	f.send(f.alice, `{"event":"comment:create","data":{"text":"Hello","templateId":"t1"}}`)
	created := decodeData[models.Comment](t, nextFrame(t, f.alice))
	nextFrame(t, f.bob)

	f.send(f.alice, `{"event":"comment:edit","data":{"commentId":"`+created.ID+`","text":"Hello again","templateId":"t1"}}`)
	frame := nextFrame(t, f.bob)
	require.Equal(t, MessageTypeCommentUpdated, frame.Event)
	updated := decodeData[models.Comment](t, frame)
	assert.Equal(t, "Hello again", updated.Text)
	require.NotNil(t, updated.Author)
	assert.Equal(t, "Alice", updated.Author.Name)
	nextFrame(t, f.alice)

	f.send(f.alice, `{"event":"comment:delete","data":{"commentId":"`+created.ID+`","templateId":"t1"}}`)
	frame = nextFrame(t, f.bob)
	require.Equal(t, MessageTypeCommentDeleted, frame.Event)
	deleted := decodeData[models.CommentDeleted](t, frame)
	assert.Equal(t, created.ID, deleted.CommentID)
	assert.False(t, deleted.DeletedAt.IsZero())
}

func TestLikeTwiceConflicts(t *testing.T) {
	f := newRoomFixture(t)

	f.send(f.bob, `{"event":"template:like","data":"t1"}`)
	for _, c := range []*Client{f.alice, f.bob} {
		frame := nextFrame(t, c)
		require.Equal(t, MessageTypeTemplateLiked, frame.Event)
		assert.Equal(t, models.LikeResult{TemplateID: "t1", Likes: 1, Action: models.LikeIncreased, UserID: "bob"},
			decodeData[models.LikeResult](t, frame))
	}

	f.send(f.bob, `{"event":"template:like","data":"t1"}`)
	frame := nextFrame(t, f.bob)
	assert.Equal(t, MessageTypeTemplateError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: ActionLike, Error: "You already liked this template"}, decodeData[ErrorPayload](t, frame))
	assertNoFrame(t, f.alice)

	tpl, err := f.store.Templates.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.Likes)
	assert.Equal(t, []string{"bob"}, tpl.LikedBy)
}

func TestUnlikeWithoutLikeConflicts(t *testing.T) {
	f := newRoomFixture(t)

	f.send(f.bob, `{"event":"template:unlike","data":"t1"}`)
	frame := nextFrame(t, f.bob)
	assert.Equal(t, MessageTypeTemplateError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: ActionUnlike, Error: "You haven't liked this template yet"}, decodeData[ErrorPayload](t, frame))

	tpl, err := f.store.Templates.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, tpl.Likes)
}

func TestLikeUnknownTemplate(t *testing.T) {
	f := newRoomFixture(t)

	f.send(f.bob, `{"event":"template:like","data":"missing"}`)
	frame := nextFrame(t, f.bob)
	assert.Equal(t, ErrorPayload{Action: ActionLike, Error: "Template not found"}, decodeData[ErrorPayload](t, frame))
}

func TestMalformedFrameReportsInvalidFormat(t *testing.T) {
	f := newRoomFixture(t)

	f.send(f.alice, `{"event":"comment:create","data":"oops"}`)
	frame := nextFrame(t, f.alice)
	assert.Equal(t, MessageTypeError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: "comment:create", Error: "Invalid message format"}, decodeData[ErrorPayload](t, frame))
	assertNoFrame(t, f.bob)
}

func TestLeftRoomStopsReceiving(t *testing.T) {
	f := newRoomFixture(t)
	f.send(f.bob, `{"event":"leave-template","data":"t1"}`)

	f.send(f.alice, `{"event":"comment:create","data":{"text":"Hello","templateId":"t1"}}`)
	assert.Equal(t, MessageTypeCommentNew, nextFrame(t, f.alice).Event)
	assertNoFrame(t, f.bob)
}

type failingComments struct{ CommentActions }

func (failingComments) Create(context.Context, models.Session, string, string) (*models.Comment, error) {
	return nil, apperror.Persistence(errors.New("connection reset by peer"))
}

func TestPersistenceFailureIsHidden(t *testing.T) {
	hub := createTestHub(t)
	dispatcher := NewDispatcher(failingComments{}, nil, NewLocalBroadcaster(hub), 0)
	alice := createTestClient(t, hub, models.Session{ID: "alice", Name: "Alice"})
	alice.Join("t1")

	dispatcher.Handle(alice, []byte(`{"event":"comment:create","data":{"text":"Hi","templateId":"t1"}}`))
	dispatcher.Wait()

	frame := nextFrame(t, alice)
	assert.Equal(t, MessageTypeCommentError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: ActionCreate, Error: apperror.GenericMessage}, decodeData[ErrorPayload](t, frame))
}

func TestActionCompletesAfterSenderDisconnects(t *testing.T) {
	f := newRoomFixture(t)

	f.dispatcher.Handle(f.alice, []byte(`{"event":"template:like","data":"t1"}`))
	f.hub.Unregister(f.alice)
	f.dispatcher.Wait()

	frame := nextFrame(t, f.bob)
	assert.Equal(t, MessageTypeTemplateLiked, frame.Event)
}

func TestClosedDispatcherDropsFrames(t *testing.T) {
	f := newRoomFixture(t)
	f.dispatcher.Close()

	f.send(f.alice, `{"event":"comment:create","data":{"text":"late","templateId":"t1"}}`)
	f.send(f.bob, `{"event":"leave-template","data":"t1"}`)

	assertNoFrame(t, f.alice)
	assertNoFrame(t, f.bob)
	assert.True(t, f.hub.IsMember(f.bob, "t1"))
}

// blockingComments holds every Create until release is closed.
type blockingComments struct {
	CommentActions
	started chan struct{}
	release chan struct{}
}

func (b blockingComments) Create(context.Context, models.Session, string, string) (*models.Comment, error) {
	b.started <- struct{}{}
	<-b.release
	return nil, apperror.NotFound("Template not found")
}

func TestConcurrentActionsAreCappedPerClient(t *testing.T) {
	hub := createTestHub(t)
	comments := blockingComments{
		started: make(chan struct{}, maxClientActions+1),
		release: make(chan struct{}),
	}
	dispatcher := NewDispatcher(comments, nil, NewLocalBroadcaster(hub), 0)
	alice := createTestClient(t, hub, models.Session{ID: "alice", Name: "Alice"})
	bob := createTestClient(t, hub, models.Session{ID: "bob", Name: "Bob"})

	create := []byte(`{"event":"comment:create","data":{"text":"Hi","templateId":"t1"}}`)
	for i := 0; i < maxClientActions; i++ {
		dispatcher.Handle(alice, create)
	}
	for i := 0; i < maxClientActions; i++ {
		<-comments.started
	}

	dispatcher.Handle(alice, create)
	frame := nextFrame(t, alice)
	assert.Equal(t, MessageTypeCommentError, frame.Event)
	assert.Equal(t, ErrorPayload{Action: ActionCreate, Error: tooManyActions}, decodeData[ErrorPayload](t, frame))

	// Other clients keep their own allowance.
	dispatcher.Handle(bob, create)
	select {
	case <-comments.started:
	case <-time.After(2 * time.Second):
		t.Fatal("bob's action did not start")
	}

	close(comments.release)
	dispatcher.Wait()
	assert.Len(t, alice.actions, 0)
}
