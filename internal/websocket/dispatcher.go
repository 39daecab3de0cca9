package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"forms-service/internal/models"
	"forms-service/pkg/apperror"
)

const defaultActionTimeout = 10 * time.Second

// CommentActions is the persistence side of the comment events.
type CommentActions interface {
	Create(ctx context.Context, session models.Session, templateID, text string) (*models.Comment, error)
	Edit(ctx context.Context, session models.Session, commentID, templateID, text string) (*models.Comment, error)
	Delete(ctx context.Context, session models.Session, commentID, templateID string) (*models.CommentDeleted, error)
}

// LikeActions is the persistence side of the like events.
type LikeActions interface {
	Like(ctx context.Context, userID, templateID string) (*models.LikeResult, error)
	Unlike(ctx context.Context, userID, templateID string) (*models.LikeResult, error)
}

// Dispatcher routes decoded client events. Room membership changes run inline on the
// reading goroutine; every other action runs on its own goroutine and completes even if
// the caller disconnects meanwhile. A client may hold at most maxClientActions running
// actions at once.
type Dispatcher struct {
	comments    CommentActions
	likes       LikeActions
	broadcaster Broadcaster
	timeout     time.Duration

	mu       sync.Mutex
	stopped  bool
	inflight sync.WaitGroup
}

func NewDispatcher(comments CommentActions, likes LikeActions, broadcaster Broadcaster, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}
	return &Dispatcher{
		comments:    comments,
		likes:       likes,
		broadcaster: broadcaster,
		timeout:     timeout,
	}
}

// Handle decodes one raw frame from client and dispatches it.
func (d *Dispatcher) Handle(client *Client, raw []byte) {
	event, name, err := DecodeClientEvent(raw)
	if err != nil {
		slog.Warn("Rejected client frame", "clientID", client.id, "userID", client.session.ID, "event", name, "error", err)
		client.SendError(MessageTypeError, name.String(), invalidMessageFormat)
		return
	}

	switch event.(type) {
	case JoinTemplate, LeaveTemplate:
		if d.isStopped() {
			return
		}
		d.Dispatch(context.Background(), client, event)
	default:
		if !client.acquireAction() {
			slog.Warn("Too many concurrent actions", "clientID", client.id, "userID", client.session.ID, "event", event.Type())
			errEvent, action := errorTarget(event)
			client.SendError(errEvent, action, tooManyActions)
			return
		}
		if !d.track() {
			client.releaseAction()
			slog.Debug("Dispatcher stopped, dropping action", "clientID", client.id, "event", event.Type())
			return
		}
		go func() {
			defer d.inflight.Done()
			defer client.releaseAction()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			d.Dispatch(ctx, client, event)
		}()
	}
}

func (d *Dispatcher) isStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// track counts one in-flight action unless the dispatcher is stopped.
func (d *Dispatcher) track() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	d.inflight.Add(1)
	return true
}

// Wait blocks until every in-flight action has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Close refuses further frames and waits for in-flight actions.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.inflight.Wait()
}

// Dispatch runs one event for client with its session.
func (d *Dispatcher) Dispatch(ctx context.Context, client *Client, event ClientEvent) {
	session := client.Session()

	switch e := event.(type) {
	case JoinTemplate:
		client.Join(e.TemplateID)

	case LeaveTemplate:
		client.Leave(e.TemplateID)

	case CreateComment:
		comment, err := d.comments.Create(ctx, session, e.TemplateID, e.Text)
		if err != nil {
			d.fail(client, MessageTypeCommentError, ActionCreate, err)
			return
		}
		d.broadcast(ctx, e.TemplateID, MessageTypeCommentNew, comment)

	case EditComment:
		comment, err := d.comments.Edit(ctx, session, e.CommentID, e.TemplateID, e.Text)
		if err != nil {
			d.fail(client, MessageTypeCommentError, ActionEdit, err)
			return
		}
		d.broadcast(ctx, e.TemplateID, MessageTypeCommentUpdated, comment)

	case DeleteComment:
		deleted, err := d.comments.Delete(ctx, session, e.CommentID, e.TemplateID)
		if err != nil {
			d.fail(client, MessageTypeCommentError, ActionDelete, err)
			return
		}
		d.broadcast(ctx, e.TemplateID, MessageTypeCommentDeleted, deleted)

	case LikeTemplate:
		result, err := d.likes.Like(ctx, session.ID, e.TemplateID)
		if err != nil {
			d.fail(client, MessageTypeTemplateError, ActionLike, err)
			return
		}
		d.broadcast(ctx, e.TemplateID, MessageTypeTemplateLiked, result)

	case UnlikeTemplate:
		result, err := d.likes.Unlike(ctx, session.ID, e.TemplateID)
		if err != nil {
			d.fail(client, MessageTypeTemplateError, ActionUnlike, err)
			return
		}
		d.broadcast(ctx, e.TemplateID, MessageTypeTemplateLiked, result)

	default:
		slog.Error("Unhandled client event", "type", event.Type(), "clientID", client.id)
	}
}

// errorTarget names the error event and action a failed client event is reported under.
func errorTarget(event ClientEvent) (MessageType, string) {
	switch event.(type) {
	case CreateComment:
		return MessageTypeCommentError, ActionCreate
	case EditComment:
		return MessageTypeCommentError, ActionEdit
	case DeleteComment:
		return MessageTypeCommentError, ActionDelete
	case LikeTemplate:
		return MessageTypeTemplateError, ActionLike
	case UnlikeTemplate:
		return MessageTypeTemplateError, ActionUnlike
	default:
		return MessageTypeError, event.Type().String()
	}
}

func (d *Dispatcher) broadcast(ctx context.Context, room string, event MessageType, data any) {
	if err := d.broadcaster.Broadcast(ctx, room, event, data); err != nil {
		slog.Error("Failed to broadcast", "room", room, "event", event, "error", err)
	}
}

func (d *Dispatcher) fail(client *Client, event MessageType, action string, err error) {
	if apperror.IsExpected(err) {
		slog.Debug("Realtime action rejected", "action", action, "userID", client.session.ID, "error", err)
	} else {
		slog.Error("Realtime action failed", "action", action, "userID", client.session.ID, "error", err)
	}
	client.SendError(event, action, apperror.PublicMessage(err))
}
