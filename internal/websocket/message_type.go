package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageType names a frame's event, in either direction.
type MessageType string

// Client to server events
const (
	MessageTypeJoinTemplate   MessageType = "join-template"
	MessageTypeLeaveTemplate  MessageType = "leave-template"
	MessageTypeCommentCreate  MessageType = "comment:create"
	MessageTypeCommentEdit    MessageType = "comment:edit"
	MessageTypeCommentDelete  MessageType = "comment:delete"
	MessageTypeTemplateLike   MessageType = "template:like"
	MessageTypeTemplateUnlike MessageType = "template:unlike"
)

// Server to client events
const (
	MessageTypeCommentNew     MessageType = "comment:new"
	MessageTypeCommentUpdated MessageType = "comment:updated"
	MessageTypeCommentDeleted MessageType = "comment:deleted"
	MessageTypeTemplateLiked  MessageType = "template:liked"
	MessageTypeCommentError   MessageType = "comment:error"
	MessageTypeTemplateError  MessageType = "template:error"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the MessageType
func (mt MessageType) String() string {
	return string(mt)
}

// IsValid reports whether mt is an event a client may send.
func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeJoinTemplate, MessageTypeLeaveTemplate, MessageTypeCommentCreate,
		MessageTypeCommentEdit, MessageTypeCommentDelete, MessageTypeTemplateLike,
		MessageTypeTemplateUnlike:
		return true
	default:
		return false
	}
}

// Frame is the wire envelope: {"event": "<name>", "data": <payload>}.
type Frame struct {
	Event MessageType     `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outgoingFrame struct {
	Event MessageType `json:"event"`
	Data  any         `json:"data"`
}

// EncodeFrame marshals an outgoing event.
func EncodeFrame(event MessageType, data any) ([]byte, error) {
	return json.Marshal(outgoingFrame{Event: event, Data: data})
}

// ErrorPayload is the body of comment:error, template:error and error events.
type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// Action labels carried in ErrorPayload.Action
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

const (
	invalidMessageFormat = "Invalid message format"
	tooManyActions       = "Too many requests, please slow down"
)

// ClientEvent is one decoded inbound action. The set of implementations is closed.
type ClientEvent interface {
	Type() MessageType
	clientEvent()
}

type JoinTemplate struct {
	TemplateID string `validate:"required"`
}

type LeaveTemplate struct {
	TemplateID string `validate:"required"`
}

type CreateComment struct {
	Text       string `json:"text"`
	TemplateID string `json:"templateId" validate:"required"`
}

type EditComment struct {
	CommentID  string `json:"commentId" validate:"required"`
	Text       string `json:"text"`
	TemplateID string `json:"templateId" validate:"required"`
}

type DeleteComment struct {
	CommentID  string `json:"commentId" validate:"required"`
	TemplateID string `json:"templateId" validate:"required"`
}

type LikeTemplate struct {
	TemplateID string `validate:"required"`
}

type UnlikeTemplate struct {
	TemplateID string `validate:"required"`
}

func (JoinTemplate) Type() MessageType   { return MessageTypeJoinTemplate }
func (LeaveTemplate) Type() MessageType  { return MessageTypeLeaveTemplate }
func (CreateComment) Type() MessageType  { return MessageTypeCommentCreate }
func (EditComment) Type() MessageType    { return MessageTypeCommentEdit }
func (DeleteComment) Type() MessageType  { return MessageTypeCommentDelete }
func (LikeTemplate) Type() MessageType   { return MessageTypeTemplateLike }
func (UnlikeTemplate) Type() MessageType { return MessageTypeTemplateUnlike }

func (JoinTemplate) clientEvent()   {}
func (LeaveTemplate) clientEvent()  {}
func (CreateComment) clientEvent()  {}
func (EditComment) clientEvent()    {}
func (DeleteComment) clientEvent()  {}
func (LikeTemplate) clientEvent()   {}
func (UnlikeTemplate) clientEvent() {}

var (
	ErrInvalidFrame = errors.New("invalid message format")
	validate        = validator.New()
)

// DecodeClientEvent parses a raw frame. The returned MessageType is whatever the frame
// named, so a rejection can be reported against it.
func DecodeClientEvent(raw []byte) (ClientEvent, MessageType, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if !frame.Event.IsValid() {
		return nil, frame.Event, fmt.Errorf("%w: unknown event %q", ErrInvalidFrame, frame.Event)
	}

	var event ClientEvent
	switch frame.Event {
	case MessageTypeJoinTemplate, MessageTypeLeaveTemplate, MessageTypeTemplateLike, MessageTypeTemplateUnlike:
		var templateID string
		if err := json.Unmarshal(frame.Data, &templateID); err != nil {
			return nil, frame.Event, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		templateID = strings.TrimSpace(templateID)
		switch frame.Event {
		case MessageTypeJoinTemplate:
			event = JoinTemplate{TemplateID: templateID}
		case MessageTypeLeaveTemplate:
			event = LeaveTemplate{TemplateID: templateID}
		case MessageTypeTemplateLike:
			event = LikeTemplate{TemplateID: templateID}
		default:
			event = UnlikeTemplate{TemplateID: templateID}
		}
	case MessageTypeCommentCreate:
		var payload CreateComment
		if err := decodeObject(frame.Data, &payload); err != nil {
			return nil, frame.Event, err
		}
		event = payload
	case MessageTypeCommentEdit:
		var payload EditComment
		if err := decodeObject(frame.Data, &payload); err != nil {
			return nil, frame.Event, err
		}
		event = payload
	case MessageTypeCommentDelete:
		var payload DeleteComment
		if err := decodeObject(frame.Data, &payload); err != nil {
			return nil, frame.Event, err
		}
		event = payload
	}

	if err := validate.Struct(event); err != nil {
		return nil, frame.Event, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return event, frame.Event, nil
}

func decodeObject(data json.RawMessage, dst any) error {
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%w: payload must be an object", ErrInvalidFrame)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return nil
}
