package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientEvent(t *testing.T) {
	cases := []struct {
		raw  string
		want ClientEvent
	}{
		{`{"event":"join-template","data":"t1"}`, JoinTemplate{TemplateID: "t1"}},
		{`{"event":"leave-template","data":" t1 "}`, LeaveTemplate{TemplateID: "t1"}},
		{`{"event":"template:like","data":"t1"}`, LikeTemplate{TemplateID: "t1"}},
		{`{"event":"template:unlike","data":"t1"}`, UnlikeTemplate{TemplateID: "t1"}},
		{`{"event":"comment:create","data":{"text":"Hello","templateId":"t1"}}`, CreateComment{Text: "Hello", TemplateID: "t1"}},
		{`{"event":"comment:create","data":{"text":"   ","templateId":"t1"}}`, CreateComment{Text: "   ", TemplateID: "t1"}},
		{`{"event":"comment:edit","data":{"commentId":"c1","text":"Hi","templateId":"t1"}}`, EditComment{CommentID: "c1", Text: "Hi", TemplateID: "t1"}},
		{`{"event":"comment:delete","data":{"commentId":"c1","templateId":"t1"}}`, DeleteComment{CommentID: "c1", TemplateID: "t1"}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			event, name, err := DecodeClientEvent([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, event)
			assert.Equal(t, tc.want.Type(), name)
		})
	}
}

func TestDecodeClientEventRejectsMalformedFrames(t *testing.T) {
	cases := []struct {
		raw  string
		name MessageType
	}{
		{`not json`, ""},
		{`{"event":"comment:shout","data":{}}`, "comment:shout"},
		{`{"event":"join-template","data":{"templateId":"t1"}}`, MessageTypeJoinTemplate},
		{`{"event":"join-template","data":""}`, MessageTypeJoinTemplate},
		{`{"event":"template:like"}`, MessageTypeTemplateLike},
		{`{"event":"comment:create","data":"Hello"}`, MessageTypeCommentCreate},
		{`{"event":"comment:create","data":{"text":"Hello"}}`, MessageTypeCommentCreate},
		{`{"event":"comment:edit","data":{"text":"Hi","templateId":"t1"}}`, MessageTypeCommentEdit},
		{`{"event":"comment:delete","data":{"commentId":"c1"}}`, MessageTypeCommentDelete},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			_, name, err := DecodeClientEvent([]byte(tc.raw))
			assert.ErrorIs(t, err, ErrInvalidFrame)
			assert.Equal(t, tc.name, name)
		})
	}
}
