package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest_AllTypes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{"post", `{"type":"post","body":"hello"}`, MakePost{Body: "hello"}},
		{"comment", `{"type":"comment","body":"hi","postId":"p1"}`, MakeComment{Body: "hi", PostID: "p1"}},
		{"like_post", `{"type":"like_post","postId":"p1"}`, MakeLikePost{PostID: "p1"}},
		{"like_comment", `{"type":"like_comment","commentId":"c1"}`, MakeLikeComment{CommentID: "c1"}},
		{"follow", `{"type":"follow","userId":"u1"}`, MakeFollow{UserID: "u1"}},
		{"get_post", `{"type":"get_post","postId":"p1"}`, GetPost{PostID: "p1"}},
		{"get_account", `{"type":"get_account","userId":"u1"}`, GetAccount{UserID: "u1"}},
		{"search_accounts", `{"type":"search_accounts","query":"ann"}`, SearchAccounts{Query: "ann"}},
		{"notifications", `{"type":"notifications"}`, GetNotifications{}},
		{"posts", `{"type":"posts"}`, GetPosts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRequest_Malformed(t *testing.T) {
	_, err := DecodeRequest([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodeRequest([]byte(`{"body":"no type"}`))
	assert.Error(t, err)

	_, err = DecodeRequest([]byte(`{"type":"selfdestruct"}`))
	assert.Error(t, err)
}
