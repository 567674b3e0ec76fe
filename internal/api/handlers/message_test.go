package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/chat-server/internal/api/handlers"
	"github.com/dom/chat-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendMessage(t *testing.T, ts *testutil.TestServer, body map[string]string) handlers.MessageResponse {
	t.Helper()

	resp := testutil.PostJSON(t, ts.APIURL("/message"), body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result handlers.MessageResponse
	testutil.AssertJSONResponse(t, resp, &result)
	return result
}

func listMessages(t *testing.T, ts *testutil.TestServer, path string) []handlers.MessageListItem {
	t.Helper()

	resp := testutil.Get(t, ts.APIURL(path), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result []handlers.MessageListItem
	testutil.AssertJSONResponse(t, resp, &result)
	require.NotNil(t, result)
	return result
}

func TestMessageHandler_Send(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.Repos.User)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.Repos.User)

	first := sendMessage(t, ts, map[string]string{
		"conversationId": "new",
		"senderId":       alice.ID,
		"receiverId":     bob.ID,
		"message":        "hi",
	})

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		expectedError  string
	}{
		{
			name: "existing conversation",
			request: map[string]string{
				"conversationId": first.ConversationID,
				"senderId":       bob.ID,
				"message":        "hello",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "new without receiver",
			request: map[string]string{
				"conversationId": "new",
				"senderId":       alice.ID,
				"message":        "hi",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Please fill all required fields",
		},
		{
			name: "missing message",
			request: map[string]string{
				"conversationId": first.ConversationID,
				"senderId":       alice.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Please fill all required fields",
		},
		{
			name: "unknown sender",
			request: map[string]string{
				"conversationId": first.ConversationID,
				"senderId":       uuid.NewString(),
				"message":        "hi",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "User not found",
		},
		{
			name: "malformed conversation id",
			request: map[string]string{
				"conversationId": "xyz",
				"senderId":       alice.ID,
				"message":        "hi",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.PostJSON(t, ts.APIURL("/message"), tt.request)
			defer resp.Body.Close()

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)

			var result handlers.MessageResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.NotEmpty(t, result.ID)
			assert.Equal(t, tt.request["conversationId"], result.ConversationID)
			assert.Equal(t, tt.request["message"], result.Message)
		})
	}
}

func TestMessageHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().WithFullName("Alice").Build(t, ts.Repos.User)
	bob, _ := testutil.NewUserBuilder().WithFullName("Bob").Build(t, ts.Repos.User)
	carol, _ := testutil.NewUserBuilder().Build(t, ts.Repos.User)

	sent := sendMessage(t, ts, map[string]string{
		"conversationId": "new",
		"senderId":       alice.ID,
		"receiverId":     bob.ID,
		"message":        "hi",
	})

	tests := []struct {
		name      string
		path      string
		wantTexts []string
	}{
		{
			name:      "by conversation id",
			path:      "/message/" + sent.ConversationID,
			wantTexts: []string{"hi"},
		},
		{
			name:      "new with existing pair",
			path:      fmt.Sprintf("/message/new?senderId=%s&receiverId=%s", bob.ID, alice.ID),
			wantTexts: []string{"hi"},
		},
		{
			name:      "new without conversation",
			path:      fmt.Sprintf("/message/new?senderId=%s&receiverId=%s", alice.ID, carol.ID),
			wantTexts: []string{},
		},
		{
			name:      "unknown conversation",
			path:      "/message/" + uuid.NewString(),
			wantTexts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := listMessages(t, ts, tt.path)

			texts := make([]string, 0, len(items))
			for _, item := range items {
				texts = append(texts, item.Message)
			}
			assert.Equal(t, tt.wantTexts, texts)
		})
	}

	t.Run("new without query parameters", func(t *testing.T) {
		resp := testutil.Get(t, ts.APIURL("/message/new"), "")
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Please fill all required fields")
	})
}

func TestMessageHandler_AliceAndBob(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().
		WithFullName("Alice").
		WithEmail("alice@x.com").
		WithPassword("pw1").
		BuildAndAuthenticate(t, ts)
	bob, _ := testutil.NewUserBuilder().
		WithFullName("Bob").
		WithEmail("bob@x.com").
		WithPassword("pw2").
		BuildAndAuthenticate(t, ts)

	hi := sendMessage(t, ts, map[string]string{
		"conversationId": "new",
		"senderId":       alice.ID,
		"receiverId":     bob.ID,
		"message":        "hi",
	})
	hello := sendMessage(t, ts, map[string]string{
		"conversationId": "new",
		"senderId":       bob.ID,
		"receiverId":     alice.ID,
		"message":        "hello",
	})
	require.Equal(t, hi.ConversationID, hello.ConversationID)

	items := listMessages(t, ts, "/message/"+hi.ConversationID)
	require.Len(t, items, 2)
	assert.Equal(t, handlers.UserResponse{ID: alice.ID, Email: "alice@x.com", FullName: "Alice"}, items[0].User)
	assert.Equal(t, "hi", items[0].Message)
	assert.Equal(t, handlers.UserResponse{ID: bob.ID, Email: "bob@x.com", FullName: "Bob"}, items[1].User)
	assert.Equal(t, "hello", items[1].Message)

	resp := testutil.Get(t, ts.APIURL("/conversations/"+alice.ID), "")
	defer resp.Body.Close()
	var convs []handlers.ConversationListItem
	testutil.AssertJSONResponse(t, resp, &convs)
	require.Len(t, convs, 1)
	assert.Equal(t, hi.ConversationID, convs[0].ConversationID)
	assert.Equal(t, bob.ID, convs[0].User.ReceiverID)
}
