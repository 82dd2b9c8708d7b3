// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/copypaste-tui/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL).WithToken(func() string { return "tok-123" })
	require.NoError(t, client.SaveThread(context.Background(), model.NewThread("a")))

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotType)
}

func TestClient_AnonymousHasNoAuthHeader(t *testing.T) {
	var present bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, `{"code":"x"}`)
	}))
	defer server.Close()

	_, err := NewGenerator(server.URL).Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestClient_ErrorMessageAndKind(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
		msg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Password is incorrect"}`, ErrUnauthorized, "Password is incorrect"},
		{"not found", http.StatusNotFound, `{"message":"User not found"}`, ErrNotFound, "User not found"},
		{"no message", http.StatusInternalServerError, `{}`, nil, "Request failed (500)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Login(context.Background(), "a@b.c", "pw")
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.msg, MessageOf(err))
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
			assert.False(t, IsNetwork(err))
		})
	}
}

func TestClient_ValidationDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"Validation failed","errors":[{"msg":"email is invalid"}]}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Register(context.Background(), "bad", "pw")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, []string{"email is invalid"}, apiErr.Details)
}

func TestClient_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListThreads(context.Background())
	assert.ErrorIs(t, err, ErrNotJSON)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestClient_TimeoutIsReported(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL).WithTimeout(50 * time.Millisecond)
	_, err := client.GetProfile(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, http.StatusRequestTimeout, StatusOf(err))
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewClient(url).DeleteThread(context.Background(), "x")
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsNetwork(err))
}

func TestUserFacing(t *testing.T) {
	transport := &Error{Method: "PATCH", Path: "/user/profile", Message: "dial tcp 127.0.0.1:1: connect: connection refused", kind: ErrTransport}
	err := UserFacing(transport, "Failed to update profile")
	assert.Equal(t, "Failed to update profile", err.Error())
	assert.ErrorIs(t, err, ErrTransport)

	server := UserFacing(&Error{Status: 409, Message: "Email already registered"}, "Registration failed")
	assert.Equal(t, "Email already registered", server.Error())
	assert.Equal(t, 409, StatusOf(server))

	assert.Equal(t, "Registration failed", UserFacing(&Error{Status: 500}, "Registration failed").Error())
	assert.NoError(t, UserFacing(nil, "x"))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL).WithRateLimit(0.001, 1)
	_, err := client.ListThreads(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.ListThreads(ctx)
	assert.ErrorIs(t, err, ErrTransport)
	assert.EqualValues(t, 1, calls.Load())
}

func TestListThreads_AcceptsBothIDFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/all", r.URL.Path)
		writeJSON(w, http.StatusOK, `[
			{"chatId":"a","title":"First","messages":[{"sender":"user","text":"hi"},{"sender":"ai","text":"yo"}],"favorite":true},
			{"id":"b","title":"Second"},
			{"title":"orphan"}
		]`)
	}))
	defer server.Close()

	threads, err := NewClient(server.URL).ListThreads(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, "a", threads[0].ID)
	assert.True(t, threads[0].Favorite)
	assert.Equal(t, model.SenderAssistant, threads[0].Messages[1].Sender)
	assert.Equal(t, "b", threads[1].ID)
	assert.NotNil(t, threads[1].Messages)
}

func TestListThreads_RepeatedIDKeepsFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"chatId":"a","title":"First"},
			{"chatId":"a","title":"Copy"},
			{"_id":"b","title":"Second"},
			{"id":"b","title":"Second again"}
		]`)
	}))
	defer server.Close()

	core, logs := observer.New(zap.WarnLevel)
	threads, err := NewClient(server.URL).WithLogger(zap.New(core)).ListThreads(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, "a", threads[0].ID)
	assert.Equal(t, "First", threads[0].Title)
	assert.Equal(t, "b", threads[1].ID)
	assert.Equal(t, "Second", threads[1].Title)
	assert.Equal(t, 2, logs.FilterMessage("duplicate thread id in listing, keeping first").Len())
}

func TestListThreads_UnknownSenderKeepsListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"chatId":"a","title":"Odd","messages":[{"sender":"user","text":"q"},{"sender":"bot","text":"r"}]},
			{"chatId":"b","title":"Plain"}
		]`)
	}))
	defer server.Close()

	core, logs := observer.New(zap.WarnLevel)
	threads, err := NewClient(server.URL).WithLogger(zap.New(core)).ListThreads(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 2)

	require.Len(t, threads[0].Messages, 2)
	assert.Equal(t, model.SenderUser, threads[0].Messages[0].Sender)
	assert.Equal(t, model.SenderAssistant, threads[0].Messages[1].Sender)
	assert.Equal(t, "r", threads[0].Messages[1].Text)
	assert.Equal(t, 1, logs.FilterField(zap.String("sender", "bot")).Len())
}

func TestSaveThread_Body(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/save", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	th := model.Thread{ID: "t1", Messages: []model.Message{model.UserMessage("q")}, Favorite: true}
	require.NoError(t, NewClient(server.URL).SaveThread(context.Background(), th))

	assert.Equal(t, "t1", body["chatId"])
	assert.Equal(t, "Untitled", body["title"])
	assert.Equal(t, true, body["favorite"])
	assert.Len(t, body["messages"], 1)
}

func TestDeleteThread_EscapesID(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusOK, `{"message":"deleted"}`)
	}))
	defer server.Close()

	require.NoError(t, NewClient(server.URL).DeleteThread(context.Background(), "a/b"))
	assert.Equal(t, "/chat/a%2Fb", path)
}

func TestGenerator_Output(t *testing.T) {
	assert.Equal(t, "print(1)", Generation{Code: "print(1)", Result: "r"}.Output())
	assert.Equal(t, "r", Generation{Result: "r"}.Output())
	assert.Equal(t, NoOutput, Generation{}.Output())
}

func TestGenerator_SendsTurns(t *testing.T) {
	var req struct {
		Messages []Turn `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, `{"result":"done"}`)
	}))
	defer server.Close()

	gen, err := NewGenerator(server.URL).Generate(context.Background(), []Turn{
		{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}, {Role: "user", Content: "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "done", gen.Output())
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "assistant", req.Messages[1].Role)
}

func TestGenerator_FromPrompt(t *testing.T) {
	var req map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, `{"code":"fn main() {}"}`)
	}))
	defer server.Close()

	gen, err := NewGenerator(server.URL).GenerateFromPrompt(context.Background(), "hello", "rust")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", gen.Code)
	assert.Equal(t, map[string]string{"prompt": "hello", "language": "rust"}, req)
}

func TestProfile_BothEnvelopes(t *testing.T) {
	for _, body := range []string{
		`{"user":{"name":"Ada","email":"ada@example.com","age":36,"createdAt":"2024-03-01T10:00:00Z"}}`,
		`{"name":"Ada","email":"ada@example.com","age":36,"createdAt":"2024-03-01T10:00:00Z"}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		}))

		p, err := NewClient(server.URL).GetProfile(context.Background())
		server.Close()

		require.NoError(t, err)
		assert.Equal(t, "Ada", p.Name)
		assert.Equal(t, 36, p.Age)
		assert.Equal(t, 2024, p.CreatedAt.Year())
	}
}

func TestUpdateProfile_OmitsZeroFields(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		json.NewDecoder(r.Body).Decode(&raw)
		writeJSON(w, http.StatusOK, `{"user":{"name":"Grace"},"message":"Profile updated"}`)
	}))
	defer server.Close()

	p, msg, err := NewClient(server.URL).UpdateProfile(context.Background(), ProfileUpdate{Name: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", p.Name)
	assert.Equal(t, "Profile updated", msg)
	assert.Equal(t, map[string]interface{}{"name": "Grace"}, raw)
}

func TestHistory_AppendAndList(t *testing.T) {
	var posted map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(&posted)
			writeJSON(w, http.StatusCreated, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `[{"_id":"1","query":"q","result":"r","language":"go","createdAt":"2025-01-02T03:04:05Z"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.AppendHistory(context.Background(), "q", "r", "go"))
	assert.Equal(t, map[string]string{"query": "q", "result": "r", "language": "go"}, posted)

	entries, err := client.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "q", entries[0].Query)
}

func TestPasswordResetEndpoints(t *testing.T) {
	seen := map[string]map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		seen[r.URL.Path] = body
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	ctx := context.Background()

	msg, err := c.RequestPasswordReset(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	_, err = c.VerifyResetCode(ctx, "a@b.c", "123456")
	require.NoError(t, err)
	_, err = c.ResetPassword(ctx, "a@b.c", "123456", "newpass")
	require.NoError(t, err)

	assert.Equal(t, "a@b.c", seen["/password/public/request-reset"]["email"])
	assert.Equal(t, "123456", seen["/password/public/verify-token"]["token"])
	assert.Equal(t, "newpass", seen["/password/public/verify-reset"]["newPassword"])
}

func TestLogin_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"welcome"}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Login(context.Background(), "a@b.c", "pw")
	assert.Error(t, err)
}
