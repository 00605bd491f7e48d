package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/proto"
)

func postJSON(t *testing.T, ts string, path, body, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeAuthResponse(t *testing.T, resp *http.Response) AuthResponse {
	t.Helper()

	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	return out
}

func TestRegisterLoginFlow(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp := postJSON(t, ts.URL, "/api/register", `{"username":"alice","password":"password123"}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	if decodeAuthResponse(t, resp).Token == "" {
		t.Fatal("register returned empty token")
	}

	// Duplicate registration conflicts.
	resp = postJSON(t, ts.URL, "/api/register", `{"username":"alice","password":"password123"}`, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL, "/api/login", `{"username":"alice","password":"password123"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	if decodeAuthResponse(t, resp).Token == "" {
		t.Fatal("login returned empty token")
	}

	resp = postJSON(t, ts.URL, "/api/login", `{"username":"alice","password":"wrong-password"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}
}

func TestGuestLoginSetsSessionCookie(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp := postJSON(t, ts.URL, "/api/guest", ``, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("guest login: expected 200, got %d", resp.StatusCode)
	}
	if decodeAuthResponse(t, resp).Token == "" {
		t.Fatal("guest login returned empty token")
	}

	var found bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "guest_session" && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("guest_session cookie not set")
	}
}

func TestListRoomsRequiresAuth(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp, err := http.Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("rooms request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListRoomsReflectsLiveDirectory(t *testing.T) {
	ts, _, authService := startTestServer(t)

	token, err := authService.Register(context.Background(), "carol", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	getRooms := func() []proto.RoomSummary {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/rooms", nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("rooms request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var rooms []proto.RoomSummary
		if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
			t.Fatalf("decode rooms: %v", err)
		}
		return rooms
	}

	if rooms := getRooms(); len(rooms) != 0 {
		t.Fatalf("expected empty directory, got %+v", rooms)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, ts.URL)
	sendInbound(ctx, t, conn, proto.InboundTypeRoomCreate, proto.CreateRoomData{
		RoomName:    "study hall",
		DisplayName: "carol",
	})
	nextEvent(ctx, t, conn, proto.EventRoomCreated)

	rooms := getRooms()
	if len(rooms) != 1 || rooms[0].Name != "study hall" || rooms[0].MemberCount != 1 {
		t.Fatalf("unexpected directory: %+v", rooms)
	}

	// Room disappears once its last member leaves.
	if err := conn.Close(websocket.StatusNormalClosure, "done"); err != nil {
		t.Fatalf("close ws: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if rooms := getRooms(); len(rooms) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("room was not removed after last member left")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestGuestSessionResumesWithCookie(t *testing.T) {
	ts, _, authService := startTestServer(t)

	first := postJSON(t, ts.URL, "/api/guest", ``, "")
	if first.StatusCode != http.StatusOK {
		t.Fatalf("guest login: expected 200, got %d", first.StatusCode)
	}
	firstToken := decodeAuthResponse(t, first).Token

	var session *http.Cookie
	for _, cookie := range first.Cookies() {
		if cookie.Name == "guest_session" {
			session = cookie
		}
	}
	if session == nil {
		t.Fatal("guest_session cookie not set")
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/guest", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.AddCookie(session)

	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("resume request failed: %v", err)
	}
	defer second.Body.Close()

	if second.StatusCode != http.StatusOK {
		t.Fatalf("resume: expected 200, got %d", second.StatusCode)
	}
	secondToken := decodeAuthResponse(t, second).Token

	firstClaims, err := authService.ValidateToken(firstToken)
	if err != nil {
		t.Fatalf("validate first token: %v", err)
	}
	secondClaims, err := authService.ValidateToken(secondToken)
	if err != nil {
		t.Fatalf("validate second token: %v", err)
	}
	if firstClaims.UserID != secondClaims.UserID {
		t.Fatalf("resume minted a new guest: %d != %d", firstClaims.UserID, secondClaims.UserID)
	}
	if !secondClaims.IsGuest {
		t.Fatal("resumed token lost guest flag")
	}
}

func TestRoomChatHistoryServedFromRecords(t *testing.T) {
	ts, _, authService := startTestServer(t)

	token, err := authService.Register(context.Background(), "dave", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, ts.URL)
	sendInbound(ctx, t, conn, proto.InboundTypeRoomCreate, proto.CreateRoomData{DisplayName: "dave"})
	created := nextEvent(ctx, t, conn, proto.EventRoomCreated)
	var createdData proto.EventRoomCreatedData
	if err := json.Unmarshal(created.Data, &createdData); err != nil {
		t.Fatalf("unmarshal room:created: %v", err)
	}

	sendInbound(ctx, t, conn, proto.InboundTypeChatMessage, proto.ChatData{Text: "for the record"})
	nextEvent(ctx, t, conn, proto.EventChatMessage)

	getHistory := func() []ChatRecordResponse {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/rooms/"+createdData.RoomID+"/chat", nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("history request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var records []ChatRecordResponse
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			t.Fatalf("decode history: %v", err)
		}
		return records
	}

	// Records are written off the dispatch goroutine, so poll.
	deadline := time.Now().Add(3 * time.Second)
	for {
		records := getHistory()
		if len(records) == 1 {
			if records[0].Text != "for the record" || records[0].DisplayName != "dave" {
				t.Fatalf("unexpected record: %+v", records[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("chat record never appeared: %+v", records)
		}
		time.Sleep(25 * time.Millisecond)
	}
}
