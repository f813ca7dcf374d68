package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestLog_AppendAndSubscribe(t *testing.T) {
	l := NewLog()

	var mu sync.Mutex
	var seen []string
	l.Subscribe(func(m Message) {
		mu.Lock()
		seen = append(seen, m.Text)
		mu.Unlock()
	})

	user := NewUserMessage("what did I spend on coffee")
	l.Append(user)
	l.Append(NewAssistantMessage("You spent 42 SAR on coffee this month.", ""))

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}

	msgs := l.Messages()
	if !msgs[0].FromUser || msgs[1].FromUser {
		t.Error("message roles out of order")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "what did I spend on coffee" {
		t.Errorf("listener saw %v", seen)
	}

	got, ok := l.Get(user.ID)
	if !ok || got.Text != user.Text {
		t.Errorf("Get(%v) = (%v, %v)", user.ID, got, ok)
	}
}

func TestLog_GetMissing(t *testing.T) {
	l := NewLog()
	if _, ok := l.Get(NewUserMessage("x").ID); ok {
		t.Error("Get returned ok for an ID never appended")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "123", 5*time.Second, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClient_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("path = %q, want /query", r.URL.Path)
		}
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "show receipts" {
			t.Errorf("query = %q", req.Query)
		}
		if req.UserID != "123" {
			t.Errorf("user_id = %q, want 123", req.UserID)
		}
		json.NewEncoder(w).Encode(QueryReply{
			Response:   "Here are your receipts.",
			WalletLink: "https://pay.google.com/gp/v/save/token",
		})
	})

	reply, err := c.Query(context.Background(), "show receipts")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if reply.Response != "Here are your receipts." {
		t.Errorf("Response = %q", reply.Response)
	}
	if reply.WalletLink == "" {
		t.Error("WalletLink dropped")
	}
}

func TestClient_Query_PlainTextFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Just a plain answer\n"))
	})

	reply, err := c.Query(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if reply.Response != "Just a plain answer" {
		t.Errorf("Response = %q", reply.Response)
	}
}

func TestClient_Query_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend exploded"))
	})

	_, err := c.Query(context.Background(), "anything")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Query() error = %v, want *APIError", err)
	}
	if !apiErr.IsServerError() {
		t.Error("IsServerError() = false for a 500")
	}
}

func TestClient_Query_EmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for empty query")
	})

	if _, err := c.Query(context.Background(), ""); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Query(\"\") error = %v, want ErrEmptyQuery", err)
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient("", "123", time.Second, nil); !errors.Is(err, ErrNoBackendURL) {
		t.Errorf("NewClient(\"\") error = %v, want ErrNoBackendURL", err)
	}
}

// stubQuerier answers scripted replies without a server.
type stubQuerier struct {
	reply *QueryReply
	err   error
}

func (s *stubQuerier) Query(ctx context.Context, query string) (*QueryReply, error) {
	return s.reply, s.err
}

func waitLen(t *testing.T, l *Log, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for l.Len() != want {
		select {
		case <-deadline:
			t.Fatalf("log length = %d, want %d", l.Len(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestBridge_Submit(t *testing.T) {
	l := NewLog()
	b := NewBridge(&stubQuerier{reply: &QueryReply{Response: "Saved it.", WalletLink: "link"}}, l, nil)
	defer b.Close()

	b.Submit("save this receipt")
	waitLen(t, l, 2)

	msgs := l.Messages()
	if !msgs[0].FromUser || msgs[0].Text != "save this receipt" {
		t.Errorf("first entry = %+v, want user message", msgs[0])
	}
	if msgs[1].FromUser || msgs[1].Text != "Saved it." || msgs[1].WalletLink != "link" {
		t.Errorf("second entry = %+v, want assistant reply", msgs[1])
	}
}

func TestBridge_SubmitBackendFailure(t *testing.T) {
	l := NewLog()
	b := NewBridge(&stubQuerier{err: errors.New("connection refused")}, l, nil)
	defer b.Close()

	b.Submit("hello")
	waitLen(t, l, 2)

	msgs := l.Messages()
	if msgs[1].FromUser || msgs[1].Text != ErrorNotice {
		t.Errorf("second entry = %+v, want error notice", msgs[1])
	}
}

func TestBridge_SubmitEmptyIgnored(t *testing.T) {
	l := NewLog()
	b := NewBridge(&stubQuerier{}, l, nil)
	defer b.Close()

	b.Submit("")
	time.Sleep(20 * time.Millisecond)
	if l.Len() != 0 {
		t.Errorf("log length = %d, want 0 for empty submit", l.Len())
	}
}
