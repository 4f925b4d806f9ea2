package watchparty

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func drain(c *Client) []Message {
	var out []Message
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func lastOfType(msgs []Message, typ string) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == typ {
			return msgs[i], true
		}
	}
	return Message{}, false
}

func TestNeedsResync(t *testing.T) {
	tests := []struct {
		client, host float64
		want         bool
	}{
		{10, 10, false},
		{13, 10, false},
		{7, 10, false},
		{13.01, 10, true},
		{6.9, 10, true},
		{0, 600, true},
	}
	for _, tt := range tests {
		if got := NeedsResync(tt.client, tt.host); got != tt.want {
			t.Errorf("NeedsResync(%v, %v) = %v, want %v", tt.client, tt.host, got, tt.want)
		}
	}
}

func TestHub_HostDrivesState(t *testing.T) {
	h := NewHub(16)
	host := h.newClient(nil, "host")
	member := h.newClient(nil, "member")

	h.Join("r1", host)
	welcome, _ := lastOfType(drain(host), TypeWelcome)
	if !welcome.IsHost {
		t.Fatalf("first client not host: %+v", welcome)
	}
	h.Join("r1", member)
	if w, _ := lastOfType(drain(member), TypeWelcome); w.IsHost || w.Members != 2 {
		t.Fatalf("member welcome = %+v", w)
	}
	if m, ok := lastOfType(drain(host), TypeMembers); !ok || m.Members != 2 {
		t.Errorf("host did not see member count: %+v", m)
	}

	h.Handle(host, Message{Type: TypeState, CurrentTime: 100, Playing: true, Episode: 3})
	st, ok := lastOfType(drain(member), TypeState)
	if !ok || st.CurrentTime != 100 || !st.Playing || st.Episode != 3 {
		t.Fatalf("member state = %+v", st)
	}

	h.Handle(member, Message{Type: TypeState, CurrentTime: 5})
	if _, ok := lastOfType(drain(member), TypeError); !ok {
		t.Error("member allowed to drive playback")
	}
	if len(drain(host)) != 0 {
		t.Error("member state leaked to host")
	}

	h.Handle(member, Message{Type: TypeReport, CurrentTime: 102.5})
	if msgs := drain(member); len(msgs) != 0 {
		t.Errorf("in-tolerance report answered: %+v", msgs)
	}
	h.Handle(member, Message{Type: TypeReport, CurrentTime: 110})
	resync, ok := lastOfType(drain(member), TypeSync)
	if !ok || resync.CurrentTime != 100 || resync.Episode != 3 {
		t.Errorf("drifted report resync = %+v", resync)
	}

	late := h.newClient(nil, "late")
	h.Join("r1", late)
	if s, ok := lastOfType(drain(late), TypeSync); !ok || s.CurrentTime != 100 {
		t.Errorf("late joiner did not get host state: %+v", s)
	}
}

func TestHub_HostPromotion(t *testing.T) {
	h := NewHub(16)
	host, a, b := h.newClient(nil, "host"), h.newClient(nil, "a"), h.newClient(nil, "b")
	for _, c := range []*Client{host, a, b} {
		h.Join("r", c)
	}
	drain(a)
	drain(b)

	h.Leave(host)
	h.Leave(host)

	if m, ok := lastOfType(drain(a), TypeHost); !ok || !m.IsHost {
		t.Fatalf("oldest member not promoted: %+v", m)
	}
	if m, ok := lastOfType(drain(b), TypeMembers); !ok || m.Members != 2 {
		t.Errorf("member count after leave = %+v", m)
	}

	h.Handle(a, Message{Type: TypeState, CurrentTime: 42})
	if s, ok := lastOfType(drain(b), TypeState); !ok || s.CurrentTime != 42 {
		t.Errorf("new host state not relayed: %+v", s)
	}

	h.Leave(a)
	h.Leave(b)
	if h.Rooms() != 0 {
		t.Errorf("empty room kept, rooms = %d", h.Rooms())
	}
}

func TestHub_Chat(t *testing.T) {
	h := NewHub(16)
	a, b := h.newClient(nil, "alice"), h.newClient(nil, "bob")
	h.Join("r", a)
	h.Join("r", b)
	drain(a)
	drain(b)

	h.Handle(b, Message{Type: TypeChat, Text: "   "})
	if len(drain(a)) != 0 {
		t.Error("blank chat relayed")
	}

	h.Handle(b, Message{Type: TypeChat, Text: "  " + strings.Repeat("x", 600)})
	for _, c := range []*Client{a, b} {
		m, ok := lastOfType(drain(c), TypeChat)
		if !ok || m.From != "bob" || len(m.Text) != maxChatLength {
			t.Errorf("%s got chat %q from %q", c.name, m.Text, m.From)
		}
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := NewHub(4)
	host := h.newClient(nil, "host")
	h.Join("r", host)
	for len(host.send) < cap(host.send) {
		host.send <- Message{Type: TypeChat}
	}

	member := h.newClient(nil, "member")
	h.Join("r", member)

	if !host.closed {
		t.Fatal("full client not dropped")
	}
	if h.rooms["r"].host != member {
		t.Error("member not promoted after host was dropped")
	}
	if _, ok := lastOfType(drain(member), TypeHost); !ok {
		t.Error("promoted member not told")
	}
	drain(host)
	if _, ok := <-host.send; ok {
		t.Error("dropped client's channel still open")
	}
}

func TestServe_WebSocketRoundTrip(t *testing.T) {
	h := NewHub(16)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve(conn, "room", r.URL.Query().Get("name"))
	}))
	defer srv.Close()

	dial := func(name string) *websocket.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?name=" + name
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %s: %v", name, err)
		}
		return conn
	}
	readUntil := func(conn *websocket.Conn, typ string) Message {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				t.Fatalf("waiting for %s: %v", typ, err)
			}
			if m.Type == typ {
				return m
			}
		}
	}

	host := dial("host")
	if w := readUntil(host, TypeWelcome); !w.IsHost {
		t.Fatalf("welcome = %+v", w)
	}
	member := dial("member")
	defer member.Close()
	readUntil(member, TypeWelcome)
	readUntil(host, TypeMembers)

	if err := host.WriteJSON(Message{Type: TypeState, CurrentTime: 300, Playing: true, Episode: 1}); err != nil {
		t.Fatal(err)
	}
	if s := readUntil(member, TypeState); s.CurrentTime != 300 {
		t.Errorf("state = %+v", s)
	}

	if err := member.WriteJSON(Message{Type: TypeReport, CurrentTime: 250}); err != nil {
		t.Fatal(err)
	}
	if s := readUntil(member, TypeSync); s.CurrentTime != 300 {
		t.Errorf("sync = %+v", s)
	}

	_ = host.Close()
	if m := readUntil(member, TypeHost); !m.IsHost {
		t.Errorf("promotion = %+v", m)
	}
}
