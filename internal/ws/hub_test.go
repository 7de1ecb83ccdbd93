package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub(nil)

	hub.AddClient("u1", nil, ConnInfo{ConnID: "c1", UserID: "u1"})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}

	hub.RemoveClient("u1", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be removed")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub(nil)

	hub.RemoveClient("ghost", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected hub to stay empty")
	}
}
