package p2p

import (
	"reflect"
	"testing"
)

func TestPeerSet(t *testing.T) {
	ps := NewPeerSet("localhost:5002", "localhost:5001")

	if ps.Len() != 2 {
		t.Fatalf("Expected 2 peers, got %d", ps.Len())
	}
	if ps.Add("localhost:5001") {
		t.Error("Adding a duplicate peer reported it as new")
	}
	if ps.Add("") {
		t.Error("Empty address was accepted")
	}
	if !ps.Add("localhost:5000") {
		t.Error("Adding a new peer failed")
	}

	want := []string{"localhost:5000", "localhost:5001", "localhost:5002"}
	if got := ps.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected sorted peers %v, got %v", want, got)
	}

	if !ps.Remove("localhost:5001") {
		t.Error("Removing a known peer failed")
	}
	if ps.Remove("localhost:5001") {
		t.Error("Removing an unknown peer reported success")
	}
	if ps.Contains("localhost:5001") {
		t.Error("Removed peer is still present")
	}
}
