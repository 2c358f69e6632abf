package progress

import "testing"

func TestPublishKeepsSnapshot(t *testing.T) {
	hub := NewHub()

	// 구독자가 없어도 스냅샷은 기록된다
	hub.Publish("p1", "voiceover", 30)
	hub.Publish("p1", "images", 55)

	hub.mutex.RLock()
	room := hub.rooms["p1"]
	hub.mutex.RUnlock()

	if room == nil {
		t.Fatal("room should exist after publish")
	}

	room.mutex.RLock()
	last := room.lastEvent
	room.mutex.RUnlock()

	if last == nil {
		t.Fatal("last event snapshot missing")
	}
	if last.Stage != "images" || last.Percent != 55 {
		t.Errorf("snapshot should hold latest event, got %s/%d", last.Stage, last.Percent)
	}
}

func TestRoomsAreIsolatedPerProject(t *testing.T) {
	hub := NewHub()

	hub.Publish("p1", "voiceover", 30)
	hub.Publish("p2", "completed", 100)

	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	if hub.rooms["p1"].lastEvent.Stage != "voiceover" {
		t.Error("p1 snapshot overwritten by p2")
	}
	if hub.rooms["p2"].lastEvent.Stage != "completed" {
		t.Error("p2 snapshot missing")
	}
}
