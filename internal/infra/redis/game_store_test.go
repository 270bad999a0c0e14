package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/app"
)

func TestGameStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewGameStore(newClient(mr), time.Minute)
	service := app.NewGameService(store, nil, nil, app.GameConfig{})

	view := service.NewGame(context.Background(), "device-0001")
	key := "quiz:game:" + view.ID
	if !mr.Exists(key) {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get(key); got != "device-0001" {
		t.Fatalf("expected session id in liveness key, got %q", got)
	}
	if _, ok := store.Get(view.ID); !ok {
		t.Fatalf("expected game kept locally")
	}

	service.Close(context.Background(), view.ID)
	if mr.Exists(key) {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get(view.ID); ok {
		t.Fatalf("expected game forgotten")
	}
}
