package session

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStoreCreateGetDo(t *testing.T) {
	store := NewStore(time.Hour)
	id := store.Create()
	st, ok := store.Get(id)
	if !ok || st.CurrentStage() != StageIdle {
		t.Fatalf("expected idle session, got %+v %v", st, ok)
	}

	next, err := store.Do(id, func(st State) (State, error) {
		st.Reference = "abc"
		return st, nil
	})
	if err != nil || next.Reference != "abc" {
		t.Fatalf("unexpected Do result %+v %v", next, err)
	}
	if got, _ := store.Get(id); got.Reference != "abc" {
		t.Fatalf("state not stored, got %+v", got)
	}
}

func TestStoreDoKeepsStateOnError(t *testing.T) {
	store := NewStore(0)
	id := store.Create()
	boom := errors.New("boom")
	_, err := store.Do(id, func(st State) (State, error) {
		st.Stage = StageError
		st.Error = "boom"
		return st, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough, got %v", err)
	}
	if got, _ := store.Get(id); got.Error != "boom" {
		t.Fatalf("failure state should be stored, got %+v", got)
	}
}

func TestStoreRejectsConcurrentAction(t *testing.T) {
	store := NewStore(time.Hour)
	id := store.Create()
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := store.Do(id, func(st State) (State, error) {
			close(entered)
			<-release
			return st, nil
		})
		done <- err
	}()
	<-entered

	if _, err := store.Do(id, func(st State) (State, error) { return st, nil }); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	store.Publish(id, State{Stage: StageFetching})
	if got, _ := store.Get(id); got.Stage != StageFetching {
		t.Fatalf("expected published in-flight stage, got %s", got.Stage)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first action returned error: %v", err)
	}
	if _, err := store.Do(id, func(st State) (State, error) { return st, nil }); err != nil {
		t.Fatalf("expected session free after first action, got %v", err)
	}
}

func TestStoreDoesNotEvictBusySession(t *testing.T) {
	store := NewStore(time.Minute)
	var mu sync.Mutex
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	id := store.Create()

	next, err := store.Do(id, func(st State) (State, error) {
		mu.Lock()
		current = current.Add(5 * time.Minute)
		mu.Unlock()
		// Another request sweeps the store while the action runs.
		if _, ok := store.Get(id); !ok {
			t.Error("busy session evicted mid-action")
		}
		other := store.Create()
		store.Delete(other)
		st.Stage = StageTranscriptReady
		return st, nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	got, ok := store.Get(id)
	if !ok {
		t.Fatal("action result lost: session evicted")
	}
	if got.Stage != next.Stage || got.Stage != StageTranscriptReady {
		t.Fatalf("expected stored result %s, got %s", next.Stage, got.Stage)
	}
}

func TestStoreConcurrentActionsAndEviction(t *testing.T) {
	store := NewStore(time.Millisecond)
	ids := make([]string, 16)
	for i := range ids {
		ids[i] = store.Create()
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.Do(id, func(st State) (State, error) {
				time.Sleep(2 * time.Millisecond)
				st.Notice = "done"
				return st, nil
			})
			if err != nil && !errors.Is(err, ErrNotFound) {
				t.Errorf("unexpected Do error: %v", err)
			}
		}(id)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				store.Len()
				store.Create()
			}
		}()
	}
	wg.Wait()
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	store := NewStore(time.Minute)
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	stale := store.Create()
	current = current.Add(30 * time.Second)
	fresh := store.Create()
	current = current.Add(45 * time.Second)

	if _, ok := store.Get(stale); ok {
		t.Fatal("expected stale session to be evicted")
	}
	if _, ok := store.Get(fresh); !ok {
		t.Fatal("expected fresh session to survive")
	}
	if _, err := store.Do(stale, func(st State) (State, error) { return st, nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreEnsure(t *testing.T) {
	store := NewStore(time.Hour)
	id := store.Create()
	if got := store.Ensure(id); got != id {
		t.Fatalf("expected existing id, got %s", got)
	}
	other := store.Ensure("missing")
	if other == "missing" || other == "" {
		t.Fatalf("expected a new id, got %q", other)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.Len())
	}
	store.Delete(id)
	if store.Len() != 1 {
		t.Fatalf("expected 1 session after delete, got %d", store.Len())
	}
}
