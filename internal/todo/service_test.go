package todo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store that copies on every load and save, the way
// a real backend round-trips through serialization.
type memStore struct {
	mu      sync.Mutex
	tasks   []Task
	saves   int
	saveErr error
}

func (m *memStore) Load(ctx context.Context) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *memStore) Save(ctx context.Context, tasks []Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = make([]Task, len(tasks))
	copy(m.tasks, tasks)
	m.saves++
	return nil
}

func (m *memStore) snapshot() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// seqIDs hands out T1, T2, ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("T%d", g.n)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *memStore) *Service {
	return NewService(store,
		WithIDGenerator(&seqIDs{}),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreate(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)
	ctx := context.Background()

	task, err := svc.Create(ctx, strPtr("Buy milk"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.ID == "" {
		t.Error("Create: id is empty")
	}
	if task.Text != "Buy milk" {
		t.Errorf("Text: got %q, want %q", task.Text, "Buy milk")
	}
	if task.Completed {
		t.Error("Completed: got true, want false")
	}
	if task.CreatedAt != fixedNow.UnixMilli() {
		t.Errorf("CreatedAt: got %d, want %d", task.CreatedAt, fixedNow.UnixMilli())
	}

	tasks, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 || !reflect.DeepEqual(tasks[0], task) {
		t.Errorf("List: got %+v, want [%+v]", tasks, task)
	}
}

func TestCreateTrimsText(t *testing.T) {
	svc := newTestService(&memStore{})
	task, err := svc.Create(context.Background(), strPtr("  Walk the dog \n"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.Text != "Walk the dog" {
		t.Errorf("Text: got %q, want %q", task.Text, "Walk the dog")
	}
}

func TestCreateStoresTextAsSent(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	in := "Cafe\u0301"
	task, err := svc.Create(context.Background(), &in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.Text != in {
		t.Errorf("Text: got %q, want %q", task.Text, in)
	}
	if stored := store.snapshot()[0].Text; stored != in {
		t.Errorf("stored: got %q, want %q", stored, in)
	}
}

func TestCreateInvalid(t *testing.T) {
	tests := []struct {
		name string
		text *string
	}{
		{"missing", nil},
		{"empty", strPtr("")},
		{"whitespace", strPtr("  \t\n")},
		{"byte order mark", strPtr("\ufeff")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{tasks: []Task{{ID: "A", Text: "keep"}}}
			svc := newTestService(store)

			_, err := svc.Create(context.Background(), tt.text)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Create: got %v, want ErrInvalidInput", err)
			}
			if store.saves != 0 {
				t.Errorf("saves: got %d, want 0", store.saves)
			}
			if got := store.snapshot(); len(got) != 1 || got[0].ID != "A" {
				t.Errorf("collection changed: %+v", got)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("completed only leaves text unchanged", func(t *testing.T) {
		store := &memStore{tasks: []Task{{ID: "A", Text: "Buy milk", CreatedAt: 1}}}
		svc := newTestService(store)

		got, err := svc.Update(ctx, "A", Patch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		want := Task{ID: "A", Text: "Buy milk", Completed: true, CreatedAt: 1}
		if got != want {
			t.Errorf("Update: got %+v, want %+v", got, want)
		}
		if stored := store.snapshot()[0]; stored != want {
			t.Errorf("stored: got %+v, want %+v", stored, want)
		}
	})

	t.Run("text is trimmed", func(t *testing.T) {
		store := &memStore{tasks: []Task{{ID: "A", Text: "old", Completed: true}}}
		svc := newTestService(store)

		got, err := svc.Update(ctx, "A", Patch{Text: strPtr("  new  ")})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if got.Text != "new" || !got.Completed {
			t.Errorf("Update: got %+v", got)
		}
	})

	t.Run("blank text keeps the stored text", func(t *testing.T) {
		store := &memStore{tasks: []Task{{ID: "A", Text: "Buy milk"}}}
		svc := newTestService(store)

		got, err := svc.Update(ctx, "A", Patch{Text: strPtr("   "), Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		want := Task{ID: "A", Text: "Buy milk", Completed: true}
		if got != want {
			t.Errorf("Update: got %+v, want %+v", got, want)
		}
		if stored := store.snapshot()[0]; stored != want {
			t.Errorf("stored: got %+v, want %+v", stored, want)
		}
	})

	t.Run("empty patch still persists", func(t *testing.T) {
		store := &memStore{tasks: []Task{{ID: "A", Text: "same"}}}
		svc := newTestService(store)

		if _, err := svc.Update(ctx, "A", Patch{}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if store.saves != 1 {
			t.Errorf("saves: got %d, want 1", store.saves)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		store := &memStore{tasks: []Task{{ID: "A", Text: "keep"}}}
		svc := newTestService(store)

		_, err := svc.Update(ctx, "missing", Patch{Completed: boolPtr(true)})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Update: got %v, want ErrNotFound", err)
		}
		if store.saves != 0 {
			t.Errorf("saves: got %d, want 0", store.saves)
		}
		if store.snapshot()[0].Completed {
			t.Error("collection changed on NotFound")
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tasks: []Task{
		{ID: "A", Text: "one"},
		{ID: "B", Text: "two"},
		{ID: "C", Text: "three"},
	}}
	svc := newTestService(store)

	removed, err := svc.Delete(ctx, "B")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed.ID != "B" || removed.Text != "two" {
		t.Errorf("Delete: got %+v", removed)
	}

	remaining := store.snapshot()
	if len(remaining) != 2 || remaining[0].ID != "A" || remaining[1].ID != "C" {
		t.Errorf("remaining: got %+v", remaining)
	}

	if _, err := svc.Delete(ctx, "B"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestClearCompleted(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tasks: []Task{
		{ID: "A", Text: "one", Completed: true},
		{ID: "B", Text: "two"},
		{ID: "C", Text: "three", Completed: true},
		{ID: "D", Text: "four"},
	}}
	svc := newTestService(store)

	result, err := svc.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if result.Cleared != 2 {
		t.Errorf("Cleared: got %d, want 2", result.Cleared)
	}

	remaining := store.snapshot()
	if len(remaining) != 2 || remaining[0].ID != "B" || remaining[1].ID != "D" {
		t.Errorf("remaining: got %+v", remaining)
	}

	result, err = svc.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("second ClearCompleted failed: %v", err)
	}
	if result.Cleared != 0 {
		t.Errorf("second Cleared: got %d, want 0", result.Cleared)
	}
}

func TestToggleAll(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tasks: []Task{
		{ID: "A", Text: "one", Completed: true},
		{ID: "B", Text: "two"},
	}}
	svc := newTestService(store)

	tasks, err := svc.ToggleAll(ctx, boolPtr(true))
	if err != nil {
		t.Fatalf("ToggleAll(true) failed: %v", err)
	}
	for _, task := range tasks {
		if !task.Completed {
			t.Errorf("ToggleAll(true): %s not completed", task.ID)
		}
	}

	tasks, err = svc.ToggleAll(ctx, boolPtr(false))
	if err != nil {
		t.Fatalf("ToggleAll(false) failed: %v", err)
	}
	for _, task := range tasks {
		if task.Completed {
			t.Errorf("ToggleAll(false): %s still completed", task.ID)
		}
	}
	if got := store.snapshot(); !reflect.DeepEqual(got, tasks) {
		t.Errorf("stored: got %+v, want %+v", got, tasks)
	}

	if _, err := svc.ToggleAll(ctx, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ToggleAll(nil): got %v, want ErrInvalidInput", err)
	}
}

func TestToggleAllEmpty(t *testing.T) {
	svc := newTestService(&memStore{})
	tasks, err := svc.ToggleAll(context.Background(), boolPtr(true))
	if err != nil {
		t.Fatalf("ToggleAll failed: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("ToggleAll on empty: got %#v, want empty non-nil slice", tasks)
	}
}

func TestListEmptyIsNonNil(t *testing.T) {
	svc := newTestService(&memStore{})
	tasks, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if tasks == nil {
		t.Error("List on empty store returned nil, want empty slice")
	}
}

func TestListFiltered(t *testing.T) {
	store := &memStore{tasks: []Task{
		{ID: "A", Text: "one", Completed: true},
		{ID: "B", Text: "two"},
	}}
	svc := newTestService(store)

	active, err := svc.ListFiltered(context.Background(), FilterActive)
	if err != nil {
		t.Fatalf("ListFiltered failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "B" {
		t.Errorf("ListFiltered(active): got %+v", active)
	}
}

func TestSaveErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	store := &memStore{saveErr: boom}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), strPtr("Buy milk"))
	if !errors.Is(err, boom) {
		t.Fatalf("Create: got %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) {
		t.Errorf("storage failure should not carry a domain kind: %v", err)
	}
}

// lockingStore records lock/unlock calls around the cycle.
type lockingStore struct {
	memStore
	events []string
}

func (l *lockingStore) Lock(ctx context.Context) (func() error, error) {
	l.events = append(l.events, "lock")
	return func() error {
		l.events = append(l.events, "unlock")
		return nil
	}, nil
}

func (l *lockingStore) Load(ctx context.Context) ([]Task, error) {
	l.events = append(l.events, "load")
	return l.memStore.Load(ctx)
}

func (l *lockingStore) Save(ctx context.Context, tasks []Task) error {
	l.events = append(l.events, "save")
	return l.memStore.Save(ctx, tasks)
}

func TestServiceUsesLocker(t *testing.T) {
	store := &lockingStore{}
	svc := newTestService(&memStore{})
	svc.store = store

	if _, err := svc.Create(context.Background(), strPtr("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := []string{"lock", "load", "save", "unlock"}
	if !reflect.DeepEqual(store.events, want) {
		t.Errorf("events: got %v, want %v", store.events, want)
	}

	store.events = nil
	if _, err := svc.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}
	want = []string{"lock", "load", "unlock"}
	if !reflect.DeepEqual(store.events, want) {
		t.Errorf("events on failure: got %v, want %v", store.events, want)
	}
}

func TestConcurrentCreatesAreSerialized(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Create(context.Background(), strPtr(fmt.Sprintf("task %d", i))); err != nil {
				t.Errorf("Create %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(store.snapshot()); got != n {
		t.Errorf("tasks after concurrent creates: got %d, want %d", got, n)
	}
}
