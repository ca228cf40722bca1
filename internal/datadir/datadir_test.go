package datadir

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"tasks in cwd", TasksPath(""), filepath.Join("data", "todos.json")},
		{"tasks with dot", TasksPath("."), filepath.Join("data", "todos.json")},
		{"tasks in dir", TasksPath("/srv/app"), filepath.Join("/srv/app", "data", "todos.json")},
		{"database", DatabasePath("/srv/app"), filepath.Join("/srv/app", "data", "todos.db")},
		{"dir", DirPath("/srv/app"), filepath.Join("/srv/app", "data")},
		{"lock", LockPath("/srv/app/data/todos.json"), "/srv/app/data/todos.json.lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
