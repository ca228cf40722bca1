package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/todoapp-go/internal/todo"
)

// lsCommand lists tasks in insertion order.
func (a *app) lsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todoapp ls", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	filterArg := fs.String("filter", string(todo.FilterAll), "Filter (all|active|completed)")
	format := fs.String("format", "text", "Output format (text|json|yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	filter, err := todo.ParseFilter(*filterArg)
	if err != nil {
		return err
	}

	svc, st, err := a.openService()
	if err != nil {
		return err
	}
	defer st.Close()

	all, err := svc.List(ctx)
	if err != nil {
		return err
	}
	tasks := filter.Apply(all)

	switch strings.ToLower(*format) {
	case "text":
		printTaskList(a.stdout, tasks, todo.Remaining(all))
		return nil
	case "json":
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding tasks: %w", err)
		}
		fmt.Fprintf(a.stdout, "%s\n", data)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("encoding tasks: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, json, yaml", *format)
	}
}

// addCommand creates a task from the joined arguments.
func (a *app) addCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: todoapp add <text...>")
	}
	text := strings.Join(args, " ")

	return a.withService(func(svc *todo.Service) error {
		task, err := svc.Create(ctx, &text)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Added %s: %s\n", task.ID, task.Text)
		return nil
	})
}

// editCommand replaces the text of a task.
func (a *app) editCommand(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: todoapp edit <id> <text...>")
	}
	id := args[0]
	text := strings.Join(args[1:], " ")

	return a.withService(func(svc *todo.Service) error {
		task, err := svc.Update(ctx, id, todo.Patch{Text: &text})
		if err != nil {
			return taskError(id, err)
		}
		fmt.Fprintf(a.stdout, "Updated %s: %s\n", task.ID, task.Text)
		return nil
	})
}

// setCompletedCommand backs both done and undone.
func (a *app) setCompletedCommand(ctx context.Context, name string, completed bool, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todoapp %s <id>", name)
	}
	id := args[0]

	return a.withService(func(svc *todo.Service) error {
		task, err := svc.Update(ctx, id, todo.Patch{Completed: &completed})
		if err != nil {
			return taskError(id, err)
		}
		verb := "Reopened"
		if task.Completed {
			verb = "Completed"
		}
		fmt.Fprintf(a.stdout, "%s %s: %s\n", verb, task.ID, task.Text)
		return nil
	})
}

// rmCommand deletes a task.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todoapp rm <id>")
	}
	id := args[0]

	return a.withService(func(svc *todo.Service) error {
		task, err := svc.Delete(ctx, id)
		if err != nil {
			return taskError(id, err)
		}
		fmt.Fprintf(a.stdout, "Removed %s: %s\n", task.ID, task.Text)
		return nil
	})
}

// clearCommand deletes every completed task.
func (a *app) clearCommand(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	return a.withService(func(svc *todo.Service) error {
		result, err := svc.ClearCompleted(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Cleared %s\n", plural(result.Cleared, "completed task"))
		return nil
	})
}

// toggleAllCommand sets the completed flag of every task.
func (a *app) toggleAllCommand(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todoapp toggle-all <true|false>")
	}
	completed, err := strconv.ParseBool(args[0])
	if err != nil {
		return fmt.Errorf("toggle-all: %q is not a boolean", args[0])
	}

	return a.withService(func(svc *todo.Service) error {
		tasks, err := svc.ToggleAll(ctx, &completed)
		if err != nil {
			return err
		}
		state := "active"
		if completed {
			state = "completed"
		}
		fmt.Fprintf(a.stdout, "Marked %s %s\n", plural(len(tasks), "task"), state)
		return nil
	})
}

// withService opens the store, runs fn and closes the store again.
func (a *app) withService(fn func(svc *todo.Service) error) error {
	svc, st, err := a.openService()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(svc)
}

// taskError adds the id to not-found errors, which carry only "Not found".
func taskError(id string, err error) error {
	if errors.Is(err, todo.ErrNotFound) {
		return fmt.Errorf("task %s: %w", id, err)
	}
	return err
}

// printTaskList prints one line per task followed by the active count.
func printTaskList(w io.Writer, tasks []todo.Task, remaining int) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s  %s\n", mark, t.ID, t.Text)
	}
	if remaining == 1 {
		fmt.Fprintln(w, "1 item left")
		return
	}
	fmt.Fprintf(w, "%d items left\n", remaining)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
