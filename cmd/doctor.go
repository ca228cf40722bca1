package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nibzard/todoapp-go/internal/store"
	"github.com/nibzard/todoapp-go/internal/todo"
)

// doctorCommand checks config, data file and static dir. It never creates
// the data file.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todoapp doctor", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	fmt.Fprintln(w, "todoapp doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintln(w, "Config files:")
	if len(a.sources.Files) == 0 {
		fmt.Fprintln(w, "  (none, using defaults)")
	}
	for _, f := range a.sources.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config:")
	for _, e := range a.sources.Entries() {
		if *verbose {
			fmt.Fprintf(w, "  %s\n", e)
		} else {
			fmt.Fprintf(w, "  %s = %s\n", e.Key, e.Value)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Data file (%s): %s\n", a.cfg.Store, a.cfg.DataFile)
	tasks, ok := a.checkDataFile(ctx)
	if !ok {
		allOK = false
	}
	if *verbose && tasks != nil {
		fmt.Fprintf(w, "  Tasks: %d (%d active)\n", len(tasks), todo.Remaining(tasks))
		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "    - [%s] %s: %s (created %s)\n", mark, t.ID, t.Text, t.Created().UTC().Format(time.RFC3339))
		}
	}
	fmt.Fprintln(w)

	if a.cfg.StaticDir == "" {
		fmt.Fprintln(w, "Static dir: (disabled)")
	} else {
		fmt.Fprintf(w, "Static dir: %s\n", a.cfg.StaticDir)
		if info, err := os.Stat(a.cfg.StaticDir); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(w, "  ⚠️  Not found (static files will not be served)")
			} else {
				fmt.Fprintf(w, "  ❌ Error: %v\n", err)
				allOK = false
			}
		} else if !info.IsDir() {
			fmt.Fprintln(w, "  ❌ Error: path is not a directory")
			allOK = false
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkDataFile reports on the configured data file and returns its tasks
// when they could be read.
func (a *app) checkDataFile(ctx context.Context) ([]todo.Task, bool) {
	w := a.stdout
	info, err := os.Stat(a.cfg.DataFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "  ⚠️  Not found (created on first use)")
		return nil, true
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		return nil, false
	case info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		return nil, false
	}
	fmt.Fprintln(w, "  ✅ OK")

	data, err := a.dataFileContents(ctx)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Read error: %v\n", err)
		return nil, false
	}

	result := todo.ValidateData(data)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Validation failed (the server treats this file as empty):")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		return nil, false
	}
	fmt.Fprintln(w, "  ✅ Valid")

	var tasks []todo.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, true
	}
	return tasks, true
}

// dataFileContents returns the collection as JSON. SQLite rows are loaded
// and re-encoded so both backends go through the same validation.
func (a *app) dataFileContents(ctx context.Context) ([]byte, error) {
	if a.cfg.Store != string(store.BackendSQLite) {
		return os.ReadFile(a.cfg.DataFile)
	}
	st, err := store.OpenSQLite(a.cfg.DataFile, a.logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	tasks, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return json.Marshal(tasks)
}
