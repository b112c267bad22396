// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/rustybrain/internal/brainpath"
	"github.com/nibzard/rustybrain/internal/todo"
)

const testEpoch = 1700000000

type harness struct {
	t      *testing.T
	home   string
	now    time.Time
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"XDG_CONFIG_HOME",
		"NO_COLOR",
		"RUSTYBRAIN_LOG_LEVEL",
		"RUSTYBRAIN_LOG_FORMAT",
		"RUSTYBRAIN_LOG_TIMESTAMPS",
		"RUSTYBRAIN_LOG_CALLER",
		"RUSTYBRAIN_COLOR",
		"RUSTYBRAIN_BACKUP_CORRUPT",
	} {
		t.Setenv(name, "")
	}
	return &harness{t: t, home: home, now: time.Unix(testEpoch, 0)}
}

func (h *harness) run(words ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	argv := append([]string{"rustybrain"}, words...)
	return run(context.Background(), argv, env{
		stdout:     &h.stdout,
		stderr:     &h.stderr,
		now:        func() time.Time { return h.now },
		isTerminal: func(io.Writer) bool { return false },
	})
}

// mustRun runs a command that is expected to succeed.
func (h *harness) mustRun(words ...string) string {
	h.t.Helper()
	if err := h.run(words...); err != nil {
		h.t.Fatalf("run %v: %v", words, err)
	}
	return h.stdout.String()
}

func (h *harness) storePath() string {
	return brainpath.StorePath(h.home)
}

func (h *harness) raw() []byte {
	h.t.Helper()
	data, err := os.ReadFile(h.storePath())
	if err != nil {
		h.t.Fatalf("reading store: %v", err)
	}
	return data
}

func (h *harness) tasks() []todo.Task {
	h.t.Helper()
	var tasks []todo.Task
	if err := json.Unmarshal(h.raw(), &tasks); err != nil {
		h.t.Fatalf("store is not a JSON task array: %v", err)
	}
	return tasks
}

func (h *harness) rawElements() []json.RawMessage {
	h.t.Helper()
	var elems []json.RawMessage
	if err := json.Unmarshal(h.raw(), &elems); err != nil {
		h.t.Fatalf("store is not a JSON array: %v", err)
	}
	return elems
}

func TestAddThenView(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "buy", "milk")
	if !strings.Contains(out, "Task added!") {
		t.Errorf("add output: %q", out)
	}

	tasks := h.tasks()
	if len(tasks) != 1 {
		t.Fatalf("tasks: got %d, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Description != "buy milk" || got.Group != "default" || got.Priority != 3 ||
		got.AddedTime != testEpoch || got.Done {
		t.Errorf("stored task: %+v", got)
	}

	out = h.mustRun("view")
	if !strings.Contains(out, "1. [default] buy milk [✗] (Priority: 3)") {
		t.Errorf("view output missing row:\n%s", out)
	}
}

func TestPriorityAndGroupFilter(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "report", "--group=work", "--priority=1")
	h.mustRun("add", "call", "mom", "--group=home")

	out := h.mustRun("view", "--group=work")
	if !strings.Contains(out, "1. [work] report [✗] (Priority: 1)") {
		t.Errorf("filtered view missing report:\n%s", out)
	}
	if strings.Contains(out, "call mom") {
		t.Errorf("filtered view shows other group:\n%s", out)
	}
}

func TestEdit(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "buy", "milk")

	h.now = h.now.Add(time.Hour)
	out := h.mustRun("edit", "1", "buy", "oat", "milk")
	if !strings.Contains(out, "Task 1 has been updated.") {
		t.Errorf("edit output: %q", out)
	}

	tasks := h.tasks()
	if tasks[0].Description != "buy oat milk" {
		t.Errorf("description: got %q, want %q", tasks[0].Description, "buy oat milk")
	}
	if tasks[0].AddedTime != testEpoch {
		t.Errorf("added_time changed: got %d, want %d", tasks[0].AddedTime, testEpoch)
	}
}

func TestMarkIdempotent(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "x")

	h.mustRun("mark", "1")
	first := h.raw()
	out := h.mustRun("mark", "1")
	if !strings.Contains(out, "Task marked as done!") {
		t.Errorf("second mark output: %q", out)
	}
	if !bytes.Equal(first, h.raw()) {
		t.Errorf("second mark changed the store:\n%s\nvs\n%s", first, h.raw())
	}

	tasks := h.tasks()
	if len(tasks) != 1 || !tasks[0].Done || tasks[0].AddedTime != testEpoch {
		t.Errorf("tasks after mark: %+v", tasks)
	}
}

func TestMarkLeavesOtherFields(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a", "--priority=2")
	h.mustRun("add", "b", "--group=work")
	before := h.tasks()

	h.mustRun("mark", "2")
	after := h.tasks()

	if after[0] != before[0] {
		t.Errorf("task 1 changed: %+v -> %+v", before[0], after[0])
	}
	want := before[1]
	want.Done = true
	if after[1] != want {
		t.Errorf("task 2: got %+v, want %+v", after[1], want)
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a")
	before := h.raw()

	out := h.mustRun("delete", "2")
	if !strings.Contains(out, "Task doesn't exist") {
		t.Errorf("delete output: %q", out)
	}
	if !bytes.Equal(before, h.raw()) {
		t.Errorf("store changed after out-of-range delete")
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	h := newHarness(t)
	for _, d := range []string{"a", "b", "c", "d"} {
		h.mustRun("add", d)
	}

	h.mustRun("delete", "2")
	tasks := h.tasks()
	var got []string
	for _, task := range tasks {
		got = append(got, task.Description)
	}
	if strings.Join(got, ",") != "a,c,d" {
		t.Errorf("after delete: got %v, want [a c d]", got)
	}
}

func TestSortStability(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "A", "--priority=2")
	h.mustRun("add", "B", "--priority=1")
	h.mustRun("add", "C", "--priority=1")

	out := h.mustRun("view", "--sort=priority")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"1. [default] B [✗] (Priority: 1)",
		"2. [default] C [✗] (Priority: 1)",
		"3. [default] A [✗] (Priority: 2)",
	}
	if len(lines) != len(want)+1 {
		t.Fatalf("view lines: got %d, want %d:\n%s", len(lines), len(want)+1, out)
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("line %d: got %q, want %q", i+1, lines[i+1], w)
		}
	}
}

func TestUnfilteredViewNumbersMatchCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a")
	h.mustRun("--make-group", "work")
	h.now = h.now.Add(-time.Hour)
	h.mustRun("add", "b")

	out := h.mustRun("view")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"1. [default] a [✗] (Priority: 3)",
		"2. [work] Empty group placeholder [✗] (Priority: 3)",
		"3. [default] b [✗] (Priority: 3)",
	}
	if len(lines) != len(want)+1 {
		t.Fatalf("view lines: got %d, want %d:\n%s", len(lines), len(want)+1, out)
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("line %d: got %q, want %q", i+1, lines[i+1], w)
		}
	}

	// Row 1 as shown is the task mark 1 changes.
	h.mustRun("mark", "1")
	tasks := h.tasks()
	if !tasks[0].Done || tasks[0].Description != "a" {
		t.Errorf("mark 1 did not mark the first row: %+v", tasks)
	}
	if tasks[1].Done || tasks[2].Done {
		t.Errorf("mark 1 touched other rows: %+v", tasks)
	}

	out = h.mustRun("view", "--sort=bogus")
	if !strings.Contains(out, "1. [default] a [✓]") {
		t.Errorf("unknown sort should keep insertion order:\n%s", out)
	}
}

func TestViewEmpty(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("view")
	if !strings.Contains(out, "No tasks available") {
		t.Errorf("empty view output: %q", out)
	}
	if _, err := os.Stat(h.storePath()); !os.IsNotExist(err) {
		t.Errorf("view created the store file")
	}
}

func TestAddStrictlyAppends(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "first", "--priority=1")
	h.mustRun("add", "second", "--group=work")
	before := h.rawElements()

	h.now = h.now.Add(time.Minute)
	h.mustRun("add", "third")
	after := h.rawElements()

	if len(after) != len(before)+1 {
		t.Fatalf("length: got %d, want %d", len(after), len(before)+1)
	}
	for i := range before {
		if !bytes.Equal(before[i], after[i]) {
			t.Errorf("task %d changed:\n%s\n->\n%s", i+1, before[i], after[i])
		}
	}
	if tasks := h.tasks(); tasks[2].Description != "third" {
		t.Errorf("appended task: %+v", tasks[2])
	}
}

func TestSaveRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a", "--priority=1")
	h.mustRun("add", "b", "--group=home")
	h.mustRun("--make-group", "errands")
	h.mustRun("mark", "2")
	before := h.raw()

	// Rewriting a description with itself forces load + save.
	h.mustRun("edit", "1", "a")
	if !bytes.Equal(before, h.raw()) {
		t.Errorf("load/save is not byte-stable:\n%s\nvs\n%s", before, h.raw())
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{"add without description", []string{"add"}, "mention the task you want to add"},
		{"add blank description", []string{"add", " ", ""}, "mention the task you want to add"},
		{"edit without text", []string{"edit", "1"}, "Try using the command properly"},
		{"edit bad number", []string{"edit", "zero", "x"}, "edit something that doesn't exist"},
		{"edit out of range", []string{"edit", "5", "x"}, "edit something that doesn't exist"},
		{"delete without number", []string{"delete"}, "provide a valid task to delete"},
		{"delete zero", []string{"delete", "0"}, "Task doesn't exist"},
		{"mark without number", []string{"mark"}, "tell me which one"},
		{"mark negative", []string{"mark", "-1"}, "imagining tasks"},
		{"make-group without name", []string{"--make-group"}, "--make-group <name>"},
		{"unknown command", []string{"frobnicate"}, "Unknown command. Type 'rustybrain help'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.mustRun("add", "existing")
			before := h.raw()

			out := h.mustRun(tt.words...)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
			if !bytes.Equal(before, h.raw()) {
				t.Errorf("store changed:\n%s", h.raw())
			}
		})
	}
}

func TestFlagsDefaultsAndUnknown(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "x", "--priority=9", "--group=", "--colour=red")

	task := h.tasks()[0]
	if task.Priority != todo.PriorityLow {
		t.Errorf("priority: got %d, want 3", task.Priority)
	}
	if task.Group != todo.DefaultGroup {
		t.Errorf("group: got %q, want %q", task.Group, todo.DefaultGroup)
	}
	if task.Description != "x" {
		t.Errorf("description: got %q, want x", task.Description)
	}
}

func TestMakeGroup(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a")

	out := h.mustRun("--make-group", "errands")
	if !strings.Contains(out, `Group "errands" created.`) {
		t.Errorf("make-group output: %q", out)
	}
	tasks := h.tasks()
	if len(tasks) != 2 {
		t.Fatalf("tasks: got %d, want 2", len(tasks))
	}
	sentinel := tasks[1]
	if sentinel.Description != todo.PlaceholderDescription || sentinel.Group != "errands" ||
		sentinel.Priority != todo.PriorityLow || sentinel.AddedTime != 0 || sentinel.Done {
		t.Errorf("sentinel: %+v", sentinel)
	}

	before := h.raw()
	out = h.mustRun("--make-group", "errands")
	if !strings.Contains(out, "already exists") {
		t.Errorf("second make-group output: %q", out)
	}
	if !bytes.Equal(before, h.raw()) {
		t.Errorf("store changed on existing group")
	}

	out = h.mustRun("view", "--group=errands")
	if !strings.Contains(out, "1. [errands] Empty group placeholder [✗] (Priority: 3)") {
		t.Errorf("sentinel not visible in view:\n%s", out)
	}
}

func TestIDsAssigned(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a")
	h.mustRun("add", "b")
	h.mustRun("delete", "1")
	h.mustRun("add", "c")

	tasks := h.tasks()
	if tasks[0].ID != 2 || tasks[1].ID != 3 {
		t.Errorf("ids: got %d,%d want 2,3", tasks[0].ID, tasks[1].ID)
	}
}

func TestCorruptStoreIsBackedUp(t *testing.T) {
	h := newHarness(t)
	garbage := []byte("{not json")
	if err := os.WriteFile(h.storePath(), garbage, 0644); err != nil {
		t.Fatal(err)
	}

	out := h.mustRun("view")
	if !strings.Contains(out, "No tasks available") {
		t.Errorf("corrupt store should read as empty:\n%s", out)
	}
	if !strings.Contains(h.stderr.String(), "unreadable") {
		t.Errorf("expected a warning on stderr, got %q", h.stderr.String())
	}

	h.mustRun("add", "fresh")
	backup := brainpath.CorruptBackupPath(h.storePath(), h.now)
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if !bytes.Equal(data, garbage) {
		t.Errorf("backup content: got %q, want %q", data, garbage)
	}
	if tasks := h.tasks(); len(tasks) != 1 || tasks[0].Description != "fresh" {
		t.Errorf("store after overwrite: %+v", tasks)
	}
}

func TestHomeNotSet(t *testing.T) {
	h := newHarness(t)
	t.Setenv("HOME", "")

	err := h.run("view")
	if !errors.Is(err, brainpath.ErrHomeNotSet) {
		t.Errorf("got %v, want ErrHomeNotSet", err)
	}
}

func TestWriteFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	// The store directory does not exist, so the temp file cannot be created.
	t.Setenv("HOME", filepath.Join(h.home, "missing"))

	err := h.run("add", "x")
	if err == nil {
		t.Fatal("expected an error when the store cannot be written")
	}
	if !strings.Contains(err.Error(), "saving tasks") {
		t.Errorf("error: %v", err)
	}
}

func TestReadFailureBlocksMutation(t *testing.T) {
	h := newHarness(t)
	// A directory where the store file should be cannot be read as a file.
	if err := os.Mkdir(h.storePath(), 0755); err != nil {
		t.Fatal(err)
	}

	for _, words := range [][]string{
		{"add", "x"},
		{"edit", "1", "x"},
		{"delete", "1"},
		{"mark", "1"},
		{"--make-group", "work"},
	} {
		err := h.run(words...)
		if err == nil {
			t.Errorf("%v: expected an error for an unreadable store", words)
			continue
		}
		if !strings.Contains(err.Error(), "loading tasks") {
			t.Errorf("%v: error %v", words, err)
		}
	}
	if info, err := os.Stat(h.storePath()); err != nil || !info.IsDir() {
		t.Errorf("store path was replaced: %v", err)
	}

	out := h.mustRun("view")
	if !strings.Contains(out, "No tasks available") {
		t.Errorf("view output: %q", out)
	}
	if !strings.Contains(h.stderr.String(), "showing an empty list") {
		t.Errorf("view did not warn: %q", h.stderr.String())
	}
}

func TestUnreadableStoreIsNotOverwritten(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file modes")
	}
	h := newHarness(t)
	h.mustRun("add", "precious")
	before := h.raw()
	if err := os.Chmod(h.storePath(), 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(h.storePath(), 0644) })

	if err := h.run("add", "new"); err == nil {
		t.Fatal("expected add to fail on an unreadable store")
	}

	if err := os.Chmod(h.storePath(), 0644); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, h.raw()) {
		t.Errorf("store was overwritten:\n%s", h.raw())
	}
}

func TestClockBeforeEpoch(t *testing.T) {
	h := newHarness(t)
	h.now = time.Unix(-5, 0)

	if err := h.run("add", "x"); err != nil {
		t.Fatalf("clock error should not be fatal: %v", err)
	}
	if !strings.Contains(h.stderr.String(), "Error getting system time") {
		t.Errorf("stderr: %q", h.stderr.String())
	}
	if _, err := os.Stat(h.storePath()); !os.IsNotExist(err) {
		t.Errorf("store written despite clock error")
	}
}

func TestWelcomeHelpVersion(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun()
	if !strings.Contains(out, "Welcome to RustyBrain!") || !strings.Contains(out, "Commands list:") {
		t.Errorf("welcome output:\n%s", out)
	}

	out = h.mustRun("help")
	for _, want := range []string{"rustybrain add", "rustybrain view", "rustybrain edit",
		"rustybrain delete", "rustybrain mark", "rustybrain --make-group", "rustybrain help"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}

	out = h.mustRun("version")
	if !strings.Contains(out, Version) {
		t.Errorf("version output: %q", out)
	}
}

func TestProgramNameInMessages(t *testing.T) {
	h := newHarness(t)
	h.stdout.Reset()
	err := run(context.Background(), []string{"/usr/local/bin/rb", "nope"}, env{
		stdout: &h.stdout,
		stderr: &h.stderr,
		now:    func() time.Time { return h.now },
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "'rb help'") {
		t.Errorf("unknown command hint: %q", h.stdout.String())
	}
}

func TestTUIWithoutTerminal(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("tui")
	if !strings.Contains(out, "needs a terminal") {
		t.Errorf("tui output: %q", out)
	}
}

func TestMalformedConfigIsNotFatal(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(filepath.Join(h.home, brainpath.ConfigFile), []byte("color = "), 0644); err != nil {
		t.Fatal(err)
	}

	h.mustRun("add", "x")
	if !strings.Contains(h.stderr.String(), "ignoring config file") {
		t.Errorf("expected config warning, got %q", h.stderr.String())
	}
}
