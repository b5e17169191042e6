/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/agentultra/deliciousbackup/internal/core/checkpoint"
)

// field returns the value printed after label on its own line.
func field(output, label string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}

func TestStatusCmd_MissingDatabase(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := execute(t, append([]string{"status"}, env.args()...)...)
	if !errors.Is(err, errDatabaseNotFound) {
		t.Fatalf("expected errDatabaseNotFound, got %v", err)
	}
	if _, err := os.Stat(env.database); !os.IsNotExist(err) {
		t.Errorf("expected status not to create %s, stat error = %v", env.database, err)
	}
}

func TestStatusCmd_EmptyDatabase(t *testing.T) {
	env := newTestEnv(t)
	database, err := initDB(env.database)
	if err != nil {
		t.Fatalf("initDB() error = %v", err)
	}
	database.Close()

	stdout, stderr, err := execute(t, append([]string{"status"}, env.args()...)...)
	if err != nil {
		t.Fatalf("status failed: %v (stderr: %s)", err, stderr)
	}

	if got := field(stdout, "Checkpoint:"); !strings.HasPrefix(got, "never") {
		t.Errorf("Checkpoint: got %q, want never", got)
	}
	for _, label := range []string{"Bookmarks:", "Tags:", "Links:"} {
		if got := field(stdout, label); got != "0" {
			t.Errorf("%s got %q, want 0", label, got)
		}
	}
	if strings.Contains(stdout, "Most recent:") {
		t.Error("expected no recent list for an empty database")
	}
}

func TestStatusCmd_MalformedCheckpoint(t *testing.T) {
	env := newTestEnv(t)
	if _, stderr, err := execute(t, env.args("--import-html", env.export, "-q")...); err != nil {
		t.Fatalf("backup failed: %v (stderr: %s)", err, stderr)
	}
	if err := os.WriteFile(env.checkpoint, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("failed to write checkpoint: %v", err)
	}

	_, _, err := execute(t, append([]string{"status"}, env.args()...)...)
	if !errors.Is(err, checkpoint.ErrMalformed) {
		t.Fatalf("expected checkpoint.ErrMalformed, got %v", err)
	}
	if !strings.Contains(err.Error(), env.checkpoint) {
		t.Errorf("expected the error to name %s, got %q", env.checkpoint, err)
	}
}

func TestStatusCmd_AfterBackup(t *testing.T) {
	env := newTestEnv(t)
	if _, stderr, err := execute(t, env.args("--import-html", env.export, "-q")...); err != nil {
		t.Fatalf("backup failed: %v (stderr: %s)", err, stderr)
	}

	stdout, stderr, err := execute(t, append([]string{"status", "-n", "1"}, env.args()...)...)
	if err != nil {
		t.Fatalf("status failed: %v (stderr: %s)", err, stderr)
	}

	want := map[string]string{
		"Bookmarks:": "3",
		"Tags:":      "3",
		"Links:":     "4",
	}
	for label, value := range want {
		if got := field(stdout, label); got != value {
			t.Errorf("%s got %q, want %q", label, got, value)
		}
	}
	if got := field(stdout, "Checkpoint:"); strings.HasPrefix(got, "never") {
		t.Errorf("expected a checkpoint time, got %q", got)
	}

	recent := stdout[strings.Index(stdout, "Most recent:"):]
	if !strings.Contains(recent, "https://go.dev/") {
		t.Errorf("expected newest bookmark in recent list, got %q", recent)
	}
	if strings.Contains(recent, "https://sqlite.org/") {
		t.Errorf("expected -n 1 to list a single bookmark, got %q", recent)
	}
}
