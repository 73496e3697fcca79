// Package main provides tests for the starsql CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starbase-labs/starsql/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "starsql") {
		t.Errorf("version output should contain 'starsql', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"run", "query", "repl", "version"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain %q, got: %s", expected, output)
		}
	}
}

func TestQueryCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"query", "-d", ":memory:", "-f", "csv", "SELECT 1 AS n, 'x' AS s"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("query command error = %v", err)
	}

	got := buf.String()
	want := "n,s\n1,x\n"
	if got != want {
		t.Errorf("query output = %q, want %q", got, want)
	}
}

func TestQueryCommandWithParams(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "t.db")

	setup := cli.NewRootCmd()
	setup.SetOut(new(bytes.Buffer))
	setup.SetErr(new(bytes.Buffer))
	setup.SetArgs([]string{"query", "-d", dbPath,
		"CREATE TABLE users (name TEXT); INSERT INTO users VALUES ('alice'); INSERT INTO users VALUES ('bob')"})
	if err := setup.Execute(); err != nil {
		t.Fatalf("setup query error = %v", err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"query", "-d", dbPath, "-f", "csv",
		"SELECT name FROM users WHERE name = ?", "--param", "bob"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("query command error = %v", err)
	}

	got := buf.String()
	want := "name\nbob\n"
	if got != want {
		t.Errorf("query output = %q, want %q", got, want)
	}
}

func TestQueryCommandSQLError(t *testing.T) {
	cmd := cli.NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"query", "-d", ":memory:", "SELEKT nonsense"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid SQL")
	}
	if !strings.Contains(err.Error(), "SQL compiler error") {
		t.Errorf("error should name the compiler, got: %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "etl.star")
	src := `db = sql.open(":memory:")
db("CREATE TABLE t (v TEXT); INSERT INTO t VALUES (?)", "hello")
rows = db("SELECT v FROM t")
print(rows[0]["v"])
sql.close(db)
`
	if err := os.WriteFile(script, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", script})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("script output should contain 'hello', got: %s", buf.String())
	}
}

func TestRunCommandScriptError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.star")
	if err := os.WriteFile(script, []byte("sql.open(42)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := cli.NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"run", script})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for failing script")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("error should mention the bad path argument, got: %v", err)
	}
}

func TestRunCommandMissingScript(t *testing.T) {
	cmd := cli.NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"run", filepath.Join(t.TempDir(), "nope.star")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing script file")
	}
}
