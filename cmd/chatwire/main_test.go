package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
)

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func setVersionMetadataForTest(t *testing.T, v, commit, built string) {
	t.Helper()

	origVersion := version
	origCommit := gitCommit
	origBuildDate := buildDate

	version = v
	gitCommit = commit
	buildDate = built

	t.Cleanup(func() {
		version = origVersion
		gitCommit = origCommit
		buildDate = origBuildDate
	})
}

func TestRunCLIRootVersionFlag(t *testing.T) {
	setVersionMetadataForTest(t, "1.2.3", "abc1234567890", "2026-02-12T11:30:00Z")

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"--version"})
	})
	if code != 0 {
		t.Fatalf("runCLI() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "chatwire 1.2.3") {
		t.Fatalf("stdout missing semantic version: %s", stdout)
	}
	if !strings.Contains(stdout, "commit: abc123456789") {
		t.Fatalf("stdout missing short commit: %s", stdout)
	}
	if !strings.Contains(stdout, "built_at: 2026-02-12T11:30:00Z") {
		t.Fatalf("stdout missing build time: %s", stdout)
	}
}

func TestRunVersionJSONOutputIncludesMetadata(t *testing.T) {
	setVersionMetadataForTest(t, "2.0.0-rc.1", "aabbccddeeff001122334455", "2026-02-12T11:30:00-05:00")

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runVersion([]string{"--json"})
	})
	if code != 0 {
		t.Fatalf("runVersion() code = %d, stderr: %s", code, stderr)
	}

	var out struct {
		Version   string `json:"version"`
		Commit    string `json:"commit"`
		BuildTime string `json:"build_time"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to parse version JSON: %v\noutput=%s", err, stdout)
	}

	if out.Version != "2.0.0-rc.1" {
		t.Fatalf("version = %q, want %q", out.Version, "2.0.0-rc.1")
	}
	if out.Commit != "aabbccddeeff" {
		t.Fatalf("commit = %q, want %q", out.Commit, "aabbccddeeff")
	}
	if out.BuildTime != "2026-02-12T16:30:00Z" {
		t.Fatalf("build_time = %q, want %q", out.BuildTime, "2026-02-12T16:30:00Z")
	}
}

func TestRunCLIUnknownCommand(t *testing.T) {
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"bogus"})
	})
	if code != 1 {
		t.Fatalf("runCLI() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Unknown command: bogus") {
		t.Fatalf("stderr missing unknown command notice: %s", stderr)
	}
}

func TestRunSendNounHelp(t *testing.T) {
	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runSendNoun([]string{"help"})
	})
	if code != 0 {
		t.Fatalf("runSendNoun(help) code = %d", code)
	}
	if !strings.Contains(stdout, "chatwire send <kind>") {
		t.Fatalf("help output missing usage: %s", stdout)
	}
}

func TestParseButtons(t *testing.T) {
	buttons, err := parseButtons("confirm=Confirm, cancel=Cancel")
	if err != nil {
		t.Fatalf("parseButtons() error: %v", err)
	}
	if len(buttons) != 2 {
		t.Fatalf("parseButtons() len = %d, want 2", len(buttons))
	}
	if buttons[0].ID != "confirm" || buttons[0].Title != "Confirm" {
		t.Fatalf("parseButtons()[0] = %+v", buttons[0])
	}
	if buttons[1].ID != "cancel" || buttons[1].Title != "Cancel" {
		t.Fatalf("parseButtons()[1] = %+v", buttons[1])
	}
}

func TestParseButtonsBareTitlesGetPositionalIDs(t *testing.T) {
	buttons, err := parseButtons("Yes,No")
	if err != nil {
		t.Fatalf("parseButtons() error: %v", err)
	}
	if buttons[0].ID != "choice_0" || buttons[1].ID != "choice_1" {
		t.Fatalf("positional ids wrong: %+v", buttons)
	}
}

func TestParseButtonsRejectsEmptyTitle(t *testing.T) {
	if _, err := parseButtons("id="); err == nil {
		t.Fatal("parseButtons(id=) expected error")
	}
}

func TestParseButtonsEmptyInput(t *testing.T) {
	buttons, err := parseButtons("")
	if err != nil {
		t.Fatalf("parseButtons(\"\") error: %v", err)
	}
	if len(buttons) != 0 {
		t.Fatalf("parseButtons(\"\") len = %d, want 0", len(buttons))
	}
}

func TestParseRows(t *testing.T) {
	rows, err := parseRows("small=Small:Up to 2kg, large=Large")
	if err != nil {
		t.Fatalf("parseRows() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("parseRows() len = %d, want 2", len(rows))
	}
	if rows[0].ID != "small" || rows[0].Title != "Small" || rows[0].Description != "Up to 2kg" {
		t.Fatalf("parseRows()[0] = %+v", rows[0])
	}
	if rows[1].ID != "large" || rows[1].Title != "Large" || rows[1].Description != "" {
		t.Fatalf("parseRows()[1] = %+v", rows[1])
	}
}

func TestParseRowsRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "no-equals", "=Title", "id="} {
		if _, err := parseRows(input); err == nil {
			t.Fatalf("parseRows(%q) expected error", input)
		}
	}
}
