package main

import (
	"os"
	"os/exec"
	"testing"
)

func TestMainVersionExitZero(t *testing.T) {
	if os.Getenv("CODEX_WORKSPACE_HELPER") == "1" {
		os.Args = []string{"codex-workspace", "--version"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMainVersionExitZero")
	cmd.Env = append(os.Environ(), "CODEX_WORKSPACE_HELPER=1")
	if err := cmd.Run(); err != nil {
		t.Fatalf("expected exit 0, got error: %v", err)
	}
}

func TestMainInvalidArgsExitOne(t *testing.T) {
	if os.Getenv("CODEX_WORKSPACE_HELPER_INVALID") == "1" {
		os.Args = []string{"codex-workspace", "--not-a-flag"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMainInvalidArgsExitOne")
	cmd.Env = append(os.Environ(), "CODEX_WORKSPACE_HELPER_INVALID=1")
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected non-zero exit, got nil error")
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
}

func TestMainListExitZero(t *testing.T) {
	if os.Getenv("CODEX_WORKSPACE_HELPER_LIST") == "1" {
		home := os.Getenv("CODEX_WORKSPACE_HELPER_HOME")
		os.Args = []string{"codex-workspace", "--codex-home", home, "--config", home + "/config.json", "--no-log", "list"}
		main()
		return
	}

	home := t.TempDir()
	cmd := exec.Command(os.Args[0], "-test.run=TestMainListExitZero")
	cmd.Env = append(os.Environ(), "CODEX_WORKSPACE_HELPER_LIST=1", "CODEX_WORKSPACE_HELPER_HOME="+home)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("expected exit 0, got error: %v\n%s", err, out)
	}
}
