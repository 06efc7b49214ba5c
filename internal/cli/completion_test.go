package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell       string
		errContains string
		contains    string
	}{
		{shell: "bash", contains: "bash completion"},
		{shell: "zsh", contains: "#compdef esadmin"},
		{shell: "fish", contains: "fish completion"},
		{shell: "powershell", contains: "Register-ArgumentCompleter"},
		{shell: "tcsh", errContains: "invalid argument"},
		{shell: "", errContains: "accepts 1 arg"},
	}

	for _, tt := range tests {
		name := tt.shell
		if name == "" {
			name = "no arguments"
		}
		t.Run(name, func(t *testing.T) {
			args := []string{"completion"}
			if tt.shell != "" {
				args = append(args, tt.shell)
			}
			out, errOut, err := execRoot(args...)

			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v\nStderr: %s", err, errOut)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("expected completion output to contain %q", tt.contains)
			}
		})
	}
}

func TestDynamicCompletion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"logs-dev", "logs-prod", "metrics"} {
		if _, err := runCLI(t, dir, "cluster", "add", name, "http://localhost:9200"); err != nil {
			t.Fatalf("cluster add %s: %v", name, err)
		}
	}
	cfg := "--config=" + filepath.Join(dir, "config.yaml")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "use argument",
			args:    []string{"__complete", cfg, "cluster", "use", "logs"},
			want:    []string{"logs-dev", "logs-prod"},
			notWant: []string{"metrics"},
		},
		{
			name: "cluster flag offers all",
			args: []string{"__complete", cfg, "get", "indexes", "--cluster", ""},
			want: []string{"logs-dev", "metrics", "all"},
		},
		{
			name:    "cluster flag after a comma",
			args:    []string{"__complete", cfg, "get", "indexes", "--cluster", "logs-dev,"},
			want:    []string{"logs-dev,logs-prod", "logs-dev,metrics"},
			notWant: []string{"logs-dev,logs-dev", "logs-dev,all"},
		},
		{
			name: "output flag",
			args: []string{"__complete", "get", "health", "-o", ""},
			want: []string{"table", "json", "yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execRoot(tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lines := strings.Split(out, "\n")
			has := func(s string) bool {
				for _, l := range lines {
					if strings.SplitN(l, "\t", 2)[0] == s {
						return true
					}
				}
				return false
			}
			for _, w := range tt.want {
				if !has(w) {
					t.Errorf("expected completion %q in:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if has(w) {
					t.Errorf("unexpected completion %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestCompletionCommand_Help(t *testing.T) {
	cmd := newCompletionCmd()
	cmd.SetArgs([]string{"--help"})

	output := &bytes.Buffer{}
	cmd.SetOut(output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	help := output.String()
	for _, want := range []string{"Generate a shell completion script", "Bash:", "Zsh:", "Fish:", "PowerShell:", "config file"} {
		if !strings.Contains(help, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

// execRoot runs a fresh root command and returns stdout and stderr
func execRoot(args ...string) (string, string, error) {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}
	rootCmd.SetOut(output)
	rootCmd.SetErr(errOutput)

	err := rootCmd.Execute()
	return output.String(), errOutput.String(), err
}
