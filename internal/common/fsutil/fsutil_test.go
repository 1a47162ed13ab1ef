package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	exp, err := ExpandHome("~/dist")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if exp != filepath.Join(home, "dist") && runtime.GOOS != "windows" {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestPathExists(t *testing.T) {
	d := t.TempDir()
	if !PathExists(d) {
		t.Fatalf("expected temp dir to exist")
	}
	if PathExists(filepath.Join(d, "missing")) {
		t.Fatalf("expected missing path to not exist")
	}
}

func TestEnsureDirAndParent(t *testing.T) {
	d := t.TempDir()
	nested := filepath.Join(d, "a", "b", "c")
	if err := EnsureDir(nested); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	if !PathExists(nested) {
		t.Fatalf("dir not created")
	}
	file := filepath.Join(d, "x", "y", "predictions.csv")
	if err := EnsureParent(file); err != nil {
		t.Fatalf("ensure parent: %v", err)
	}
	if !PathExists(filepath.Dir(file)) {
		t.Fatalf("parent not created")
	}
	if err := EnsureDir(""); err == nil {
		t.Fatalf("expected error on empty dir")
	}
}
