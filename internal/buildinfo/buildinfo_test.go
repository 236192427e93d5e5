package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestParse(t *testing.T) {
	info, ok := parse([]debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
		{Key: "vcs.modified", Value: "true"},
	})
	if !ok {
		t.Fatal("expected ok")
	}
	if info.Revision != "0123456789abcdef0123456789abcdef01234567" {
		t.Errorf("revision = %q", info.Revision)
	}
	if info.Short != "01234567" {
		t.Errorf("short = %q", info.Short)
	}
	if !info.Dirty {
		t.Error("expected dirty")
	}
}

func TestParse_CleanTree(t *testing.T) {
	info, ok := parse([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "deadbeef"},
		{Key: "vcs.modified", Value: "false"},
	})
	if !ok {
		t.Fatal("expected ok")
	}
	if info.Short != "deadbeef" {
		t.Errorf("short = %q", info.Short)
	}
	if info.Dirty {
		t.Error("expected clean")
	}
}

func TestParse_NoRevision(t *testing.T) {
	if _, ok := parse([]debug.BuildSetting{{Key: "GOOS", Value: "linux"}}); ok {
		t.Error("expected not ok without vcs.revision")
	}
}
