package deps

import (
	"testing"

	"takeoutfix/internal/config"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "missing tool", Command: "definitely-not-a-real-binary-42"},
		{Name: "unconfigured", Command: "  "},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("nonexistent binary reported available")
	}
	if statuses[1].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", statuses[1].Detail)
	}
}

func TestCheckBinariesFindsShell(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "shell", Command: "sh"}})
	if !statuses[0].Available {
		t.Fatalf("expected sh to be available: %s", statuses[0].Detail)
	}
}

func TestMissingRequiredSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "optional tool", Optional: true, Available: false},
		{Name: "required tool", Available: false},
	}
	missing := MissingRequired(statuses)
	if missing == nil || missing.Name != "required tool" {
		t.Fatalf("unexpected missing dependency: %+v", missing)
	}
	if MissingRequired(statuses[:1]) != nil {
		t.Fatal("optional dependency should not be reported")
	}
}

func TestRequirementsRespectEmbedderToggle(t *testing.T) {
	cfg := config.Default()
	cfg.Embedder.Enabled = false
	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Optional {
		t.Fatal("detector must be required")
	}
	if !reqs[1].Optional {
		t.Fatal("embedder should be optional when embedding is disabled")
	}
}
