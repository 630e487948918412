package violation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("create: %w", New(ErrBrokenChain, GateOrphan, "FT-001").WithRef("GL-404").Want("existing parent", "missing"))

	if !errors.Is(err, ErrBrokenChain) {
		t.Fatal("expected errors.Is to reach the sentinel")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatal("expected errors.As to find *Error")
	}
	if verr.Gate != GateOrphan {
		t.Errorf("expected gate %q, got %q", GateOrphan, verr.Gate)
	}
	if got := CodeName(err); got != "BrokenChain" {
		t.Errorf("expected code BrokenChain, got %q", got)
	}
}

func TestError_Message(t *testing.T) {
	err := New(ErrCyclicDependency, GateCycle, "TSK-001").WithPath([]string{"TSK-001", "TSK-002", "TSK-001"})

	msg := err.Error()
	if !strings.Contains(msg, "TSK-001") || !strings.Contains(msg, "TSK-001 -> TSK-002 -> TSK-001") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCodeName_Unknown(t *testing.T) {
	if got := CodeName(errors.New("boom")); got != "" {
		t.Errorf("expected empty code, got %q", got)
	}
}

func TestReport_SortAndSummary(t *testing.T) {
	r := &Report{}
	if r.Summary() != "All artifacts are valid. No traceability issues found." {
		t.Errorf("unexpected clean summary %q", r.Summary())
	}

	r.Add(New(ErrNonSequentialID, GateMonotonic, "UC-003"))
	r.Add(New(ErrBrokenChain, GateOrphan, "FT-002"))
	r.Add(New(ErrBrokenChain, GateOrphan, "UC-003"))
	r.Sort()

	var order []string
	for _, v := range r.Violations {
		order = append(order, v.ArtifactID+"/"+CodeName(v))
	}
	want := []string{"FT-002/BrokenChain", "UC-003/BrokenChain", "UC-003/NonSequentialId"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, order)
	}

	if got := len(r.ByCode(ErrBrokenChain)); got != 2 {
		t.Errorf("expected 2 BrokenChain, got %d", got)
	}
	if !strings.HasPrefix(r.Summary(), "Found 3 issue(s):") {
		t.Errorf("unexpected summary %q", r.Summary())
	}
}
