package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePNML = `<?xml version="1.0" encoding="UTF-8"?>
<pnml>
  <net id="n1" type="http://www.pnml.org/version-2009/grammar/ptnet">
    <page id="p0">
      <place id="p1"><name><text>Order received</text></name></place>
      <place id="p2"><name><text>Invoice sent</text></name></place>
      <transition id="t1"><name><text>Check order</text></name></transition>
      <transition id="t2"><name><text>Send invoice</text></name></transition>
      <arc id="a1" source="p1" target="t1"><inscription><text>order</text></inscription></arc>
    </page>
  </net>
</pnml>`

func TestExtractBytes_PNML(t *testing.T) {
	e := NewExtractor()
	bag, err := e.ExtractBytes([]byte(samplePNML), ".pnml")
	if err != nil {
		t.Fatal(err)
	}
	// "order" appears in a place label, a transition label, and an arc inscription.
	if got := bag.Count("order"); got != 3 {
		t.Errorf("Count(order)=%d, want 3", got)
	}
	if got := bag.Count("invoice"); got != 2 {
		t.Errorf("Count(invoice)=%d, want 2", got)
	}
	if got := bag.Count("received"); got != 1 {
		t.Errorf("Count(received)=%d, want 1", got)
	}
	if got := bag.Count("check"); got != 1 {
		t.Errorf("Count(check)=%d, want 1", got)
	}
}

func TestExtractBytes_TopLevelElements(t *testing.T) {
	// Nets without pages place elements directly under <net>.
	pnml := `<pnml><net id="n1">
		<place id="p1"><name><text>Start</text></name></place>
		<transition id="t1"><name><text>Approve request</text></name></transition>
	</net></pnml>`
	e := NewExtractor()
	bag, err := e.ExtractBytes([]byte(pnml), ".pnml")
	if err != nil {
		t.Fatal(err)
	}
	if bag.Count("approve") != 1 || bag.Count("request") != 1 || bag.Count("start") != 1 {
		t.Errorf("unexpected bag contents: %v", bag)
	}
}

func TestExtractBytes_Errors(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name    string
		content string
		ext     string
		wantSub string
	}{
		{"malformed xml", "<pnml><net>", ".pnml", "parse pnml"},
		{"no net", "<pnml></pnml>", ".pnml", "no net element"},
		{"unlabeled model", `<pnml><net id="n"><place id="p1"/></net></pnml>`, ".pnml", "no labeled elements"},
		{"unsupported format", "whatever", ".bpel", "unsupported model format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractBytes([]byte(tt.content), tt.ext)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err=%q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestExtract_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.pnml")
	if err := os.WriteFile(path, []byte(samplePNML), 0644); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor()
	bag, err := e.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if bag.Total() == 0 {
		t.Error("expected non-empty bag")
	}

	if _, err := e.Extract(filepath.Join(dir, "missing.pnml")); err == nil {
		t.Error("expected error for missing file")
	}
}
