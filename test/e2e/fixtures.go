package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixtureModel is a process model fixture rendered to PNML on disk.
type fixtureModel struct {
	Name        string
	Places      []string
	Transitions []string
}

// fixtureModels is a small corpus of business process models. The first three
// share ordering/invoicing vocabulary; the last two are unrelated so queries
// have something to rank below the matches.
var fixtureModels = []fixtureModel{
	{
		Name:        "order-fulfillment.pnml",
		Places:      []string{"Order received", "Order checked", "Order shipped"},
		Transitions: []string{"Receive order", "Check order", "Ship order", "Confirm shipment"},
	},
	{
		Name:        "invoicing.pnml",
		Places:      []string{"Invoice created", "Payment received"},
		Transitions: []string{"Create invoice", "Send invoice", "Check payment", "Book payment"},
	},
	{
		Name:        "order-cancellation.pnml",
		Places:      []string{"Cancellation requested", "Order cancelled"},
		Transitions: []string{"Receive cancellation", "Check order", "Cancel order", "Refund payment"},
	},
	{
		Name:        "hiring.pnml",
		Places:      []string{"Application received", "Candidate hired"},
		Transitions: []string{"Screen application", "Interview candidate", "Make offer", "Sign contract"},
	},
	{
		Name:        "incident-handling.pnml",
		Places:      []string{"Incident reported", "Incident resolved"},
		Transitions: []string{"Classify incident", "Escalate incident", "Resolve incident", "Notify reporter"},
	},
}

// renderPNML renders a fixture as a minimal PNML document.
func renderPNML(m fixtureModel) string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<pnml><net id=\"net1\" type=\"http://www.pnml.org/version-2009/grammar/ptnet\">\n")
	for i, label := range m.Places {
		fmt.Fprintf(&sb, "<place id=\"p%d\"><name><text>%s</text></name></place>\n", i, label)
	}
	for i, label := range m.Transitions {
		fmt.Fprintf(&sb, "<transition id=\"t%d\"><name><text>%s</text></name></transition>\n", i, label)
	}
	// Chain places and transitions so the net has arcs like a real model.
	for i := 0; i < len(m.Places) && i < len(m.Transitions); i++ {
		fmt.Fprintf(&sb, "<arc id=\"a%d\" source=\"p%d\" target=\"t%d\"/>\n", i, i, i)
	}
	sb.WriteString("</net></pnml>\n")
	return sb.String()
}

// writeFixtures writes the fixture corpus into dir and returns the directory.
func writeFixtures(t *testing.T, dir string) string {
	t.Helper()
	modelDir := filepath.Join(dir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, m := range fixtureModels {
		if err := os.WriteFile(filepath.Join(modelDir, m.Name), []byte(renderPNML(m)), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return modelDir
}
