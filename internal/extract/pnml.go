package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/CarolineDieterich/LS3/internal/terms"
)

// PNML label containers. Places, transitions, and arc inscriptions carry the
// human-readable text that makes up a model's structural terms. Pages may nest.
type pnmlFile struct {
	XMLName xml.Name  `xml:"pnml"`
	Nets    []pnmlNet `xml:"net"`
}

type pnmlNet struct {
	Pages       []pnmlPage `xml:"page"`
	Places      []pnmlNode `xml:"place"`
	Transitions []pnmlNode `xml:"transition"`
	Arcs        []pnmlArc  `xml:"arc"`
}

type pnmlPage struct {
	Pages       []pnmlPage `xml:"page"`
	Places      []pnmlNode `xml:"place"`
	Transitions []pnmlNode `xml:"transition"`
	Arcs        []pnmlArc  `xml:"arc"`
}

type pnmlNode struct {
	ID   string     `xml:"id,attr"`
	Name *pnmlLabel `xml:"name"`
}

type pnmlArc struct {
	Inscription *pnmlLabel `xml:"inscription"`
}

type pnmlLabel struct {
	Text string `xml:"text"`
}

// extractPNML parses a PNML document and tokenizes every place, transition,
// and arc-inscription label into a term bag. A document without a pnml root
// or without any labeled element is an error.
func extractPNML(content []byte) (terms.Bag, error) {
	var file pnmlFile
	decoder := xml.NewDecoder(bytes.NewReader(content))
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse pnml: %w", err)
	}
	if len(file.Nets) == 0 {
		return nil, fmt.Errorf("parse pnml: no net element")
	}

	bag := terms.NewBag()
	labeled := 0
	for _, net := range file.Nets {
		labeled += collectNodes(net.Places, bag)
		labeled += collectNodes(net.Transitions, bag)
		labeled += collectArcs(net.Arcs, bag)
		for _, page := range net.Pages {
			labeled += collectPage(page, bag)
		}
	}
	if labeled == 0 {
		return nil, fmt.Errorf("parse pnml: no labeled elements")
	}
	return bag, nil
}

func collectPage(page pnmlPage, bag terms.Bag) int {
	labeled := collectNodes(page.Places, bag)
	labeled += collectNodes(page.Transitions, bag)
	labeled += collectArcs(page.Arcs, bag)
	for _, sub := range page.Pages {
		labeled += collectPage(sub, bag)
	}
	return labeled
}

func collectNodes(nodes []pnmlNode, bag terms.Bag) int {
	labeled := 0
	for _, node := range nodes {
		if node.Name == nil || node.Name.Text == "" {
			continue
		}
		terms.TokenizeIntoBag(node.Name.Text, bag)
		labeled++
	}
	return labeled
}

func collectArcs(arcs []pnmlArc, bag terms.Bag) int {
	labeled := 0
	for _, arc := range arcs {
		if arc.Inscription == nil || arc.Inscription.Text == "" {
			continue
		}
		terms.TokenizeIntoBag(arc.Inscription.Text, bag)
		labeled++
	}
	return labeled
}
