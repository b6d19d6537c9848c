package render

import (
	"strings"

	"golang.org/x/net/html"
)

// Control is a learned toggle found in a rendered document.
type Control struct {
	Word    string
	Checked bool
}

// ParseControls returns every learned toggle in doc in document order.
//
// Only lines starting with the learned marker are tokenized, each on its
// own, so markup inside a definition can neither hide nor invent toggles.
// Checkbox inputs without a data-word attribute are ignored.
func ParseControls(doc string) []Control {
	var controls []Control
	for _, line := range strings.Split(doc, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), learnedMarker)
		if !ok {
			continue
		}
		if c, ok := lineControl(rest); ok {
			controls = append(controls, c)
		}
	}
	return controls
}

// lineControl returns the first word toggle in a single learned line.
func lineControl(line string) (Control, bool) {
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return Control{}, false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			if c, ok := controlFromAttrs(tok.Attr); ok {
				return c, true
			}
		}
	}
}

func controlFromAttrs(attrs []html.Attribute) (Control, bool) {
	var c Control
	var isCheckbox, hasWord bool
	for _, a := range attrs {
		switch a.Key {
		case "type":
			isCheckbox = strings.EqualFold(a.Val, "checkbox")
		case "data-word":
			c.Word = a.Val
			hasWord = a.Val != ""
		case "checked":
			c.Checked = true
		}
	}
	return c, isCheckbox && hasWord
}
