package scrape

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/browser"
)

// Strategy is one way of binding a page control to the variant it affects.
type Strategy string

const (
	// StrategyLinked matches controls whose id, aria-controls, data-component-id
	// or name attribute references the variant's component anchor.
	StrategyLinked Strategy = "linked"
	// StrategyPositional assumes the k-th control belongs to the k-th variant.
	StrategyPositional Strategy = "positional"
	// StrategyLabelled picks the first select whose options name the formats.
	StrategyLabelled Strategy = "labelled"
)

// DefaultStrategies is the binding order used when none is configured.
var DefaultStrategies = []Strategy{StrategyLinked, StrategyPositional, StrategyLabelled}

const (
	codeTabSelector   = `[role="tab"]`
	tabPanelSelector  = `[role="tabpanel"]`
	codePanelSelector = `[role="tabpanel"][aria-label="Code"]`
	darkThemeSelector = `input[type="radio"][value="dark"], [aria-label*="Dark"]`
)

var linkAttributes = []string{"id", "aria-controls", "data-component-id", "name"}

var codeMarkers = []string{"import", "export", "<template>", "<section", "<div"}

// controls drives the tab and select widgets of one variant on a loaded page.
type controls struct {
	page       browser.Page
	variant    block.Variant
	strategies []Strategy
	logger     *logrus.Entry
}

func (c *controls) uses(s Strategy) bool {
	for _, have := range c.strategies {
		if have == s {
			return true
		}
	}
	return false
}

// linked reports whether el references the variant's anchor id.
func (c *controls) linked(el browser.Element) bool {
	id := c.variant.ComponentID
	if id == "" {
		return false
	}
	hash := strings.TrimPrefix(id, "component-")
	for _, name := range linkAttributes {
		v, ok, err := el.Attribute(name)
		if err != nil || !ok || v == "" {
			continue
		}
		if strings.Contains(v, id) || (len(hash) >= 8 && strings.Contains(v, hash)) {
			return true
		}
	}
	return false
}

// clickCodeTab clicks this variant's "Code" tab and returns it.
// Tabs with other labels are not counted.
func (c *controls) clickCodeTab() (browser.Element, bool) {
	tabs, err := c.page.Elements(codeTabSelector)
	if err != nil {
		return nil, false
	}
	codeTabs := make([]browser.Element, 0, len(tabs))
	for _, t := range tabs {
		text, err := t.Text()
		if err == nil && strings.TrimSpace(text) == "Code" {
			codeTabs = append(codeTabs, t)
		}
	}

	for _, cand := range c.candidates(codeTabs, false) {
		if err := cand.Click(); err != nil {
			c.logger.WithError(err).Debug("code tab click failed; trying next candidate")
			continue
		}
		return cand, true
	}
	return nil, false
}

// selectFormat sets this variant's format dropdown.
func (c *controls) selectFormat(f block.Format) bool {
	selects, err := c.page.Elements("select")
	if err != nil || len(selects) == 0 {
		return false
	}
	for _, cand := range c.candidates(selects, true) {
		if err := cand.SelectOption(f.Label()); err != nil {
			c.logger.WithError(err).Debug("format select failed; trying next candidate")
			continue
		}
		return true
	}
	return false
}

// candidates orders elements by the configured strategies without repeats.
// For format selects the positional strategy falls back to the first select
// when there are fewer selects than variants, and the labelled strategy applies.
func (c *controls) candidates(els []browser.Element, formatSelect bool) []browser.Element {
	var out []browser.Element
	used := make(map[int]bool)
	add := func(i int) {
		if i >= 0 && i < len(els) && !used[i] {
			used[i] = true
			out = append(out, els[i])
		}
	}

	for _, s := range c.strategies {
		switch s {
		case StrategyLinked:
			for i, el := range els {
				if c.linked(el) {
					add(i)
				}
			}
		case StrategyPositional:
			if c.variant.Index < len(els) {
				add(c.variant.Index)
			} else if formatSelect {
				add(0)
			}
		case StrategyLabelled:
			if !formatSelect {
				continue
			}
			for i, el := range els {
				if optionsContain(el, block.FormatReact.Label(), block.FormatVue.Label(), block.FormatHTML.Label()) {
					add(i)
					break
				}
			}
		}
	}
	return out
}

// selectVersion sets the first dropdown that offers a known version.
func (c *controls) selectVersion(v block.Version) bool {
	selects, err := c.page.Elements("select")
	if err != nil {
		return false
	}
	for _, sel := range selects {
		if !optionsContain(sel, string(block.VersionV4), string(block.VersionV3)) {
			continue
		}
		if err := sel.SelectOption(string(v)); err != nil {
			c.logger.WithError(err).Debug("version select failed; trying next candidate")
			continue
		}
		return true
	}
	return false
}

// selectDark toggles the dark theme control.
func (c *controls) selectDark() bool {
	els, err := c.page.Elements(darkThemeSelector)
	if err != nil {
		return false
	}
	for _, el := range els {
		if err := el.Click(); err == nil {
			return true
		}
	}
	return false
}

// extractCode reads the variant's code text. It tries the panel named by the
// clicked tab's aria-controls, then the k-th Code panel, then the first
// visible code element that looks like source.
func (c *controls) extractCode(tab browser.Element) string {
	if tab != nil && c.uses(StrategyLinked) {
		if id, ok, err := tab.Attribute("aria-controls"); err == nil && ok && id != "" {
			if panels, err := c.page.Elements(`[id="` + strings.ReplaceAll(id, `"`, `\"`) + `"]`); err == nil && len(panels) > 0 {
				if text := firstCodeText(panels[0]); text != "" {
					return text
				}
			}
		}
	}

	if c.uses(StrategyPositional) {
		if panels, err := c.page.Elements(codePanelSelector); err == nil && c.variant.Index < len(panels) {
			if text := firstCodeText(panels[c.variant.Index]); text != "" {
				return text
			}
		}
	}

	codes, err := c.page.Elements("code")
	if err != nil {
		return ""
	}
	for _, el := range codes {
		text, err := el.Text()
		if err != nil || !looksLikeSource(text) {
			continue
		}
		if visible, err := el.Visible(); err == nil && visible {
			return text
		}
	}
	return ""
}

func firstCodeText(panel browser.Element) string {
	codes, err := panel.Elements("code")
	if err != nil || len(codes) == 0 {
		return ""
	}
	text, err := codes[0].Text()
	if err != nil {
		return ""
	}
	return text
}

func looksLikeSource(text string) bool {
	for _, m := range codeMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func optionsContain(sel browser.Element, labels ...string) bool {
	opts, err := sel.Options()
	if err != nil {
		return false
	}
	for _, o := range opts {
		o = strings.TrimSpace(o)
		for _, l := range labels {
			if o == l {
				return true
			}
		}
	}
	return false
}
