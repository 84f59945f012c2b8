package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hpungsan/plusblocks/internal/browser"
)

type fakeElement struct {
	text     string
	textFn   func() string
	attrs    map[string]string
	options  []string
	visible  bool
	children map[string][]*fakeElement
	onClick  func()
	onSelect func(label string) error
	clicks   int
}

func (e *fakeElement) Text() (string, error) {
	if e.textFn != nil {
		return e.textFn(), nil
	}
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Click() error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) SelectOption(label string) error {
	found := false
	for _, o := range e.options {
		if o == label {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no option %q", label)
	}
	if e.onSelect != nil {
		return e.onSelect(label)
	}
	return nil
}

func (e *fakeElement) Options() ([]string, error) { return e.options, nil }

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }

func (e *fakeElement) Elements(selector string) ([]browser.Element, error) {
	return wrap(e.children[selector]), nil
}

func wrap(els []*fakeElement) []browser.Element {
	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out
}

type fakePage struct {
	html        string
	finalURL    string
	navigateErr error
	missing     map[string]bool
	elements    map[string][]*fakeElement

	url     string
	cookies []*proto.NetworkCookieParam
	closed  bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	if p.navigateErr != nil {
		return p.navigateErr
	}
	p.url = url
	if p.finalURL != "" {
		p.url = p.finalURL
	}
	return nil
}

func (p *fakePage) URL() (string, error) { return p.url, nil }

func (p *fakePage) HTML() (string, error) { return p.html, nil }

func (p *fakePage) WaitElement(_ context.Context, selector string, _ time.Duration) error {
	if p.missing[selector] {
		return errors.New("timeout waiting for " + selector)
	}
	return nil
}

func (p *fakePage) Elements(selector string) ([]browser.Element, error) {
	return wrap(p.elements[selector]), nil
}

func (p *fakePage) SetCookies(c []*proto.NetworkCookieParam) error {
	p.cookies = c
	return nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// fakeOpener hands out pages built by next, recording each one.
type fakeOpener struct {
	mu     sync.Mutex
	next   func(n int) *fakePage
	opened []*fakePage
}

func (o *fakeOpener) NewPage(context.Context) (browser.Page, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.next(len(o.opened))
	o.opened = append(o.opened, p)
	return p, nil
}

func (o *fakeOpener) allClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, p := range o.opened {
		if !p.closed {
			return false
		}
	}
	return true
}

type fakeCookies struct {
	jar *browser.CookieJar
}

func (c fakeCookies) Load() (*browser.CookieJar, bool) {
	if c.jar == nil {
		return nil, false
	}
	return c.jar, true
}

func loggedIn() fakeCookies {
	return fakeCookies{jar: &browser.CookieJar{Cookies: []browser.Cookie{{Name: "session", Value: "x", Path: "/", Expires: -1}}}}
}

// widgetState is the UI state of a simulated block page.
type widgetState struct {
	active  int
	format  string
	version string
	dark    bool
}

func (s *widgetState) code(variant int) string {
	return fmt.Sprintf("import { Dialog } from '@headlessui/react'\n// variant=%d format=%s version=%s dark=%v", variant, s.format, s.version, s.dark)
}

const twoVariantHTML = `<main>
<h1>Hero Sections</h1><p>Heroes.</p>
<h2><a href="#component-aaa11111">Simple centered</a></h2>
<h2><a href="#component-bbb22222">Split with image</a></h2>
</main>`

// simulatedBlockPage builds a page with two variants whose Code tabs name
// their panels through aria-controls, one format select per variant, and a
// shared version select.
func simulatedBlockPage(state *widgetState) *fakePage {
	formatSelect := func() *fakeElement {
		return &fakeElement{
			options:  []string{"React", "Vue", "HTML"},
			onSelect: func(l string) error { state.format = l; return nil },
		}
	}
	tab := func(i int) *fakeElement {
		return &fakeElement{
			text:    "Code",
			attrs:   map[string]string{"aria-controls": fmt.Sprintf("panel-%d", i)},
			onClick: func() { state.active = i },
		}
	}
	panel := func(i int) *fakeElement {
		return &fakeElement{children: map[string][]*fakeElement{
			"code": {{textFn: func() string { return state.code(i) }, visible: true}},
		}}
	}
	return &fakePage{
		html: twoVariantHTML,
		elements: map[string][]*fakeElement{
			codeTabSelector: {{text: "Preview"}, tab(0), {text: "Preview"}, tab(1)},
			"select": {formatSelect(), formatSelect(), {
				options:  []string{"v4.1", "v3.4"},
				onSelect: func(l string) error { state.version = l; return nil },
			}},
			`[id="panel-0"]`:  {panel(0)},
			`[id="panel-1"]`:  {panel(1)},
			darkThemeSelector: {{onClick: func() { state.dark = true }}},
		},
	}
}
