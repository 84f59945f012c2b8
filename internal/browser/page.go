package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page is the slice of a browser tab the extractors drive.
type Page interface {
	// Navigate loads url and waits for the load event and a settled network.
	Navigate(ctx context.Context, url string) error
	URL() (string, error)
	// HTML returns a snapshot of the current document.
	HTML() (string, error)
	// WaitElement waits up to timeout for selector to match.
	WaitElement(ctx context.Context, selector string, timeout time.Duration) error
	// Elements returns current matches without waiting.
	Elements(selector string) ([]Element, error)
	SetCookies(cookies []*proto.NetworkCookieParam) error
	Close() error
}

// Element is a DOM node handle.
type Element interface {
	Text() (string, error)
	// Attribute returns the value and whether the attribute is present.
	Attribute(name string) (string, bool, error)
	Click() error
	// SelectOption selects the option whose text matches label.
	SelectOption(label string) error
	// Options returns option texts of a select element.
	Options() ([]string, error)
	Visible() (bool, error)
	Elements(selector string) ([]Element, error)
}

type rodPage struct {
	page        *rod.Page
	navTimeout  time.Duration
	settleAfter time.Duration
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx).Timeout(p.navTimeout)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	// Long-polling pages never go fully idle; a stability timeout is not fatal.
	if err := page.WaitStable(p.settleAfter); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) WaitElement(ctx context.Context, selector string, timeout time.Duration) error {
	page := p.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()
	_, err := page.Element(selector)
	return err
}

func (p *rodPage) Elements(selector string) ([]Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

func (p *rodPage) SetCookies(cookies []*proto.NetworkCookieParam) error {
	return p.page.SetCookies(cookies)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false, err
	}
	return *v, true, nil
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) SelectOption(label string) error {
	return e.el.Select([]string{label}, true, rod.SelectorTypeText)
}

func (e *rodElement) Options() ([]string, error) {
	opts, err := e.el.Elements("option")
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(opts))
	for _, o := range opts {
		t, err := o.Text()
		if err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, nil
}

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) Elements(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}
