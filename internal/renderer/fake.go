package renderer

import (
	"context"
	"sync"
)

// ScriptedPage is a Page fake fed with a fixed sequence of renders: index 0
// is the content after Navigate, each successful ClickNext advances to the
// next entry. It lets the navigator and checker run against scripted
// calendars without a browser.
type ScriptedPage struct {
	mu sync.Mutex

	// Renders holds the page content for each pagination state
	Renders []string

	// NextAvailable caps how many times ClickNext succeeds; -1 means the
	// control stays actionable forever
	NextAvailable int

	// NavigateErr, when set, is returned by Navigate
	NavigateErr error

	pos    int
	navs   []string
	clicks int
	closed bool
}

var _ Page = (*ScriptedPage)(nil)

// NewScriptedPage creates a fake page from a render sequence
func NewScriptedPage(renders ...string) *ScriptedPage {
	return &ScriptedPage{Renders: renders, NextAvailable: -1}
}

func (p *ScriptedPage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navs = append(p.navs, url)
	p.pos = 0
	return p.NavigateErr
}

func (p *ScriptedPage) Content(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Renders) == 0 {
		return "", nil
	}
	if p.pos >= len(p.Renders) {
		return p.Renders[len(p.Renders)-1], nil
	}
	return p.Renders[p.pos], nil
}

func (p *ScriptedPage) ClickNext(ctx context.Context, label string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NextAvailable >= 0 && p.clicks >= p.NextAvailable {
		return false, nil
	}
	p.clicks++
	if p.pos < len(p.Renders)-1 {
		p.pos++
	}
	return true, nil
}

func (p *ScriptedPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Clicks returns how many times ClickNext succeeded
func (p *ScriptedPage) Clicks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicks
}

// Navigations returns the URLs passed to Navigate
func (p *ScriptedPage) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navs...)
}

// ScriptedSession is a Session fake handing out scripted pages by URL
type ScriptedSession struct {
	mu sync.Mutex

	// PageFor builds the page served for the next NewPage call
	PageFor func() Page

	opened int
	closed bool
}

var _ Session = (*ScriptedSession)(nil)

func (s *ScriptedSession) NewPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return s.PageFor(), nil
}

func (s *ScriptedSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Opened returns how many pages the session handed out
func (s *ScriptedSession) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}
