package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Sections of the page in reading order.
var Sections = []string{"features", "voice", "jobs", "accessibility", "integration"}

// PageHooks connect a Page to the job and profile services.
type PageHooks struct {
	MatchJobs   func(ctx context.Context) error
	FilterJobs  func(filter string) error
	SaveProfile func(ctx context.Context) error
}

// Page is a text Surface that tracks position and panel state and reports
// changes to a writer.
type Page struct {
	out   io.Writer
	hooks PageHooks

	mu          sync.Mutex
	position    int // index into Sections, -1 is the top of the page
	panelOpen   bool
	profileForm bool
	filter      string
}

var _ Surface = (*Page)(nil)

func NewPage(out io.Writer, hooks PageHooks) *Page {
	if out == nil {
		out = io.Discard
	}
	return &Page{out: out, hooks: hooks, position: -1, filter: "all"}
}

func (p *Page) Navigate(section string) error {
	idx := slices.Index(Sections, section)
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	p.mu.Lock()
	p.position = idx
	p.mu.Unlock()
	p.printf("-> section %s\n", section)
	return nil
}

func (p *Page) Scroll(direction ScrollDirection) {
	p.mu.Lock()
	switch direction {
	case ScrollTop:
		p.position = -1
	case ScrollBottom:
		p.position = len(Sections) - 1
	case ScrollDown:
		p.position = min(len(Sections)-1, p.position+1)
	case ScrollUp:
		p.position = max(-1, p.position-1)
	}
	current := p.currentLocked()
	p.mu.Unlock()
	p.printf("-> scrolled %s, now at %s\n", direction, current)
}

// CurrentSection returns the section in view, or "top of page".
func (p *Page) CurrentSection() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked()
}

func (p *Page) currentLocked() string {
	if p.position < 0 {
		return "top of page"
	}
	return Sections[p.position]
}

func (p *Page) SetAccessibilityPanel(open bool) {
	p.mu.Lock()
	p.panelOpen = open
	p.mu.Unlock()
	if open {
		p.printf("-> accessibility panel opened\n")
	} else {
		p.printf("-> accessibility panel closed\n")
	}
}

func (p *Page) PanelOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.panelOpen
}

func (p *Page) OpenProfileForm() {
	p.mu.Lock()
	p.profileForm = true
	p.mu.Unlock()
	p.printf("-> profile form opened\n")
}

func (p *Page) ProfileFormOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profileForm
}

func (p *Page) SaveProfile(ctx context.Context) error {
	if p.hooks.SaveProfile == nil {
		return errors.New("profile saving is not configured")
	}
	if err := p.hooks.SaveProfile(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.profileForm = false
	p.mu.Unlock()
	return nil
}

func (p *Page) MatchJobs(ctx context.Context) error {
	if p.hooks.MatchJobs == nil {
		return errors.New("job matching is not configured")
	}
	return p.hooks.MatchJobs(ctx)
}

func (p *Page) FilterJobs(filter string) error {
	if p.hooks.FilterJobs != nil {
		if err := p.hooks.FilterJobs(filter); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.filter = filter
	p.mu.Unlock()
	return nil
}

// Filter is the job category currently applied.
func (p *Page) Filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

func (p *Page) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
