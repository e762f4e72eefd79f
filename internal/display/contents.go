package display

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/labwin/internal/content"
	"github.com/jmylchreest/labwin/internal/window"
)

// ContentFactory builds the widget tree of a window. It runs on the GTK main
// loop and must call port.Ready once it listens for the payload.
type ContentFactory func(port *content.Port, opts window.Options) gtk.Widgetter

// Contents maps content references to factories.
type Contents struct {
	mu        sync.RWMutex
	factories map[string]ContentFactory
}

// NewContents returns the built-in contents.
func NewContents() *Contents {
	c := &Contents{factories: make(map[string]ContentFactory)}
	c.Register(content.PayloadView, payloadView)
	c.Register(content.Placeholder, placeholder)
	return c
}

// Register adds or replaces the factory for name.
func (c *Contents) Register(name string, f ContentFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = f
}

// Lookup returns the factory for name. An empty name is payload-view.
func (c *Contents) Lookup(name string) (ContentFactory, error) {
	if name == "" {
		name = content.PayloadView
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContent, name)
	}
	return f, nil
}

// Names returns the registered content references, sorted.
func (c *Contents) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.factories))
}

// payloadView shows the payload as YAML in a read-only text view.
func payloadView(port *content.Port, _ window.Options) gtk.Widgetter {
	view := gtk.NewTextView()
	view.SetEditable(false)
	view.SetCursorVisible(false)
	view.SetMonospace(true)
	view.SetWrapMode(gtk.WrapWordChar)
	view.SetMarginTop(12)
	view.SetMarginBottom(12)
	view.SetMarginStart(12)
	view.SetMarginEnd(12)
	view.AddCSSClass("payload-view")
	view.Buffer().SetText(content.EmptyPayload)

	port.OnPayload(func(payload any) {
		text, err := content.Render(payload)
		if err != nil {
			text = err.Error()
		}
		view.Buffer().SetText(text)
	})

	scroller := gtk.NewScrolledWindow()
	scroller.SetVExpand(true)
	scroller.SetHExpand(true)
	scroller.SetChild(view)

	port.Ready()
	return scroller
}

// placeholder shows a status page. It reports ready but ignores the payload.
func placeholder(port *content.Port, opts window.Options) gtk.Widgetter {
	page := adw.NewStatusPage()
	page.SetIconName("window-new-symbolic")
	page.SetTitle(opts.Title)
	page.SetDescription("Nothing here yet")

	port.OnPayload(func(any) {})
	port.Ready()
	return page
}
