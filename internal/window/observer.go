package window

import "time"

// Observer is told about window lifecycle transitions. Calls are made
// outside the manager's lock and may come from any goroutine.
type Observer interface {
	WindowOpened(h *Handle, took time.Duration)
	CreationFailed(label string, err error)
	WindowClosed(h *Handle)
	PayloadDelivered(h *Handle)
	PayloadAbandoned(h *Handle)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) WindowOpened(*Handle, time.Duration) {}
func (NopObserver) CreationFailed(string, error)       {}
func (NopObserver) WindowClosed(*Handle)               {}
func (NopObserver) PayloadDelivered(*Handle)           {}
func (NopObserver) PayloadAbandoned(*Handle)           {}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) WindowOpened(h *Handle, took time.Duration) {
	for _, obs := range o {
		obs.WindowOpened(h, took)
	}
}

func (o Observers) CreationFailed(label string, err error) {
	for _, obs := range o {
		obs.CreationFailed(label, err)
	}
}

func (o Observers) WindowClosed(h *Handle) {
	for _, obs := range o {
		obs.WindowClosed(h)
	}
}

func (o Observers) PayloadDelivered(h *Handle) {
	for _, obs := range o {
		obs.PayloadDelivered(h)
	}
}

func (o Observers) PayloadAbandoned(h *Handle) {
	for _, obs := range o {
		obs.PayloadAbandoned(h)
	}
}
