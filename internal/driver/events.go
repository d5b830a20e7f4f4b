package driver

// Status tracks a file through the scan pipeline.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusChecking Status = "checking"
	StatusDone     Status = "done"
	StatusCached   Status = "cached"
	StatusError    Status = "error"
)

// Event reports scan progress for one file.
type Event struct {
	Path   string
	Status Status
	Diags  int // populated on done/cached/error
}

// Sink receives scan events. Implementations must be safe for calls
// from multiple scanning goroutines.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch != nil {
		s.Ch <- evt
	}
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
