package session

import (
	"slices"
	"time"
)

// FallbackErrorMessage is shown when a failure carries no message of its own.
const FallbackErrorMessage = "an unexpected error occurred while generating the image"

// GeneratedImage is a successful generation. It is never modified after
// creation.
type GeneratedImage struct {
	ID string
	// URL is a data URL: "data:<mime>;base64,<payload>".
	URL string
	// Prompt is the positive prompt as submitted, without the avoid clause.
	Prompt    string
	Timestamp time.Time
}

// State is an immutable snapshot of a session.
type State struct {
	IsGenerating bool
	Current      *GeneratedImage
	// History is ordered most recent first.
	History []GeneratedImage
	Err     string
}

// CurrentID returns the ID of the current image, or "".
func (s State) CurrentID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.ID
}

// Lookup finds a history entry by ID.
func (s State) Lookup(id string) (GeneratedImage, bool) {
	for _, img := range s.History {
		if img.ID == id {
			return img, true
		}
	}
	return GeneratedImage{}, false
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.History = slices.Clone(s.History)
	if s.Current != nil {
		cur := *s.Current
		out.Current = &cur
	}
	return out
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Submitted marks the start of a generation request.
type Submitted struct{}

// Succeeded carries the image produced by the in-flight request.
type Succeeded struct {
	Image GeneratedImage
}

// Failed carries the user-facing message of a failed request.
type Failed struct {
	Message string
}

// Selected asks to show a history entry as the current image.
type Selected struct {
	Image GeneratedImage
}

func (Submitted) isEvent() {}
func (Succeeded) isEvent() {}
func (Failed) isEvent()    {}
func (Selected) isEvent()  {}

// Reduce returns the state that follows s after e. It never modifies s.
//
//	Idle --Submitted--> Generating --Succeeded--> Idle with image
//	                               --Failed-----> Idle with error
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case Submitted:
		next := s.Clone()
		next.IsGenerating = true
		next.Err = ""
		return next

	case Succeeded:
		next := s.Clone()
		img := e.Image
		next.History = make([]GeneratedImage, 0, len(s.History)+1)
		next.History = append(next.History, img)
		next.History = append(next.History, s.History...)
		next.Current = &img
		next.IsGenerating = false
		return next

	case Failed:
		next := s.Clone()
		next.Err = e.Message
		if next.Err == "" {
			next.Err = FallbackErrorMessage
		}
		next.IsGenerating = false
		return next

	case Selected:
		img, ok := s.Lookup(e.Image.ID)
		if !ok {
			return s.Clone()
		}
		next := s.Clone()
		next.Current = &img
		return next
	}

	return s.Clone()
}
