package area

import "github.com/nathoo/turncore/engine/entity"

// FeedbackKind picks how a feedback text is displayed.
type FeedbackKind string

const (
	FeedbackInfo   FeedbackKind = "info"
	FeedbackDamage FeedbackKind = "damage"
	FeedbackHeal   FeedbackKind = "heal"
	FeedbackMiss   FeedbackKind = "miss"
)

// FeedbackDuration is how long feedback text stays on screen.
const FeedbackDuration = 2000

// FeedbackText is a floating message over a map position.
type FeedbackText struct {
	Text     string
	X, Y     float64
	Kind     FeedbackKind
	Age      int
	Duration int

	reported bool
}

// AddFeedbackText floats text above target.
func (s *State) AddFeedbackText(text string, target *entity.EntityState, kind FeedbackKind) {
	x, y := target.Center()
	s.feedback = append(s.feedback, &FeedbackText{
		Text:     text,
		X:        x,
		Y:        y - float64(target.Size.Height)/2,
		Kind:     kind,
		Duration: FeedbackDuration,
	})
}

// Update ages feedback text and drops expired entries.
func (s *State) Update(millis int) {
	kept := s.feedback[:0]
	for _, f := range s.feedback {
		f.Age += millis
		if f.Age < f.Duration {
			kept = append(kept, f)
		}
	}
	for i := len(kept); i < len(s.feedback); i++ {
		s.feedback[i] = nil
	}
	s.feedback = kept
}

// FeedbackTexts returns the live feedback text.
func (s *State) FeedbackTexts() []FeedbackText {
	out := make([]FeedbackText, len(s.feedback))
	for i, f := range s.feedback {
		out[i] = *f
	}
	return out
}

// NewFeedback returns feedback text not yet returned by a previous call.
// Line-oriented drivers use it to print each message once.
func (s *State) NewFeedback() []FeedbackText {
	var out []FeedbackText
	for _, f := range s.feedback {
		if !f.reported {
			f.reported = true
			out = append(out, *f)
		}
	}
	return out
}
