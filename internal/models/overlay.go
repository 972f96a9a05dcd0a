package models

import (
	"fmt"

	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

// OverlayType discriminates the compositing instruction kinds.
type OverlayType string

const (
	OverlayText  OverlayType = "text"
	OverlayImage OverlayType = "image"
	OverlayVideo OverlayType = "video"
)

// Overlay is one compositing instruction: a text caption, a still image or a
// secondary clip drawn on top of the base video for a bounded time window.
// X and Y are fractions of the frame width/height so positions are
// resolution-independent. The styling fields apply to text overlays only.
type Overlay struct {
	Type      OverlayType `json:"type"`
	Content   string      `json:"content"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	StartTime float64     `json:"start_time"`
	EndTime   float64     `json:"end_time"`

	Color      *string `json:"color,omitempty"`
	FontSize   *int    `json:"font_size,omitempty"`
	Box        *bool   `json:"box,omitempty"`
	BoxColor   *string `json:"box_color,omitempty"`
	BoxBorderW *int    `json:"box_borderw,omitempty"`
}

// Validate checks a single overlay at submission time so that malformed
// overlays never enter the render pipeline. The returned error names the
// offending field.
func (o Overlay) Validate() error {
	if o.Content == "" {
		return errors.ValidationField("content", "content must not be empty")
	}
	if o.X < 0 || o.X > 1 {
		return errors.ValidationField("x", fmt.Sprintf("x must be within [0,1], got %v", o.X))
	}
	if o.Y < 0 || o.Y > 1 {
		return errors.ValidationField("y", fmt.Sprintf("y must be within [0,1], got %v", o.Y))
	}
	if o.StartTime < 0 {
		return errors.ValidationField("start_time", fmt.Sprintf("start_time must be >= 0, got %v", o.StartTime))
	}
	if o.EndTime <= o.StartTime {
		return errors.ValidationField("end_time", fmt.Sprintf("end_time must be greater than start_time, got %v", o.EndTime))
	}
	if o.FontSize != nil && *o.FontSize <= 0 {
		return errors.ValidationField("font_size", "font_size must be positive")
	}
	if o.BoxBorderW != nil && *o.BoxBorderW < 0 {
		return errors.ValidationField("box_borderw", "box_borderw must not be negative")
	}
	return nil
}

// ValidateOverlays validates an ordered overlay list, reporting the index of
// the first invalid entry.
func ValidateOverlays(overlays []Overlay) error {
	for i, o := range overlays {
		if err := o.Validate(); err != nil {
			var e *errors.Error
			if errors.As(err, &e) {
				return e.WithField("index", i)
			}
			return err
		}
	}
	return nil
}
