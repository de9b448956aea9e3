package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harulab/interp-practice/internal/domain/entities"
)

// RenderSRT renders segments as a SubRip document
func RenderSRT(segments []entities.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", entities.FormatTimeLabel(seg.StartSeconds), entities.FormatTimeLabel(seg.EndSeconds))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderVTT renders segments as a WebVTT document
func RenderVTT(segments []entities.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "%s --> %s\n", vttTimeLabel(seg.StartSeconds), vttTimeLabel(seg.EndSeconds))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// vttTimeLabel is the SRT label with a dot before milliseconds
func vttTimeLabel(seconds float64) string {
	return strings.Replace(entities.FormatTimeLabel(seconds), ",", ".", 1)
}

// RenderJSON renders the full transcript result as indented JSON
func RenderJSON(result *entities.TranscriptResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render transcript json: %w", err)
	}
	return string(data), nil
}
