package pipeline

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/harulab/interp-practice/internal/domain/entities"
)

// ParseCaptions decodes a provider caption payload into segments.
// Format is chosen by extension: srv3 (XML paragraphs), vtt, srt, or
// json3 (legacy JSON events). Zero parsed segments means "captions not
// usable", which callers treat as absence, not an error.
func ParseCaptions(data []byte, ext string) ([]entities.Segment, error) {
	switch strings.ToLower(ext) {
	case "srv3", "xml":
		return parseSrv3(data)
	case "vtt":
		return parseVTT(data)
	case "srt":
		return parseSRT(data)
	case "json3", "json":
		return parseJSON3(data)
	default:
		return nil, fmt.Errorf("unsupported caption format %q", ext)
	}
}

// srv3 is the XML paragraph format: <p t="1000" d="2500">text</p> with
// times in milliseconds, optionally with nested <s> runs
type srv3Document struct {
	Body struct {
		Paragraphs []srv3Paragraph `xml:"p"`
	} `xml:"body"`
}

type srv3Paragraph struct {
	StartMs    int64     `xml:"t,attr"`
	DurationMs int64     `xml:"d,attr"`
	Text       string    `xml:",chardata"`
	Runs       []srv3Run `xml:"s"`
}

type srv3Run struct {
	Text string `xml:",chardata"`
}

func parseSrv3(data []byte) ([]entities.Segment, error) {
	var doc srv3Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse srv3 captions: %w", err)
	}

	var segments []entities.Segment
	for _, p := range doc.Body.Paragraphs {
		text := strings.TrimSpace(p.Text)
		if len(p.Runs) > 0 {
			var b strings.Builder
			for _, run := range p.Runs {
				b.WriteString(run.Text)
			}
			text = strings.TrimSpace(b.String())
		}
		if text == "" {
			continue
		}
		start := float64(p.StartMs) / 1000
		end := start + float64(p.DurationMs)/1000
		segments = append(segments, entities.NewSegment(len(segments)+1, html.UnescapeString(text), start, end))
	}
	return segments, nil
}

var cueTimePattern = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})[.,](\d{3})`)
var vttInlineTagPattern = regexp.MustCompile(`<[^>]+>`)

func parseVTT(data []byte) ([]entities.Segment, error) {
	return parseCueBlocks(data, true)
}

func parseSRT(data []byte) ([]entities.Segment, error) {
	return parseCueBlocks(data, false)
}

// parseCueBlocks handles the shared cue structure of WebVTT and SRT:
// a timing line "start --> end" followed by text lines, blocks
// separated by blank lines
func parseCueBlocks(data []byte, vtt bool) ([]entities.Segment, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var segments []entities.Segment
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.Contains(line, "-->") {
			i++
			continue
		}

		times := cueTimePattern.FindAllStringSubmatch(line, 2)
		if len(times) < 2 {
			i++
			continue
		}
		start := cueTimeSeconds(times[0])
		end := cueTimeSeconds(times[1])

		var textLines []string
		for i++; i < len(lines); i++ {
			text := strings.TrimSpace(lines[i])
			if text == "" {
				break
			}
			if vtt {
				text = vttInlineTagPattern.ReplaceAllString(text, "")
			}
			textLines = append(textLines, text)
		}

		text := strings.TrimSpace(strings.Join(textLines, " "))
		if text == "" || end <= start {
			continue
		}
		segments = append(segments, entities.NewSegment(len(segments)+1, html.UnescapeString(text), start, end))
	}
	return segments, nil
}

func cueTimeSeconds(match []string) float64 {
	hours, _ := strconv.Atoi(match[1])
	mins, _ := strconv.Atoi(match[2])
	secs, _ := strconv.Atoi(match[3])
	millis, _ := strconv.Atoi(match[4])
	return float64(hours)*3600 + float64(mins)*60 + float64(secs) + float64(millis)/1000
}

// json3 is the legacy JSON event format with millisecond timing and
// text split across segs
type json3Document struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func parseJSON3(data []byte) ([]entities.Segment, error) {
	var doc json3Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse json3 captions: %w", err)
	}

	var segments []entities.Segment
	for _, event := range doc.Events {
		var b strings.Builder
		for _, seg := range event.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
		if text == "" {
			continue
		}
		start := float64(event.StartMs) / 1000
		end := start + float64(event.DurationMs)/1000
		if end <= start {
			continue
		}
		segments = append(segments, entities.NewSegment(len(segments)+1, text, start, end))
	}
	return segments, nil
}
