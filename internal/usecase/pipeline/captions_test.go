package pipeline

import (
	"testing"
)

func TestParseCaptions_VTT(t *testing.T) {
	data := []byte(`WEBVTT

00:00:01.000 --> 00:00:03.500
Hello

00:00:03.500 --> 00:00:06.000
<c.colorCCCCCC>World</c>
`)

	segments, err := ParseCaptions(data, "vtt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartSeconds != 1.0 || segments[0].EndSeconds != 3.5 {
		t.Fatalf("cue timing: %g to %g", segments[0].StartSeconds, segments[0].EndSeconds)
	}
	if segments[0].Text != "Hello" {
		t.Fatalf("cue text %q", segments[0].Text)
	}
	if segments[1].Text != "World" {
		t.Fatalf("inline tags not stripped: %q", segments[1].Text)
	}
}

func TestParseCaptions_SRT(t *testing.T) {
	data := []byte("1\r\n00:00:00,500 --> 00:00:02,000\r\n大家好\r\n\r\n2\r\n00:00:02,000 --> 00:00:04,250\r\n欢迎收看\r\n")

	segments, err := ParseCaptions(data, "srt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartSeconds != 0.5 || segments[0].EndSeconds != 2.0 {
		t.Fatalf("cue timing: %g to %g", segments[0].StartSeconds, segments[0].EndSeconds)
	}
	if segments[1].Text != "欢迎收看" {
		t.Fatalf("cue text %q", segments[1].Text)
	}
}

func TestParseCaptions_Srv3(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="utf-8"?>
<timedtext format="3">
  <body>
    <p t="0" d="2400">今天天气很好</p>
    <p t="2400" d="3100"><s>我们</s><s>去公园吧</s></p>
  </body>
</timedtext>`)

	segments, err := ParseCaptions(data, "srv3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "今天天气很好" {
		t.Fatalf("paragraph text %q", segments[0].Text)
	}
	if segments[1].Text != "我们去公园吧" {
		t.Fatalf("run text %q", segments[1].Text)
	}
	if segments[1].StartSeconds != 2.4 || segments[1].EndSeconds != 5.5 {
		t.Fatalf("paragraph timing: %g to %g", segments[1].StartSeconds, segments[1].EndSeconds)
	}
}

func TestParseCaptions_JSON3(t *testing.T) {
	data := []byte(`{"events":[
		{"tStartMs":0,"dDurationMs":1500,"segs":[{"utf8":"第一"},{"utf8":"句"}]},
		{"tStartMs":1500,"dDurationMs":2000,"segs":[{"utf8":"第二句"}]},
		{"tStartMs":3500,"dDurationMs":1000,"segs":[{"utf8":"\n"}]}
	]}`)

	segments, err := ParseCaptions(data, "json3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments (blank event dropped), got %d", len(segments))
	}
	if segments[0].Text != "第一句" {
		t.Fatalf("event text %q", segments[0].Text)
	}
	if segments[1].StartSeconds != 1.5 || segments[1].EndSeconds != 3.5 {
		t.Fatalf("event timing: %g to %g", segments[1].StartSeconds, segments[1].EndSeconds)
	}
}

func TestParseCaptions_UnsupportedFormat(t *testing.T) {
	if _, err := ParseCaptions([]byte("x"), "ass"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestParseCaptions_EmptyVTT(t *testing.T) {
	segments, err := ParseCaptions([]byte("WEBVTT\n"), "vtt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected zero segments, got %d", len(segments))
	}
}
