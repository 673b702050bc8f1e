package request

import (
	"testing"
	"time"

	"courtpilot/models"
)

// fixedParser pins the clock to Tuesday 2026-08-25 10:00 UTC so relative
// dates resolve the same on every run.
func fixedParser() *Parser {
	p := NewParser(time.UTC, 480, 1260)
	p.Now = func() time.Time {
		return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	}
	return p
}

func TestParseDate(t *testing.T) {
	p := fixedParser()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"tomorrow", "book a court tomorrow", "2026-08-26"},
		{"today", "any court today", "2026-08-25"},
		{"tonight is today", "a court tonight", "2026-08-25"},
		{"next weekday", "next friday please", "2026-08-28"},
		{"next same weekday skips a week", "next tuesday", "2026-09-01"},
		{"bare weekday", "friday evening", "2026-08-28"},
		{"bare weekday today", "tuesday", "2026-08-25"},
		{"iso date", "book on 2026-09-03", "2026-09-03"},
		{"slash date upcoming", "on 9/3", "2026-09-03"},
		{"slash date passed rolls over", "on 3/5", "2027-03-05"},
		{"slash date with year", "on 3/5/2027", "2027-03-05"},
		{"month day", "september 3rd", "2026-09-03"},
		{"month day passed rolls over", "march 5", "2027-03-05"},
		{"day month", "5th march", "2027-03-05"},
		{"abbreviated month", "sept 3", "2026-09-03"},
		{"month day with year", "dec 25 2026", "2026-12-25"},
		{"no date", "book me a court", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := p.Parse(tt.text)
			if tt.want == "" {
				if req.Date != nil {
					t.Fatalf("Parse(%q).Date = %q, want nil", tt.text, *req.Date)
				}
				return
			}
			if req.Date == nil {
				t.Fatalf("Parse(%q).Date = nil, want %q", tt.text, tt.want)
			}
			if *req.Date != tt.want {
				t.Errorf("Parse(%q).Date = %q, want %q", tt.text, *req.Date, tt.want)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	p := fixedParser()

	tests := []struct {
		name       string
		text       string
		start, end int
	}{
		{"clock with meridiem", "at 2 PM", 840, 841},
		{"compact clock", "2:30pm works", 870, 871},
		{"24 hour clock", "book at 14:30", 870, 871},
		{"after", "anything after 5pm", 1020, 1260},
		{"from means after", "free from 6:30 pm", 1110, 1260},
		{"before noon", "before noon", 480, 720},
		{"around", "around 3 PM", 870, 931},
		{"noon", "at noon", 720, 721},
		{"morning", "tomorrow morning", 480, 720},
		{"afternoon", "this afternoon", 720, 1020},
		{"evening", "in the evening", 1020, 1260},
		{"tonight", "a court tonight", 1020, 1260},
		{"closing time pins inside hours", "at 9 PM", 1259, 1260},
		{"oclock low hour is evening", "7 o'clock", 1140, 1141},
		{"oclock high hour is morning", "10 o'clock", 600, 601},
		{"around beats day part", "this afternoon around 3 PM", 870, 931},
		{"no window", "book court 4 tomorrow", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := p.Parse(tt.text)
			if tt.start == 0 && tt.end == 0 {
				if req.Window != nil {
					t.Fatalf("Parse(%q).Window = %+v, want nil", tt.text, req.Window)
				}
				return
			}
			if req.Window == nil {
				t.Fatalf("Parse(%q).Window = nil, want [%d,%d)", tt.text, tt.start, tt.end)
			}
			if req.Window.Start != tt.start || req.Window.End != tt.end {
				t.Errorf("Parse(%q).Window = [%d,%d), want [%d,%d)",
					tt.text, req.Window.Start, req.Window.End, tt.start, tt.end)
			}
		})
	}
}

func TestParseCourt(t *testing.T) {
	p := fixedParser()

	tests := []struct {
		text string
		want int // 0 means none
	}{
		{"court 3 tomorrow", 3},
		{"Court #5 at 2pm", 5},
		{"COURT#2", 2},
		{"any court works", 0},
		{"the courts are busy", 0},
	}
	for _, tt := range tests {
		req := p.Parse(tt.text)
		if tt.want == 0 {
			if req.Court != nil {
				t.Errorf("Parse(%q).Court = %d, want nil", tt.text, *req.Court)
			}
			continue
		}
		if req.Court == nil || *req.Court != tt.want {
			t.Errorf("Parse(%q).Court = %v, want %d", tt.text, req.Court, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	p := fixedParser()

	tests := []struct {
		text string
		want int // 0 means none
	}{
		{"for 90 minutes", 90},
		{"for 2 hours", 120},
		{"1.5 hours please", 90},
		{"an hour and a half", 90},
		{"half an hour", 30},
		{"just an hour", 60},
		{"45 mins", 45},
		{"book court 2", 0},
	}
	for _, tt := range tests {
		req := p.Parse(tt.text)
		if tt.want == 0 {
			if req.DurationMin != nil {
				t.Errorf("Parse(%q).DurationMin = %d, want nil", tt.text, *req.DurationMin)
			}
			continue
		}
		if req.DurationMin == nil || *req.DurationMin != tt.want {
			t.Errorf("Parse(%q).DurationMin = %v, want %d", tt.text, req.DurationMin, tt.want)
		}
	}
}

func TestParseFullRequest(t *testing.T) {
	p := fixedParser()

	req := p.Parse("Book Court #3 tomorrow at 2 PM")
	if req.Date == nil || *req.Date != "2026-08-26" {
		t.Errorf("Date = %v, want 2026-08-26", req.Date)
	}
	if req.Court == nil || *req.Court != 3 {
		t.Errorf("Court = %v, want 3", req.Court)
	}
	if req.Window == nil || req.Window.Start != 840 || req.Window.End != 841 {
		t.Errorf("Window = %+v, want [840,841)", req.Window)
	}
	if req.DurationMin != nil {
		t.Errorf("DurationMin = %v, want nil", req.DurationMin)
	}

	req = p.Parse("Find me any available court this afternoon around 3 PM for 2 hours")
	if req.Window == nil || req.Window.Start != 870 || req.Window.End != 931 {
		t.Errorf("Window = %+v, want [870,931)", req.Window)
	}
	if req.DurationMin == nil || *req.DurationMin != 120 {
		t.Errorf("DurationMin = %v, want 120", req.DurationMin)
	}
	if req.Court != nil {
		t.Errorf("Court = %v, want nil", req.Court)
	}
}

func TestParseUnconstrained(t *testing.T) {
	p := fixedParser()

	req := p.Parse("show me what you have")
	if !req.IsUnconstrained() {
		t.Errorf("Parse(garbage) = %+v, want unconstrained", req)
	}
	if req != (models.BookingRequest{}) {
		t.Errorf("Parse(garbage) = %+v, want zero value", req)
	}
}
