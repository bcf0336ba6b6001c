package week

import (
	"testing"
	"time"
)

func testCalendar() *Calendar {
	return NewCalendar(time.UTC, DefaultCloseHour)
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestWeekIDOf(t *testing.T) {
	c := testCalendar()

	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{
			name: "mid-year monday",
			t:    date(2026, time.January, 5, 0, 0),
			want: 202602,
		},
		{
			name: "mid-year sunday belongs to same week",
			t:    date(2026, time.January, 11, 23, 59),
			want: 202602,
		},
		{
			name: "january 1 on a thursday is week 1",
			t:    date(2026, time.January, 1, 12, 0),
			want: 202601,
		},
		{
			name: "december monday of the year-boundary week is new year week 1",
			t:    date(2025, time.December, 29, 0, 0),
			want: 202601,
		},
		{
			name: "december 31 inside the boundary week is new year week 1",
			t:    date(2024, time.December, 31, 8, 30),
			want: 202501,
		},
		{
			name: "january 1 on a monday",
			t:    date(2024, time.January, 1, 0, 0),
			want: 202401,
		},
		{
			name: "last full week of the old year",
			t:    date(2025, time.December, 28, 10, 0),
			want: 202552,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.WeekIDOf(tt.t); got != tt.want {
				t.Errorf("WeekIDOf(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestMondayOf(t *testing.T) {
	c := testCalendar()

	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself at midnight",
			t:    date(2026, time.January, 5, 15, 42),
			want: date(2026, time.January, 5, 0, 0),
		},
		{
			name: "sunday maps back six days",
			t:    date(2026, time.January, 11, 3, 0),
			want: date(2026, time.January, 5, 0, 0),
		},
		{
			name: "thursday across a month boundary",
			t:    date(2026, time.January, 1, 9, 0),
			want: date(2025, time.December, 29, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.MondayOf(tt.t); !got.Equal(tt.want) {
				t.Errorf("MondayOf(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestWeekMonday(t *testing.T) {
	c := testCalendar()

	tests := []struct {
		weekID int
		want   time.Time
	}{
		{202602, date(2026, time.January, 5, 0, 0)},
		{202601, date(2025, time.December, 29, 0, 0)},
		{202552, date(2025, time.December, 22, 0, 0)},
		{202401, date(2024, time.January, 1, 0, 0)},
	}

	for _, tt := range tests {
		if got := c.WeekMonday(tt.weekID); !got.Equal(tt.want) {
			t.Errorf("WeekMonday(%d) = %v, want %v", tt.weekID, got, tt.want)
		}
	}
}

func TestPrevNextWeekID(t *testing.T) {
	c := testCalendar()

	tests := []struct {
		weekID int
		prev   int
	}{
		{202602, 202601},
		// Year boundary: integer subtraction would give 202600.
		{202601, 202552},
		{202552, 202551},
		// 2023 runs to week 53: its week 1 starts Mon Dec 26 2022.
		{202401, 202353},
	}

	for _, tt := range tests {
		if got := c.PrevWeekID(tt.weekID); got != tt.prev {
			t.Errorf("PrevWeekID(%d) = %d, want %d", tt.weekID, got, tt.prev)
		}
		if got := c.NextWeekID(tt.prev); got != tt.weekID {
			t.Errorf("NextWeekID(%d) = %d, want %d", tt.prev, got, tt.weekID)
		}
	}
}

func TestRoundTripLaws(t *testing.T) {
	c := testCalendar()

	// Sweep daily across two year boundaries.
	start := date(2024, time.December, 1, 11, 0)
	end := date(2026, time.February, 1, 11, 0)

	for ts := start; ts.Before(end); ts = ts.AddDate(0, 0, 1) {
		id := c.WeekIDOf(ts)
		if err := Validate(id); err != nil {
			t.Fatalf("WeekIDOf(%v) produced invalid id: %v", ts, err)
		}

		monday := c.WeekMonday(id)
		if monday.Weekday() != time.Monday {
			t.Fatalf("WeekMonday(%d) = %v, not a Monday", id, monday)
		}
		if got := c.WeekIDOf(monday); got != id {
			t.Fatalf("WeekIDOf(WeekMonday(%d)) = %d", id, got)
		}
		if got := c.MondayOf(ts); !got.Equal(monday) {
			t.Fatalf("MondayOf(%v) = %v, want %v", ts, got, monday)
		}
		if got := c.NextWeekID(c.PrevWeekID(id)); got != id {
			t.Fatalf("NextWeekID(PrevWeekID(%d)) = %d", id, got)
		}
	}
}

func TestCheckInWindow(t *testing.T) {
	c := testCalendar()

	open, close := c.CheckInWindow(202602)
	if want := date(2026, time.January, 5, 0, 0); !open.Equal(want) {
		t.Errorf("open = %v, want %v", open, want)
	}
	if want := date(2026, time.January, 5, 20, 0); !close.Equal(want) {
		t.Errorf("close = %v, want %v", close, want)
	}
}

func TestIsOpenAt(t *testing.T) {
	c := testCalendar()
	monday := date(2026, time.January, 5, 0, 0)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"at open", monday, true},
		{"one minute before close", monday.Add(19*time.Hour + 59*time.Minute), true},
		{"at close", monday.Add(20 * time.Hour), false},
		{"just before open", monday.Add(-time.Millisecond), false},
		{"midweek", monday.AddDate(0, 0, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsOpenAt(tt.t); got != tt.want {
				t.Errorf("IsOpenAt(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestTimeUntilClose(t *testing.T) {
	c := testCalendar()
	monday := date(2026, time.January, 5, 0, 0)

	if got := c.TimeUntilClose(monday.Add(18 * time.Hour)); got != 2*time.Hour {
		t.Errorf("TimeUntilClose(monday 18:00) = %v, want 2h", got)
	}
	if got := c.TimeUntilClose(monday.AddDate(0, 0, 2)); got != 0 {
		t.Errorf("TimeUntilClose(wednesday) = %v, want 0", got)
	}
}

func TestDaysUntilNextOpen(t *testing.T) {
	c := testCalendar()

	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{"monday", date(2026, time.January, 5, 21, 0), 7},
		{"wednesday", date(2026, time.January, 7, 12, 0), 5},
		{"sunday", date(2026, time.January, 11, 23, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.DaysUntilNextOpen(tt.t); got != tt.want {
				t.Errorf("DaysUntilNextOpen(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		weekID  int
		wantErr bool
	}{
		{202601, false},
		{202553, false},
		{202600, true},
		{202654, true},
		{190001, true},
		{0, true},
	}

	for _, tt := range tests {
		err := Validate(tt.weekID)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%d) error = %v, wantErr %v", tt.weekID, err, tt.wantErr)
		}
	}
}

func TestSplitCompose(t *testing.T) {
	year, wk := Split(202607)
	if year != 2026 || wk != 7 {
		t.Errorf("Split(202607) = (%d, %d)", year, wk)
	}
	if got := Compose(2026, 7); got != 202607 {
		t.Errorf("Compose(2026, 7) = %d", got)
	}
}
