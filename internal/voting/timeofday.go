package voting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidTimeOfDay = errors.New("format jam harus HH:MM")
	ErrWindowCrossesDay = errors.New("jam selesai voting harus setelah jam mulai")
)

// TimeOfDay adalah menit sejak tengah malam.
type TimeOfDay int

// ParseTimeOfDay menerima "HH:MM" atau "HH:MM:SS" (detik diabaikan).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidTimeOfDay
	}
	for _, p := range parts {
		if len(p) != 2 {
			return 0, ErrInvalidTimeOfDay
		}
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidTimeOfDay
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidTimeOfDay
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, ErrInvalidTimeOfDay
		}
	}

	return TimeOfDay(h*60 + m), nil
}

// ClockOf mengambil jam:menit dari t pada lokasi t sendiri.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Window adalah rentang jam voting dalam satu hari, kedua batas inklusif.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseWindow menolak rentang yang melewati tengah malam.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, fmt.Errorf("voting_start: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, fmt.Errorf("voting_end: %w", err)
	}
	if e < s {
		return Window{}, ErrWindowCrossesDay
	}
	return Window{Start: s, End: e}, nil
}

func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Start && t <= w.End
}
