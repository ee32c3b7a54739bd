package timestamp

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 3, 5, 9, 0, 7, 0, time.UTC), "2024-03-05 09:00:07"},
		{time.Date(1999, 12, 31, 23, 59, 59, 999, time.UTC), "1999-12-31 23:59:59"},
		{time.Date(987, 1, 2, 3, 4, 5, 0, time.UTC), "0987-01-02 03:04:05"},
		{time.Date(2024, 11, 15, 0, 0, 0, 0, time.FixedZone("x", 5*3600)), "2024-11-15 00:00:00"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNowWidth(t *testing.T) {
	if got := Now(); len(got) != len(Layout) {
		t.Errorf("Now() = %q, want %d characters", got, len(Layout))
	}
}

func TestColumnScan(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 0, 7, 0, time.UTC)
	cases := []struct {
		src  any
		want string
	}{
		{"2024-03-05 09:00:07", "2024-03-05 09:00:07"},
		{[]byte("2024-03-05 09:00:07"), "2024-03-05 09:00:07"},
		{ts, "2024-03-05 09:00:07"},
		{nil, ""},
	}
	for _, c := range cases {
		s := "unset"
		if err := Column(&s).Scan(c.src); err != nil {
			t.Fatalf("Scan(%#v) failed: %v", c.src, err)
		}
		if s != c.want {
			t.Errorf("Scan(%#v) = %q, want %q", c.src, s, c.want)
		}
	}

	var s string
	if err := Column(&s).Scan(42); err == nil {
		t.Errorf("Scan(42) should fail")
	}
}

func TestColumnValue(t *testing.T) {
	s := "2024-03-05 09:00:07"
	v, err := Column(&s).Value()
	if err != nil {
		t.Fatalf("Value() failed: %v", err)
	}
	if v != s {
		t.Errorf("Value() = %v, want %q", v, s)
	}
}
