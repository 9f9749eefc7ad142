package forecast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Offset'siz tarihler UTC kabul edilir. Excel hücreleri de aynı listeden geçer.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"01-02-06",
	"1/2/06",
	"1/2/06 15:04",
	"02.01.2006",
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("tarih formatı tanınmadı: %q", s)
}

// Date accepts job dates with or without a UTC offset.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tarih string olmalı: %w", err)
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	if t != nil {
		d.Time = *t
	}
	return nil
}

// timePtr turns an optional request date into the stored form.
func (d *Date) timePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
