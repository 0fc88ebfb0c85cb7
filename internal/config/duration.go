package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration wraps time.Duration with a "d" (days) suffix on top of the
// standard units, so token lifetimes can be written as "7d".
type Duration struct {
	time.Duration
}

// EnvDecode implements envconfig.Decoder
func (d *Duration) EnvDecode(ctx context.Context, v string) error {
	if v == "" {
		return nil
	}

	parsed, err := time.ParseDuration(v)
	if err == nil {
		d.Duration = parsed
		return nil
	}

	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, convErr := strconv.Atoi(days)
		if convErr != nil {
			return fmt.Errorf("invalid days value %q: %w", v, convErr)
		}
		d.Duration = time.Duration(n) * 24 * time.Hour
		return nil
	}

	return fmt.Errorf("invalid duration %q: %w", v, err)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d Duration) String() string {
	return d.Duration.String()
}
