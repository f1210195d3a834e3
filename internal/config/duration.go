package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration so config files can use either Go duration
// strings ("500ms", "2s") or bare numeric seconds (0.5, 15).
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		d.Duration = parsed

		return nil
	case int:
		d.Duration = time.Duration(v) * time.Second

		return nil
	case float64:
		d.Duration = time.Duration(v * float64(time.Second))

		return nil
	default:
		return fmt.Errorf("unsupported duration type %T", raw)
	}
}
