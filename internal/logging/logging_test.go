package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		format, level string
		want          zerolog.Level
	}{
		{"text", "debug", zerolog.DebugLevel},
		{"json", "warn", zerolog.WarnLevel},
		{"json", "", zerolog.InfoLevel},
		{"text", "loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.level, func(t *testing.T) {
			log := Setup(tt.format, tt.level)
			if got := log.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}
