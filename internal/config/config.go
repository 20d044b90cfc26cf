package config

import "time"

// Config is the root configuration for taskflow.
type Config struct {
	Scoring   ScoringConfig   `json:"scoring"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Storage   StorageConfig   `json:"storage"`
	Events    EventsConfig    `json:"events"`
}

// ScoringConfig tunes urgency windows and the matrix/prioritization knobs.
type ScoringConfig struct {
	ClassifyWindow Duration         `json:"classify_window"` // urgency window of CalculateScores (default: 168h)
	ProgressWindow Duration         `json:"progress_window"` // time factor window of the extended score (default: 72h)
	Thresholds     ThresholdsConfig `json:"thresholds"`
	Weights        WeightsConfig    `json:"weights"`
	Propagate      bool             `json:"propagate"` // raise parents to their most urgent descendant
}

// ThresholdsConfig splits the Eisenhower matrix. Zero means default.
type ThresholdsConfig struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
}

// WeightsConfig weighs the combined priority score. Zero means default.
type WeightsConfig struct {
	Importance float64 `json:"importance"`
	Urgency    float64 `json:"urgency"`
}

// SchedulerConfig configures resource leveling.
type SchedulerConfig struct {
	DurationKind  string `json:"duration_kind"`  // optimistic, normal, pessimistic
	WorkingHours  string `json:"working_hours"`  // cron expression, one tick per working hour
	CalendarStart string `json:"calendar_start"` // date the calendar starts from (default: today)
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver   string `json:"driver"`    // "file" or "sqlite"
	Dir      string `json:"dir"`       // default: $TASKFLOW_PATH/data
	TaskGlob string `json:"task_glob"` // task files picked up by import (default: tasks/**/*.{json,yaml,yml})
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int    `json:"buffer_size"`
	Journal    *bool  `json:"journal,omitempty"` // write events to JSONL logs (default: true)
	LogDir     string `json:"log_dir"`           // default: $TASKFLOW_PATH/logs
}

// JournalEnabled reports whether events are written to the journal.
func (e EventsConfig) JournalEnabled() bool {
	return e.Journal == nil || *e.Journal
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
