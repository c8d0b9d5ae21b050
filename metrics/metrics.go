package metrics

import (
	"bytes"
	"encoding/json"
	"time"
)

// RunInfo is the record kept for one conversion.
type RunInfo struct {
	StartTime      string        `json:"start_time"`
	Path           string        `json:"path"`
	Driver         string        `json:"driver"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	BandCount      int           `json:"band_count"`
	MetadataKeys   int           `json:"metadata_keys"`
	ReadDuration   time.Duration `json:"read_duration"`
	EncodeDuration time.Duration `json:"encode_duration"`
	TotalDuration  time.Duration `json:"total_duration"`
	BytesWritten   int64         `json:"bytes_written"`
	Error          string        `json:"error,omitempty"`
}

// Collector times one run and hands its RunInfo to a Logger.
type Collector struct {
	Info   *RunInfo
	logger Logger
	start  time.Time
}

func NewCollector(logger Logger) *Collector {
	start := time.Now()
	return &Collector{
		Info:   &RunInfo{StartTime: start.UTC().Format(time.RFC3339Nano)},
		logger: logger,
		start:  start,
	}
}

// Elapsed is the time since the collector was created.
func (m *Collector) Elapsed() time.Duration {
	return time.Since(m.start)
}

// Stage returns a function that reports the time since Stage was called.
func (m *Collector) Stage() func() time.Duration {
	begin := time.Now()
	return func() time.Duration {
		return time.Since(begin)
	}
}

// Finish records the total duration and the outcome, then logs the run.
func (m *Collector) Finish(err error) {
	m.Info.TotalDuration = m.Elapsed()
	if err != nil {
		m.Info.Error = err.Error()
	}
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *RunInfo) ToJSON() (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(i)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
