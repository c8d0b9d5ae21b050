package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Log(info *RunInfo)
}

// DiagLogger writes run records to the diagnostic log at debug level.
type DiagLogger struct {
	log logrus.FieldLogger
}

func NewDiagLogger(log logrus.FieldLogger) *DiagLogger {
	return &DiagLogger{log: log}
}

func (l *DiagLogger) Log(info *RunInfo) {
	infoStr, err := info.ToJSON()
	if err != nil {
		l.log.Warnf("metrics: error: %v", err)
		return
	}
	l.log.Debugf("metrics: %s", strings.TrimSpace(infoStr))
}

// MultiLogger fans a record out to several loggers.
type MultiLogger []Logger

func (ml MultiLogger) Log(info *RunInfo) {
	for _, l := range ml {
		l.Log(info)
	}
}

const defaultMaxLogFileSize = 64 * 1024 * 1024
const defaultMaxLogFiles = 10
const logFileName = "raster2json.log"

// FileLogger appends run records as JSON lines to LogDir, rotating the
// file once it reaches MaxLogFileSize. Failures are reported on the
// diagnostic log and never fail the run.
type FileLogger struct {
	LogDir         string
	MaxLogFileSize int64
	MaxLogFiles    int
	diag           logrus.FieldLogger
}

func NewFileLogger(logDir string, maxLogFileSize int64, maxLogFiles int, diag logrus.FieldLogger) *FileLogger {
	if maxLogFileSize <= 0 {
		maxLogFileSize = defaultMaxLogFileSize
	}
	if maxLogFiles <= 0 {
		maxLogFiles = defaultMaxLogFiles
	}
	return &FileLogger{
		LogDir:         logDir,
		MaxLogFileSize: maxLogFileSize,
		MaxLogFiles:    maxLogFiles,
		diag:           diag,
	}
}

func (l *FileLogger) Log(info *RunInfo) {
	infoStr, err := info.ToJSON()
	if err != nil {
		l.diag.Warnf("FileLogger: info.ToJSON() error: %v", err)
		return
	}

	if err := os.MkdirAll(l.LogDir, 0755); err != nil {
		l.diag.Warnf("FileLogger: log dir error: %v", err)
		return
	}

	l.tryRotateLogFile()

	f, err := os.OpenFile(l.logFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.diag.Warnf("FileLogger: log open error: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(infoStr); err != nil {
		l.diag.Warnf("FileLogger: write error: %v", err)
	}
}

func (l *FileLogger) logFilePath() string {
	return filepath.Join(l.LogDir, logFileName)
}

func (l *FileLogger) tryRotateLogFile() {
	currLogFilePath := l.logFilePath()
	info, err := os.Stat(currLogFilePath)
	if err != nil || info.Size() < l.MaxLogFileSize {
		return
	}

	var rotatedLogFilePath string
	for i := 0; i < l.MaxLogFiles; i++ {
		filePath := filepath.Join(l.LogDir, fmt.Sprintf("%s.%d", logFileName, i))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			rotatedLogFilePath = filePath
			break
		}
	}

	if len(rotatedLogFilePath) == 0 {
		rotatedLogFilePath = l.oldestRotatedFile()
		l.diag.Debugf("FileLogger: maximum number of log files reached, overwriting %s", rotatedLogFilePath)
		if err := os.Remove(rotatedLogFilePath); err != nil {
			l.diag.Warnf("FileLogger: log rotation error: %v", err)
			return
		}
	}

	if err := os.Rename(currLogFilePath, rotatedLogFilePath); err != nil {
		l.diag.Warnf("FileLogger: log rotation error: %v", err)
		return
	}
	l.diag.Debugf("FileLogger: log file rotated: %v", rotatedLogFilePath)
}

func (l *FileLogger) oldestRotatedFile() string {
	oldest := filepath.Join(l.LogDir, fmt.Sprintf("%s.%d", logFileName, 0))
	oldestTime := time.Now()
	for i := 0; i < l.MaxLogFiles; i++ {
		filePath := filepath.Join(l.LogDir, fmt.Sprintf("%s.%d", logFileName, i))
		fi, err := os.Stat(filePath)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if fi.ModTime().Before(oldestTime) {
			oldest = filePath
			oldestTime = fi.ModTime()
		}
	}
	return oldest
}
