package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  *LoggerConfig
		wantErr bool
	}{
		{"nil config", nil, false},
		{"json", &LoggerConfig{Level: "debug", Format: "json", Output: "stderr"}, false},
		{"text", &LoggerConfig{Level: "warn", Format: "text", Output: "stdout"}, false},
		{"invalid level", &LoggerConfig{Level: "loud", Format: "json"}, true},
		{"invalid format", &LoggerConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("Expected non-nil logger")
			}
		})
	}
}

func createTestLogger(buf *bytes.Buffer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func TestEntryFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithOperation(ctx, OpSwitchMethod)
	EntryFromContext(ctx, logger).Info("switched")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("Expected request_id req-1, got %v", entry["request_id"])
	}
	if entry["operation"] != "switch_method" {
		t.Errorf("Expected operation switch_method, got %v", entry["operation"])
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields(Wrap(fmt.Errorf("refused"), ErrorTypeAuthUnavailable, 4900, "Auth service unavailable").
		WithContext("endpoint", "http://auth"))

	if fields["error_type"] != string(ErrorTypeAuthUnavailable) {
		t.Errorf("Unexpected error_type %v", fields["error_type"])
	}
	if fields["error_details"] != "refused" {
		t.Errorf("Unexpected error_details %v", fields["error_details"])
	}
	if fields["context_endpoint"] != "http://auth" {
		t.Errorf("Unexpected context_endpoint %v", fields["context_endpoint"])
	}
	if len(ErrorFields(nil)) != 0 {
		t.Error("Expected no fields for nil error")
	}
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	LogOperation(logrus.NewEntry(logger), OpConnect, time.Now(), ErrNoInjectedProvider)
	output := buf.String()
	if !strings.Contains(output, `"level":"error"`) {
		t.Errorf("Expected error level, got %s", output)
	}
	if !strings.Contains(output, string(ErrorTypeNoInjectedProvider)) {
		t.Errorf("Expected error type in output, got %s", output)
	}

	buf.Reset()
	LogOperation(logrus.NewEntry(logger), OpConnect, time.Now(), nil)
	if !strings.Contains(buf.String(), "Operation completed successfully") {
		t.Errorf("Expected success message, got %s", buf.String())
	}
}
