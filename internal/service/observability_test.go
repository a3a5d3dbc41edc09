package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_SuccessLine(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "recompute",
		Duration: 12 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"schedule_id": "abc-123"},
	})

	line := buf.String()
	assert.Contains(t, line, "level=INFO")
	assert.Contains(t, line, "use_case=recompute")
	assert.Contains(t, line, "duration_ms=12")
	assert.Contains(t, line, "success=true")
	assert.Contains(t, line, "schedule_id=abc-123")
}

func TestLogUseCaseObserver_SchedulingFailureWarnsWithCode(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:    "recompute",
		Success: false,
		Err: &contract.RecomputeError{
			Code:    contract.RecomputeCycle,
			Message: "dependency cycle detected: A100 -> B200 -> A100",
		},
	})

	line := buf.String()
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, "error_code=CYCLE")
	assert.Contains(t, line, "success=false")
}

func TestLogUseCaseObserver_UnexpectedFailureIsError(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:    "import_schedule",
		Success: false,
		Err:     errors.New("disk gone"),
	})

	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "disk gone")
}

func TestLogUseCaseObserver_NilWriterIsNoop(t *testing.T) {
	obs := NewLogUseCaseObserver(nil)

	_, ok := obs.(NoopUseCaseObserver)
	assert.True(t, ok)
}
