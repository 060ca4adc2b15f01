package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segyhp/xp-lending/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockReminderJob struct {
	mock.Mock
}

func (m *mockReminderJob) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	args := m.Called(ctx, window)
	return args.Int(0), args.Error(1)
}

func TestSetupCronJobs(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		expectError bool
	}{
		{name: "daily at nine", spec: "0 0 9 * * *"},
		{name: "five field spec rejected with seconds parser", spec: "0 9 * * *", expectError: true},
		{name: "garbage", spec: "whenever", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Scheduler: config.SchedulerConfig{ReminderSpec: tt.spec, ReminderWindow: time.Hour}}
			c := cron.New(cron.WithSeconds())

			err := setupCronJobs(c, cfg, &mockReminderJob{})

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, c.Entries())
				return
			}
			assert.NoError(t, err)
			assert.Len(t, c.Entries(), 1)
		})
	}
}

func TestRunReminders(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(job *mockReminderJob)
	}{
		{
			name: "passes the window",
			setupMocks: func(job *mockReminderJob) {
				job.On("SendDueReminders", mock.Anything, 72*time.Hour).Return(2, nil)
			},
		},
		{
			name: "failure is logged not raised",
			setupMocks: func(job *mockReminderJob) {
				job.On("SendDueReminders", mock.Anything, 72*time.Hour).Return(1, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &mockReminderJob{}
			tt.setupMocks(job)

			assert.NotPanics(t, func() { runReminders(job, 72*time.Hour) })
			job.AssertExpectations(t)
		})
	}
}
