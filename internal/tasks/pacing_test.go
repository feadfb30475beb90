package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/skylist/internal/shared"
)

func TestNewFixedPacer_Defaults(t *testing.T) {
	tests := []struct {
		name        string
		cfg         shared.PacingConfig
		wantSuccess time.Duration
		wantFailure time.Duration
		wantPage    time.Duration
	}{
		{
			name:        "zero config falls back to defaults",
			cfg:         shared.PacingConfig{},
			wantSuccess: 200 * time.Millisecond,
			wantFailure: time.Second,
			wantPage:    100 * time.Millisecond,
		},
		{
			name:        "configured values are used",
			cfg:         shared.PacingConfig{WriteDelayMS: 50, FailureDelayMS: 500, PageDelayMS: 25},
			wantSuccess: 50 * time.Millisecond,
			wantFailure: 500 * time.Millisecond,
			wantPage:    25 * time.Millisecond,
		},
		{
			name:        "negative values fall back to defaults",
			cfg:         shared.PacingConfig{WriteDelayMS: -1, FailureDelayMS: -1, PageDelayMS: -1},
			wantSuccess: 200 * time.Millisecond,
			wantFailure: time.Second,
			wantPage:    100 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFixedPacer(tt.cfg)
			if p.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", p.Success, tt.wantSuccess)
			}
			if p.Failure != tt.wantFailure {
				t.Errorf("Failure = %v, want %v", p.Failure, tt.wantFailure)
			}
			if p.Page != tt.wantPage {
				t.Errorf("Page = %v, want %v", p.Page, tt.wantPage)
			}
		})
	}
}

func TestFixedPacer_Wait(t *testing.T) {
	p := &FixedPacer{
		Success: 10 * time.Millisecond,
		Failure: 40 * time.Millisecond,
		Page:    5 * time.Millisecond,
	}

	tests := []struct {
		name    string
		outcome Outcome
		want    time.Duration
	}{
		{"success delay", OutcomeSuccess, 10 * time.Millisecond},
		{"failure delay is longer", OutcomeFailure, 40 * time.Millisecond},
		{"page delay", OutcomePage, 5 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			if err := p.Wait(context.Background(), tt.outcome); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if elapsed := time.Since(start); elapsed < tt.want {
				t.Errorf("elapsed = %v, want at least %v", elapsed, tt.want)
			}
		})
	}
}

func TestFixedPacer_Wait_Cancelled(t *testing.T) {
	p := &FixedPacer{Success: time.Hour, Failure: time.Hour, Page: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx, OutcomeSuccess); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLimiterPacer_Wait(t *testing.T) {
	// Burst of one: the second wait must sit out roughly a full token interval.
	p := NewLimiterPacer(50, time.Minute)

	ctx := context.Background()
	if err := p.Wait(ctx, OutcomeSuccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := p.Wait(ctx, OutcomeSuccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 10ms", elapsed)
	}
}

func TestLimiterPacer_Wait_FailureBackoff(t *testing.T) {
	p := NewLimiterPacer(1000, 20*time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background(), OutcomeFailure); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 20ms", elapsed)
	}
}
