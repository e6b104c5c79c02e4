package aula

import "testing"

func TestStatusIsValid(t *testing.T) {
	valid := []Status{
		StatusCreated, StatusUploadInProgress, StatusAwaitingTranscription,
		StatusTranscribing, StatusAnalyzing, StatusCompleted, StatusFailed,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("Status(%q).IsValid() = false, want true", s)
		}
	}
	for _, s := range []Status{"", "UPLOADED", "created"} {
		if s.IsValid() {
			t.Errorf("Status(%q).IsValid() = true, want false", s)
		}
	}
}

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "created to upload in progress", from: StatusCreated, to: StatusUploadInProgress, want: true},
		{name: "created to awaiting transcription", from: StatusCreated, to: StatusAwaitingTranscription, want: false},
		// retried session creations are idempotent
		{name: "upload in progress self loop", from: StatusUploadInProgress, to: StatusUploadInProgress, want: true},
		{name: "upload in progress to awaiting transcription", from: StatusUploadInProgress, to: StatusAwaitingTranscription, want: true},
		{name: "upload in progress to failed", from: StatusUploadInProgress, to: StatusFailed, want: true},
		// no way back to created
		{name: "upload in progress back to created", from: StatusUploadInProgress, to: StatusCreated, want: false},
		{name: "awaiting transcription back to created", from: StatusAwaitingTranscription, to: StatusCreated, want: false},
		{name: "awaiting transcription to upload in progress", from: StatusAwaitingTranscription, to: StatusUploadInProgress, want: false},
		{name: "awaiting transcription to transcribing", from: StatusAwaitingTranscription, to: StatusTranscribing, want: true},
		{name: "transcribing to analyzing", from: StatusTranscribing, to: StatusAnalyzing, want: true},
		{name: "analyzing to completed", from: StatusAnalyzing, to: StatusCompleted, want: true},
		{name: "completed is terminal", from: StatusCompleted, to: StatusFailed, want: false},
		{name: "failed is terminal", from: StatusFailed, to: StatusUploadInProgress, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
