// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindSurvivesWrapping(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("saving: %w", &Error{Kind: KindUpstream, Message: "upload failed", Err: base})

	if got := KindOf(err); got != KindUpstream {
		t.Errorf("KindOf() = %v, want %v", got, KindUpstream)
	}
	if !errors.Is(err, base) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if KindOf(base) != 0 {
		t.Error("plain errors have no kind")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{validationError("title is required"), "title is required"},
		{&Error{Kind: KindUpstream, Message: "upload failed", Err: errors.New("timeout")}, "upload failed: timeout"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
	if KindNotFound.String() != "not found" {
		t.Errorf("String() = %q", KindNotFound.String())
	}
}
