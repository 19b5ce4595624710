package anonsessionv1

import (
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestEncodeDecode_UpdateSessionRequest(t *testing.T) {
	off := false
	size := "large"
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	in := &UpdateSessionRequest{
		Preferences: &PreferencesPatch{
			Notifications: &off,
			Accessibility: &AccessibilityPatch{FontSize: &size},
		},
		LastActive: &at,
	}
	s, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	prefs := s.Fields["preferences"].GetStructValue()
	if prefs == nil {
		t.Fatalf("preferences not encoded: %v", s)
	}
	if _, ok := prefs.Fields["real_time_updates"]; ok {
		t.Error("unset patch fields must be omitted")
	}

	var out UpdateSessionRequest
	if err := Decode(s, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Preferences == nil || out.Preferences.Notifications == nil || *out.Preferences.Notifications {
		t.Errorf("notifications = %+v", out.Preferences)
	}
	if out.Preferences.RealTimeUpdates != nil {
		t.Error("real_time_updates should stay unset")
	}
	if out.Preferences.Accessibility == nil || *out.Preferences.Accessibility.FontSize != "large" {
		t.Errorf("accessibility = %+v", out.Preferences.Accessibility)
	}
	if out.LastActive == nil || !out.LastActive.Equal(at) {
		t.Errorf("last_active = %v, want %v", out.LastActive, at)
	}
}

func TestEncode_NilAndEmpty(t *testing.T) {
	var req *CreateSessionRequest
	s, err := Encode(req)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	if len(s.Fields) != 0 {
		t.Errorf("fields = %v, want none", s.Fields)
	}
	s, err = Encode(&CreateSessionRequest{})
	if err != nil || len(s.Fields) != 0 {
		t.Errorf("Encode(empty) = %v, %v", s, err)
	}
}

func TestDecode_Nil(t *testing.T) {
	var out TrackActivityRequest
	if err := Decode(nil, &out); err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
	if out.ActivityType != "" {
		t.Errorf("ActivityType = %q", out.ActivityType)
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{"activity_type": 42})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	var out TrackActivityRequest
	if err := Decode(s, &out); err == nil {
		t.Error("Decode should fail for a number in a string field")
	}
}
