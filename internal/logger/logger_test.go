package logger

import "testing"

func TestInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("New must return a usable no-op logger")
	}

	if err := l.Init("Info"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Log == nil {
		t.Fatal("expected a built logger")
	}
}

func TestInit_UnknownLevel(t *testing.T) {
	l := New()
	if err := l.Init("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
