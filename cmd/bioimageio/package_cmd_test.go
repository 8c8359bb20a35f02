package main

import (
	"path/filepath"
	"testing"
)

func TestDefaultPackagePath_Zip(t *testing.T) {
	got := defaultPackagePath(filepath.Join("models", "rdf.yaml"), false)
	want := filepath.Join("models", "rdf.bioimageio.zip")
	if got != want {
		t.Fatalf("defaultPackagePath() = %q, want %q", got, want)
	}
}

func TestDefaultPackagePath_Folder(t *testing.T) {
	got := defaultPackagePath(filepath.Join("models", "rdf.yaml"), true)
	want := filepath.Join("models", "rdf.bioimageio")
	if got != want {
		t.Fatalf("defaultPackagePath() = %q, want %q", got, want)
	}
}
