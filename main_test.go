package main

import (
	"os"
	"testing"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}

	if AppName != "Trail of Thorns Movement Server" {
		t.Errorf("Expected app name 'Trail of Thorns Movement Server', got %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	// Requires the stage directory to exist relative to the working directory
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test: configs directory not found")
	}

	originalStageDir := *stageDir
	*stageDir = "configs"
	defer func() { *stageDir = originalStageDir }()

	battleService, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if battleService == nil {
		t.Error("Battle service should not be nil")
	}
}

func TestInitializeServices_InvalidStageDir(t *testing.T) {
	originalStageDir := *stageDir
	*stageDir = "/non/existent/path"
	defer func() { *stageDir = originalStageDir }()

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for invalid stage directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port < 1 || *port > 65535 {
		t.Errorf("Default port %d is out of valid range", *port)
	}

	if *host == "" {
		t.Error("Default host should not be empty")
	}

	if *stageDir == "" {
		t.Error("Default stage directory should not be empty")
	}
}

func TestServiceInitialization(t *testing.T) {
	// Ensure service wiring does not panic even when the stage directory is missing
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Service initialization panicked: %v", r)
		}
	}()

	originalStageDir := *stageDir
	*stageDir = "/definitely/not/a/real/dir"
	defer func() { *stageDir = originalStageDir }()

	_, _ = initializeServices()
}
