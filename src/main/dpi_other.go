//go:build !windows

package main

func enableDPIAwareness() error { return nil }
