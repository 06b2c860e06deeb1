//go:build windows

package main

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	processPerMonitorDPIAware = 2
	eAccessDenied             = 0x80070005
)

var (
	shcore = windows.NewLazySystemDLL("Shcore.dll")
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
)

// enableDPIAwareness makes robotgo window bounds and kbinani display bounds
// agree in physical pixels on scaled monitors.
func enableDPIAwareness() error {
	if procSetProcessDpiAwareness.Find() == nil {
		hr, _, _ := procSetProcessDpiAwareness.Call(processPerMonitorDPIAware)
		switch uint32(hr) {
		case 0, eAccessDenied: // already set, e.g. by a manifest
			return nil
		}
		return fmt.Errorf("SetProcessDpiAwareness: HRESULT 0x%08x", uint32(hr))
	}
	if err := procSetProcessDPIAware.Find(); err != nil {
		return fmt.Errorf("no DPI awareness API: %w", err)
	}
	if ok, _, _ := procSetProcessDPIAware.Call(); ok == 0 {
		return errors.New("SetProcessDPIAware failed")
	}
	return nil
}
