//go:build windows

package notification

import (
	"log"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbIconError       = 0x00000010
	mbIconInformation = 0x00000040
	mbTopmost         = 0x00040000
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

func showMessage(title, message string, isError bool) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		log.Printf("notification: title: %v", err)
		return
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		log.Printf("notification: message: %v", err)
		return
	}
	icon := uintptr(mbIconInformation)
	if isError {
		icon = mbIconError
	}
	procMessageBoxW.Call(
		0, // no owner window
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(mbOK|mbTopmost)|icon,
	)
}
