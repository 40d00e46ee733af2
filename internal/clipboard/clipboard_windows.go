//go:build windows

package clipboard

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procOpenClipboard    = user32.NewProc("OpenClipboard")
	procCloseClipboard   = user32.NewProc("CloseClipboard")
	procEmptyClipboard   = user32.NewProc("EmptyClipboard")
	procSetClipboardData = user32.NewProc("SetClipboardData")
	procGlobalAlloc      = kernel32.NewProc("GlobalAlloc")
	procGlobalLock       = kernel32.NewProc("GlobalLock")
	procGlobalUnlock     = kernel32.NewProc("GlobalUnlock")
	procGlobalFree       = kernel32.NewProc("GlobalFree")
)

const (
	cfDIB        = 8
	gmemMoveable = 0x0002
)

func copyDIB(dib []byte) error {
	if ret, _, _ := procOpenClipboard.Call(0); ret == 0 {
		return errors.New("open clipboard failed")
	}
	defer procCloseClipboard.Call()

	procEmptyClipboard.Call()

	hMem, _, _ := procGlobalAlloc.Call(gmemMoveable, uintptr(len(dib)))
	if hMem == 0 {
		return errors.New("allocate clipboard memory failed")
	}
	pMem, _, _ := procGlobalLock.Call(hMem)
	if pMem == 0 {
		procGlobalFree.Call(hMem)
		return errors.New("lock clipboard memory failed")
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(pMem)), len(dib)), dib)
	procGlobalUnlock.Call(hMem)

	// The clipboard owns hMem once SetClipboardData succeeds.
	if ret, _, _ := procSetClipboardData.Call(cfDIB, hMem); ret == 0 {
		procGlobalFree.Call(hMem)
		return errors.New("set clipboard data failed")
	}
	return nil
}
