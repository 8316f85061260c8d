//go:build windows

package powerstate

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterClassExW                   = user32.NewProc("RegisterClassExW")
	procCreateWindowExW                    = user32.NewProc("CreateWindowExW")
	procDestroyWindow                      = user32.NewProc("DestroyWindow")
	procDefWindowProcW                     = user32.NewProc("DefWindowProcW")
	procGetMessageW                        = user32.NewProc("GetMessageW")
	procTranslateMessage                   = user32.NewProc("TranslateMessage")
	procDispatchMessageW                   = user32.NewProc("DispatchMessageW")
	procPostMessageW                       = user32.NewProc("PostMessageW")
	procPostQuitMessage                    = user32.NewProc("PostQuitMessage")
	procSetWindowLongPtrW                  = user32.NewProc("SetWindowLongPtrW")
	procGetWindowLongPtrW                  = user32.NewProc("GetWindowLongPtrW")
	procRegisterPowerSettingNotification   = user32.NewProc("RegisterPowerSettingNotification")
	procUnregisterPowerSettingNotification = user32.NewProc("UnregisterPowerSettingNotification")
)

const (
	wmCreate         = 0x0001
	wmDestroy        = 0x0002
	wmClose          = 0x0010
	wmPowerBroadcast = 0x0218

	pbtAPMPowerStatusChange = 0x000A
	pbtPowerSettingChange   = 0x8013

	deviceNotifyWindowHandle = 0
)

var (
	// (HWND)-3, the parent of message-only windows.
	hwndMessage = ^uintptr(2)
	// GWLP_USERDATA
	gwlpUserData = -21

	sinkClassName = windows.StringToUTF16Ptr("PowerStateSink")

	registerClassOnce sync.Once
	sinkInstance      windows.Handle
	registerClassErr  error

	wndProcCallback = windows.NewCallback(wndProc)
)

// Power setting GUIDs the sink listens to.
var powerSettingGUIDs = []windows.GUID{
	mustGUID("{5D3E9A59-E9D5-4B00-A6BD-FF34FF516548}"), // GUID_ACDC_POWER_SOURCE
	mustGUID("{E00958C0-C213-4ACE-AC77-FECCED2EEEA5}"), // GUID_POWER_SAVING_STATUS
	mustGUID("{A7AD8041-B45A-4CAE-87A3-EECBB468A9E1}"), // GUID_BATTERY_PERCENTAGE_REMAINING
}

func mustGUID(s string) windows.GUID {
	g, err := windows.GUIDFromString(s)
	if err != nil {
		panic(err)
	}
	return g
}

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type createStruct struct {
	CreateParams uintptr
	Instance     windows.Handle
	Menu         windows.Handle
	Parent       windows.HWND
	Cy           int32
	Cx           int32
	Y            int32
	X            int32
	Style        int32
	Name         *uint16
	Class        *uint16
	ExStyle      uint32
}

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct {
		X, Y int32
	}
}

// registerWindowClass registers the sink window class once per process.
func registerWindowClass() (windows.Handle, error) {
	registerClassOnce.Do(func() {
		var instance windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
			registerClassErr = err
			return
		}

		wc := wndClassEx{
			WndProc:   wndProcCallback,
			Instance:  instance,
			ClassName: sinkClassName,
		}
		wc.Size = uint32(unsafe.Sizeof(wc))

		r1, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
		if r1 == 0 && !errors.Is(err, windows.ERROR_CLASS_ALREADY_EXISTS) {
			registerClassErr = err
			return
		}
		sinkInstance = instance
	})
	return sinkInstance, registerClassErr
}

// windowSink is a hidden message-only window. It lives on the thread that
// opened it, which must then run pump.
type windowSink struct {
	hwnd uintptr

	mu            sync.Mutex
	notifications []uintptr
}

var _ threadSink = &windowSink{}

func (s *windowSink) open(token uintptr) error {
	instance, err := registerWindowClass()
	if err != nil {
		return newError(KindSinkCreationFailed, "RegisterClassExW", err)
	}

	// WM_CREATE stores the token in the window's user data.
	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(sinkClassName)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		uintptr(instance),
		token,
	)
	if hwnd == 0 {
		return newError(KindSinkCreationFailed, "CreateWindowExW", err)
	}
	s.hwnd = hwnd

	for i := range powerSettingGUIDs {
		h, _, err := procRegisterPowerSettingNotification.Call(
			hwnd,
			uintptr(unsafe.Pointer(&powerSettingGUIDs[i])),
			deviceNotifyWindowHandle,
		)
		if h == 0 {
			s.unregister()
			// Releases the token through WM_DESTROY.
			_, _, _ = procDestroyWindow.Call(hwnd)
			return newError(KindSinkCreationFailed, "RegisterPowerSettingNotification", err)
		}
		s.mu.Lock()
		s.notifications = append(s.notifications, h)
		s.mu.Unlock()
	}

	logrus.WithField("hwnd", hwnd).Debug("power sink window created")

	return nil
}

func (s *windowSink) pump() {
	var m msg
	for {
		r1, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r1) {
		case 0:
			// WM_QUIT, posted by WM_DESTROY.
			return
		case -1:
			logrus.Errorf("GetMessageW failed: %v", err)
			s.unregister()
			_, _, _ = procDestroyWindow.Call(s.hwnd)
			return
		}
		_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (s *windowSink) unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.notifications {
		r1, _, err := procUnregisterPowerSettingNotification.Call(h)
		if r1 == 0 {
			logrus.Warnf("UnregisterPowerSettingNotification failed: %v", err)
		}
	}
	s.notifications = nil
}

func (s *windowSink) destroy() error {
	// DefWindowProc turns WM_CLOSE into DestroyWindow on the sink's own thread.
	r1, _, err := procPostMessageW.Call(s.hwnd, wmClose, 0, 0)
	if r1 == 0 {
		return err
	}
	return nil
}

func wndProc(hwnd, message, wparam, lparam uintptr) uintptr {
	logrus.Tracef("wndProc: %#x", message)

	switch message {
	case wmCreate:
		cs := (*createStruct)(unsafe.Pointer(lparam))
		setWindowToken(hwnd, cs.CreateParams)
	case wmPowerBroadcast:
		if wparam == pbtPowerSettingChange || wparam == pbtAPMPowerStatusChange {
			token := windowToken(hwnd)
			if token == 0 {
				logrus.Error("power sink window has no callback context")
			} else {
				dispatch(token)
			}
			return 1
		}
	case wmDestroy:
		token := windowToken(hwnd)
		setWindowToken(hwnd, 0)
		if token != 0 {
			release(token)
		}
		_, _, _ = procPostQuitMessage.Call(0)
		return 0
	}

	r1, _, _ := procDefWindowProcW.Call(hwnd, message, wparam, lparam)
	return r1
}

func setWindowToken(hwnd, token uintptr) {
	_, _, _ = procSetWindowLongPtrW.Call(hwnd, uintptr(gwlpUserData), token)
}

func windowToken(hwnd uintptr) uintptr {
	r1, _, _ := procGetWindowLongPtrW.Call(hwnd, uintptr(gwlpUserData))
	return r1
}
