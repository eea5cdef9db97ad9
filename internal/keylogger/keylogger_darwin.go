//go:build darwin
// +build darwin

package keylogger

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <ApplicationServices/ApplicationServices.h>

extern void goKeyDownCallback(int keycode, int isRepeat);

static CFRunLoopRef tapRunLoop = NULL;
static CGEventFlags previousFlags = 0;

static CGEventRef eventCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    if (type == kCGEventKeyDown) {
        CGKeyCode keycode = (CGKeyCode)CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
        int isRepeat = (int)CGEventGetIntegerValueField(event, kCGKeyboardEventAutorepeat);
        goKeyDownCallback((int)keycode, isRepeat);
    } else if (type == kCGEventFlagsChanged) {
        // A modifier counts as pressed when its flag is newly set
        CGEventFlags currentFlags = CGEventGetFlags(event);
        CGKeyCode keycode = (CGKeyCode)CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
        CGEventFlags diff = currentFlags ^ previousFlags;
        if ((currentFlags & diff) != 0) {
            goKeyDownCallback((int)keycode, 0);
        }
        previousFlags = currentFlags;
    }
    return event;
}

static CFMachPortRef createEventTap() {
    CGEventMask eventMask = CGEventMaskBit(kCGEventKeyDown) | CGEventMaskBit(kCGEventFlagsChanged);
    return CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        eventMask,
        eventCallback,
        NULL
    );
}

static int isEventTapValid(CFMachPortRef eventTap) {
    return eventTap != NULL;
}

static int checkAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

static void runEventLoop(CFMachPortRef eventTap) {
    CFRunLoopSourceRef runLoopSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, eventTap, 0);
    tapRunLoop = CFRunLoopGetCurrent();
    CFRunLoopAddSource(tapRunLoop, runLoopSource, kCFRunLoopCommonModes);
    CGEventTapEnable(eventTap, true);
    CFRunLoopRun();
    CGEventTapEnable(eventTap, false);
    CFRunLoopRemoveSource(tapRunLoop, runLoopSource, kCFRunLoopCommonModes);
    CFRelease(runLoopSource);
    CFRelease(eventTap);
    tapRunLoop = NULL;
}

static void stopEventLoop() {
    if (tapRunLoop != NULL) {
        CFRunLoopStop(tapRunLoop);
    }
}
*/
import "C"
import (
	"runtime"
	"sync"
)

var (
	keystrokeChan chan int
	mu            sync.Mutex
	running       bool
)

//export goKeyDownCallback
func goKeyDownCallback(keycode C.int, isRepeat C.int) {
	// Holding a key counts as one press
	if isRepeat != 0 {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if keystrokeChan != nil {
		select {
		case keystrokeChan <- int(keycode):
		default:
			// Channel full, drop keystroke
		}
	}
}

// CheckAccessibilityPermissions returns true if the app has accessibility permissions
func CheckAccessibilityPermissions() bool {
	return C.checkAccessibilityPermissions() != 0
}

// Start begins capturing key presses and returns a channel of keycodes.
func Start() (<-chan int, error) {
	mu.Lock()
	defer mu.Unlock()

	if running {
		return nil, ErrAlreadyRunning
	}

	if !CheckAccessibilityPermissions() {
		return nil, ErrPermission
	}

	keystrokeChan = make(chan int, 1000)
	running = true

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		eventTap := C.createEventTap()
		if C.isEventTapValid(eventTap) == 0 {
			Stop()
			return
		}
		C.runEventLoop(eventTap)
	}()

	return keystrokeChan, nil
}

// Stop stops the event tap and closes the keycode channel.
func Stop() {
	C.stopEventLoop()

	mu.Lock()
	defer mu.Unlock()
	if keystrokeChan != nil {
		close(keystrokeChan)
		keystrokeChan = nil
	}
	running = false
}
