//go:build darwin && cgo

package powerstate

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation

#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/ps/IOPowerSources.h>

// copyPowerSourceDescriptions returns every power source description, in
// enumeration order, serialized as a binary property list.
static CFDataRef copyPowerSourceDescriptions(int *status) {
	CFTypeRef blob = IOPSCopyPowerSourcesInfo();
	if (blob == NULL) {
		*status = 1;
		return NULL;
	}

	CFArrayRef list = IOPSCopyPowerSourcesList(blob);
	if (list == NULL) {
		CFRelease(blob);
		*status = 2;
		return NULL;
	}

	CFMutableArrayRef descriptions = CFArrayCreateMutable(kCFAllocatorDefault, 0, &kCFTypeArrayCallBacks);
	CFIndex count = CFArrayGetCount(list);
	for (CFIndex i = 0; i < count; i++) {
		CFDictionaryRef desc = IOPSGetPowerSourceDescription(blob, CFArrayGetValueAtIndex(list, i));
		if (desc != NULL) {
			CFArrayAppendValue(descriptions, desc);
		}
	}

	CFDataRef data = CFPropertyListCreateData(kCFAllocatorDefault, descriptions, kCFPropertyListBinaryFormat_v1_0, 0, NULL);

	CFRelease(descriptions);
	CFRelease(list);
	CFRelease(blob);

	if (data == NULL) {
		*status = 3;
		return NULL;
	}
	*status = 0;
	return data;
}
*/
import "C"

import (
	"unsafe"

	"github.com/sirupsen/logrus"
)

var nativeBackend backend = darwinBackend{}

type darwinBackend struct{}

func (darwinBackend) query() (Status, error) {
	descriptors, err := copyDescriptors()
	if err != nil {
		return Status{}, err
	}
	logrus.Tracef("%d power source descriptions", len(descriptors))
	return NormalizeDescriptors(descriptors), nil
}

func (darwinBackend) newSink() (sink, error) {
	return &runLoopSink{}, nil
}

func copyDescriptors() ([]Descriptor, error) {
	var status C.int
	data := C.copyPowerSourceDescriptions(&status)
	switch status {
	case 0:
	case 1:
		return nil, newError(KindNativeQueryFailed, "IOPSCopyPowerSourcesInfo returned NULL", nil)
	case 2:
		return nil, newError(KindNativeQueryFailed, "IOPSCopyPowerSourcesList returned NULL", nil)
	default:
		return nil, newError(KindNativeQueryFailed, "failed to serialize power source descriptions", nil)
	}
	defer C.CFRelease(C.CFTypeRef(data))

	b := C.GoBytes(unsafe.Pointer(C.CFDataGetBytePtr(data)), C.int(C.CFDataGetLength(data)))

	descriptors, err := DecodeDescriptors(b)
	if err != nil {
		return nil, newError(KindNativeQueryFailed, "", err)
	}
	return descriptors, nil
}
