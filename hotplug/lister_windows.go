//go:build windows

package hotplug

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const maxTapeDevices = 10

// probeLister enumerates tape devices by opening the well-known
// \\.\TapeN names. A failed open means the device is not present.
type probeLister struct{}

func DefaultLister() Lister {
	return &probeLister{}
}

func (l *probeLister) List() ([]string, error) {
	var devices []string
	for i := 0; i < maxTapeDevices; i++ {
		name := fmt.Sprintf(`\\.\Tape%d`, i)
		pathPtr, err := windows.UTF16PtrFromString(name)
		if err != nil {
			continue
		}

		handle, err := windows.CreateFile(pathPtr,
			0, // presence probe only, no access rights needed
			windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
			nil, windows.OPEN_EXISTING, 0, 0)
		if err != nil {
			continue
		}
		_ = windows.CloseHandle(handle)

		devices = append(devices, name)
	}
	return devices, nil
}
