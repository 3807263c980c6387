//go:build linux

package hotplug

import (
	"os"
	"path/filepath"
	"strings"
)

// Peripheral device types from the INQUIRY standard header.
const (
	DEVICE_TYPE_SEQUENTIAL_ACCESS = "1"
	DEVICE_TYPE_MEDIUM_CHANGER    = "8"
)

const sysClassSCSIGeneric = "/sys/class/scsi_generic"

// sysfsLister enumerates tape drives and changers through the generic
// SCSI class, reporting their /dev node paths as identities.
type sysfsLister struct {
	root string
}

func DefaultLister() Lister {
	return &sysfsLister{root: sysClassSCSIGeneric}
}

func (l *sysfsLister) List() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}

	var devices []string
	for _, entry := range entries {
		typeBytes, err := os.ReadFile(filepath.Join(l.root, entry.Name(), "device", "type"))
		if err != nil {
			// The device vanished between readdir and the type read.
			continue
		}

		devType := strings.TrimSpace(string(typeBytes))
		if devType != DEVICE_TYPE_SEQUENTIAL_ACCESS && devType != DEVICE_TYPE_MEDIUM_CHANGER {
			continue
		}

		devices = append(devices, "/dev/"+entry.Name())
	}

	return devices, nil
}
