package drive

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pkg/xattr"
	log "github.com/sirupsen/logrus"

	"github.com/FoxDenHome/tapectl/tools"
)

// LTFS exposes the volume name of a mounted filesystem as a virtual
// extended attribute on the mount point.
const XATTR_VOLUME_NAME = "user.ltfs.volumeName"

// FormatWithLabel formats the loaded medium and labels it with the
// given barcode, then records the serial-to-barcode mapping in the
// label store. Bookkeeping failures after a successful format are
// reported and logged but never turn the format into a failure: the
// medium is usable either way.
func (d *TapeDrive) FormatWithLabel(ctx context.Context, barcode string) (*tools.Record, error) {
	if d.tools == nil {
		return nil, errors.New("no vendor tools configured")
	}

	record, err := d.tools.Format(ctx, d.path, barcode)
	if err != nil {
		return record, err
	}

	d.verifyLabel(barcode)
	d.recordMapping(ctx, barcode)

	return record, nil
}

// verifyLabel cross-checks the written volume name against the LTFS
// xattr on the mount point, when one is configured and mounted. A
// mismatch is worth an operator notification; an absent attribute just
// means no filesystem is mounted there.
func (d *TapeDrive) verifyLabel(barcode string) {
	if d.mountPoint == "" {
		return
	}

	nameBytes, err := xattr.Get(d.mountPoint, XATTR_VOLUME_NAME)
	if err != nil {
		if !errors.Is(err, xattr.ENOATTR) {
			log.WithField("mount", d.mountPoint).Warnf("failed to get %s xattr: %v", XATTR_VOLUME_NAME, err)
		}
		return
	}

	if string(nameBytes) != barcode {
		d.notifier.Critical("label mismatch",
			fmt.Sprintf("formatted %s as %s but volume reads back as %s", d.path, barcode, string(nameBytes)))
	}
}

func (d *TapeDrive) recordMapping(ctx context.Context, barcode string) {
	if d.store == nil {
		return
	}

	serial, err := d.MediumSerial(ctx)
	if err != nil {
		log.WithField("device", d.path).Warnf("cannot read medium serial for label bookkeeping: %v", err)
		return
	}
	if serial == "" {
		log.WithField("device", d.path).Warn("medium serial attribute did not decode, skipping label bookkeeping")
		return
	}

	if err := d.store.UpdateMapping(serial, barcode); err != nil {
		log.WithFields(log.Fields{
			"serial":  serial,
			"barcode": barcode,
		}).Warnf("failed to record label mapping: %v", err)
		d.notifier.Critical("label store failure",
			fmt.Sprintf("medium %s was formatted as %s but the mapping could not be stored: %v", serial, barcode, err))
	}
}

// Mount makes the loaded medium's filesystem reachable at the mount
// point through the vendor assign tool; Unmount reverses it.
func (d *TapeDrive) Mount(ctx context.Context) error {
	if d.tools == nil {
		return errors.New("no vendor tools configured")
	}
	_, err := d.tools.Assign(ctx, d.path, d.mountPoint)
	return err
}

func (d *TapeDrive) Unmount(ctx context.Context) error {
	if d.tools == nil {
		return errors.New("no vendor tools configured")
	}
	_, err := d.tools.Unassign(ctx, d.path)
	return err
}

// Check runs the vendor consistency check against the loaded medium.
func (d *TapeDrive) Check(ctx context.Context) (*tools.Record, error) {
	if d.tools == nil {
		return nil, errors.New("no vendor tools configured")
	}
	return d.tools.Check(ctx, d.path)
}
