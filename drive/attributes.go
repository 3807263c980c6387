package drive

import (
	"context"

	"github.com/FoxDenHome/tapectl/mam"
	"github.com/FoxDenHome/tapectl/scsi"
	"github.com/FoxDenHome/tapectl/scsi/dispatch"
)

// Attribute reads one raw MAM attribute and runs it through the
// adaptive codec. An Unparsed record is a valid outcome the caller must
// handle; only transport, handle and command faults are errors.
func (d *TapeDrive) Attribute(ctx context.Context, id mam.AttributeID, partition uint8) (*mam.Record, error) {
	dev, err := d.device()
	if err != nil {
		return nil, err
	}

	res, data, err := d.exec.Execute(ctx, dev, scsi.ReadAttribute(partition, uint16(id)))
	if err != nil {
		return nil, err
	}
	if err := dispatch.ResultError(res); err != nil {
		return nil, err
	}

	return mam.Decode(id, partition, data), nil
}

// MediumSerial reads the medium serial number from MAM. An unparsed
// record yields an empty string, not an error.
func (d *TapeDrive) MediumSerial(ctx context.Context) (string, error) {
	record, err := d.Attribute(ctx, mam.ATTR_SERIAL_NUMBER, 0)
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

// Barcode reads the barcode label stored in MAM.
func (d *TapeDrive) Barcode(ctx context.Context) (string, error) {
	record, err := d.Attribute(ctx, mam.ATTR_BARCODE, 0)
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

// Manufacturer reads the medium manufacturer from MAM.
func (d *TapeDrive) Manufacturer(ctx context.Context) (string, error) {
	record, err := d.Attribute(ctx, mam.ATTR_MANUFACTURER, 0)
	if err != nil {
		return "", err
	}
	return record.Value, nil
}
