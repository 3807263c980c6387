package mam

import "fmt"

// AttributeID identifies one MAM attribute. The identifiers are stable
// across vendors; the value layouts are not, which is why Decode treats
// every value adaptively.
type AttributeID uint16

const (
	ATTR_MANUFACTURER           AttributeID = 0x0400
	ATTR_SERIAL_NUMBER          AttributeID = 0x0401
	ATTR_MEDIUM_LENGTH          AttributeID = 0x0402
	ATTR_MEDIUM_TYPE            AttributeID = 0x0408
	ATTR_APPLICATION_VENDOR     AttributeID = 0x0800
	ATTR_APPLICATION_NAME       AttributeID = 0x0801
	ATTR_BARCODE                AttributeID = 0x0806
	ATTR_MEDIUM_GLOBALLY_UNIQUE AttributeID = 0x0A01
)

func (id AttributeID) String() string {
	switch id {
	case ATTR_MANUFACTURER:
		return "manufacturer"
	case ATTR_SERIAL_NUMBER:
		return "serial-number"
	case ATTR_MEDIUM_LENGTH:
		return "medium-length"
	case ATTR_MEDIUM_TYPE:
		return "medium-type"
	case ATTR_BARCODE:
		return "barcode"
	case ATTR_APPLICATION_VENDOR:
		return "application-vendor"
	case ATTR_APPLICATION_NAME:
		return "application-name"
	case ATTR_MEDIUM_GLOBALLY_UNIQUE:
		return "medium-guid"
	default:
		return fmt.Sprintf("attribute-0x%04x", uint16(id))
	}
}
