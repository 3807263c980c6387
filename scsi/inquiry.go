package scsi

import (
	"strings"
	"time"
)

const (
	VPD_PAGE_UNIT_SERIAL = 0x80

	INQUIRY_ALLOC = 96
)

func Inquiry() Command {
	cdb := []byte{
		INQUIRY, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	putUint16(cdb[3:], INQUIRY_ALLOC)
	return CommandIn(cdb, INQUIRY_ALLOC, 10*time.Second)
}

func InquiryVPD(page uint8) Command {
	cdb := []byte{
		INQUIRY,
		0x01, // EVPD
		page,
		0x00, 0x00,
		0x00,
	}
	putUint16(cdb[3:], INQUIRY_ALLOC)
	return CommandIn(cdb, INQUIRY_ALLOC, 10*time.Second)
}

type InquiryData struct {
	Vendor   string
	Product  string
	Revision string
}

func ParseInquiry(resp []byte) *InquiryData {
	data := &InquiryData{}
	if len(resp) >= 16 {
		data.Vendor = trimField(resp[8:16])
	}
	if len(resp) >= 32 {
		data.Product = trimField(resp[16:32])
	}
	if len(resp) >= 36 {
		data.Revision = trimField(resp[32:36])
	}
	return data
}

// ParseUnitSerial decodes the unit serial number VPD page (0x80).
func ParseUnitSerial(resp []byte) string {
	if len(resp) < 4 {
		return ""
	}
	length := int(resp[3])
	if 4+length > len(resp) {
		length = len(resp) - 4
	}
	return trimField(resp[4 : 4+length])
}

func trimField(field []byte) string {
	return strings.Trim(string(field), " \x00")
}
