// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// table_id取值
// <iso13818-1.pdf> <Table 2-26> 以及 <en300468> <Table 2>
const (
	TableIdPat                 uint8 = 0x00
	TableIdCat                 uint8 = 0x01
	TableIdPmt                 uint8 = 0x02
	TableIdTsdt                uint8 = 0x03
	TableIdNitActual           uint8 = 0x40
	TableIdNitOther            uint8 = 0x41
	TableIdSdtActual           uint8 = 0x42
	TableIdSdtOther            uint8 = 0x46
	TableIdBat                 uint8 = 0x4a
	TableIdEitActualPf         uint8 = 0x4e
	TableIdEitOtherPf          uint8 = 0x4f
	TableIdEitActualScheduleLo uint8 = 0x50
	TableIdEitActualScheduleHi uint8 = 0x5f
	TableIdEitOtherScheduleLo  uint8 = 0x60
	TableIdEitOtherScheduleHi  uint8 = 0x6f
	TableIdTdt                 uint8 = 0x70
	TableIdRst                 uint8 = 0x71
	TableIdTot                 uint8 = 0x73
	TableIdForbidden           uint8 = 0xff
)

// IsSdtTableId SDT section的table_id，分actual和other两种
func IsSdtTableId(tid uint8) bool {
	return tid == TableIdSdtActual || tid == TableIdSdtOther
}

// IsEitTableId EIT section的table_id，范围[0x4e, 0x6f]
func IsEitTableId(tid uint8) bool {
	return tid >= TableIdEitActualPf && tid <= TableIdEitOtherScheduleHi
}

func DescribeTableId(tid uint8) string {
	switch {
	case tid == TableIdPat:
		return "PAT"
	case tid == TableIdCat:
		return "CAT"
	case tid == TableIdPmt:
		return "PMT"
	case tid == TableIdTsdt:
		return "TSDT"
	case tid == TableIdNitActual || tid == TableIdNitOther:
		return "NIT"
	case IsSdtTableId(tid):
		return "SDT"
	case tid == TableIdBat:
		return "BAT"
	case IsEitTableId(tid):
		return "EIT"
	case tid == TableIdTdt:
		return "TDT"
	case tid == TableIdRst:
		return "RST"
	case tid == TableIdTot:
		return "TOT"
	}
	return "OTHER"
}
