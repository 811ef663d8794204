// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// 固定分配的PID
// <iso13818-1.pdf> <Table 2-3> 以及 <en300468> <Table 1>
const (
	PidPat  uint16 = 0x0000 // program_association_section
	PidCat  uint16 = 0x0001 // conditional_access_section
	PidTsdt uint16 = 0x0002 // transport_stream_description_section
	PidNit  uint16 = 0x0010 // NIT, ST
	PidSdt  uint16 = 0x0011 // SDT, BAT, ST
	PidEit  uint16 = 0x0012 // EIT, ST, CIT
	PidRst  uint16 = 0x0013 // RST, ST
	PidTdt  uint16 = 0x0014 // TDT, TOT, ST
	PidDit  uint16 = 0x001e
	PidSit  uint16 = 0x001f
	PidNull uint16 = 0x1fff
)

// IsFixedSectionPid pid是否为固定携带PSI/SI section的PID
//
// 注意，PMT的PID不固定，由PAT动态指定，不在本函数范围内
//
func IsFixedSectionPid(pid uint16) bool {
	switch pid {
	case PidPat, PidCat, PidTsdt, PidNit, PidSdt, PidEit, PidRst, PidTdt, PidDit, PidSit:
		return true
	}
	return false
}

func DescribePid(pid uint16) string {
	switch pid {
	case PidPat:
		return "PAT"
	case PidCat:
		return "CAT"
	case PidTsdt:
		return "TSDT"
	case PidNit:
		return "NIT"
	case PidSdt:
		return "SDT"
	case PidEit:
		return "EIT"
	case PidRst:
		return "RST"
	case PidTdt:
		return "TDT"
	case PidDit:
		return "DIT"
	case PidSit:
		return "SIT"
	case PidNull:
		return "NULL"
	}
	return "OTHER"
}
