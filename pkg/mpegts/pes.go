// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/tspsi/pkg/base"
)

// -----------------------------------------------------------
// <iso13818-1.pdf>
// <2.4.3.6 PES packet> <page 49/174>
// <Table E.1 - PES packet header example> <page 142/174>
// <F.0.2 PES packet> <page 144/174>
// packet_start_code_prefix  [24b] *** always 0x00, 0x00, 0x01
// stream_id                 [8b]  *
// PES_packet_length         [16b] **
// '10'                      [2b]
// PES_scrambling_control    [2b]
// PES_priority              [1b]
// data_alignment_indicator  [1b]
// copyright                 [1b]
// original_or_copy          [1b]  *
// PTS_DTS_flags             [2b]
// ESCR_flag                 [1b]
// ES_rate_flag              [1b]
// DSM_trick_mode_flag       [1b]
// additional_copy_info_flag [1b]
// PES_CRC_flag              [1b]
// PES_extension_flag        [1b]  *
// PES_header_data_length    [8b]  *
// -----------------------------------------------------------
type Pes struct {
	StreamId        uint8
	PesPacketLength uint16
	PtsDtsFlag      uint8
	Pts             uint64 // 90kHz
	Dts             uint64 // 90kHz，没有时等于Pts
}

// ParsePesHeader 解析PES头
//
// 只用于探测展示PTS/DTS，ES数据本身不做处理。
//
// @return length: PES头占用的字节数，即ES数据的起始位置
//
func ParsePesHeader(b []byte) (pes Pes, length int, err error) {
	if len(b) < 9 {
		return pes, 0, base.NewErrShortBuffer(9, len(b), "parse pes header")
	}
	br := nazabits.NewBitReader(b)
	pscp, _ := br.ReadBits32(24)
	if pscp != 0x000001 {
		return pes, 0, base.NewErrMalformed("pes packet start code prefix not found")
	}
	pes.StreamId, _ = br.ReadBits8(8)
	pes.PesPacketLength, _ = br.ReadBits16(16)

	_, _ = br.ReadBits8(8)
	pes.PtsDtsFlag, _ = br.ReadBits8(2)
	_, _ = br.ReadBits8(6)
	var phdl uint8
	phdl, _ = br.ReadBits8(8)

	length = 9 + int(phdl)
	if len(b) < length {
		return pes, 0, base.NewErrShortBuffer(length, len(b), "parse pes header data")
	}

	// PTS占5字节，PTS+DTS占10字节，header data length必须容得下
	if pes.PtsDtsFlag&0x2 != 0 {
		if phdl < 5 {
			return pes, 0, base.NewErrMalformed("pes header data length too small for pts")
		}
		_, pes.Pts = readPts(b[9:])
	}
	if pes.PtsDtsFlag&0x1 != 0 {
		if phdl < 10 {
			return pes, 0, base.NewErrMalformed("pes header data length too small for dts")
		}
		_, pes.Dts = readPts(b[14:])
	} else {
		pes.Dts = pes.Pts
	}
	return
}

// read pts or dts
func readPts(b []byte) (fb uint8, pts uint64) {
	fb = b[0] >> 4
	pts |= uint64((b[0]>>1)&0x07) << 30
	pts |= (uint64(b[1])<<8 | uint64(b[2])) >> 1 << 15
	pts |= (uint64(b[3])<<8 | uint64(b[4])) >> 1
	return
}
