// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"time"

	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/tspsi/pkg/base"
)

// Pcr program_clock_reference，27MHz时钟
//
// value = base * 300 + ext
//
type Pcr struct {
	Base uint64 // [33b] 90kHz部分
	Ext  uint16 // [9b]  27MHz余数部分，[0, 299]
}

// Value 27MHz时钟tick数
func (p Pcr) Value() uint64 {
	return p.Base*300 + uint64(p.Ext)
}

func (p Pcr) Duration() time.Duration {
	return time.Duration(p.Value() * 1000 / 27)
}

// ----------------------------------------------------------
// <iso13818-1.pdf> <Table 2-6> <page 40/174>
// adaptation_field_length              [8b] * 不包括自己这1字节
// discontinuity_indicator              [1b]
// random_access_indicator              [1b]
// elementary_stream_priority_indicator [1b]
// PCR_flag                             [1b]
// OPCR_flag                            [1b]
// splicing_point_flag                  [1b]
// transport_private_data_flag          [1b]
// adaptation_field_extension_flag      [1b] *
// -----if PCR_flag == 1-----
// program_clock_reference_base         [33b]
// reserved                             [6b]
// program_clock_reference_extension    [9b] ******
// ----------------------------------------------------------
type TsPacketAdaptation struct {
	Length          uint8
	Discontinuity   uint8
	RandomAccess    uint8
	EsPrio          uint8
	PcrFlag         uint8
	OpcrFlag        uint8
	SplicingFlag    uint8
	PrivateDataFlag uint8
	ExtensionFlag   uint8

	Pcr             Pcr
	Opcr            Pcr
	SpliceCountdown int8
	PrivateData     []byte
}

// ParseTsPacketAdaptation 解析adaptation field
//
// @param b: 从adaptation_field_length字节开始
//
func ParseTsPacketAdaptation(b []byte) (f TsPacketAdaptation, err error) {
	if len(b) < 1 {
		return f, base.NewErrShortBuffer(1, len(b), "parse adaptation field")
	}
	f.Length = b[0]
	if int(f.Length) > len(b)-1 {
		return f, base.NewErrMalformed("adaptation field length overflows")
	}
	if f.Length == 0 {
		return
	}
	br := nazabits.NewBitReader(b[1 : 1+f.Length])
	f.Discontinuity, _ = br.ReadBits8(1)
	f.RandomAccess, _ = br.ReadBits8(1)
	f.EsPrio, _ = br.ReadBits8(1)
	f.PcrFlag, _ = br.ReadBits8(1)
	f.OpcrFlag, _ = br.ReadBits8(1)
	f.SplicingFlag, _ = br.ReadBits8(1)
	f.PrivateDataFlag, _ = br.ReadBits8(1)
	f.ExtensionFlag, _ = br.ReadBits8(1)

	need := 1
	if f.PcrFlag == 1 {
		need += 6
	}
	if f.OpcrFlag == 1 {
		need += 6
	}
	if f.SplicingFlag == 1 {
		need++
	}
	if f.PrivateDataFlag == 1 {
		need++
	}
	if int(f.Length) < need {
		return f, base.NewErrMalformed("adaptation field flags overflow length")
	}

	if f.PcrFlag == 1 {
		f.Pcr = parsePcr(&br)
	}
	if f.OpcrFlag == 1 {
		f.Opcr = parsePcr(&br)
	}
	if f.SplicingFlag == 1 {
		var v uint8
		v, _ = br.ReadBits8(8)
		f.SpliceCountdown = int8(v)
	}
	if f.PrivateDataFlag == 1 {
		var plen uint8
		plen, _ = br.ReadBits8(8)
		need += int(plen)
		if int(f.Length) < need {
			return f, base.NewErrMalformed("adaptation private data overflows length")
		}
		f.PrivateData = make([]byte, plen)
		for i := range f.PrivateData {
			f.PrivateData[i], _ = br.ReadBits8(8)
		}
	}
	// extension以及剩余stuffing不解析
	return
}

func parsePcr(br *nazabits.BitReader) (p Pcr) {
	hi, _ := br.ReadBits32(32)
	lo, _ := br.ReadBits8(1)
	p.Base = uint64(hi)<<1 | uint64(lo)
	_, _ = br.ReadBits8(6) // reserved
	p.Ext, _ = br.ReadBits16(9)
	return
}

// Pack 打包adaptation field，返回的切片以length字节开头
func (f *TsPacketAdaptation) Pack() ([]byte, error) {
	length := 1
	if f.PcrFlag == 1 {
		length += 6
	}
	if f.OpcrFlag == 1 {
		length += 6
	}
	if f.SplicingFlag == 1 {
		length++
	}
	if f.PrivateDataFlag == 1 {
		length += 1 + len(f.PrivateData)
	}
	if length+1 > TsPacketSize-TsPacketHeaderSize {
		return nil, base.NewErrMalformed("adaptation field too long")
	}
	f.Length = uint8(length)

	b := make([]byte, 1+length)
	b[0] = f.Length
	bw := nazabits.NewBitWriter(b[1:])
	bw.WriteBits8(1, f.Discontinuity)
	bw.WriteBits8(1, f.RandomAccess)
	bw.WriteBits8(1, f.EsPrio)
	bw.WriteBits8(1, f.PcrFlag)
	bw.WriteBits8(1, f.OpcrFlag)
	bw.WriteBits8(1, f.SplicingFlag)
	bw.WriteBits8(1, f.PrivateDataFlag)
	bw.WriteBits8(1, f.ExtensionFlag)
	if f.PcrFlag == 1 {
		packPcr(&bw, f.Pcr)
	}
	if f.OpcrFlag == 1 {
		packPcr(&bw, f.Opcr)
	}
	if f.SplicingFlag == 1 {
		bw.WriteBits8(8, uint8(f.SpliceCountdown))
	}
	if f.PrivateDataFlag == 1 {
		bw.WriteBits8(8, uint8(len(f.PrivateData)))
		for _, v := range f.PrivateData {
			bw.WriteBits8(8, v)
		}
	}
	return b, nil
}

func packPcr(bw *nazabits.BitWriter, p Pcr) {
	bw.WriteBits16(16, uint16((p.Base>>17)&0xffff))
	bw.WriteBits16(16, uint16((p.Base>>1)&0xffff))
	bw.WriteBits8(1, uint8(p.Base&1))
	bw.WriteBits8(6, 0x3f) // reserved
	bw.WriteBits16(9, p.Ext)
}
