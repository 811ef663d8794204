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

const (
	TsPacketSize       = 188
	TsPacketSize204    = 204 // 带16字节RS纠错尾部的格式，尾部解析时直接丢弃
	TsPacketHeaderSize = 4

	SyncByte uint8 = 0x47
)

// adaptation_field_control的4种取值
// <iso13818-1.pdf> <Table 2-5> <page 38/174>
const (
	AdaptationFieldControlReserved uint8 = 0
	AdaptationFieldControlNo       uint8 = 1 // 只有payload
	AdaptationFieldControlOnly     uint8 = 2 // 只有adaptation
	AdaptationFieldControlBoth     uint8 = 3
)

// ------------------------------------------------
// <iso13818-1.pdf> <2.4.3.2> <page 36/174>
// sync_byte                    [8b]  * always 0x47
// transport_error_indicator    [1b]
// payload_unit_start_indicator [1b]
// transport_priority           [1b]
// PID                          [13b] **
// transport_scrambling_control [2b]
// adaptation_field_control     [2b]
// continuity_counter           [4b]  *
// ------------------------------------------------
type TsPacketHeader struct {
	Sync             uint8
	Err              uint8
	PayloadUnitStart uint8
	Prio             uint8
	Pid              uint16
	Scra             uint8
	Adaptation       uint8
	Cc               uint8
}

func (h TsPacketHeader) HasAdaptation() bool {
	return h.Adaptation == AdaptationFieldControlOnly || h.Adaptation == AdaptationFieldControlBoth
}

func (h TsPacketHeader) HasPayload() bool {
	return h.Adaptation == AdaptationFieldControlNo || h.Adaptation == AdaptationFieldControlBoth
}

type TsPacket struct {
	Header          TsPacketHeader
	AdaptationField *TsPacketAdaptation // 仅当header中adaptation_field_control声明存在时非nil
	Payload         []byte
}

// ParseTsPacketHeader 解析4字节TS Packet header
//
// @param b: 至少4字节
//
func ParseTsPacketHeader(b []byte) (h TsPacketHeader, err error) {
	if len(b) < TsPacketHeaderSize {
		return h, base.NewErrShortBuffer(TsPacketHeaderSize, len(b), "parse ts packet header")
	}
	br := nazabits.NewBitReader(b)
	h.Sync, _ = br.ReadBits8(8)
	if h.Sync != SyncByte {
		return h, base.NewErrBadSync(h.Sync)
	}
	h.Err, _ = br.ReadBits8(1)
	h.PayloadUnitStart, _ = br.ReadBits8(1)
	h.Prio, _ = br.ReadBits8(1)
	h.Pid, _ = br.ReadBits16(13)
	h.Scra, _ = br.ReadBits8(2)
	h.Adaptation, _ = br.ReadBits8(2)
	h.Cc, _ = br.ReadBits8(4)
	return
}

// PackTo 打包4字节header到b中
//
// @param b: 至少4字节，packed原地写入起始位置
//
func (h TsPacketHeader) PackTo(b []byte) {
	bw := nazabits.NewBitWriter(b)
	bw.WriteBits8(8, SyncByte)
	bw.WriteBits8(1, h.Err)
	bw.WriteBits8(1, h.PayloadUnitStart)
	bw.WriteBits8(1, h.Prio)
	bw.WriteBits16(13, h.Pid)
	bw.WriteBits8(2, h.Scra)
	bw.WriteBits8(2, h.Adaptation)
	bw.WriteBits8(4, h.Cc)
}

// ParseTsPacket 解析整个TS包
//
// @param b: 188或204字节。204字节时，尾部16字节RS数据直接丢弃
//
// @return pkt: pkt.Payload直接引用b的内存，不拷贝
//
func ParseTsPacket(b []byte) (pkt TsPacket, err error) {
	if len(b) != TsPacketSize && len(b) != TsPacketSize204 {
		return pkt, base.NewErrShortBuffer(TsPacketSize, len(b), "parse ts packet")
	}
	b = b[:TsPacketSize]

	pkt.Header, err = ParseTsPacketHeader(b)
	if err != nil {
		return
	}

	pos := TsPacketHeaderSize
	if pkt.Header.HasAdaptation() {
		var af TsPacketAdaptation
		af, err = ParseTsPacketAdaptation(b[pos:])
		if err != nil {
			return
		}
		pkt.AdaptationField = &af
		pos += 1 + int(af.Length)
		if pos > TsPacketSize {
			return pkt, base.NewErrMalformed("adaptation field overflows packet")
		}
	}
	if pkt.Header.HasPayload() {
		pkt.Payload = b[pos:]
	}
	return
}

// Pack 打包为188字节
//
// header中adaptation_field_control字段会按AdaptationField和Payload实际情况重新设置。
// adaptation length会根据payload长度自动扩展，以stuffing填满188字节。
//
func (pkt *TsPacket) Pack() ([]byte, error) {
	b := make([]byte, TsPacketSize)

	afcl := 0 // adaptation区占用字节数，含length字节自身
	if pkt.AdaptationField != nil {
		afb, err := pkt.AdaptationField.Pack()
		if err != nil {
			return nil, err
		}
		afcl = len(afb)
		copy(b[TsPacketHeaderSize:], afb)
	}

	room := TsPacketSize - TsPacketHeaderSize - afcl
	if len(pkt.Payload) > room {
		return nil, base.NewErrMalformed("ts packet payload too long")
	}
	if len(pkt.Payload) < room {
		// payload不足以填满，通过扩展adaptation field的stuffing补齐
		pad := room - len(pkt.Payload)
		if pkt.AdaptationField == nil {
			// 新建一个空adaptation，至少占1字节length
			b[TsPacketHeaderSize] = uint8(pad - 1)
			if pad >= 2 {
				b[TsPacketHeaderSize+1] = 0 // 8个flag全0
				for i := 2; i < pad; i++ {
					b[TsPacketHeaderSize+i] = 0xff
				}
			}
		} else {
			b[TsPacketHeaderSize] += uint8(pad)
			for i := 0; i < pad; i++ {
				b[TsPacketHeaderSize+afcl+i] = 0xff
			}
		}
		afcl += pad
	}

	if afcl > 0 {
		if len(pkt.Payload) > 0 {
			pkt.Header.Adaptation = AdaptationFieldControlBoth
		} else {
			pkt.Header.Adaptation = AdaptationFieldControlOnly
		}
	} else {
		pkt.Header.Adaptation = AdaptationFieldControlNo
	}
	pkt.Header.PackTo(b)
	copy(b[TsPacketHeaderSize+afcl:], pkt.Payload)
	return b, nil
}

// ResyncTsPacket 从b中寻找TS包起始位置
//
// 以0x47为锚点，并要求下一个包位置（如果数据足够）也是0x47，降低误判
//
// @return: b中第一个有效包起始的下标，找不到返回-1
//
func ResyncTsPacket(b []byte, packetSize int) int {
	for i := 0; i < len(b); i++ {
		if b[i] != SyncByte {
			continue
		}
		if i+packetSize < len(b) && b[i+packetSize] != SyncByte {
			continue
		}
		return i
	}
	return -1
}
