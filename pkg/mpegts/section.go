// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/tspsi/pkg/base"
)

const (
	// section_length的最大值
	// <en300468> <5.1.2> SI section整体最大4096字节，减去3字节通用头
	maxSectionLength = 4093

	sectionHeaderSize = 3 // table_id + flags + section_length
	sectionSyntaxSize = 5 // table_id_extension + version等 + section_number + last_section_number
	sectionCrcSize    = 4
)

// ----------------------------------------------------------
// <iso13818-1.pdf> <2.4.4.11> 以及 <en300468> <5.2>
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// '0'/private_indicator    [1b]
// reserved                 [2b]
// section_length           [12b] **
// -----if section_syntax_indicator == 1-----
// table_id_extension       [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// ... table data ...
// CRC_32                   [32b] ****
// ----------------------------------------------------------
type Section struct {
	TableId                uint8
	SectionSyntaxIndicator uint8
	PrivateIndicator       uint8
	SectionLength          uint16

	// 以下字段仅当SectionSyntaxIndicator == 1时有效
	TableIdExtension     uint16
	VersionNumber        uint8
	CurrentNextIndicator uint8
	SectionNumber        uint8
	LastSectionNumber    uint8

	Payload []byte // 表数据部分，不含头和CRC
	Crc32   uint32
	Raw     []byte // 整个section原始数据，含CRC
}

// SectionTotalLength 由section前3字节计算出整个section占用的字节数
func SectionTotalLength(b []byte) (int, error) {
	if len(b) < sectionHeaderSize {
		return 0, base.NewErrShortBuffer(sectionHeaderSize, len(b), "section total length")
	}
	sl := int(b[1]&0x0f)<<8 | int(b[2])
	if sl > maxSectionLength {
		return 0, base.ErrSectionTooLong
	}
	return sectionHeaderSize + sl, nil
}

// ParseSection 解析一个完整的section
//
// 带syntax section时校验CRC_32，校验失败返回ErrCrc32类型的错误。
//
// @param b: 从table_id开始的数据，长度可超过section本身，多余部分忽略
//
func ParseSection(b []byte) (s Section, err error) {
	total, err := SectionTotalLength(b)
	if err != nil {
		return
	}
	if len(b) < total {
		return s, base.NewErrShortBuffer(total, len(b), "parse section")
	}
	raw := b[:total]

	br := nazabits.NewBitReader(raw)
	s.TableId, _ = br.ReadBits8(8)
	s.SectionSyntaxIndicator, _ = br.ReadBits8(1)
	s.PrivateIndicator, _ = br.ReadBits8(1)
	_, _ = br.ReadBits8(2)
	s.SectionLength, _ = br.ReadBits16(12)
	s.Raw = raw

	if s.SectionSyntaxIndicator == 0 {
		// 短格式，无syntax section也无CRC
		s.Payload = raw[sectionHeaderSize:]
		return
	}

	if total < sectionHeaderSize+sectionSyntaxSize+sectionCrcSize {
		return s, base.NewErrMalformed("section too short for syntax section")
	}
	s.TableIdExtension, _ = br.ReadBits16(16)
	_, _ = br.ReadBits8(2)
	s.VersionNumber, _ = br.ReadBits8(5)
	s.CurrentNextIndicator, _ = br.ReadBits8(1)
	s.SectionNumber, _ = br.ReadBits8(8)
	s.LastSectionNumber, _ = br.ReadBits8(8)

	s.Payload = raw[sectionHeaderSize+sectionSyntaxSize : total-sectionCrcSize]
	s.Crc32 = bele.BeUint32(raw[total-sectionCrcSize:])

	actual := CalcCrc32(0xffffffff, raw[:total-sectionCrcSize])
	if actual != s.Crc32 {
		return s, base.NewErrCrc32(s.Crc32, actual)
	}
	return
}

// Pack 打包为原始字节，SectionLength和Crc32字段根据实际内容重新计算并回填
func (s *Section) Pack() ([]byte, error) {
	if s.SectionSyntaxIndicator == 0 {
		if len(s.Payload) > maxSectionLength {
			return nil, base.ErrSectionTooLong
		}
		s.SectionLength = uint16(len(s.Payload))
		b := make([]byte, sectionHeaderSize+len(s.Payload))
		bw := nazabits.NewBitWriter(b)
		bw.WriteBits8(8, s.TableId)
		bw.WriteBits8(1, 0)
		bw.WriteBits8(1, s.PrivateIndicator)
		bw.WriteBits8(2, 0x3)
		bw.WriteBits16(12, s.SectionLength)
		copy(b[sectionHeaderSize:], s.Payload)
		s.Raw = b
		return b, nil
	}

	sl := sectionSyntaxSize + len(s.Payload) + sectionCrcSize
	if sl > maxSectionLength {
		return nil, base.ErrSectionTooLong
	}
	s.SectionLength = uint16(sl)

	b := make([]byte, sectionHeaderSize+sl)
	bw := nazabits.NewBitWriter(b)
	bw.WriteBits8(8, s.TableId)
	bw.WriteBits8(1, 1)
	bw.WriteBits8(1, s.PrivateIndicator)
	bw.WriteBits8(2, 0x3)
	bw.WriteBits16(12, s.SectionLength)
	bw.WriteBits16(16, s.TableIdExtension)
	bw.WriteBits8(2, 0x3)
	bw.WriteBits8(5, s.VersionNumber)
	bw.WriteBits8(1, s.CurrentNextIndicator)
	bw.WriteBits8(8, s.SectionNumber)
	bw.WriteBits8(8, s.LastSectionNumber)
	copy(b[sectionHeaderSize+sectionSyntaxSize:], s.Payload)

	s.Crc32 = CalcCrc32(0xffffffff, b[:len(b)-sectionCrcSize])
	bele.BePutUint32(b[len(b)-sectionCrcSize:], s.Crc32)
	s.Raw = b
	return b, nil
}
