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

// ---------------------------------------------------------------------------------------------------
// TS program map section
// <iso13818-1.pdf> <2.4.4.8> <page 64/174>
// table_id                 [8b] *
// section_syntax_indicator [1b]
// '0'                      [1b]
// reserved                 [2b]
// section_length           [12b] **
// program_number           [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b] *
// section_number           [8b] *
// last_section_number      [8b] *
// reserved                 [3b]
// PCR_PID                  [13b] **
// reserved                 [4b]
// program_info_length      [12b] **
// -----descriptor loop-----
// -----loop-----
// stream_type              [8b] *
// reserved                 [3b]
// elementary_PID           [13b] **
// reserved                 [4b]
// ES_info_length           [12b] **
// -----descriptor loop-----
// --------------
// CRC_32                   [32b] ****
// ---------------------------------------------------------------------------------------------------
type Pmt struct {
	ProgramNumber        uint16
	VersionNumber        uint8
	CurrentNextIndicator uint8
	PcrPid               uint16
	ProgramDescriptors   []Descriptor
	ProgramElements      []PmtProgramElement
}

type PmtProgramElement struct {
	StreamType  uint8
	Pid         uint16
	Descriptors []Descriptor
}

// ParsePmt 从一个组装完成的section解析PMT
func ParsePmt(s Section) (pmt Pmt, err error) {
	if s.TableId != TableIdPmt {
		return pmt, base.NewErrWrongTableId(TableIdPmt, s.TableId)
	}
	if s.SectionSyntaxIndicator != 1 {
		return pmt, base.NewErrMalformed("pmt section syntax indicator not set")
	}
	if len(s.Payload) < 4 {
		return pmt, base.NewErrShortBuffer(4, len(s.Payload), "parse pmt")
	}
	pmt.ProgramNumber = s.TableIdExtension
	pmt.VersionNumber = s.VersionNumber
	pmt.CurrentNextIndicator = s.CurrentNextIndicator

	br := nazabits.NewBitReader(s.Payload)
	_, _ = br.ReadBits8(3)
	pmt.PcrPid, _ = br.ReadBits16(13)
	_, _ = br.ReadBits8(4)
	var pil uint16
	pil, _ = br.ReadBits16(12)
	pos := 4
	if int(pil) > len(s.Payload)-pos {
		return pmt, base.NewErrMalformed("pmt program info length overflows")
	}
	if pil > 0 {
		pmt.ProgramDescriptors, err = ParseDescriptors(s.Payload[pos : pos+int(pil)])
		if err != nil {
			return
		}
		pos += int(pil)
	}

	for pos < len(s.Payload) {
		if pos+5 > len(s.Payload) {
			return pmt, base.NewErrMalformed("pmt program element truncated")
		}
		var pe PmtProgramElement
		pe.StreamType = s.Payload[pos]
		pe.Pid = uint16(s.Payload[pos+1]&0x1f)<<8 | uint16(s.Payload[pos+2])
		esil := int(s.Payload[pos+3]&0x0f)<<8 | int(s.Payload[pos+4])
		pos += 5
		if esil > len(s.Payload)-pos {
			return pmt, base.NewErrMalformed("pmt es info length overflows")
		}
		if esil > 0 {
			pe.Descriptors, err = ParseDescriptors(s.Payload[pos : pos+esil])
			if err != nil {
				return
			}
			pos += esil
		}
		pmt.ProgramElements = append(pmt.ProgramElements, pe)
	}
	return
}

// Pack 打包为section，section_length和CRC_32自动计算
func (pmt *Pmt) Pack() (Section, error) {
	pd := PackDescriptors(pmt.ProgramDescriptors)

	payload := make([]byte, 4, 4+len(pd))
	bw := nazabits.NewBitWriter(payload)
	bw.WriteBits8(3, 0x7)
	bw.WriteBits16(13, pmt.PcrPid)
	bw.WriteBits8(4, 0xf)
	bw.WriteBits16(12, uint16(len(pd)))
	payload = append(payload, pd...)

	for _, pe := range pmt.ProgramElements {
		ed := PackDescriptors(pe.Descriptors)
		eh := make([]byte, 5)
		ebw := nazabits.NewBitWriter(eh)
		ebw.WriteBits8(8, pe.StreamType)
		ebw.WriteBits8(3, 0x7)
		ebw.WriteBits16(13, pe.Pid)
		ebw.WriteBits8(4, 0xf)
		ebw.WriteBits16(12, uint16(len(ed)))
		payload = append(payload, eh...)
		payload = append(payload, ed...)
	}

	s := Section{
		TableId:                TableIdPmt,
		SectionSyntaxIndicator: 1,
		TableIdExtension:       pmt.ProgramNumber,
		VersionNumber:          pmt.VersionNumber,
		CurrentNextIndicator:   pmt.CurrentNextIndicator,
		SectionNumber:          0,
		LastSectionNumber:      0,
		Payload:                payload,
	}
	if _, err := s.Pack(); err != nil {
		return s, err
	}
	return s, nil
}

// SearchPid 根据PID查找对应的流
func (pmt *Pmt) SearchPid(pid uint16) *PmtProgramElement {
	for i := range pmt.ProgramElements {
		if pmt.ProgramElements[i].Pid == pid {
			return &pmt.ProgramElements[i]
		}
	}
	return nil
}
