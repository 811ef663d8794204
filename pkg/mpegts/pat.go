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
// Program association section
// <iso13818-1.pdf> <2.4.4.3> <page 61/174>
// table_id                 [8b] *
// section_syntax_indicator [1b]
// '0'                      [1b]
// reserved                 [2b]
// section_length           [12b] **
// transport_stream_id      [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// -----loop-----
// program_number           [16b] **
// reserved                 [3b]
// program_map_PID          [13b] ** if program_number == 0 then network_PID else then program_map_PID
// --------------
// CRC_32                   [32b] ****
// ---------------------------------------------------------------------------------------------------
type Pat struct {
	TransportStreamId    uint16
	VersionNumber        uint8
	CurrentNextIndicator uint8
	SectionNumber        uint8
	LastSectionNumber    uint8
	ProgramElements      []PatProgramElement
}

type PatProgramElement struct {
	ProgramNumber uint16 // 0表示network信息
	Pid           uint16 // program_number非0时为该节目PMT的PID
}

// ParsePat 从一个组装完成的section解析PAT
func ParsePat(s Section) (pat Pat, err error) {
	if s.TableId != TableIdPat {
		return pat, base.NewErrWrongTableId(TableIdPat, s.TableId)
	}
	if s.SectionSyntaxIndicator != 1 {
		return pat, base.NewErrMalformed("pat section syntax indicator not set")
	}
	if len(s.Payload)%4 != 0 {
		return pat, base.NewErrMalformed("pat loop length not a multiple of 4")
	}
	pat.TransportStreamId = s.TableIdExtension
	pat.VersionNumber = s.VersionNumber
	pat.CurrentNextIndicator = s.CurrentNextIndicator
	pat.SectionNumber = s.SectionNumber
	pat.LastSectionNumber = s.LastSectionNumber

	br := nazabits.NewBitReader(s.Payload)
	for i := 0; i < len(s.Payload); i += 4 {
		var ppe PatProgramElement
		ppe.ProgramNumber, _ = br.ReadBits16(16)
		_, _ = br.ReadBits8(3)
		ppe.Pid, _ = br.ReadBits16(13)
		pat.ProgramElements = append(pat.ProgramElements, ppe)
	}
	return
}

// Pack 打包为section，section_length和CRC_32自动计算
func (pat *Pat) Pack() (Section, error) {
	payload := make([]byte, 4*len(pat.ProgramElements))
	bw := nazabits.NewBitWriter(payload)
	for _, ppe := range pat.ProgramElements {
		bw.WriteBits16(16, ppe.ProgramNumber)
		bw.WriteBits8(3, 0x7)
		bw.WriteBits16(13, ppe.Pid)
	}

	s := Section{
		TableId:                TableIdPat,
		SectionSyntaxIndicator: 1,
		TableIdExtension:       pat.TransportStreamId,
		VersionNumber:          pat.VersionNumber,
		CurrentNextIndicator:   pat.CurrentNextIndicator,
		SectionNumber:          pat.SectionNumber,
		LastSectionNumber:      pat.LastSectionNumber,
		Payload:                payload,
	}
	if _, err := s.Pack(); err != nil {
		return s, err
	}
	return s, nil
}

// ParsePatSections 解析并合并一个sub table的全部section
//
// @param ss: 按section_number升序，一般来自TableCollector
//
func ParsePatSections(ss []Section) (pat Pat, err error) {
	for i, s := range ss {
		var one Pat
		one, err = ParsePat(s)
		if err != nil {
			return
		}
		if i == 0 {
			pat = one
		} else {
			pat.ProgramElements = append(pat.ProgramElements, one.ProgramElements...)
		}
	}
	return
}

// SearchPid pid是否为PAT中某个节目的PMT PID
func (pat *Pat) SearchPid(pid uint16) bool {
	for _, ppe := range pat.ProgramElements {
		if ppe.ProgramNumber != 0 && pid == ppe.Pid {
			return true
		}
	}
	return false
}
