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

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/tspsi/pkg/base"
)

// ---------------------------------------------------------------------------------------------------
// Event information section
// <en300468> <5.2.4>
// table_id                     [8b] * 0x4e本流当前/后续，0x4f他流，0x50~0x6f排期
// section_syntax_indicator     [1b]
// reserved_future_use          [1b]
// reserved                     [2b]
// section_length               [12b] **
// service_id                   [16b] **
// reserved                     [2b]
// version_number               [5b]
// current_next_indicator       [1b] *
// section_number               [8b] *
// last_section_number          [8b] *
// transport_stream_id          [16b] **
// original_network_id          [16b] **
// segment_last_section_number  [8b] *
// last_table_id                [8b] *
// -----loop-----
// event_id                     [16b] **
// start_time                   [40b] *****
// duration                     [24b] ***
// running_status               [3b]
// free_CA_mode                 [1b]
// descriptors_loop_length      [12b] **
// -----descriptor loop-----
// --------------
// CRC_32                       [32b] ****
// ---------------------------------------------------------------------------------------------------
type Eit struct {
	TableId                  uint8
	ServiceId                uint16
	TransportStreamId        uint16
	OriginalNetworkId        uint16
	VersionNumber            uint8
	CurrentNextIndicator     uint8
	SectionNumber            uint8
	LastSectionNumber        uint8
	SegmentLastSectionNumber uint8
	LastTableId              uint8
	Events                   []EitEvent
}

type EitEvent struct {
	EventId       uint16
	StartTime     time.Time
	Duration      time.Duration
	RunningStatus uint8
	FreeCaMode    uint8
	Descriptors   []Descriptor
}

// ParseEit 从一个组装完成的section解析EIT
func ParseEit(s Section) (eit Eit, err error) {
	if !IsEitTableId(s.TableId) {
		return eit, base.NewErrWrongTableId(TableIdEitActualPf, s.TableId)
	}
	if s.SectionSyntaxIndicator != 1 {
		return eit, base.NewErrMalformed("eit section syntax indicator not set")
	}
	if len(s.Payload) < 6 {
		return eit, base.NewErrShortBuffer(6, len(s.Payload), "parse eit")
	}
	eit.TableId = s.TableId
	eit.ServiceId = s.TableIdExtension
	eit.TransportStreamId = bele.BeUint16(s.Payload)
	eit.OriginalNetworkId = bele.BeUint16(s.Payload[2:])
	eit.SegmentLastSectionNumber = s.Payload[4]
	eit.LastTableId = s.Payload[5]
	eit.VersionNumber = s.VersionNumber
	eit.CurrentNextIndicator = s.CurrentNextIndicator
	eit.SectionNumber = s.SectionNumber
	eit.LastSectionNumber = s.LastSectionNumber

	pos := 6
	for pos < len(s.Payload) {
		if pos+12 > len(s.Payload) {
			return eit, base.NewErrMalformed("eit event entry truncated")
		}
		var ev EitEvent
		ev.EventId = bele.BeUint16(s.Payload[pos:])
		ev.StartTime, err = ParseDvbTime(s.Payload[pos+2:])
		if err != nil {
			return
		}
		ev.Duration, err = ParseBcdDuration(s.Payload[pos+7:])
		if err != nil {
			return
		}
		ev.RunningStatus = s.Payload[pos+10] >> 5
		ev.FreeCaMode = s.Payload[pos+10] >> 4 & 0x1
		dll := int(s.Payload[pos+10]&0x0f)<<8 | int(s.Payload[pos+11])
		pos += 12
		if dll > len(s.Payload)-pos {
			return eit, base.NewErrMalformed("eit descriptors loop length overflows")
		}
		if dll > 0 {
			ev.Descriptors, err = ParseDescriptors(s.Payload[pos : pos+dll])
			if err != nil {
				return
			}
			pos += dll
		}
		eit.Events = append(eit.Events, ev)
	}
	return
}

// ParseEitSections 解析并合并一个sub table的全部section
//
// @param ss: 按section_number升序，一般来自TableCollector
//
func ParseEitSections(ss []Section) (eit Eit, err error) {
	for i, s := range ss {
		var one Eit
		one, err = ParseEit(s)
		if err != nil {
			return
		}
		if i == 0 {
			eit = one
		} else {
			eit.Events = append(eit.Events, one.Events...)
		}
	}
	return
}

// Pack 打包为section，section_length和CRC_32自动计算
func (eit *Eit) Pack() (Section, error) {
	tid := eit.TableId
	if tid == 0 {
		tid = TableIdEitActualPf
	}

	payload := make([]byte, 6)
	payload[0] = uint8(eit.TransportStreamId >> 8)
	payload[1] = uint8(eit.TransportStreamId)
	payload[2] = uint8(eit.OriginalNetworkId >> 8)
	payload[3] = uint8(eit.OriginalNetworkId)
	payload[4] = eit.SegmentLastSectionNumber
	payload[5] = eit.LastTableId

	for _, ev := range eit.Events {
		dd := PackDescriptors(ev.Descriptors)
		eh := make([]byte, 2, 12)
		eh[0] = uint8(ev.EventId >> 8)
		eh[1] = uint8(ev.EventId)
		eh = append(eh, PackDvbTime(ev.StartTime)...)
		eh = append(eh, PackBcdDuration(ev.Duration)...)
		tail := make([]byte, 2)
		bw := nazabits.NewBitWriter(tail)
		bw.WriteBits8(3, ev.RunningStatus)
		bw.WriteBits8(1, ev.FreeCaMode)
		bw.WriteBits16(12, uint16(len(dd)))
		eh = append(eh, tail...)
		payload = append(payload, eh...)
		payload = append(payload, dd...)
	}

	s := Section{
		TableId:                tid,
		SectionSyntaxIndicator: 1,
		PrivateIndicator:       1,
		TableIdExtension:       eit.ServiceId,
		VersionNumber:          eit.VersionNumber,
		CurrentNextIndicator:   eit.CurrentNextIndicator,
		SectionNumber:          eit.SectionNumber,
		LastSectionNumber:      eit.LastSectionNumber,
		Payload:                payload,
	}
	if _, err := s.Pack(); err != nil {
		return s, err
	}
	return s, nil
}
