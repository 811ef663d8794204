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

// running_status取值
// <en300468> <Table 6>
const (
	RunningStatusUndefined  uint8 = 0
	RunningStatusNotRunning uint8 = 1
	RunningStatusStartsSoon uint8 = 2
	RunningStatusPausing    uint8 = 3
	RunningStatusRunning    uint8 = 4
	RunningStatusOffAir     uint8 = 5
)

// ---------------------------------------------------------------------------------------------------
// Service description section
// <en300468> <5.2.3>
// table_id                   [8b] * 0x42本流/0x46他流
// section_syntax_indicator   [1b]
// reserved_future_use        [1b]
// reserved                   [2b]
// section_length             [12b] **
// transport_stream_id        [16b] **
// reserved                   [2b]
// version_number             [5b]
// current_next_indicator     [1b] *
// section_number             [8b] *
// last_section_number        [8b] *
// original_network_id        [16b] **
// reserved_future_use        [8b] *
// -----loop-----
// service_id                 [16b] **
// reserved_future_use        [6b]
// EIT_schedule_flag          [1b]
// EIT_present_following_flag [1b] *
// running_status             [3b]
// free_CA_mode               [1b]
// descriptors_loop_length    [12b] **
// -----descriptor loop-----
// --------------
// CRC_32                     [32b] ****
// ---------------------------------------------------------------------------------------------------
type Sdt struct {
	TableId              uint8 // TableIdSdtActual或TableIdSdtOther
	TransportStreamId    uint16
	OriginalNetworkId    uint16
	VersionNumber        uint8
	CurrentNextIndicator uint8
	SectionNumber        uint8
	LastSectionNumber    uint8
	Services             []SdtService
}

type SdtService struct {
	ServiceId           uint16
	EitSchedule         uint8
	EitPresentFollowing uint8
	RunningStatus       uint8
	FreeCaMode          uint8
	Descriptors         []Descriptor
}

// ParseSdt 从一个组装完成的section解析SDT
func ParseSdt(s Section) (sdt Sdt, err error) {
	if !IsSdtTableId(s.TableId) {
		return sdt, base.NewErrWrongTableId(TableIdSdtActual, s.TableId)
	}
	if s.SectionSyntaxIndicator != 1 {
		return sdt, base.NewErrMalformed("sdt section syntax indicator not set")
	}
	if len(s.Payload) < 3 {
		return sdt, base.NewErrShortBuffer(3, len(s.Payload), "parse sdt")
	}
	sdt.TableId = s.TableId
	sdt.TransportStreamId = s.TableIdExtension
	sdt.OriginalNetworkId = bele.BeUint16(s.Payload)
	sdt.VersionNumber = s.VersionNumber
	sdt.CurrentNextIndicator = s.CurrentNextIndicator
	sdt.SectionNumber = s.SectionNumber
	sdt.LastSectionNumber = s.LastSectionNumber

	pos := 3
	for pos < len(s.Payload) {
		if pos+5 > len(s.Payload) {
			return sdt, base.NewErrMalformed("sdt service entry truncated")
		}
		var srv SdtService
		srv.ServiceId = bele.BeUint16(s.Payload[pos:])
		srv.EitSchedule = s.Payload[pos+2] >> 1 & 0x1
		srv.EitPresentFollowing = s.Payload[pos+2] & 0x1
		srv.RunningStatus = s.Payload[pos+3] >> 5
		srv.FreeCaMode = s.Payload[pos+3] >> 4 & 0x1
		dll := int(s.Payload[pos+3]&0x0f)<<8 | int(s.Payload[pos+4])
		pos += 5
		if dll > len(s.Payload)-pos {
			return sdt, base.NewErrMalformed("sdt descriptors loop length overflows")
		}
		if dll > 0 {
			srv.Descriptors, err = ParseDescriptors(s.Payload[pos : pos+dll])
			if err != nil {
				return
			}
			pos += dll
		}
		sdt.Services = append(sdt.Services, srv)
	}
	return
}

// Pack 打包为section，section_length和CRC_32自动计算
func (sdt *Sdt) Pack() (Section, error) {
	tid := sdt.TableId
	if tid == 0 {
		tid = TableIdSdtActual
	}

	payload := make([]byte, 3)
	payload[0] = uint8(sdt.OriginalNetworkId >> 8)
	payload[1] = uint8(sdt.OriginalNetworkId)
	payload[2] = 0xff // reserved_future_use

	for _, srv := range sdt.Services {
		dd := PackDescriptors(srv.Descriptors)
		eh := make([]byte, 5)
		bw := nazabits.NewBitWriter(eh)
		bw.WriteBits16(16, srv.ServiceId)
		bw.WriteBits8(6, 0x3f)
		bw.WriteBits8(1, srv.EitSchedule)
		bw.WriteBits8(1, srv.EitPresentFollowing)
		bw.WriteBits8(3, srv.RunningStatus)
		bw.WriteBits8(1, srv.FreeCaMode)
		bw.WriteBits16(12, uint16(len(dd)))
		payload = append(payload, eh...)
		payload = append(payload, dd...)
	}

	s := Section{
		TableId:                tid,
		SectionSyntaxIndicator: 1,
		PrivateIndicator:       1,
		TableIdExtension:       sdt.TransportStreamId,
		VersionNumber:          sdt.VersionNumber,
		CurrentNextIndicator:   sdt.CurrentNextIndicator,
		SectionNumber:          sdt.SectionNumber,
		LastSectionNumber:      sdt.LastSectionNumber,
		Payload:                payload,
	}
	if _, err := s.Pack(); err != nil {
		return s, err
	}
	return s, nil
}

// ParseSdtSections 解析并合并一个sub table的全部section
//
// @param ss: 按section_number升序，一般来自TableCollector
//
func ParseSdtSections(ss []Section) (sdt Sdt, err error) {
	for i, s := range ss {
		var one Sdt
		one, err = ParseSdt(s)
		if err != nil {
			return
		}
		if i == 0 {
			sdt = one
		} else {
			sdt.Services = append(sdt.Services, one.Services...)
		}
	}
	return
}

// SearchServiceId 根据service_id查找服务
func (sdt *Sdt) SearchServiceId(serviceId uint16) *SdtService {
	for i := range sdt.Services {
		if sdt.Services[i].ServiceId == serviceId {
			return &sdt.Services[i]
		}
	}
	return nil
}
