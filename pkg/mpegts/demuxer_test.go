// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts_test

import (
	"testing"
	"time"

	"github.com/q191201771/naza/pkg/assert"
	. "github.com/q191201771/tspsi/pkg/mpegts"
)

func buildTestStream(t *testing.T) []byte {
	var out []byte
	mux := NewMuxer(func(b []byte) {
		out = append(out, b...)
	})

	pat := Pat{
		TransportStreamId:    1,
		CurrentNextIndicator: 1,
		ProgramElements: []PatProgramElement{
			{ProgramNumber: 1, Pid: 0x1000},
		},
	}
	assert.Equal(t, nil, mux.WritePat(&pat))

	pmt := Pmt{
		ProgramNumber:        1,
		CurrentNextIndicator: 1,
		PcrPid:               0x0100,
		ProgramElements: []PmtProgramElement{
			{StreamType: StreamTypeH264, Pid: 0x0100},
			{StreamType: StreamTypeAAC, Pid: 0x0101},
		},
	}
	assert.Equal(t, nil, mux.WritePmt(0x1000, &pmt))

	sdt := Sdt{
		TransportStreamId:    1,
		OriginalNetworkId:    2,
		CurrentNextIndicator: 1,
		Services: []SdtService{
			{
				ServiceId:     1,
				RunningStatus: RunningStatusRunning,
				Descriptors:   []Descriptor{NewServiceDescriptor(0x01, "Acme", "One")},
			},
		},
	}
	assert.Equal(t, nil, mux.WriteSdt(&sdt))

	eit := Eit{
		TableId:              TableIdEitActualPf,
		ServiceId:            1,
		TransportStreamId:    1,
		OriginalNetworkId:    2,
		CurrentNextIndicator: 1,
		Events: []EitEvent{
			{
				EventId:   7,
				StartTime: time.Date(2016, 11, 21, 15, 0, 0, 0, time.UTC),
				Duration:  45 * time.Minute,
			},
		},
	}
	assert.Equal(t, nil, mux.WriteEit(&eit))

	// 一个ES流的TS包
	es := TsPacket{
		Header: TsPacketHeader{
			PayloadUnitStart: 1,
			Pid:              0x0100,
		},
		Payload: []byte{0x00, 0x00, 0x01, 0xe0},
	}
	b, err := es.Pack()
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mux.WriteRawPacket(b))

	// null包
	null := TsPacket{
		Header:  TsPacketHeader{Pid: PidNull},
		Payload: make([]byte, TsPacketSize-TsPacketHeaderSize),
	}
	b, err = null.Pack()
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mux.WriteRawPacket(b))

	return out
}

func TestDemuxerEndToEnd(t *testing.T) {
	stream := buildTestStream(t)

	var pats []Pat
	var pmts []Pmt
	var sdts []Sdt
	var eits []Eit
	var streamPids []uint16
	var streamTypes []uint8

	d := NewDemuxer().WithCallbackFunc(
		func(pat Pat) { pats = append(pats, pat) },
		func(pmt Pmt) { pmts = append(pmts, pmt) },
		func(sdt Sdt) { sdts = append(sdts, sdt) },
		func(eit Eit) { eits = append(eits, eit) },
	).WithOnStreamData(func(pid uint16, streamType uint8, pkt TsPacket) {
		streamPids = append(streamPids, pid)
		streamTypes = append(streamTypes, streamType)
	})

	// 开头混入一段垃圾数据，考察重新同步
	d.Feed([]byte{0x01, 0x02, 0x03})
	// 分两次喂入，中间在包边界之外切开
	d.Feed(stream[:301])
	d.Feed(stream[301:])

	assert.Equal(t, 1, len(pats))
	assert.Equal(t, uint16(1), pats[0].TransportStreamId)
	assert.Equal(t, true, pats[0].SearchPid(0x1000))

	assert.Equal(t, 1, len(pmts))
	assert.Equal(t, uint16(1), pmts[0].ProgramNumber)
	assert.Equal(t, 2, len(pmts[0].ProgramElements))

	assert.Equal(t, 1, len(sdts))
	sd, err := sdts[0].Services[0].Descriptors[0].Service()
	assert.Equal(t, nil, err)
	assert.Equal(t, "One", sd.ServiceName)

	assert.Equal(t, 1, len(eits))
	assert.Equal(t, uint16(7), eits[0].Events[0].EventId)
	assert.Equal(t, 45*time.Minute, eits[0].Events[0].Duration)

	// ES包走流回调，stream_type已从PMT学到；null包被忽略
	assert.Equal(t, 1, len(streamPids))
	assert.Equal(t, uint16(0x0100), streamPids[0])
	assert.Equal(t, uint8(StreamTypeH264), streamTypes[0])

	stat := d.Stat()
	assert.Equal(t, uint64(6), stat.PacketCount)
	assert.Equal(t, uint64(4), stat.SectionCount)
	assert.Equal(t, uint64(0), stat.CrcErrorCount)
	assert.Equal(t, true, stat.SyncLossCount > 0)
}

func TestDemuxerRepeatedTables(t *testing.T) {
	var stream []byte
	mux := NewMuxer(func(b []byte) {
		stream = append(stream, b...)
	})

	pat := Pat{
		TransportStreamId:    1,
		CurrentNextIndicator: 1,
		ProgramElements:      []PatProgramElement{{ProgramNumber: 1, Pid: 0x1000}},
	}
	// 同版本的PAT周期性重发，回调只触发一次
	assert.Equal(t, nil, mux.WritePat(&pat))
	assert.Equal(t, nil, mux.WritePat(&pat))
	assert.Equal(t, nil, mux.WritePat(&pat))

	// 版本更新后再次触发
	pat.VersionNumber = 1
	pat.ProgramElements = append(pat.ProgramElements, PatProgramElement{ProgramNumber: 2, Pid: 0x1001})
	assert.Equal(t, nil, mux.WritePat(&pat))

	var pats []Pat
	d := NewDemuxer().WithCallbackFunc(
		func(pat Pat) { pats = append(pats, pat) },
		nil, nil, nil,
	)
	d.Feed(stream)

	assert.Equal(t, 2, len(pats))
	assert.Equal(t, 1, len(pats[0].ProgramElements))
	assert.Equal(t, 2, len(pats[1].ProgramElements))
	assert.Equal(t, uint8(1), pats[1].VersionNumber)
}

func TestDemuxerFixedPid(t *testing.T) {
	assert.Equal(t, true, IsFixedSectionPid(PidTdt))
	assert.Equal(t, true, IsFixedSectionPid(PidNit))
	assert.Equal(t, false, IsFixedSectionPid(0x0100))
	assert.Equal(t, false, IsFixedSectionPid(PidNull))
	assert.Equal(t, "TDT", DescribePid(PidTdt))
	assert.Equal(t, "NULL", DescribePid(PidNull))
	assert.Equal(t, "OTHER", DescribePid(0x0100))

	// 固定PID上的表即使没有专门的解析回调，也走section通路上报
	var stream []byte
	mux := NewMuxer(func(b []byte) {
		stream = append(stream, b...)
	})
	when := time.Date(2016, 11, 21, 15, 0, 0, 0, time.UTC)
	s := Section{TableId: TableIdTdt, Payload: PackDvbTime(when)}
	assert.Equal(t, nil, mux.WriteSection(PidTdt, &s))

	var events []SectionEvent
	d := NewDemuxer().WithOnSectionEvent(func(ev SectionEvent) {
		events = append(events, ev)
	})
	d.Feed(stream)

	assert.Equal(t, 1, len(events))
	assert.Equal(t, SectionEventComplete, events[0].Type)
	assert.Equal(t, PidTdt, events[0].Pid)
	out, err := ParseDvbTime(events[0].Section.Payload)
	assert.Equal(t, nil, err)
	assert.Equal(t, when, out)
}

func TestMuxerAdaptationOnlyCc(t *testing.T) {
	var pkts [][]byte
	mux := NewMuxer(func(b []byte) {
		cp := make([]byte, len(b))
		copy(cp, b)
		pkts = append(pkts, cp)
	})

	data := TsPacket{
		Header:  TsPacketHeader{Pid: 0x0100},
		Payload: make([]byte, TsPacketSize-TsPacketHeaderSize),
	}
	b, err := data.Pack()
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mux.WriteRawPacket(b))

	adaptOnly := TsPacket{
		Header: TsPacketHeader{Pid: 0x0100},
		AdaptationField: &TsPacketAdaptation{
			PcrFlag: 1,
			Pcr:     Pcr{Base: 90000},
		},
	}
	b, err = adaptOnly.Pack()
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mux.WriteRawPacket(b))

	assert.Equal(t, nil, mux.WriteRawPacket(pkts[0]))

	// 只有adaptation的包不递增continuity_counter
	assert.Equal(t, uint8(0), pkts[0][3]&0x0f)
	assert.Equal(t, uint8(0), pkts[1][3]&0x0f)
	assert.Equal(t, uint8(1), pkts[2][3]&0x0f)
}

type demuxerObs struct {
	patCount int
	pmtCount int
	sdtCount int
	eitCount int
}

func (o *demuxerObs) OnPat(pat Pat) { o.patCount++ }
func (o *demuxerObs) OnPmt(pmt Pmt) { o.pmtCount++ }
func (o *demuxerObs) OnSdt(sdt Sdt) { o.sdtCount++ }
func (o *demuxerObs) OnEit(eit Eit) { o.eitCount++ }

func TestDemuxerObserver(t *testing.T) {
	stream := buildTestStream(t)

	var obs demuxerObs
	var events []SectionEvent
	d := NewDemuxer().WithObserver(&obs).WithOnSectionEvent(func(ev SectionEvent) {
		events = append(events, ev)
	})
	d.Feed(stream)

	assert.Equal(t, 1, obs.patCount)
	assert.Equal(t, 1, obs.pmtCount)
	assert.Equal(t, 1, obs.sdtCount)
	assert.Equal(t, 1, obs.eitCount)
	assert.Equal(t, 4, len(events))
	for _, ev := range events {
		assert.Equal(t, SectionEventComplete, ev.Type)
	}
}
