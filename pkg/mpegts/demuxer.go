// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/nazabytes"
)

type IDemuxerObserver interface {
	OnPat(pat Pat)
	OnPmt(pmt Pmt)
	OnSdt(sdt Sdt)
	OnEit(eit Eit)
}

type (
	OnPatFn          func(pat Pat)
	OnPmtFn          func(pmt Pmt)
	OnSdtFn          func(sdt Sdt)
	OnEitFn          func(eit Eit)
	OnSectionEventFn func(event SectionEvent)
	// OnStreamDataFn 非PSI/SI流的TS包回调
	//
	// @param streamType: 来自PMT，PMT还没到时为0
	//
	OnStreamDataFn func(pid uint16, streamType uint8, pkt TsPacket)
)

type DemuxerStat struct {
	PacketCount        uint64
	SyncLossCount      uint64
	SectionCount       uint64
	CrcErrorCount      uint64
	DiscontinuityCount uint64
}

// Demuxer 从TS流中解复用出PAT/PMT/SDT/EIT表和其余流数据
//
// PMT的PID从PAT中动态学习。表回调在sub table收齐且版本变化时触发一次，
// 同版本的重复发送不会重复回调。
//
// 非线程安全。
//
type Demuxer struct {
	buf        *nazabytes.Buffer
	assembler  *SectionAssembler
	collector  *TableCollector
	packetSize int

	pmtPids     map[uint16]struct{} // 从PAT学到的PMT PID集合
	streamTypes map[uint16]uint8    // 从PMT学到的pid到stream_type映射

	stat DemuxerStat

	onPat          OnPatFn
	onPmt          OnPmtFn
	onSdt          OnSdtFn
	onEit          OnEitFn
	onSectionEvent OnSectionEventFn
	onStreamData   OnStreamDataFn
}

func NewDemuxer() *Demuxer {
	return &Demuxer{
		buf:         nazabytes.NewBuffer(4096),
		assembler:   NewSectionAssembler(),
		collector:   NewTableCollector(),
		packetSize:  TsPacketSize,
		pmtPids:     make(map[uint16]struct{}),
		streamTypes: make(map[uint16]uint8),
	}
}

func (d *Demuxer) WithObserver(obs IDemuxerObserver) *Demuxer {
	d.onPat = obs.OnPat
	d.onPmt = obs.OnPmt
	d.onSdt = obs.OnSdt
	d.onEit = obs.OnEit
	return d
}

func (d *Demuxer) WithCallbackFunc(onPat OnPatFn, onPmt OnPmtFn, onSdt OnSdtFn, onEit OnEitFn) *Demuxer {
	d.onPat = onPat
	d.onPmt = onPmt
	d.onSdt = onSdt
	d.onEit = onEit
	return d
}

// WithOnSectionEvent 观察所有section级事件，包括CRC错误和流不连续
func (d *Demuxer) WithOnSectionEvent(fn OnSectionEventFn) *Demuxer {
	d.onSectionEvent = fn
	return d
}

func (d *Demuxer) WithOnStreamData(fn OnStreamDataFn) *Demuxer {
	d.onStreamData = fn
	return d
}

// WithPacketSize 设置TS包大小，188或204
func (d *Demuxer) WithPacketSize(size int) *Demuxer {
	d.packetSize = size
	return d
}

func (d *Demuxer) Stat() DemuxerStat {
	return d.stat
}

// Feed 喂入任意长度的TS流数据
//
// 内部缓存不足一个包的尾部数据，失去同步时自动扫描重新对齐。
//
func (d *Demuxer) Feed(b []byte) {
	d.buf.Write(b)
	for d.buf.Len() >= d.packetSize {
		rb := d.buf.Bytes()
		if rb[0] != SyncByte {
			i := ResyncTsPacket(rb, d.packetSize)
			if i < 0 {
				// 整段都找不到同步点，只保留末尾可能的半个包
				d.stat.SyncLossCount++
				keep := d.packetSize - 1
				if d.buf.Len() > keep {
					d.buf.Skip(d.buf.Len() - keep)
				}
				return
			}
			d.stat.SyncLossCount++
			d.buf.Skip(i)
			continue
		}
		if err := d.FeedPacket(rb[:d.packetSize]); err != nil {
			Log.Warnf("feed packet failed. err=%+v", err)
		}
		d.buf.Skip(d.packetSize)
	}
}

// FeedPacket 喂入单个TS包
//
// @param b: 188或204字节
//
func (d *Demuxer) FeedPacket(b []byte) error {
	pkt, err := ParseTsPacket(b)
	if err != nil {
		return err
	}
	d.stat.PacketCount++

	h := pkt.Header
	if h.Err == 1 || h.Pid == PidNull {
		return nil
	}

	if d.isSectionPid(h.Pid) {
		if !h.HasPayload() {
			return nil
		}
		events := d.assembler.Feed(h.Pid, pkt.Payload, h.PayloadUnitStart == 1, h.Cc)
		for _, ev := range events {
			d.handleSectionEvent(ev)
		}
		return nil
	}

	if d.onStreamData != nil && h.HasPayload() {
		d.onStreamData(h.Pid, d.streamTypes[h.Pid], pkt)
	}
	return nil
}

func (d *Demuxer) isSectionPid(pid uint16) bool {
	if IsFixedSectionPid(pid) {
		return true
	}
	_, exist := d.pmtPids[pid]
	return exist
}

func (d *Demuxer) handleSectionEvent(ev SectionEvent) {
	switch ev.Type {
	case SectionEventCrcError:
		d.stat.CrcErrorCount++
	case SectionEventDiscontinuity:
		d.stat.DiscontinuityCount++
	case SectionEventComplete:
		d.stat.SectionCount++
	}
	if d.onSectionEvent != nil {
		d.onSectionEvent(ev)
	}
	if ev.Type != SectionEventComplete {
		return
	}

	sections, ok := d.collector.Feed(ev.Section)
	if !ok {
		return
	}

	tid := ev.Section.TableId
	switch {
	case tid == TableIdPat:
		pat, err := ParsePatSections(sections)
		if err != nil {
			Log.Warnf("parse pat failed. err=%+v", err)
			return
		}
		d.learnPmtPids(pat)
		if d.onPat != nil {
			d.onPat(pat)
		}
	case tid == TableIdPmt:
		pmt, err := ParsePmt(sections[0])
		if err != nil {
			Log.Warnf("parse pmt failed. err=%+v", err)
			return
		}
		for _, pe := range pmt.ProgramElements {
			d.streamTypes[pe.Pid] = pe.StreamType
		}
		if d.onPmt != nil {
			d.onPmt(pmt)
		}
	case IsSdtTableId(tid):
		sdt, err := ParseSdtSections(sections)
		if err != nil {
			Log.Warnf("parse sdt failed. err=%+v", err)
			return
		}
		if d.onSdt != nil {
			d.onSdt(sdt)
		}
	case IsEitTableId(tid):
		eit, err := ParseEitSections(sections)
		if err != nil {
			Log.Warnf("parse eit failed. err=%+v", err)
			return
		}
		if d.onEit != nil {
			d.onEit(eit)
		}
	}
}

func (d *Demuxer) learnPmtPids(pat Pat) {
	fresh := make(map[uint16]struct{})
	for _, ppe := range pat.ProgramElements {
		if ppe.ProgramNumber == 0 {
			continue
		}
		fresh[ppe.Pid] = struct{}{}
	}
	for pid := range d.pmtPids {
		if _, exist := fresh[pid]; !exist {
			d.assembler.Reset(pid)
		}
	}
	d.pmtPids = fresh
}
