// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"strings"

	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tspsi/pkg/base"
	"github.com/q191201771/tspsi/pkg/mpegts"
)

// 探测TS流中的PSI/SI表，每张表在版本变化时打印一次
//
// Usage:
//   ./bin/tsprobe -i /tmp/test.ts
//   ./bin/tsprobe -i udp://239.0.0.1:1234

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	input, logStream := parseFlag()
	base.LogoutStartInfo()

	d := mpegts.NewDemuxer().WithCallbackFunc(
		onPat, onPmt, onSdt, onEit,
	).WithOnSectionEvent(func(ev mpegts.SectionEvent) {
		if ev.Type != mpegts.SectionEventComplete {
			nazalog.Warnf("section event. type=%s, pid=0x%04x(%s), err=%+v",
				ev.Type, ev.Pid, mpegts.DescribePid(ev.Pid), ev.Err)
		}
	})
	if logStream {
		d.WithOnStreamData(onStreamData)
	}

	if strings.HasPrefix(input, "udp://") {
		runUdp(d, strings.TrimPrefix(input, "udp://"))
	} else {
		runFile(d, input)
	}

	stat := d.Stat()
	nazalog.Infof("done. packet=%d, section=%d, crcError=%d, discontinuity=%d, syncLoss=%d",
		stat.PacketCount, stat.SectionCount, stat.CrcErrorCount, stat.DiscontinuityCount, stat.SyncLossCount)
}

func runFile(d *mpegts.Demuxer, filename string) {
	content, err := ioutil.ReadFile(filename)
	nazalog.Assert(nil, err)
	d.Feed(content)
}

func runUdp(d *mpegts.Demuxer, addr string) {
	uaddr, err := net.ResolveUDPAddr("udp", addr)
	nazalog.Assert(nil, err)

	var conn *net.UDPConn
	if uaddr.IP.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp", nil, uaddr)
	} else {
		conn, err = net.ListenUDP("udp", uaddr)
	}
	nazalog.Assert(nil, err)
	defer conn.Close()
	nazalog.Infof("listening. addr=%s", addr)

	buf := make([]byte, 65536)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			nazalog.Errorf("read failed. err=%+v", err)
			return
		}
		d.Feed(buf[:n])
	}
}

func onPat(pat mpegts.Pat) {
	nazalog.Infof("PAT. tsi=%d, version=%d", pat.TransportStreamId, pat.VersionNumber)
	for _, ppe := range pat.ProgramElements {
		nazalog.Infof("  program=%d, pmtPid=0x%04x", ppe.ProgramNumber, ppe.Pid)
	}
}

func onPmt(pmt mpegts.Pmt) {
	nazalog.Infof("PMT. program=%d, version=%d, pcrPid=0x%04x", pmt.ProgramNumber, pmt.VersionNumber, pmt.PcrPid)
	for _, pe := range pmt.ProgramElements {
		nazalog.Infof("  pid=0x%04x, streamType=0x%02x(%s)", pe.Pid, pe.StreamType, mpegts.DescribeStreamType(pe.StreamType))
	}
}

func onSdt(sdt mpegts.Sdt) {
	nazalog.Infof("SDT. tsi=%d, onid=%d, version=%d", sdt.TransportStreamId, sdt.OriginalNetworkId, sdt.VersionNumber)
	for _, srv := range sdt.Services {
		name := ""
		provider := ""
		for _, desc := range srv.Descriptors {
			if desc.Tag == mpegts.DescriptorTagService {
				if sd, err := desc.Service(); err == nil {
					name = sd.ServiceName
					provider = sd.ProviderName
				}
			}
		}
		nazalog.Infof("  serviceId=%d, name=%q, provider=%q, running=%d", srv.ServiceId, name, provider, srv.RunningStatus)
	}
}

func onEit(eit mpegts.Eit) {
	nazalog.Infof("EIT. tid=0x%02x, serviceId=%d, version=%d", eit.TableId, eit.ServiceId, eit.VersionNumber)
	for _, ev := range eit.Events {
		title := ""
		var genres []mpegts.ContentElement
		for _, desc := range ev.Descriptors {
			switch desc.Tag {
			case mpegts.DescriptorTagShortEvent:
				if sed, err := desc.ShortEvent(); err == nil {
					title = sed.EventName
				}
			case mpegts.DescriptorTagContent:
				if ces, err := desc.ContentElements(); err == nil {
					genres = ces
				}
			}
		}
		nazalog.Infof("  eventId=%d, start=%s, duration=%s, title=%q",
			ev.EventId, ev.StartTime.Format("2006-01-02 15:04:05"), ev.Duration, title)
		for _, ce := range genres {
			nazalog.Infof("    content. nibble=0x%x/0x%x", ce.ContentNibbleLevel1, ce.ContentNibbleLevel2)
		}
	}
}

func onStreamData(pid uint16, streamType uint8, pkt mpegts.TsPacket) {
	if pkt.AdaptationField != nil && pkt.AdaptationField.PcrFlag == 1 {
		nazalog.Debugf("pid=0x%04x, pcr=%d", pid, pkt.AdaptationField.Pcr.Value())
	}
	if pkt.Header.PayloadUnitStart != 1 {
		return
	}
	pes, _, err := mpegts.ParsePesHeader(pkt.Payload)
	if err != nil {
		return
	}
	nazalog.Debugf("pid=0x%04x, streamType=%s, pts=%d, dts=%d",
		pid, mpegts.DescribeStreamType(streamType), pes.Pts, pes.Dts)
}

func parseFlag() (string, bool) {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	i := flag.String("i", "", "specify ts file or udp address")
	s := flag.Bool("s", false, "also log pes pts/dts and pcr of stream packets")
	flag.Parse()

	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.TspsiFullInfo)
		os.Exit(0)
	}
	if *i == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `Example:
  %s -i /tmp/test.ts
  %s -i udp://239.0.0.1:1234
`, os.Args[0], os.Args[0])
		os.Exit(1)
	}
	return *i, *s
}
