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
	"os"

	"github.com/haivision/srtgo"
	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tspsi/pkg/base"
	"github.com/q191201771/tspsi/pkg/mpegts"
)

// 监听SRT端口，接收TS流并探测其中的PSI/SI表
//
// Usage:
//   ./bin/srtprobe -p 6001
//
// 推流端示例:
//   ffmpeg -re -i test.ts -c copy -f mpegts srt://127.0.0.1:6001

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	port := parseFlag()
	base.LogoutStartInfo()

	options := make(map[string]string)
	options["transtype"] = "live"

	sck := srtgo.NewSrtSocket("0.0.0.0", uint16(port), options)
	defer sck.Close()

	err := sck.Listen(1)
	nazalog.Assert(nil, err)
	nazalog.Infof("listening. port=%d", port)

	for {
		socket, addr, err := sck.Accept()
		if err != nil {
			nazalog.Errorf("accept failed. err=%+v", err)
			continue
		}
		nazalog.Infof("accepted. addr=%s", addr)
		go handle(socket)
	}
}

func handle(socket *srtgo.SrtSocket) {
	defer socket.Close()

	d := mpegts.NewDemuxer().WithCallbackFunc(
		func(pat mpegts.Pat) {
			nazalog.Infof("PAT. tsi=%d, version=%d, programs=%d", pat.TransportStreamId, pat.VersionNumber, len(pat.ProgramElements))
		},
		func(pmt mpegts.Pmt) {
			nazalog.Infof("PMT. program=%d, version=%d", pmt.ProgramNumber, pmt.VersionNumber)
			for _, pe := range pmt.ProgramElements {
				nazalog.Infof("  pid=0x%04x, streamType=%s", pe.Pid, mpegts.DescribeStreamType(pe.StreamType))
			}
		},
		func(sdt mpegts.Sdt) {
			nazalog.Infof("SDT. tsi=%d, onid=%d, services=%d", sdt.TransportStreamId, sdt.OriginalNetworkId, len(sdt.Services))
		},
		func(eit mpegts.Eit) {
			nazalog.Infof("EIT. serviceId=%d, events=%d", eit.ServiceId, len(eit.Events))
		},
	)

	buf := make([]byte, 1316)
	for {
		n, err := socket.Read(buf)
		if err != nil {
			nazalog.Errorf("read failed. err=%+v", err)
			break
		}
		if n == 0 {
			break
		}
		d.Feed(buf[:n])
	}

	stat := d.Stat()
	nazalog.Infof("session done. packet=%d, section=%d, crcError=%d", stat.PacketCount, stat.SectionCount, stat.CrcErrorCount)
}

func parseFlag() int {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	p := flag.Int("p", 6001, "specify listen port")
	flag.Parse()

	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.TspsiFullInfo)
		os.Exit(0)
	}
	return *p
}
