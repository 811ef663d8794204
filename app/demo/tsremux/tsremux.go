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
	"os"

	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tspsi/pkg/base"
	"github.com/q191201771/tspsi/pkg/mpegts"
)

// 读取TS文件，解复用后重新复用并写出
//
// PSI/SI表解析后重新打包，continuity_counter重新生成，
// 因此能修复输入流中的cc跳变和表的CRC错误，其余流的TS包透传。
//
// Usage:
//   ./bin/tsremux -i in.ts -o out.ts

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	in, out := parseFlag()
	base.LogoutStartInfo()

	content, err := ioutil.ReadFile(in)
	nazalog.Assert(nil, err)

	var fw mpegts.FileWriter
	err = fw.Create(out)
	nazalog.Assert(nil, err)
	defer fw.Dispose()

	mux := mpegts.NewMuxer(func(b []byte) {
		if err := fw.Write(b); err != nil {
			nazalog.Errorf("write failed. err=%+v", err)
		}
	})

	// program_number到PMT PID的映射，来自最近一次PAT
	program2pid := make(map[uint16]uint16)
	d := mpegts.NewDemuxer().WithCallbackFunc(
		func(pat mpegts.Pat) {
			program2pid = make(map[uint16]uint16)
			for _, ppe := range pat.ProgramElements {
				if ppe.ProgramNumber != 0 {
					program2pid[ppe.ProgramNumber] = ppe.Pid
				}
			}
			if err := mux.WritePat(&pat); err != nil {
				nazalog.Errorf("write pat failed. err=%+v", err)
			}
		},
		func(pmt mpegts.Pmt) {
			pid, exist := program2pid[pmt.ProgramNumber]
			if !exist {
				return
			}
			if err := mux.WritePmt(pid, &pmt); err != nil {
				nazalog.Errorf("write pmt failed. err=%+v", err)
			}
		},
		func(sdt mpegts.Sdt) {
			if err := mux.WriteSdt(&sdt); err != nil {
				nazalog.Errorf("write sdt failed. err=%+v", err)
			}
		},
		func(eit mpegts.Eit) {
			if err := mux.WriteEit(&eit); err != nil {
				nazalog.Errorf("write eit failed. err=%+v", err)
			}
		},
	).WithOnStreamData(func(pid uint16, streamType uint8, pkt mpegts.TsPacket) {
		b, err := pkt.Pack()
		if err != nil {
			nazalog.Errorf("pack failed. err=%+v", err)
			return
		}
		if err := mux.WriteRawPacket(b); err != nil {
			nazalog.Errorf("write failed. err=%+v", err)
		}
	})

	d.Feed(content)

	stat := d.Stat()
	nazalog.Infof("done. %s -> %s, packet=%d, section=%d, crcError=%d, discontinuity=%d",
		in, fw.Name(), stat.PacketCount, stat.SectionCount, stat.CrcErrorCount, stat.DiscontinuityCount)
}

func parseFlag() (string, string) {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	i := flag.String("i", "", "specify input ts file")
	o := flag.String("o", "", "specify output ts file")
	flag.Parse()

	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.TspsiFullInfo)
		os.Exit(0)
	}
	if *i == "" || *o == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `Example:
  %s -i in.ts -o out.ts
`, os.Args[0])
		os.Exit(1)
	}
	return *i, *o
}
